package staff

import (
	"strconv"
	"strings"
	"time"
)

// Record is one roster entry in the staff collection. The document key is
// the storage-safe email when present, else the employee number, else a
// store-generated id.
type Record struct {
	ID               string    `json:"id" firestore:"-"`
	SlNo             string    `json:"slNo" firestore:"slNo"`
	EmpNo            string    `json:"empNo" firestore:"empNo"`
	Name             string    `json:"name" firestore:"name"`
	Type             string    `json:"type" firestore:"type"`
	ContractType     string    `json:"contractType" firestore:"contractType"`
	Department       string    `json:"department" firestore:"department"`
	Category         string    `json:"category" firestore:"category"`
	Gender           string    `json:"gender" firestore:"gender"`
	Designation      string    `json:"designation" firestore:"designation"`
	MobileNo         string    `json:"mobileNo" firestore:"mobileNo"`
	BloodGroup       string    `json:"bloodGroup" firestore:"bloodGroup"`
	PermanentAddress string    `json:"permanentAddress" firestore:"permanentAddress"`
	Email            string    `json:"email" firestore:"email"`
	PhotoURL         string    `json:"photoUrl,omitempty" firestore:"photoUrl"`
	CreatedAt        time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt        time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// User links an identity-provider account to a roster entry.
type User struct {
	UID       string    `json:"uid" firestore:"-"`
	Email     string    `json:"email" firestore:"email"`
	IsAdmin   bool      `json:"isAdmin" firestore:"isAdmin"`
	StaffID   string    `json:"staffId" firestore:"staffId"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}

// Staff type values accepted by the type-update operation.
var AllowedTypes = []string{"Teaching", "Non-Teaching", "Administration", "Other"}

func IsAllowedType(value string) bool {
	for _, t := range AllowedTypes {
		if strings.EqualFold(t, value) {
			return true
		}
	}
	return false
}

// SerialNumber parses the record's slNo; ok is false when it does not hold
// an integer. Spreadsheet coercion sometimes leaves a trailing ".0".
func (r Record) SerialNumber() (int, bool) {
	raw := strings.TrimSuffix(strings.TrimSpace(r.SlNo), ".0")
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
