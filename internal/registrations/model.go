package registrations

import "strings"

// StatusPending tags queue rows that have not been approved or rejected yet.
// Approval and rejection delete the row instead of rewriting the tag.
const StatusPending = "PENDING"

// Registration is one row of the pending-registration queue. The queue is a
// plain spreadsheet, so the field order below is also the column order.
type Registration struct {
	Timestamp    string `json:"timestamp"`
	Name         string `json:"name"`
	EmpNo        string `json:"empNo"`
	Email        string `json:"email"`
	Department   string `json:"department"`
	Designation  string `json:"designation"`
	MobileNo     string `json:"mobileNo"`
	Type         string `json:"type"`
	ContractType string `json:"contractType"`
	Category     string `json:"category"`
	Gender       string `json:"gender"`
	BloodGroup   string `json:"bloodGroup"`
	Address      string `json:"address"`
	Status       string `json:"status"`
}

const columnCount = 14

func (r Registration) toRow() []string {
	return []string{
		r.Timestamp,
		r.Name,
		r.EmpNo,
		r.Email,
		r.Department,
		r.Designation,
		r.MobileNo,
		r.Type,
		r.ContractType,
		r.Category,
		r.Gender,
		r.BloodGroup,
		r.Address,
		r.Status,
	}
}

func fromRow(row []string) Registration {
	return Registration{
		Timestamp:    cell(row, 0),
		Name:         cell(row, 1),
		EmpNo:        cell(row, 2),
		Email:        cell(row, 3),
		Department:   cell(row, 4),
		Designation:  cell(row, 5),
		MobileNo:     cell(row, 6),
		Type:         cell(row, 7),
		ContractType: cell(row, 8),
		Category:     cell(row, 9),
		Gender:       cell(row, 10),
		BloodGroup:   cell(row, 11),
		Address:      cell(row, 12),
		Status:       cell(row, 13),
	}
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (r Registration) isPending() bool {
	return strings.EqualFold(r.Status, StatusPending)
}
