package registrations

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/campuskeep/staffdir-backend/internal/staff"
	pkgerrors "github.com/campuskeep/staffdir-backend/pkg/errors"
	"github.com/campuskeep/staffdir-backend/pkg/logger"
)

const submissionTimeLayout = "2006-01-02 15:04:05"

// Queue is the row store backing the pending-registration workflow. A nil
// Queue is a valid deployment state: the spreadsheet is optional
// configuration, and every operation reports it as an unavailable dependency
// before touching anything else.
type Queue interface {
	AppendRow(ctx context.Context, row []string) error
	ReadRows(ctx context.Context) ([][]string, error)
	DeleteRow(ctx context.Context, rowIndex int) error
}

type rosterStore interface {
	MaxSerial(ctx context.Context) (int, error)
	StaffExists(ctx context.Context, id string) (bool, error)
	SetStaff(ctx context.Context, id string, record staff.Record) error
	GetStaff(ctx context.Context, id string) (*staff.Record, error)
}

type Service interface {
	Submit(ctx context.Context, reg Registration) error
	ListPending(ctx context.Context) ([]Registration, error)
	Approve(ctx context.Context, email string) (*staff.Record, error)
	Reject(ctx context.Context, email string) error
}

type service struct {
	queue  Queue
	roster rosterStore
	logg   *logger.Logger
	now    func() time.Time
}

func NewService(queue Queue, roster rosterStore, logg *logger.Logger) (Service, error) {
	if roster == nil {
		return nil, fmt.Errorf("roster store required")
	}
	return &service{
		queue:  queue,
		roster: roster,
		logg:   logg,
		now:    time.Now,
	}, nil
}

func (s *service) queueReady() error {
	if s.queue == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "registration queue is not configured")
	}
	return nil
}

// Submit appends a PENDING row after the required fields pass and no PENDING
// row already claims the email (or, when one is supplied, the employee
// number). The duplicate check is a read-then-append scan, so two
// simultaneous submissions for the same email can both land.
func (s *service) Submit(ctx context.Context, reg Registration) error {
	if err := s.queueReady(); err != nil {
		return err
	}
	if err := validateSubmission(reg); err != nil {
		return err
	}

	rows, err := s.queue.ReadRows(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "could not read registration queue")
	}
	for _, row := range rows {
		existing := fromRow(row)
		if !existing.isPending() {
			continue
		}
		if strings.EqualFold(existing.Email, reg.Email) {
			return pkgerrors.New(pkgerrors.CodeConflict, "a registration for this email is already pending")
		}
		if reg.EmpNo != "" && existing.EmpNo == reg.EmpNo {
			return pkgerrors.New(pkgerrors.CodeConflict, "a registration for this employee number is already pending")
		}
	}

	reg.Timestamp = s.now().Format(submissionTimeLayout)
	reg.Status = StatusPending
	if err := s.queue.AppendRow(ctx, reg.toRow()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "could not append registration")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "email", reg.Email), "registration submitted")
	}
	return nil
}

func (s *service) ListPending(ctx context.Context) ([]Registration, error) {
	if err := s.queueReady(); err != nil {
		return nil, err
	}
	rows, err := s.queue.ReadRows(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "could not read registration queue")
	}

	pending := []Registration{}
	for _, row := range rows {
		reg := fromRow(row)
		if reg.isPending() {
			pending = append(pending, reg)
		}
	}
	return pending, nil
}

// Approve promotes the first PENDING row matching the email into a roster
// record keyed by the storage-safe email, verifies the write by re-reading,
// then deletes the source row. The next serial number comes from a roster
// scan, so simultaneous approvals can allocate the same number. No account
// or user record is created here; that only happens on bulk import.
func (s *service) Approve(ctx context.Context, email string) (*staff.Record, error) {
	if err := s.queueReady(); err != nil {
		return nil, err
	}
	reg, rowIndex, err := s.findPending(ctx, email)
	if err != nil {
		return nil, err
	}

	maxSerial, err := s.roster.MaxSerial(ctx)
	if err != nil {
		return nil, err
	}
	serial := maxSerial + 1

	key := staff.SafeKey(reg.Email)
	exists, err := s.roster.StaffExists(ctx, key)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a staff record already exists for this email")
	}

	record := staff.Record{
		SlNo:             strconv.Itoa(serial),
		EmpNo:            reg.EmpNo,
		Name:             reg.Name,
		Type:             reg.Type,
		ContractType:     reg.ContractType,
		Department:       reg.Department,
		Category:         reg.Category,
		Gender:           reg.Gender,
		Designation:      reg.Designation,
		MobileNo:         reg.MobileNo,
		BloodGroup:       reg.BloodGroup,
		PermanentAddress: reg.Address,
		Email:            reg.Email,
	}
	if err := s.roster.SetStaff(ctx, key, record); err != nil {
		return nil, err
	}

	created, err := s.roster.GetStaff(ctx, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "could not verify created staff record")
	}

	if err := s.queue.DeleteRow(ctx, rowIndex); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "staff record created but queue row removal failed")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"email":    reg.Email,
			"staff_id": key,
		}), "registration approved")
	}
	return created, nil
}

func (s *service) Reject(ctx context.Context, email string) error {
	if err := s.queueReady(); err != nil {
		return err
	}
	reg, rowIndex, err := s.findPending(ctx, email)
	if err != nil {
		return err
	}
	if err := s.queue.DeleteRow(ctx, rowIndex); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "could not remove queue row")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "email", reg.Email), "registration rejected")
	}
	return nil
}

// findPending returns the first PENDING row matching the email and its
// zero-based sheet row index, which is what row deletion expects.
func (s *service) findPending(ctx context.Context, email string) (*Registration, int, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	rows, err := s.queue.ReadRows(ctx)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "could not read registration queue")
	}
	for idx, row := range rows {
		reg := fromRow(row)
		if reg.isPending() && strings.EqualFold(reg.Email, email) {
			return &reg, idx, nil
		}
	}
	return nil, 0, pkgerrors.New(pkgerrors.CodeNotFound, "no pending registration for this email")
}

func validateSubmission(reg Registration) error {
	required := []struct {
		name  string
		value string
	}{
		{"name", reg.Name},
		{"email", reg.Email},
		{"department", reg.Department},
		{"mobileNo", reg.MobileNo},
		{"designation", reg.Designation},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s is required", field.name))
		}
	}
	return nil
}
