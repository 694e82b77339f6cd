package staff

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campuskeep/staffdir-backend/internal/identity"
	pkgerrors "github.com/campuskeep/staffdir-backend/pkg/errors"
	"github.com/campuskeep/staffdir-backend/pkg/logger"
)

type rosterRepository interface {
	GetStaff(ctx context.Context, id string) (*Record, error)
	ListStaff(ctx context.Context) ([]Record, error)
	FindStaffByEmail(ctx context.Context, email string) (*Record, error)
	UpdateStaffType(ctx context.Context, id, staffType string) error
	DeleteStaff(ctx context.Context, id string) error
	SetUser(ctx context.Context, uid string, user User) error
	DeleteUser(ctx context.Context, uid string) error
}

// Service exposes roster operations.
type Service interface {
	List(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, id string) (*DeleteResult, error)
	BulkDelete(ctx context.Context, ids []string) *BulkDeleteResult
	UpdateType(ctx context.Context, id, staffType string) error
	CreateIfStaff(ctx context.Context, email, password string) (string, error)
}

type service struct {
	repo     rosterRepository
	accounts identity.UserManager
	logg     *logger.Logger
}

// NewService builds the roster service. The account manager is the
// identity-provider boundary used for delete cleanup and the first-login
// fallback.
func NewService(repo rosterRepository, accounts identity.UserManager, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("roster repository required")
	}
	if accounts == nil {
		return nil, fmt.Errorf("account manager required")
	}
	return &service{repo: repo, accounts: accounts, logg: logg}, nil
}

// DeleteResult reports whether the linked identity-provider account was
// found and removed alongside the roster entry.
type DeleteResult struct {
	StaffID         string `json:"staff_id"`
	DeletedAuthUser bool   `json:"deleted_auth_user"`
}

type BulkDeleteError struct {
	StaffID string `json:"staff_id"`
	Error   string `json:"error"`
}

type BulkDeleteResult struct {
	DeletedStaff     int               `json:"deleted_staff"`
	DeletedAuthUsers int               `json:"deleted_auth_users"`
	Errors           []BulkDeleteError `json:"errors"`
}

func (s *service) List(ctx context.Context) ([]Record, error) {
	return s.repo.ListStaff(ctx)
}

func (s *service) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	record, err := s.repo.GetStaff(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteStaff(ctx, id); err != nil {
		return nil, err
	}

	result := &DeleteResult{StaffID: id}
	if record.Email != "" {
		result.DeletedAuthUser = s.deleteLinkedAccount(ctx, record.Email)
	}
	return result, nil
}

// deleteLinkedAccount removes the users document and identity-provider
// account tied to the email. Failures are logged and swallowed; they never
// block the roster deletion.
func (s *service) deleteLinkedAccount(ctx context.Context, email string) bool {
	uid, err := s.accounts.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, identity.ErrUserNotFound) && s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "email", email), "auth user lookup failed during staff delete")
		}
		return false
	}

	if err := s.repo.DeleteUser(ctx, uid); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithUID(ctx, uid), "user record cleanup failed during staff delete")
	}

	if err := s.accounts.DeleteUser(ctx, uid); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithUID(ctx, uid), "auth user deletion failed during staff delete")
		}
		return false
	}
	return true
}

func (s *service) BulkDelete(ctx context.Context, ids []string) *BulkDeleteResult {
	result := &BulkDeleteResult{Errors: []BulkDeleteError{}}
	for _, id := range ids {
		deletion, err := s.Delete(ctx, id)
		if err != nil {
			msg := "delete failed"
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
				msg = "staff not found"
			}
			result.Errors = append(result.Errors, BulkDeleteError{StaffID: id, Error: msg})
			continue
		}
		result.DeletedStaff++
		if deletion.DeletedAuthUser {
			result.DeletedAuthUsers++
		}
	}
	return result
}

func (s *service) UpdateType(ctx context.Context, id, staffType string) error {
	staffType = strings.TrimSpace(staffType)
	if staffType == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "type is required")
	}
	if !IsAllowedType(staffType) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid staff type").
			WithDetails(map[string]any{"allowed": AllowedTypes})
	}
	return s.repo.UpdateStaffType(ctx, id, staffType)
}

// CreateIfStaff is the first-login fallback: when a roster entry exists for
// the email and the supplied password equals the stored mobile number, an
// identity-provider account and user record are provisioned.
func (s *service) CreateIfStaff(ctx context.Context, email, password string) (string, error) {
	record, err := s.repo.FindStaffByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	if record.MobileNo == "" || record.MobileNo != password {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "password did not match staff mobile number")
	}

	uid, err := s.accounts.CreateUser(ctx, email, password)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "could not create user")
	}

	if err := s.repo.SetUser(ctx, uid, User{
		Email:   email,
		IsAdmin: false,
		StaffID: record.SlNo,
	}); err != nil {
		return "", err
	}
	return uid, nil
}
