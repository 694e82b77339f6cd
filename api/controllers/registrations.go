package controllers

import (
	"net/http"

	"github.com/campuskeep/staffdir-backend/api/responses"
	"github.com/campuskeep/staffdir-backend/api/validators"
	"github.com/campuskeep/staffdir-backend/internal/registrations"
	"github.com/campuskeep/staffdir-backend/pkg/logger"
)

// submitRegistrationPayload carries the self-service form. Required-field
// checks live in the service so the first missing field is named in order.
type submitRegistrationPayload struct {
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
}

type registrationEmailPayload struct {
	Email string `json:"email" validate:"required,email"`
}

func SubmitRegistration(svc registrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload submitRegistrationPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		err := svc.Submit(ctx, registrations.Registration{
			Name:         payload.Name,
			EmpNo:        payload.EmpNo,
			Email:        payload.Email,
			Department:   payload.Department,
			Designation:  payload.Designation,
			MobileNo:     payload.MobileNo,
			Type:         payload.Type,
			ContractType: payload.ContractType,
			Category:     payload.Category,
			Gender:       payload.Gender,
			BloodGroup:   payload.BloodGroup,
			Address:      payload.Address,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "registration submitted for approval",
		})
	}
}

func PendingRegistrations(svc registrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		pending, err := svc.ListPending(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, map[string]any{
			"success":       true,
			"registrations": pending,
		})
	}
}

func ApproveRegistration(svc registrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload registrationEmailPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if _, err := svc.Approve(ctx, payload.Email); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "registration approved",
		})
	}
}

func RejectRegistration(svc registrations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload registrationEmailPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Reject(ctx, payload.Email); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "registration rejected",
		})
	}
}
