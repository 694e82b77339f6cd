package controllers

import (
	"net/http"

	"github.com/campuskeep/staffdir-backend/api/responses"
	"github.com/campuskeep/staffdir-backend/api/validators"
	"github.com/campuskeep/staffdir-backend/internal/staff"
	"github.com/campuskeep/staffdir-backend/pkg/logger"
)

type createIfStaffPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateIfStaff provisions an identity-provider account for a roster member
// whose supplied password matches their stored mobile number. It is the
// first-login path for staff imported without accounts.
func CreateIfStaff(svc staff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload createIfStaffPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		uid, err := svc.CreateIfStaff(ctx, payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusCreated, map[string]any{
			"created": true,
			"uid":     uid,
		})
	}
}
