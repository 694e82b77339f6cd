package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/campuskeep/staffdir-backend/api/responses"
	"github.com/campuskeep/staffdir-backend/api/validators"
	"github.com/campuskeep/staffdir-backend/internal/staff"
	pkgerrors "github.com/campuskeep/staffdir-backend/pkg/errors"
	"github.com/campuskeep/staffdir-backend/pkg/logger"
)

type bulkDeletePayload struct {
	StaffIDs []string `json:"staff_ids" validate:"required,min=1"`
}

type updateTypePayload struct {
	Type string `json:"type" validate:"required"`
}

// StaffList returns every roster record.
func StaffList(svc staff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		records, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, map[string]any{"staffs": records})
	}
}

// StaffDelete removes one record and best-effort cleans up the linked
// identity-provider account.
func StaffDelete(svc staff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "staff id is required"))
			return
		}

		result, err := svc.Delete(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, map[string]any{
			"success":           true,
			"staff_id":          result.StaffID,
			"deleted_auth_user": result.DeletedAuthUser,
		})
	}
}

func StaffBulkDelete(svc staff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var payload bulkDeletePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result := svc.BulkDelete(ctx, payload.StaffIDs)
		responses.WriteJSON(w, http.StatusOK, map[string]any{
			"success":            true,
			"deleted_staff":      result.DeletedStaff,
			"deleted_auth_users": result.DeletedAuthUsers,
			"errors":             result.Errors,
		})
	}
}

func StaffUpdateType(svc staff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "staff id is required"))
			return
		}

		var payload updateTypePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.UpdateType(ctx, id, payload.Type); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"message":  "staff type updated",
			"staff_id": id,
			"new_type": payload.Type,
		})
	}
}

// AdminCheck only exists behind the admin gate; reaching it proves the flag.
func AdminCheck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteJSON(w, http.StatusOK, map[string]any{"isAdmin": true})
	}
}
