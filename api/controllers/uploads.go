package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/campuskeep/staffdir-backend/api/responses"
	"github.com/campuskeep/staffdir-backend/internal/uploads"
	pkgerrors "github.com/campuskeep/staffdir-backend/pkg/errors"
	"github.com/campuskeep/staffdir-backend/pkg/logger"
)

// UploadHandler is the file passthrough boundary.
type UploadHandler interface {
	Handle(ctx context.Context, filename string, data []byte) (*uploads.Result, error)
}

// UploadFile passes one multipart file through the upload service.
func UploadFile(svc UploadHandler, maxUploadMB int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := r.ParseMultipartForm(maxUploadMB << 20); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "no file provided"))
			return
		}
		defer file.Close()
		if header.Filename == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "empty filename"))
			return
		}

		data, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "could not read upload"))
			return
		}

		result, err := svc.Handle(ctx, header.Filename, data)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, result)
	}
}
