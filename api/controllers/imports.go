package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/campuskeep/staffdir-backend/api/responses"
	"github.com/campuskeep/staffdir-backend/internal/importer"
	pkgerrors "github.com/campuskeep/staffdir-backend/pkg/errors"
	"github.com/campuskeep/staffdir-backend/pkg/logger"
)

// ImportRunner is the workbook import boundary.
type ImportRunner interface {
	Run(ctx context.Context, workbook io.Reader) (*importer.Result, error)
}

// UploadExcel runs the workbook import over a multipart upload. maxUploadMB
// bounds the in-memory form parse.
func UploadExcel(pipeline ImportRunner, maxUploadMB int64, logg *logger.Logger) http.HandlerFunc {
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

		result, err := pipeline.Run(ctx, file)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, map[string]any{
			"success":          true,
			"message":          "import complete",
			"totalRecords":     result.TotalRecords,
			"processedRecords": result.ProcessedRecords,
			"uploadedRecords":  result.UploadedRecords,
			"created":          result.Created,
			"errors":           result.Errors,
		})
	}
}
