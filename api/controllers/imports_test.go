package controllers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campuskeep/staffdir-backend/internal/importer"
	pkgerrors "github.com/campuskeep/staffdir-backend/pkg/errors"
)

type stubImportRunner struct {
	result *importer.Result
	err    error
	read   []byte
}

func (s *stubImportRunner) Run(_ context.Context, workbook io.Reader) (*importer.Result, error) {
	s.read, _ = io.ReadAll(workbook)
	return s.result, s.err
}

func multipartRequest(t *testing.T, path, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadExcelRunsPipeline(t *testing.T) {
	runner := &stubImportRunner{result: &importer.Result{
		TotalRecords:     3,
		ProcessedRecords: 3,
		UploadedRecords:  3,
		Created:          []importer.CreatedAccount{{Email: "asha@college.edu", UID: "uid-1"}},
		Errors:           []importer.RowError{},
	}}
	handler := UploadExcel(runner, 50, nil)

	req := multipartRequest(t, "/api/upload_excel", "file", "staff.xlsx", []byte("workbook-bytes"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body %s", resp.Code, resp.Body.String())
	}
	if string(runner.read) != "workbook-bytes" {
		t.Fatalf("expected file forwarded to pipeline, got %q", runner.read)
	}
	body := decodeBody(t, resp)
	if body["totalRecords"] != float64(3) || body["uploadedRecords"] != float64(3) {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestUploadExcelRequiresFile(t *testing.T) {
	handler := UploadExcel(&stubImportRunner{}, 50, nil)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/upload_excel", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestUploadExcelSurfacesValidationFailure(t *testing.T) {
	runner := &stubImportRunner{err: pkgerrors.New(pkgerrors.CodeValidation, "missing required columns")}
	handler := UploadExcel(runner, 50, nil)

	req := multipartRequest(t, "/api/upload_excel", "file", "staff.xlsx", []byte("bad"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
