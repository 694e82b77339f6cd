package uploads

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	pkgerrors "github.com/campuskeep/staffdir-backend/pkg/errors"
)

type stubBlobStore struct {
	uploads   map[string][]byte
	uploadErr error
	publicErr error
}

func (s *stubBlobStore) Upload(_ context.Context, object string, data []byte, _ string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	if s.uploads == nil {
		s.uploads = map[string][]byte{}
	}
	s.uploads[object] = data
	return nil
}

func (s *stubBlobStore) MakePublic(_ context.Context, object string) (string, error) {
	if s.publicErr != nil {
		return "", s.publicErr
	}
	return "https://storage.googleapis.com/test-bucket/" + object, nil
}

type stubProcessor struct {
	result any
	err    error
	paths  []string
}

func (p *stubProcessor) Process(_ context.Context, path string) (any, error) {
	p.paths = append(p.paths, path)
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

func newTestService(t *testing.T, store *stubBlobStore, processor Processor) *Service {
	t.Helper()
	svc, err := NewService(t.TempDir(), store, processor, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestHandlePersistsProcessesAndStores(t *testing.T) {
	store := &stubBlobStore{}
	processor := &stubProcessor{result: map[string]any{"pages": 3}}
	svc := newTestService(t, store, processor)

	result, err := svc.Handle(context.Background(), "report.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if result.Filename != "report.pdf" {
		t.Fatalf("expected sanitized filename, got %q", result.Filename)
	}
	if result.StorageURL == nil || *result.StorageURL != "https://storage.googleapis.com/test-bucket/uploads/report.pdf" {
		t.Fatalf("unexpected storage url %v", result.StorageURL)
	}
	if _, ok := store.uploads["uploads/report.pdf"]; !ok {
		t.Fatalf("expected blob stored, got %v", store.uploads)
	}
	if len(processor.paths) != 1 {
		t.Fatal("expected processor invoked on the local copy")
	}
	data, err := os.ReadFile(processor.paths[0])
	if err != nil || string(data) != "%PDF-1.4" {
		t.Fatalf("expected local copy readable, got %q err %v", data, err)
	}
}

func TestHandleRejectsDisallowedExtension(t *testing.T) {
	svc := newTestService(t, &stubBlobStore{}, &stubProcessor{})

	_, err := svc.Handle(context.Background(), "payload.exe", []byte("MZ"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHandleStripsPathComponents(t *testing.T) {
	store := &stubBlobStore{}
	svc := newTestService(t, store, &stubProcessor{})

	result, err := svc.Handle(context.Background(), "../../etc/notes.txt", []byte("hi"))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if result.Filename != "notes.txt" {
		t.Fatalf("expected path stripped, got %q", result.Filename)
	}
	if filepath.Dir(filepath.Join("uploads", result.Filename)) != "uploads" {
		t.Fatalf("unexpected object path for %q", result.Filename)
	}
}

func TestHandleToleratesMakePublicFailure(t *testing.T) {
	store := &stubBlobStore{publicErr: errors.New("acl denied")}
	svc := newTestService(t, store, &stubProcessor{})

	result, err := svc.Handle(context.Background(), "notes.txt", []byte("hi"))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if result.StorageURL != nil {
		t.Fatalf("expected nil storage url, got %v", *result.StorageURL)
	}
}

func TestHandleSurfacesProcessorFailure(t *testing.T) {
	store := &stubBlobStore{}
	svc := newTestService(t, store, &stubProcessor{err: errors.New("corrupt file")})

	_, err := svc.Handle(context.Background(), "notes.txt", []byte("hi"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
	if len(store.uploads) != 0 {
		t.Fatal("failed processing must not reach storage")
	}
}

func TestMetadataProcessorReportsSizeAndType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	result, err := MetadataProcessor{}.Process(context.Background(), path)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	meta, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("expected metadata map, got %T", result)
	}
	if meta["size_bytes"] != int64(11) {
		t.Fatalf("expected size 11, got %v", meta["size_bytes"])
	}
	if meta["mime_type"] == "" {
		t.Fatal("expected detected mime type")
	}
}
