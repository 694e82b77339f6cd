package uploads

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	pkgerrors "github.com/campuskeep/staffdir-backend/pkg/errors"
	"github.com/campuskeep/staffdir-backend/pkg/logger"
)

const storagePrefix = "uploads"

// allowedExtensions is the accepted upload surface; anything else is
// rejected before the file touches disk.
var allowedExtensions = map[string]struct{}{
	".xlsx": {},
	".xls":  {},
	".csv":  {},
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".pdf":  {},
	".txt":  {},
	".mp4":  {},
	".mp3":  {},
}

// Processor inspects a locally persisted upload and returns an arbitrary
// result that is passed back to the client verbatim.
type Processor interface {
	Process(ctx context.Context, path string) (any, error)
}

type blobStore interface {
	Upload(ctx context.Context, object string, data []byte, contentType string) error
	MakePublic(ctx context.Context, object string) (string, error)
}

// Result is the passthrough outcome. StorageURL is nil when the blob could
// not be made public; the upload itself still succeeded.
type Result struct {
	Filename      string  `json:"filename"`
	StorageURL    *string `json:"storage_url"`
	ProcessResult any     `json:"process_result"`
}

type Service struct {
	dir       string
	store     blobStore
	processor Processor
	logg      *logger.Logger
}

func NewService(dir string, store blobStore, processor Processor, logg *logger.Logger) (*Service, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("upload directory required")
	}
	if store == nil {
		return nil, fmt.Errorf("blob store required")
	}
	if processor == nil {
		processor = MetadataProcessor{}
	}
	return &Service{dir: dir, store: store, processor: processor, logg: logg}, nil
}

// Handle persists the upload locally, runs the processor on the local copy,
// then stores the original bytes under uploads/<filename>. A blob that
// cannot be made public is tolerated and reported with a nil URL.
func (s *Service) Handle(ctx context.Context, filename string, data []byte) (*Result, error) {
	name, err := sanitizeFilename(filename)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "could not prepare upload directory")
	}
	localPath := filepath.Join(s.dir, name)
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "could not persist upload")
	}

	processResult, err := s.processor.Process(ctx, localPath)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "could not process upload")
	}

	object := storagePrefix + "/" + name
	contentType := mimetype.Detect(data).String()
	if err := s.store.Upload(ctx, object, data, contentType); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "could not store upload")
	}

	var storageURL *string
	if url, err := s.store.MakePublic(ctx, object); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "object", object), "making upload public failed")
		}
	} else {
		storageURL = &url
	}

	return &Result{Filename: name, StorageURL: storageURL, ProcessResult: processResult}, nil
}

// sanitizeFilename strips any path components and enforces the extension
// allow-list.
func sanitizeFilename(filename string) (string, error) {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "filename is required")
	}
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file type not allowed").
			WithDetails(map[string]any{"allowed": AllowedExtensions()})
	}
	return name, nil
}

// AllowedExtensions returns the allow-list without the leading dots, sorted
// stably for response payloads.
func AllowedExtensions() []string {
	out := make([]string, 0, len(allowedExtensions))
	for ext := range allowedExtensions {
		out = append(out, strings.TrimPrefix(ext, "."))
	}
	sort.Strings(out)
	return out
}

// MetadataProcessor is the default processor: it reports the stored size and
// detected MIME type of the local copy.
type MetadataProcessor struct{}

func (MetadataProcessor) Process(_ context.Context, path string) (any, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("inspecting upload: %w", err)
	}
	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detecting upload type: %w", err)
	}
	return map[string]any{
		"size_bytes": info.Size(),
		"mime_type":  detected.String(),
	}, nil
}
