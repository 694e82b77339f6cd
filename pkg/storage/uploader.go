package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"
)

var errBucketRequired = errors.New("storage bucket handle is required")

// Uploader writes objects into a single bucket and can expose them
// publicly. The bucket handle comes from the Firebase app.
type Uploader struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

func NewUploader(bucket *gcs.BucketHandle, bucketName string) (*Uploader, error) {
	if bucket == nil {
		return nil, errBucketRequired
	}
	return &Uploader{bucket: bucket, bucketName: bucketName}, nil
}

// Upload writes the object, replacing any previous content.
func (u *Uploader) Upload(ctx context.Context, object string, data []byte, contentType string) error {
	w := u.bucket.Object(object).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("writing object %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing object %s: %w", object, err)
	}
	return nil
}

// MakePublic grants AllUsers read access and returns the public URL.
func (u *Uploader) MakePublic(ctx context.Context, object string) (string, error) {
	if err := u.bucket.Object(object).ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
		return "", fmt.Errorf("setting public acl on %s: %w", object, err)
	}
	return u.PublicURL(object), nil
}

func (u *Uploader) PublicURL(object string) string {
	segments := strings.Split(object, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucketName, strings.Join(segments, "/"))
}
