package firebase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/campuskeep/staffdir-backend/pkg/config"
	"github.com/campuskeep/staffdir-backend/pkg/logger"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errBucketRequired    = errors.New("storage bucket is required")
)

// Clients bundles the identity provider, document store, and object store
// handles. All three come from a single Firebase app and are constructed
// once at process start.
type Clients struct {
	Auth      *auth.Client
	Firestore *firestore.Client
	Bucket    *gcs.BucketHandle
}

func NewClients(ctx context.Context, gcp config.GCPConfig, storageCfg config.StorageConfig, logg *logger.Logger) (*Clients, error) {
	if strings.TrimSpace(gcp.ProjectID) == "" {
		return nil, errProjectIDRequired
	}
	if strings.TrimSpace(storageCfg.Bucket) == "" {
		return nil, errBucketRequired
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     gcp.ProjectID,
		StorageBucket: storageCfg.Bucket,
	}, clientOptions(gcp)...)
	if err != nil {
		return nil, fmt.Errorf("creating firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating auth client: %w", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	storageClient, err := app.Storage(ctx)
	if err != nil {
		_ = fsClient.Close()
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	bucket, err := storageClient.DefaultBucket()
	if err != nil {
		_ = fsClient.Close()
		return nil, fmt.Errorf("resolving storage bucket: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "firebase clients initialized")
	}

	return &Clients{
		Auth:      authClient,
		Firestore: fsClient,
		Bucket:    bucket,
	}, nil
}

func (c *Clients) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}

func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(gcp.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	case strings.TrimSpace(gcp.ApplicationCredentials) != "":
		opts = append(opts, option.WithCredentialsFile(gcp.ApplicationCredentials))
	}
	return opts
}
