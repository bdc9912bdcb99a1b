package archive

import (
	"context"
	"encoding/json"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/ghtask/pkg/domain/model"
)

// GCS writes each fetched batch as its own object under prefix
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCS creates an archiver using default credentials
func NewGCS(ctx context.Context, bucket, prefix string) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("archive bucket is required", goerr.T(model.ErrTagConfig))
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}
	return &GCS{client: client, bucket: bucket, prefix: prefix}, nil
}

// ObjectName returns the object path for a batch fetched at t
func ObjectName(prefix string, t time.Time) string {
	return path.Join(prefix, t.UTC().Format(KeyLayout)+".json")
}

func (a *GCS) Save(ctx context.Context, fetchedAt time.Time, batch []model.RawNotification) error {
	name := ObjectName(a.prefix, fetchedAt)

	w := a.client.Bucket(a.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/json"

	if err := json.NewEncoder(w).Encode(batch); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write archive object",
			goerr.V("bucket", a.bucket),
			goerr.V("object", name),
		)
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize archive object",
			goerr.V("bucket", a.bucket),
			goerr.V("object", name),
		)
	}
	return nil
}

// Shutdown releases the storage client
func (a *GCS) Shutdown() error {
	return a.client.Close()
}
