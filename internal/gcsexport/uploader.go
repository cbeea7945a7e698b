package gcsexport

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// Uploader writes rendered reports to a storage bucket. The single-method
// interface exists so the export job handler can be tested without GCS.
type Uploader interface {
	Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
}

// GCSUploader uploads to a Google Cloud Storage bucket. It assumes
// Application Default Credentials are configured.
type GCSUploader struct {
	Bucket string
}

// NewGCSUploader creates an uploader for the given bucket.
func NewGCSUploader(bucket string) *GCSUploader {
	return &GCSUploader{Bucket: bucket}
}

// Upload writes data to the bucket and returns the resulting gs:// URI.
func (u *GCSUploader) Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	if u.Bucket == "" {
		return "", fmt.Errorf("upload: no bucket configured")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("upload: create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(u.Bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload: write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload: finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", u.Bucket, objectName), nil
}

// ObjectName builds a date-partitioned object path for one report.
func ObjectName(owner, from, to string, f Format, now time.Time) string {
	return fmt.Sprintf("reports/%s/%s_%s_%s_%s.%s",
		now.Format("2006/01/02"), owner, from, to, uuid.New().String(), f)
}
