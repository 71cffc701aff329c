package services

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"cloud.google.com/go/storage"

	"forum-geni/pkg/models"
)

// ObjectWriter stores a named object
type ObjectWriter interface {
	WriteObject(ctx context.Context, name, contentType string, data []byte) error
}

// GCSWriter writes objects to a Cloud Storage bucket
type GCSWriter struct {
	bucket *storage.BucketHandle
}

// NewGCSWriter returns a writer for bucketName
func NewGCSWriter(client *storage.Client, bucketName string) *GCSWriter {
	return &GCSWriter{bucket: client.Bucket(bucketName)}
}

// WriteObject implements ObjectWriter
func (w *GCSWriter) WriteObject(ctx context.Context, name, contentType string, data []byte) error {
	writer := w.bucket.Object(name).NewWriter(ctx)
	writer.ContentType = contentType
	writer.CacheControl = "no-cache"

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("Writer.Write: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %w", err)
	}
	return nil
}

// SnapshotPublisher uploads JSON exports of the gallery structure
type SnapshotPublisher struct {
	writer ObjectWriter
	prefix string
	now    func() time.Time
}

// NewSnapshotPublisher stores snapshots under prefix
func NewSnapshotPublisher(writer ObjectWriter, prefix string) *SnapshotPublisher {
	return &SnapshotPublisher{writer: writer, prefix: prefix, now: time.Now}
}

// Publish writes a timestamped snapshot and overwrites latest.json. It returns
// the object names written.
func (p *SnapshotPublisher) Publish(ctx context.Context, structure models.GalleryStructure) ([]string, error) {
	data, err := json.MarshalIndent(structure, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	names := []string{
		path.Join(p.prefix, fmt.Sprintf("snapshot-%s.json", p.now().UTC().Format("20060102T150405Z"))),
		path.Join(p.prefix, "latest.json"),
	}
	for _, name := range names {
		if err := p.writer.WriteObject(ctx, name, "application/json", data); err != nil {
			return nil, fmt.Errorf("upload %s: %w", name, err)
		}
	}
	return names, nil
}
