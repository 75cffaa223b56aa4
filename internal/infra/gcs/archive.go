// Package gcs archives submitted statements in Google Cloud Storage.
package gcs

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// uploadTimeout bounds a single object write.
const uploadTimeout = 2 * time.Minute

// StatementArchive writes statements under statements/<session>/ in one bucket.
// It assumes Application Default Credentials are configured.
type StatementArchive struct {
	client *storage.Client
	bucket string
}

func NewStatementArchive(ctx context.Context, bucket string) (*StatementArchive, error) {
	if bucket == "" {
		return nil, fmt.Errorf("NewStatementArchive: bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewStatementArchive: create storage client: %w", err)
	}
	return &StatementArchive{client: client, bucket: bucket}, nil
}

// Close releases the storage client.
func (a *StatementArchive) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

// ArchiveStatement uploads data and returns its gs:// URI.
func (a *StatementArchive) ArchiveStatement(ctx context.Context, sessionID, mimeType string, data []byte) (string, error) {
	objectName := ObjectName(sessionID, mimeType, time.Now().UTC())

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := a.client.Bucket(a.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = mimeType
	w.Metadata = map[string]string{"session_id": sessionID}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("ArchiveStatement: write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("ArchiveStatement: finalize upload: %w", err)
	}

	return "gs://" + a.bucket + "/" + objectName, nil
}

// Fetch downloads the object at a gs:// URI.
func (a *StatementArchive) Fetch(ctx context.Context, uri string) ([]byte, string, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, "", fmt.Errorf("Fetch: %w", err)
	}

	r, err := a.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("Fetch: open GCS object reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("Fetch: read GCS object: %w", err)
	}
	return data, r.Attrs.ContentType, nil
}

// ParseURI splits gs://bucket/object into its parts.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, "gs://"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// ObjectName builds statements/<session>/<date>/<uuid><ext>.
func ObjectName(sessionID, mimeType string, now time.Time) string {
	return path.Join("statements", sessionID, now.Format(time.DateOnly), uuid.NewString()+extension(mimeType))
}

func extension(mimeType string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch mt {
	case "application/pdf":
		return ".pdf"
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "text/plain":
		return ".txt"
	default:
		return ".bin"
	}
}
