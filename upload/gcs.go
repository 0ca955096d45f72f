package upload

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// GCSUploader writes documents to a Cloud Storage bucket.
type GCSUploader struct {
	client   *storage.Client
	bucket   string
	maxBytes int64
	now      func() time.Time
}

func NewGCSUploader(client *storage.Client, bucket string, maxBytes int64) *GCSUploader {
	return &GCSUploader{client: client, bucket: bucket, maxBytes: maxBytes, now: time.Now}
}

func (u *GCSUploader) Upload(ctx context.Context, f File) (string, error) {
	if err := Validate(&f, u.maxBytes); err != nil {
		return "", err
	}
	name := u.objectName(f)

	w := u.client.Bucket(u.bucket).Object(name).NewWriter(ctx)
	w.ContentType = f.ContentType
	if _, err := w.Write(f.Data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("%w: write object: %v", ErrUnavailable, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: close object: %v", ErrUnavailable, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, name), nil
}

// objectName keeps the original extension and makes the name unique per day.
func (u *GCSUploader) objectName(f File) string {
	ext := strings.ToLower(path.Ext(f.Name))
	if !AllowedExtension("x" + ext) {
		ext = allowedTypes[f.ContentType][0]
	}
	return fmt.Sprintf("documents/%s/%s%s", u.now().UTC().Format("2006/01/02"), uuid.NewString(), ext)
}
