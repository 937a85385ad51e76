// Package objectstore uploads gallery images to Firebase Storage or an
// S3-compatible bucket.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

const firebaseDownloadHost = "https://firebasestorage.googleapis.com"

// Firebase stores objects in the project's default Cloud Storage bucket and
// returns token-bearing download URLs like the Firebase client SDKs do.
type Firebase struct {
	bucket *gcs.BucketHandle
	name   string
}

func NewFirebase(bucket *gcs.BucketHandle) *Firebase {
	return &Firebase{bucket: bucket, name: bucket.BucketName()}
}

func (f *Firebase) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	token := uuid.NewString()
	w := f.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{"firebaseStorageDownloadTokens": token}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	return DownloadURL(f.name, path, token), nil
}

func (f *Firebase) Delete(ctx context.Context, path string) error {
	err := f.bucket.Object(path).Delete(ctx)
	if err == nil || errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return fmt.Errorf("delete %s: %w", path, err)
}

// DownloadURL is the public Firebase Storage URL for an object.
func DownloadURL(bucket, path, token string) string {
	u := fmt.Sprintf("%s/v0/b/%s/o/%s?alt=media", firebaseDownloadHost, bucket, url.PathEscape(path))
	if token != "" {
		u += "&token=" + url.QueryEscape(token)
	}
	return u
}
