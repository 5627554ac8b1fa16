package storage

import (
	"context"
	"io"
)

// UploadResult describes where an uploaded object ended up.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader abstracts the object store holding athlete photos so services
// never touch the S3 client directly.
type FileUploader interface {
	// Upload streams the object under key and returns its public location.
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	// Delete removes the object under key. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// GetPublicURL resolves key against the bucket's public base URL without
	// any network call.
	GetPublicURL(key string) string
}
