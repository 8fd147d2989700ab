// Package blob provides content storage for clinical attachment payloads.
// It defines the Store contract the aggregate service consumes, an
// in-memory implementation suitable for testing and development, and an
// S3-backed implementation for production.
package blob

import (
	"context"
	"errors"
	"io"
)

var ErrBlobNotFound = errors.New("blob not found")

// Store is the contract for binary payload storage. Handles are opaque,
// freshly generated per upload, and never reused; this system does not
// deduplicate payloads.
type Store interface {
	// Upload fully consumes content and stores it under a new handle.
	// No partial write is ever visible to callers.
	Upload(ctx context.Context, content io.Reader, fileName, contentType string) (string, error)

	// Download returns the payload stored under the handle, or
	// ErrBlobNotFound.
	Download(ctx context.Context, blobID string) (io.ReadCloser, error)

	// Delete removes the payload if present. Idempotent.
	Delete(ctx context.Context, blobID string) error
}
