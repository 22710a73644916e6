package ports

import (
	"context"
	"io"
)

// PhotoStore is the storage bucket holding customer photos.
type PhotoStore interface {
	Upload(ctx context.Context, path, contentType string, r io.Reader) error
	// PublicURL resolves the URL under which an uploaded object is served.
	PublicURL(path string) string
	// Open returns the object body and its content type.
	Open(ctx context.Context, path string) (io.ReadCloser, string, error)
}
