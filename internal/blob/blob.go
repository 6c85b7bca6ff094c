// Package blob stores proof-of-work images and returns public URLs for
// them. Jobs reference images by URL only; the blob store is the single
// writer of image bytes.
package blob

import (
	"context"
	"io"
)

// Store writes image blobs and returns the URL the stored object is
// reachable at.
type Store interface {
	Put(ctx context.Context, name, contentType string, body io.Reader, size int64) (string, error)
	Type() string
}
