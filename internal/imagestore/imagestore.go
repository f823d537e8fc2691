// Package imagestore abstracts where uploaded images (travel covers and
// itinerary gallery photos) are kept.
package imagestore

import (
	"context"
	"io"
)

type ImageStore interface {
	Save(ctx context.Context, prefix, mimeType string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
}
