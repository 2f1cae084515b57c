// Package storage declares where uploaded images go.
//
// The database only ever holds the public path returned by Save
// ("/uploads/<name>" or a full S3 URL); clients load the image from there.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidName is returned for object names that could escape the
// storage root (path separators, "..", empty).
var ErrInvalidName = errors.New("storage: invalid object name")

// ImageStore persists uploaded images.
type ImageStore interface {
	// Save stores the content under name and returns its public path.
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	// Delete removes the object behind a path previously returned by Save.
	// Deleting something that is already gone is not an error.
	Delete(ctx context.Context, publicPath string) error
}
