package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/storage"
)

// Upload is an image file received from a client, already size-limited by
// the HTTP layer.
type Upload struct {
	Filename string // original client-side name; only its extension is used
	Body     io.Reader
}

// allowedImageTypes maps the accepted extensions to the Content-Type the
// object is stored with. The client-declared Content-Type is ignored.
var allowedImageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// saveImage stores an upload under a fresh name and returns its public path.
//
// WHY xid FOR THE FILE NAME?
// The client's file name can't be trusted (collisions, "../", odd unicode).
// xid gives a 20-char, URL-safe, time-sortable unique id, so two uploads of
// "photo.jpg" never overwrite each other.
func saveImage(ctx context.Context, store storage.ImageStore, up *Upload) (string, error) {
	ext := strings.ToLower(filepath.Ext(up.Filename))
	contentType, ok := allowedImageTypes[ext]
	if !ok {
		return "", apperror.ValidationFailed("image", "only .jpg, .jpeg and .png images are allowed")
	}

	return store.Save(ctx, xid.New().String()+ext, contentType, up.Body)
}

// discardImage removes an image that is no longer referenced.
// Failures are only logged: the row is already correct, and a stray file
// does no harm beyond disk space.
func discardImage(ctx context.Context, store storage.ImageStore, path string, logger *slog.Logger) {
	if err := store.Delete(ctx, path); err != nil {
		logger.Warn("failed to remove image",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}
