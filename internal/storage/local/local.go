// Package local stores uploaded images on the server's disk.
//
// Files land in a single flat directory that the router serves as static
// files under the URL prefix (default /uploads).
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sakif/recipe-share/internal/storage"
)

var _ storage.ImageStore = (*Store)(nil)

// Store writes images into Dir and reports them as URLPrefix/<name>.
type Store struct {
	dir       string
	urlPrefix string
}

// New creates the directory if needed.
func New(dir, urlPrefix string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local: creating upload dir: %w", err)
	}
	return &Store{dir: dir, urlPrefix: "/" + strings.Trim(urlPrefix, "/")}, nil
}

// Dir is the directory the router serves.
func (s *Store) Dir() string { return s.dir }

// URLPrefix is the path prefix the router serves Dir under.
func (s *Store) URLPrefix() string { return s.urlPrefix }

// Save writes r to Dir/name. A partially written file is removed on error.
func (s *Store) Save(_ context.Context, name, _ string, r io.Reader) (string, error) {
	if !validName(name) {
		return "", storage.ErrInvalidName
	}

	full := filepath.Join(s.dir, name)
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("local: creating %s: %w", name, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("local: writing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("local: closing %s: %w", name, err)
	}

	return path.Join(s.urlPrefix, name), nil
}

// Delete removes the file behind publicPath. Paths outside URLPrefix are
// rejected rather than resolved against the disk.
func (s *Store) Delete(_ context.Context, publicPath string) error {
	name, ok := strings.CutPrefix(publicPath, s.urlPrefix+"/")
	if !ok || !validName(name) {
		return storage.ErrInvalidName
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("local: removing %s: %w", name, err)
	}
	return nil
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`)
}
