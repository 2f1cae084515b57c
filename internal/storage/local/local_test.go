package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/recipe-share/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "uploads"), "/uploads/")
	require.NoError(t, err)
	return s
}

func TestSave(t *testing.T) {
	s := newTestStore(t)

	p, err := s.Save(context.Background(), "abc.png", "image/png", strings.NewReader("PNGDATA"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/abc.png", p)

	data, err := os.ReadFile(filepath.Join(s.Dir(), "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "PNGDATA", string(data))
}

func TestSave_RefusesToOverwrite(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Save(context.Background(), "a.jpg", "image/jpeg", strings.NewReader("1"))
	require.NoError(t, err)
	_, err = s.Save(context.Background(), "a.jpg", "image/jpeg", strings.NewReader("2"))
	assert.Error(t, err)
}

func TestSave_RejectsPathNames(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"", "..", "../evil.png", "sub/dir.png", `win\dir.png`} {
		_, err := s.Save(context.Background(), name, "image/png", strings.NewReader("x"))
		assert.True(t, errors.Is(err, storage.ErrInvalidName), "name %q: err = %v", name, err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	p, err := s.Save(context.Background(), "gone.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), p))
	_, err = os.Stat(filepath.Join(s.Dir(), "gone.png"))
	assert.True(t, os.IsNotExist(err))

	// Second delete is a no-op.
	assert.NoError(t, s.Delete(context.Background(), p))
}

func TestDelete_RejectsForeignPaths(t *testing.T) {
	s := newTestStore(t)

	for _, p := range []string{"/etc/passwd", "/uploads/../secret", "https://cdn.example.com/a.png"} {
		assert.ErrorIs(t, s.Delete(context.Background(), p), storage.ErrInvalidName, p)
	}
}
