package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(filepath.Join(t.TempDir(), "uploads"), "http://localhost:8080/uploads/")
	require.NoError(t, err)
	return s
}

func TestLocalStorage_UploadDownloadDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	key, err := s.Upload(ctx, strings.NewReader("doctor note"), "leave/emp-1/note.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "leave/emp-1/note.pdf", key)

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := s.Download(ctx, key)
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "doctor note", string(content))

	url, err := s.GetURL(ctx, key, 0)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/leave/emp-1/note.pdf", url)

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key)) // idempotent
	exists, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorage_TraversalStaysInside(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	key, err := s.Upload(ctx, strings.NewReader("x"), "../../escape.txt", "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "escape.txt", key)

	_, err = os.Stat(filepath.Join(s.BasePath(), "escape.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(filepath.Dir(s.BasePath()), "escape.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorage_EmptyPath(t *testing.T) {
	_, err := newTestStorage(t).Upload(context.Background(), strings.NewReader("x"), "/", "text/plain")
	assert.True(t, errors.Is(err, ErrInvalidPath))
}

func TestLocalStorage_DownloadMissing(t *testing.T) {
	_, err := newTestStorage(t).Download(context.Background(), "nope.txt")
	assert.True(t, errors.Is(err, ErrFileNotFound))
}
