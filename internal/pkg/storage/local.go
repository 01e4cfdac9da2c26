package storage

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
	"time"
)

// LocalStorage keeps files below a directory that the router also serves
// statically under baseURL.
type LocalStorage struct {
	root    string
	baseURL string
}

var _ FileStorage = (*LocalStorage)(nil)

func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// BasePath returns the absolute storage directory.
func (s *LocalStorage) BasePath() string {
	return s.root
}

// key normalizes a caller supplied path to a slash separated key that cannot
// leave the root: "../../a.txt" becomes "a.txt".
func key(p string) (string, error) {
	k := strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(p)), "/")
	if k == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return k, nil
}

func (s *LocalStorage) file(p string) (string, string, error) {
	k, err := key(p)
	if err != nil {
		return "", "", err
	}
	return k, filepath.Join(s.root, filepath.FromSlash(k)), nil
}

// Upload writes to a temporary file first so readers never see a partial file.
func (s *LocalStorage) Upload(ctx context.Context, r io.Reader, p string, contentType string) (string, error) {
	k, target, err := s.file(p)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	_, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	return k, nil
}

func (s *LocalStorage) Download(ctx context.Context, p string) (io.ReadCloser, error) {
	_, target, err := s.file(p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, p)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Delete is idempotent.
func (s *LocalStorage) Delete(ctx context.Context, p string) error {
	_, target, err := s.file(p)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// GetURL ignores expiry; local files are served without signing.
func (s *LocalStorage) GetURL(ctx context.Context, p string, expiry time.Duration) (string, error) {
	k, err := key(p)
	if err != nil {
		return "", err
	}
	return s.baseURL + "/" + k, nil
}

func (s *LocalStorage) Exists(ctx context.Context, p string) (bool, error) {
	_, target, err := s.file(p)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(target)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
