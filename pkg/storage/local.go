package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalStorage persists uploads on disk under a base directory, one
// subdirectory per folder. Files are served statically under publicURL.
type LocalStorage struct {
	baseDir   string
	publicURL string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, publicURL string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Dir exposes the base directory so the router can serve it statically.
func (s *LocalStorage) Dir() string { return s.baseDir }

// Upload writes the blob into <base>/<folder>/<filename> and returns its
// public URL.
func (s *LocalStorage) Upload(ctx context.Context, folder, filename string, r io.Reader, size int64, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := filepath.Join(s.baseDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("prepare upload directory: %w", err)
	}
	path := filepath.Join(dir, filename)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	return s.url(folder, filename), nil
}

// List returns the public URLs of every file in the folder. A folder that
// was never written to lists as empty, not as an error.
func (s *LocalStorage) List(ctx context.Context, folder string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.baseDir, folder))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read upload directory: %w", err)
	}
	urls := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		urls = append(urls, s.url(folder, entry.Name()))
	}
	sort.Strings(urls)
	return urls, nil
}

func (s *LocalStorage) url(folder, filename string) string {
	return fmt.Sprintf("%s/uploads/%s/%s", s.publicURL, folder, filename)
}
