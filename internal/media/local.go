package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes objects below a directory served by the HTTP server.
type LocalStore struct {
	basePath  string
	publicURL string
}

func NewLocalStore(basePath, publicURL string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{basePath: basePath, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Dir is the directory objects are written to.
func (s *LocalStore) Dir() string { return s.basePath }

func (s *LocalStore) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	full, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	// write to a temp file first so a failed copy never leaves a partial object
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, io.LimitReader(r, size)); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return s.publicURL + "/" + key, nil
}

// resolve maps key into basePath, refusing anything that escapes it.
func (s *LocalStore) resolve(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.basePath, key), nil
}
