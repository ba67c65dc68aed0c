package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileStore abstracts where uploaded campaign assets live. The review and
// delete flows only need existence checks and removal; the upload flow
// also writes.
type FileStore interface {
	Save(path string, r io.Reader) (int64, error)
	Exists(path string) bool
	Delete(path string) error
	AbsPath(path string) (string, error)
}

// LocalFileStore stores files under a root directory on local disk.
type LocalFileStore struct {
	root string
}

// NewLocalFileStore creates a file store rooted at dir, creating it if needed.
func NewLocalFileStore(dir string) (*LocalFileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store root directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file store root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create file store root: %w", err)
	}
	return &LocalFileStore{root: abs}, nil
}

// AbsPath resolves a stored path against the root and rejects traversal
// outside of it.
func (s *LocalFileStore) AbsPath(path string) (string, error) {
	cleaned := filepath.Clean("/" + strings.TrimPrefix(path, "/"))
	abs := filepath.Join(s.root, cleaned)
	if !strings.HasPrefix(abs, s.root+string(filepath.Separator)) && abs != s.root {
		return "", fmt.Errorf("path escapes file store root: %s", path)
	}
	return abs, nil
}

// Save writes the reader's content to path, creating parent directories.
func (s *LocalFileStore) Save(path string, r io.Reader) (int64, error) {
	abs, err := s.AbsPath(path)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(abs)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		return n, fmt.Errorf("failed to write file: %w", err)
	}
	return n, nil
}

// Exists reports whether a regular file is present at path.
func (s *LocalFileStore) Exists(path string) bool {
	abs, err := s.AbsPath(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && info.Mode().IsRegular()
}

// Delete removes the file at path. Deleting a missing file is not an error.
func (s *LocalFileStore) Delete(path string) error {
	abs, err := s.AbsPath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
