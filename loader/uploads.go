package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// UploadStore keeps uploaded files under one directory keyed by their
// original base name. A second upload with the same name overwrites the first.
type UploadStore struct {
	dir string
}

func NewUploadStore(dir string) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &UploadStore{dir: dir}, nil
}

func (s *UploadStore) Dir() string {
	return s.dir
}

// Path returns where an upload named filename is stored. Directory parts of
// filename are discarded.
func (s *UploadStore) Path(filename string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." || strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("invalid upload file name %q", filename)
	}
	return filepath.Join(s.dir, name), nil
}

func (s *UploadStore) Save(filename string, r io.Reader) (string, error) {
	path, err := s.Path(filename)
	if err != nil {
		return "", err
	}

	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		return "", fmt.Errorf("error writing upload: %w", err)
	}
	return path, out.Close()
}

// Stage writes an upload next to its final location under a temporary name.
// Commit moves it into place; until then the stored file of the same name is
// untouched.
func (s *UploadStore) Stage(filename string, r io.Reader) (string, error) {
	path, err := s.Path(filename)
	if err != nil {
		return "", err
	}

	out, err := os.CreateTemp(s.dir, ".staged-*-"+filepath.Base(path))
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("error writing upload: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}

// Commit replaces the stored upload named filename with the staged file.
func (s *UploadStore) Commit(staged, filename string) (string, error) {
	path, err := s.Path(filename)
	if err != nil {
		return "", err
	}
	if err := os.Rename(staged, path); err != nil {
		return "", fmt.Errorf("error storing upload: %w", err)
	}
	return path, nil
}
