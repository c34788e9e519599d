// Package images validates and stores uploaded game pictures.
package images

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound is returned when a stored picture does not exist.
var ErrNotFound = errors.New("picture not found")

// ErrBadName is returned for file names that could escape the storage directory.
var ErrBadName = errors.New("invalid picture file name")

// Storage keeps pictures as flat files in one directory. Safe for concurrent use.
type Storage struct {
	dir string
	mu  sync.RWMutex
}

// NewStorage creates the directory if needed.
func NewStorage(dir string) (*Storage, error) {
	if dir == "" {
		return nil, errors.New("picture directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create picture directory: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Dir returns the storage directory.
func (s *Storage) Dir() string { return s.dir }

// Path resolves name inside the storage directory.
func (s *Storage) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrBadName
	}
	return filepath.Join(s.dir, name), nil
}

// Save writes data under name, replacing any existing file. The write goes
// through a temp file so readers never see a partial picture.
func (s *Storage) Save(name string, data []byte) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New("picture data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write picture: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close picture: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod picture: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("store picture: %w", err)
	}
	return nil
}

// Get reads a stored picture.
func (s *Storage) Get(name string) ([]byte, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path) //#nosec G304 -- confined to the storage directory by Path
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read picture: %w", err)
	}
	return data, nil
}

// Delete removes a stored picture. Missing files are not an error.
func (s *Storage) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete picture: %w", err)
	}
	return nil
}
