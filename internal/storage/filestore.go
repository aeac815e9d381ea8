package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// FileStore keeps learned values as one JSON object per name, in
// <dir>/<name>.json.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir, creating it if needed.
// An empty dir uses the platform data directory.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		d, err := GetQValueDir()
		if err != nil {
			return nil, err
		}
		return &FileStore{dir: d}, nil
	}
	if _, err := ensureDir(dir); err != nil {
		return nil, errors.Wrapf(err, "creating %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", errors.Errorf("invalid store name %q", name)
	}
	return filepath.Join(s.dir, name+".json"), nil
}

// LoadQValues reads the values stored under name, empty when the file does
// not exist.
func (s *FileStore) LoadQValues(name string) (map[string]float64, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}

	values := make(map[string]float64)
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", p)
	}
	return values, nil
}

// SaveQValues writes the values under name, replacing the file atomically.
func (s *FileStore) SaveQValues(name string, values map[string]float64) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}

	data, err := json.Marshal(values)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p)
}
