package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// JSONFile is a Store backed by a single JSON file. The whole file is
// rewritten after every mutation.
type JSONFile struct {
	mu   sync.Mutex
	mem  *Memory
	path string
}

// NewJSONFile opens the store at path, loading existing documents.
// A missing file yields an empty store.
func NewJSONFile(path string) (*JSONFile, error) {
	s := &JSONFile{mem: NewMemory(), path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the storage file path.
func (s *JSONFile) Path() string {
	return s.path
}

func (s *JSONFile) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	var collections map[string][]Document
	if err := json.Unmarshal(data, &collections); err != nil {
		return err
	}
	for name, docs := range collections {
		for _, d := range docs {
			s.mem.insert(name, d.ID, d.Fields)
		}
	}
	return nil
}

// save writes the store to the JSON file.
// Creates the directory if it doesn't exist.
func (s *JSONFile) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.mem.snapshot(), "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Get implements Store.
func (s *JSONFile) Get(ctx context.Context, collection, id string) (Document, error) {
	return s.mem.Get(ctx, collection, id)
}

// Query implements Store.
func (s *JSONFile) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	return s.mem.Query(ctx, collection, filters...)
}

// Create implements Store.
func (s *JSONFile) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.mem.Create(ctx, collection, fields)
	if err != nil {
		return "", err
	}
	if err := s.save(); err != nil {
		_ = s.mem.Delete(context.Background(), collection, id)
		return "", err
	}
	return id, nil
}

// Update implements Store.
func (s *JSONFile) Update(ctx context.Context, collection, id string, fields Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, pos, _ := s.mem.lookup(collection, id)
	if err := s.mem.Update(ctx, collection, id, fields); err != nil {
		return err
	}
	if err := s.save(); err != nil {
		s.mem.restore(collection, id, prev, pos)
		return err
	}
	return nil
}

// Delete implements Store.
func (s *JSONFile) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, pos, existed := s.mem.lookup(collection, id)
	if err := s.mem.Delete(ctx, collection, id); err != nil {
		return err
	}
	if err := s.save(); err != nil {
		if existed {
			s.mem.restore(collection, id, prev, pos)
		}
		return err
	}
	return nil
}

// Close implements Store.
func (s *JSONFile) Close() error {
	return nil
}
