package workspace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sync"
)

type memoryStore struct {
	mu         sync.RWMutex
	workspaces map[string]map[string][]byte
}

// NewMemoryStore returns a Store that holds workspaces in memory.
// Paths it reports have the form mem://<id>/<area>/<name>.
func NewMemoryStore() Store {
	return &memoryStore{
		workspaces: make(map[string]map[string][]byte),
	}
}

func (s *memoryStore) Init(_ context.Context, id string) error {
	if err := validateName(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workspaces[id]; ok {
		return ErrExists
	}
	s.workspaces[id] = make(map[string][]byte)
	return nil
}

func (s *memoryStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workspaces, id)
	return nil
}

func (s *memoryStore) RemoveArea(_ context.Context, id, area string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	objects, ok := s.workspaces[id]
	if !ok {
		return nil
	}
	for key := range objects {
		if dir, _ := path.Split(key); dir == area+"/" {
			delete(objects, key)
		}
	}
	return nil
}

func (s *memoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.workspaces))
	for id := range s.workspaces {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *memoryStore) Write(_ context.Context, id, area, name string, r io.Reader) (string, error) {
	if err := validateObject(area, name); err != nil {
		return "", err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	objects, ok := s.workspaces[id]
	if !ok {
		return "", fmt.Errorf("%w: workspace %s", ErrNotFound, id)
	}
	objects[area+"/"+name] = data
	return memoryPath(id, area, name), nil
}

func (s *memoryStore) Open(_ context.Context, id, area, name string) (io.ReadCloser, error) {
	if err := validateObject(area, name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.workspaces[id][area+"/"+name]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memoryStore) Exists(_ context.Context, id, area, name string) (string, bool, error) {
	if err := validateObject(area, name); err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.workspaces[id][area+"/"+name]; !ok {
		return "", false, nil
	}
	return memoryPath(id, area, name), true, nil
}

func memoryPath(id, area, name string) string {
	return "mem://" + id + "/" + area + "/" + name
}
