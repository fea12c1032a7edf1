package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

type fileStore struct {
	root string
}

// NewFileStore returns a Store that keeps each workspace as a directory
// under root: root/<id>/pages and root/<id>/groups.
func NewFileStore(root string) (Store, error) {
	if root == "" {
		root = filepath.Join(os.TempDir(), "folio")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	return &fileStore{root: root}, nil
}

func (s *fileStore) Init(_ context.Context, id string) error {
	if err := validateName(id); err != nil {
		return err
	}

	dir := filepath.Join(s.root, id)
	if err := os.Mkdir(dir, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrExists
		}
		return fmt.Errorf("create workspace %s: %w", id, err)
	}

	for _, area := range []string{AreaPages, AreaGroups} {
		if err := os.Mkdir(filepath.Join(dir, area), 0o755); err != nil {
			os.RemoveAll(dir)
			return fmt.Errorf("create %s area: %w", area, err)
		}
	}

	return nil
}

func (s *fileStore) Remove(_ context.Context, id string) error {
	if err := validateName(id); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(s.root, id)); err != nil {
		return fmt.Errorf("remove workspace %s: %w", id, err)
	}
	return nil
}

func (s *fileStore) RemoveArea(_ context.Context, id, area string) error {
	if err := validateName(id); err != nil {
		return err
	}

	dir := filepath.Join(s.root, id, area)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s area: %w", area, err)
	}

	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("remove %s: %w", e.Name(), err)
		}
	}
	return nil
}

func (s *fileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}

func (s *fileStore) Write(_ context.Context, id, area, name string, r io.Reader) (string, error) {
	path, err := s.path(id, area, name)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	return path, nil
}

func (s *fileStore) Open(_ context.Context, id, area, name string) (io.ReadCloser, error) {
	path, err := s.path(id, area, name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return f, nil
}

func (s *fileStore) Exists(_ context.Context, id, area, name string) (string, bool, error) {
	path, err := s.path(id, area, name)
	if err != nil {
		return "", false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("stat %s: %w", name, err)
	}
	return path, info.Mode().IsRegular(), nil
}

func (s *fileStore) path(id, area, name string) (string, error) {
	for _, part := range []string{id, area, name} {
		if err := validateName(part); err != nil {
			return "", err
		}
	}
	return filepath.Join(s.root, id, area, name), nil
}
