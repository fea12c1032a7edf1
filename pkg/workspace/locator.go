package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
)

// Artifact identifies a materialized output inside a workspace.
type Artifact struct {
	WorkspaceID string `json:"workspace_id"`
	FileName    string `json:"file_name"`
	Path        string `json:"path"`
}

// FindArtifact searches the groups area of every live workspace, oldest
// first, for an exact file name match. Returns ErrArtifactNotFound when no
// workspace holds it; any other error is a store failure.
func (m *Manager) FindArtifact(ctx context.Context, fileName string) (*Artifact, error) {
	if validateName(fileName) != nil {
		return nil, ErrArtifactNotFound
	}

	ids, err := m.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("find artifact: %w", err)
	}
	slices.Sort(ids)

	for _, id := range ids {
		path, ok, err := m.store.Exists(ctx, id, AreaGroups, fileName)
		if err != nil {
			if errors.Is(err, ErrInvalidName) {
				continue
			}
			return nil, fmt.Errorf("find artifact in %s: %w", id, err)
		}
		if ok {
			return &Artifact{WorkspaceID: id, FileName: fileName, Path: path}, nil
		}
	}

	return nil, ErrArtifactNotFound
}

// OpenArtifact locates fileName and opens it for reading. The caller must
// close the returned reader.
func (m *Manager) OpenArtifact(ctx context.Context, fileName string) (io.ReadCloser, *Artifact, error) {
	a, err := m.FindArtifact(ctx, fileName)
	if err != nil {
		return nil, nil, err
	}

	rc, err := m.store.Open(ctx, a.WorkspaceID, AreaGroups, a.FileName)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, ErrArtifactNotFound
		}
		return nil, nil, err
	}
	return rc, a, nil
}
