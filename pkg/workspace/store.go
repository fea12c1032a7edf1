package workspace

import (
	"context"
	"errors"
	"io"
)

// Workspace areas. Every workspace holds exactly these two.
const (
	AreaPages  = "pages"
	AreaGroups = "groups"
)

var (
	// ErrExists indicates a workspace id is already present in the store.
	ErrExists = errors.New("workspace already exists")
	// ErrNotFound indicates a workspace or an object within it does not exist.
	ErrNotFound = errors.New("workspace object not found")
	// ErrAllocation indicates a workspace could not be created.
	ErrAllocation = errors.New("workspace allocation failed")
	// ErrArtifactNotFound indicates no active workspace holds the requested artifact.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrInvalidName indicates an object name carries path segments.
	ErrInvalidName = errors.New("invalid object name")
)

// Store persists workspace trees. The store's own listing is the only
// registry of workspaces, so implementations must not cache it.
type Store interface {
	// Init creates the workspace tree with empty pages and groups areas.
	// Returns ErrExists when the id is already taken.
	Init(ctx context.Context, id string) error
	// Remove deletes the whole workspace tree. Removing a missing workspace is not an error.
	Remove(ctx context.Context, id string) error
	// RemoveArea deletes every object in one area of a workspace.
	RemoveArea(ctx context.Context, id, area string) error
	// List returns the ids of every workspace currently in the store.
	List(ctx context.Context) ([]string, error)
	// Write stores the content of r under id/area/name and returns its path.
	Write(ctx context.Context, id, area, name string, r io.Reader) (string, error)
	// Open returns a reader for id/area/name. The caller must close it.
	// Returns ErrNotFound if the object does not exist.
	Open(ctx context.Context, id, area, name string) (io.ReadCloser, error)
	// Exists reports whether id/area/name exists and returns its path.
	Exists(ctx context.Context, id, area, name string) (string, bool, error)
}
