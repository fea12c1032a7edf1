// Package workspace manages per-run workspace trees: allocation with
// time-derived ids, teardown, age-based garbage collection, and lookup of
// output artifacts across all live workspaces. The backing Store is the only
// source of truth, so a Manager holds no registry and can be recreated at any
// time.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

const maxAllocAttempts = 8

// Workspace is a per-run tree with a pages area for single-page artifacts
// and a groups area for materialized outputs.
type Workspace struct {
	ID        string
	CreatedAt time.Time

	store Store
}

// Write stores r under the given area of the workspace and returns its path.
func (w *Workspace) Write(ctx context.Context, area, name string, r io.Reader) (string, error) {
	return w.store.Write(ctx, w.ID, area, name, r)
}

// Open returns a reader for an object in the given area of the workspace.
func (w *Workspace) Open(ctx context.Context, area, name string) (io.ReadCloser, error) {
	return w.store.Open(ctx, w.ID, area, name)
}

// Manager allocates, destroys, and garbage-collects workspaces.
type Manager struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for ids and age checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a Manager over the given store.
func NewManager(store Store, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		logger: logger.With("system", "workspace"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create allocates a workspace whose id is its creation time in Unix
// nanoseconds. An id collision is resolved by moving to a strictly later id.
// Any other store failure is reported as ErrAllocation.
func (m *Manager) Create(ctx context.Context) (*Workspace, error) {
	created := m.now()

	for range maxAllocAttempts {
		id := FormatID(created)

		err := m.store.Init(ctx, id)
		if err == nil {
			m.logger.DebugContext(ctx, "workspace created", "id", id)
			return &Workspace{ID: id, CreatedAt: created, store: m.store}, nil
		}

		if !errors.Is(err, ErrExists) {
			return nil, fmt.Errorf("%w: %w", ErrAllocation, err)
		}

		m.logger.WarnContext(ctx, "workspace id collision", "id", id)
		created = later(created, m.now())
	}

	return nil, fmt.Errorf("%w: no free id after %d attempts", ErrAllocation, maxAllocAttempts)
}

// Destroy removes the workspace tree. Destroying a missing workspace succeeds.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	if err := m.store.Remove(ctx, id); err != nil {
		return fmt.Errorf("destroy workspace %s: %w", id, err)
	}
	m.logger.DebugContext(ctx, "workspace destroyed", "id", id)
	return nil
}

// ClearPages deletes the single-page artifacts of a finished run.
func (m *Manager) ClearPages(ctx context.Context, id string) error {
	if err := m.store.RemoveArea(ctx, id, AreaPages); err != nil {
		return fmt.Errorf("clear pages of %s: %w", id, err)
	}
	return nil
}

// SweepExpired destroys every workspace older than maxAge and returns how
// many were reclaimed. Entries whose names are not workspace ids are
// skipped, and a failed removal does not stop the sweep.
func (m *Manager) SweepExpired(ctx context.Context, maxAge time.Duration) (int, error) {
	ids, err := m.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("sweep: %w", err)
	}

	now := m.now()
	reclaimed := 0

	for _, id := range ids {
		created, ok := ParseID(id)
		if !ok {
			m.logger.DebugContext(ctx, "sweep skipped non-workspace entry", "name", id)
			continue
		}

		if now.Sub(created) <= maxAge {
			continue
		}

		if err := m.store.Remove(ctx, id); err != nil {
			m.logger.WarnContext(ctx, "sweep removal failed", "id", id, "error", err)
			continue
		}
		reclaimed++
	}

	m.logger.InfoContext(ctx, "workspace sweep complete",
		"scanned", len(ids),
		"reclaimed", reclaimed,
		"max_age", maxAge,
	)

	return reclaimed, nil
}

// FormatID renders a creation time as a workspace id.
func FormatID(t time.Time) string {
	return strconv.FormatInt(t.UnixNano(), 10)
}

// ParseID recovers the creation time from a workspace id. It reports false
// for anything that is not a plain non-negative decimal integer.
func ParseID(id string) (time.Time, bool) {
	if id == "" || strings.TrimLeft(id, "0123456789") != "" {
		return time.Time{}, false
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(0, n), true
}

func later(prev, now time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Nanosecond)
}

func validateName(name string) error {
	if name == "" || name == "." || strings.Contains(name, "..") || strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func validateObject(area, name string) error {
	if err := validateName(area); err != nil {
		return err
	}
	return validateName(name)
}
