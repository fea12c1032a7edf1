package workspace_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/folio/pkg/workspace"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func TestCreateAllocatesAreas(t *testing.T) {
	ctx := context.Background()
	store := workspace.NewMemoryStore()
	mgr := workspace.NewManager(store, discardLogger())

	ws, err := mgr.Create(ctx)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	created, ok := workspace.ParseID(ws.ID)
	if !ok {
		t.Fatalf("id %q is not a timestamp", ws.ID)
	}
	if !created.Equal(ws.CreatedAt) {
		t.Errorf("id time = %v, want %v", created, ws.CreatedAt)
	}

	for _, area := range []string{workspace.AreaPages, workspace.AreaGroups} {
		if _, err := ws.Write(ctx, area, "probe.pdf", strings.NewReader("x")); err != nil {
			t.Errorf("write to %s area: %v", area, err)
		}
	}
}

func TestCreateResolvesIDCollision(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	mgr := workspace.NewManager(workspace.NewMemoryStore(), discardLogger(), workspace.WithClock(c.now))

	first, err := mgr.Create(ctx)
	if err != nil {
		t.Fatalf("first Create() error = %v", err)
	}
	second, err := mgr.Create(ctx)
	if err != nil {
		t.Fatalf("second Create() error = %v", err)
	}

	if first.ID == second.ID {
		t.Fatalf("ids collide: %s", first.ID)
	}
	if !second.CreatedAt.After(first.CreatedAt) {
		t.Errorf("second id %s should be later than %s", second.ID, first.ID)
	}
}

type failingStore struct {
	workspace.Store
	err error
}

func (f failingStore) Init(context.Context, string) error { return f.err }

func TestCreateAllocationError(t *testing.T) {
	store := failingStore{Store: workspace.NewMemoryStore(), err: errors.New("disk full")}
	mgr := workspace.NewManager(store, discardLogger())

	_, err := mgr.Create(context.Background())
	if !errors.Is(err, workspace.ErrAllocation) {
		t.Fatalf("Create() error = %v, want ErrAllocation", err)
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := workspace.NewMemoryStore()
	mgr := workspace.NewManager(store, discardLogger())

	ws, err := mgr.Create(ctx)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := mgr.Destroy(ctx, ws.ID); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if err := mgr.Destroy(ctx, ws.ID); err != nil {
		t.Fatalf("second Destroy() error = %v", err)
	}

	ids, _ := store.List(ctx)
	if slices.Contains(ids, ws.ID) {
		t.Error("workspace still listed after Destroy")
	}
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := &clock{}
	store := workspace.NewMemoryStore()
	mgr := workspace.NewManager(store, discardLogger(), workspace.WithClock(c.now))

	c.t = now.Add(-2 * time.Hour)
	old, err := mgr.Create(ctx)
	if err != nil {
		t.Fatalf("Create() old error = %v", err)
	}

	c.t = now.Add(-5 * time.Minute)
	recent, err := mgr.Create(ctx)
	if err != nil {
		t.Fatalf("Create() recent error = %v", err)
	}

	if err := store.Init(ctx, "lost+found"); err != nil {
		t.Fatalf("Init() stray entry error = %v", err)
	}

	c.t = now
	reclaimed, err := mgr.SweepExpired(ctx, time.Hour)
	if err != nil {
		t.Fatalf("SweepExpired() error = %v", err)
	}
	if reclaimed != 1 {
		t.Errorf("reclaimed = %d, want 1", reclaimed)
	}

	ids, _ := store.List(ctx)
	if slices.Contains(ids, old.ID) {
		t.Error("2h-old workspace should be removed")
	}
	if !slices.Contains(ids, recent.ID) {
		t.Error("5m-old workspace should remain")
	}
	if !slices.Contains(ids, "lost+found") {
		t.Error("non-conforming entry should be skipped, not removed")
	}
}

func TestClearPages(t *testing.T) {
	ctx := context.Background()
	mgr := workspace.NewManager(workspace.NewMemoryStore(), discardLogger())

	ws, err := mgr.Create(ctx)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	ws.Write(ctx, workspace.AreaPages, "page-0001.pdf", strings.NewReader("p"))
	ws.Write(ctx, workspace.AreaGroups, "Invoices_1_1.pdf", strings.NewReader("g"))

	if err := mgr.ClearPages(ctx, ws.ID); err != nil {
		t.Fatalf("ClearPages() error = %v", err)
	}

	if _, err := ws.Open(ctx, workspace.AreaPages, "page-0001.pdf"); !errors.Is(err, workspace.ErrNotFound) {
		t.Errorf("page artifact still readable: %v", err)
	}
	if _, err := ws.Open(ctx, workspace.AreaGroups, "Invoices_1_1.pdf"); err != nil {
		t.Errorf("group artifact should survive: %v", err)
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		id     string
		wantOK bool
	}{
		{"1700000000000000000", true},
		{"0", true},
		{"", false},
		{"-5", false},
		{"+5", false},
		{"tmp-123", false},
		{"99999999999999999999999", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if _, ok := workspace.ParseID(tt.id); ok != tt.wantOK {
				t.Errorf("ParseID(%q) ok = %v, want %v", tt.id, ok, tt.wantOK)
			}
		})
	}
}

func TestFindArtifact(t *testing.T) {
	ctx := context.Background()
	mgr := workspace.NewManager(workspace.NewMemoryStore(), discardLogger())

	ws, err := mgr.Create(ctx)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	path, err := ws.Write(ctx, workspace.AreaGroups, "Contracts_1_2.pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	t.Run("finds produced artifact", func(t *testing.T) {
		a, err := mgr.FindArtifact(ctx, "Contracts_1_2.pdf")
		if err != nil {
			t.Fatalf("FindArtifact() error = %v", err)
		}
		if a.Path != path || a.WorkspaceID != ws.ID {
			t.Errorf("artifact = %+v, want path %s in %s", a, path, ws.ID)
		}
	})

	t.Run("never produced", func(t *testing.T) {
		if _, err := mgr.FindArtifact(ctx, "Missing_9_9.pdf"); !errors.Is(err, workspace.ErrArtifactNotFound) {
			t.Errorf("FindArtifact() error = %v, want ErrArtifactNotFound", err)
		}
	})

	t.Run("page artifacts are not downloadable", func(t *testing.T) {
		ws.Write(ctx, workspace.AreaPages, "page-0001.pdf", strings.NewReader("p"))
		if _, err := mgr.FindArtifact(ctx, "page-0001.pdf"); !errors.Is(err, workspace.ErrArtifactNotFound) {
			t.Errorf("FindArtifact() error = %v, want ErrArtifactNotFound", err)
		}
	})

	t.Run("path traversal", func(t *testing.T) {
		for _, name := range []string{"../groups/x.pdf", "a/b.pdf", ".."} {
			if _, err := mgr.FindArtifact(ctx, name); !errors.Is(err, workspace.ErrArtifactNotFound) {
				t.Errorf("FindArtifact(%q) error = %v, want ErrArtifactNotFound", name, err)
			}
		}
	})

	t.Run("open streams content", func(t *testing.T) {
		rc, _, err := mgr.OpenArtifact(ctx, "Contracts_1_2.pdf")
		if err != nil {
			t.Fatalf("OpenArtifact() error = %v", err)
		}
		defer rc.Close()
		data, _ := io.ReadAll(rc)
		if string(data) != "%PDF" {
			t.Errorf("content = %q, want %%PDF", data)
		}
	})
}
