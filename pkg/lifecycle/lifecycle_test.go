package lifecycle_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/folio/pkg/lifecycle"
)

type flag struct{ ok atomic.Bool }

func (f *flag) Ready() bool { return f.ok.Load() }

func TestReadiness(t *testing.T) {
	lc := lifecycle.New()
	if lc.Ready() {
		t.Error("should not be ready before WaitForStartup")
	}

	lc.WaitForStartup()
	if !lc.Ready() {
		t.Error("should be ready after WaitForStartup")
	}
}

func TestRegisteredChecksGateReadiness(t *testing.T) {
	lc := lifecycle.New()
	db := &flag{}
	lc.RegisterCheck("database", db)
	lc.WaitForStartup()

	if lc.Ready() {
		t.Error("should not be ready while a check fails")
	}
	if status := lc.Checks(); status["database"] {
		t.Errorf("checks = %v, want database=false", status)
	}

	db.ok.Store(true)
	if !lc.Ready() {
		t.Error("should be ready once every check passes")
	}
}

func TestStartupHooksExecute(t *testing.T) {
	lc := lifecycle.New()

	var count atomic.Int32
	for range 3 {
		lc.OnStartup(func() { count.Add(1) })
	}
	lc.WaitForStartup()

	if got := count.Load(); got != 3 {
		t.Errorf("startup hooks = %d, want 3", got)
	}
}

func TestShutdownHooksExecute(t *testing.T) {
	lc := lifecycle.New()

	var cleaned atomic.Bool
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		cleaned.Store(true)
	})
	lc.WaitForStartup()

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !cleaned.Load() {
		t.Error("shutdown hook did not execute")
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()

	release := make(chan struct{})
	defer close(release)
	lc.OnShutdown(func() { <-release })

	if err := lc.Shutdown(10 * time.Millisecond); err == nil {
		t.Error("expected shutdown timeout error")
	}
}
