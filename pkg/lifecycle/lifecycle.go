// Package lifecycle coordinates startup, readiness, and graceful shutdown of
// the service's subsystems.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ReadinessChecker reports whether a subsystem is ready to serve traffic.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator manages startup and shutdown hooks for the application lifecycle.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelFunc
	startupWg  sync.WaitGroup
	shutdownWg sync.WaitGroup
	ready      bool
	readyMu    sync.RWMutex

	checksMu sync.RWMutex
	checks   map[string]ReadinessChecker
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
		checks: make(map[string]ReadinessChecker),
	}
}

// Context returns the coordinator's context, cancelled on shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup registers a function to run concurrently during startup.
func (c *Coordinator) OnStartup(fn func()) {
	c.startupWg.Go(fn)
}

// OnShutdown registers a function to run concurrently during shutdown.
// Shutdown hooks should block on <-c.Context().Done() before executing cleanup.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdownWg.Go(fn)
}

// RegisterCheck adds a named subsystem whose readiness gates Ready.
func (c *Coordinator) RegisterCheck(name string, rc ReadinessChecker) {
	c.checksMu.Lock()
	defer c.checksMu.Unlock()
	c.checks[name] = rc
}

// Ready returns true after all startup hooks have completed and every
// registered check reports ready.
func (c *Coordinator) Ready() bool {
	c.readyMu.RLock()
	ready := c.ready
	c.readyMu.RUnlock()
	if !ready {
		return false
	}

	for _, ok := range c.Checks() {
		if !ok {
			return false
		}
	}
	return true
}

// Checks returns the current readiness of every registered subsystem.
func (c *Coordinator) Checks() map[string]bool {
	c.checksMu.RLock()
	defer c.checksMu.RUnlock()

	status := make(map[string]bool, len(c.checks))
	for name, rc := range c.checks {
		status[name] = rc.Ready()
	}
	return status
}

// WaitForStartup blocks until all startup hooks have completed and sets the ready flag.
func (c *Coordinator) WaitForStartup() {
	c.startupWg.Wait()
	c.readyMu.Lock()
	c.ready = true
	c.readyMu.Unlock()
}

// Shutdown cancels the context and waits for shutdown hooks to complete
// within the given timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdownWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
