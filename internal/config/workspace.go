package config

import (
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
)

// Workspace store backends.
const (
	BackendFS     = "fs"
	BackendMemory = "memory"
	BackendAzure  = "azure"
)

const (
	EnvWorkspaceBackend       = "FOLIO_WORKSPACE_BACKEND"
	EnvWorkspaceRoot          = "FOLIO_WORKSPACE_ROOT"
	EnvWorkspaceMaxAge        = "FOLIO_WORKSPACE_MAX_AGE"
	EnvWorkspaceSweepSchedule = "FOLIO_WORKSPACE_SWEEP_SCHEDULE"
)

// WorkspaceConfig selects the workspace store and the garbage-collection policy.
type WorkspaceConfig struct {
	Backend       string `toml:"backend"`
	Root          string `toml:"root"`
	MaxAge        string `toml:"max_age"`
	SweepSchedule string `toml:"sweep_schedule"`
}

// MaxAgeDuration returns MaxAge as a time.Duration.
func (c *WorkspaceConfig) MaxAgeDuration() time.Duration {
	d, _ := time.ParseDuration(c.MaxAge)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *WorkspaceConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *WorkspaceConfig) Merge(overlay *WorkspaceConfig) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.Root != "" {
		c.Root = overlay.Root
	}
	if overlay.MaxAge != "" {
		c.MaxAge = overlay.MaxAge
	}
	if overlay.SweepSchedule != "" {
		c.SweepSchedule = overlay.SweepSchedule
	}
}

func (c *WorkspaceConfig) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendFS
	}
	if c.Root == "" {
		c.Root = "workspaces"
	}
	if c.MaxAge == "" {
		c.MaxAge = "1h"
	}
	if c.SweepSchedule == "" {
		c.SweepSchedule = "@every 10m"
	}
}

func (c *WorkspaceConfig) loadEnv() {
	if v := os.Getenv(EnvWorkspaceBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvWorkspaceRoot); v != "" {
		c.Root = v
	}
	if v := os.Getenv(EnvWorkspaceMaxAge); v != "" {
		c.MaxAge = v
	}
	if v := os.Getenv(EnvWorkspaceSweepSchedule); v != "" {
		c.SweepSchedule = v
	}
}

func (c *WorkspaceConfig) validate() error {
	switch c.Backend {
	case BackendFS, BackendMemory, BackendAzure:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	age, err := time.ParseDuration(c.MaxAge)
	if err != nil {
		return fmt.Errorf("invalid max_age: %w", err)
	}
	if age <= 0 {
		return fmt.Errorf("max_age must be positive")
	}

	if _, err := cron.ParseStandard(c.SweepSchedule); err != nil {
		return fmt.Errorf("invalid sweep_schedule: %w", err)
	}
	return nil
}
