package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvPipelineExtractConcurrency = "FOLIO_PIPELINE_EXTRACT_CONCURRENCY"
	EnvPipelineExtractTimeout     = "FOLIO_PIPELINE_EXTRACT_TIMEOUT"
	EnvPipelineExcerptLength      = "FOLIO_PIPELINE_EXCERPT_LENGTH"
	EnvPipelineRunTimeout         = "FOLIO_PIPELINE_RUN_TIMEOUT"
)

// PipelineConfig bounds the per-run work of the segmentation pipeline.
type PipelineConfig struct {
	ExtractConcurrency int    `toml:"extract_concurrency"`
	ExtractTimeout     string `toml:"extract_timeout"`
	ExcerptLength      int    `toml:"excerpt_length"`
	RunTimeout         string `toml:"run_timeout"`
}

// ExtractTimeoutDuration returns ExtractTimeout as a time.Duration.
func (c *PipelineConfig) ExtractTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ExtractTimeout)
	return d
}

// RunTimeoutDuration returns RunTimeout as a time.Duration.
func (c *PipelineConfig) RunTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RunTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.ExtractConcurrency != 0 {
		c.ExtractConcurrency = overlay.ExtractConcurrency
	}
	if overlay.ExtractTimeout != "" {
		c.ExtractTimeout = overlay.ExtractTimeout
	}
	if overlay.ExcerptLength != 0 {
		c.ExcerptLength = overlay.ExcerptLength
	}
	if overlay.RunTimeout != "" {
		c.RunTimeout = overlay.RunTimeout
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.ExtractConcurrency <= 0 {
		c.ExtractConcurrency = 4
	}
	if c.ExtractTimeout == "" {
		c.ExtractTimeout = "90s"
	}
	if c.ExcerptLength <= 0 {
		c.ExcerptLength = 1000
	}
	if c.RunTimeout == "" {
		c.RunTimeout = "45m"
	}
}

func (c *PipelineConfig) loadEnv() {
	if v := os.Getenv(EnvPipelineExtractConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ExtractConcurrency = n
		}
	}
	if v := os.Getenv(EnvPipelineExtractTimeout); v != "" {
		c.ExtractTimeout = v
	}
	if v := os.Getenv(EnvPipelineExcerptLength); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ExcerptLength = n
		}
	}
	if v := os.Getenv(EnvPipelineRunTimeout); v != "" {
		c.RunTimeout = v
	}
}

func (c *PipelineConfig) validate() error {
	if c.ExtractConcurrency < 1 {
		return fmt.Errorf("extract_concurrency must be at least 1")
	}
	if c.ExcerptLength < 1 {
		return fmt.Errorf("excerpt_length must be at least 1")
	}
	d, err := time.ParseDuration(c.ExtractTimeout)
	if err != nil {
		return fmt.Errorf("invalid extract_timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("extract_timeout must be positive")
	}
	run, err := time.ParseDuration(c.RunTimeout)
	if err != nil {
		return fmt.Errorf("invalid run_timeout: %w", err)
	}
	if run <= 0 {
		return fmt.Errorf("run_timeout must be positive")
	}
	return nil
}
