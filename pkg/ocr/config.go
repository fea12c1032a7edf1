package ocr

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/JaimeStill/folio/pkg/resilience"
)

// Config holds Azure Document Intelligence connection and polling parameters.
type Config struct {
	Endpoint          string            `toml:"endpoint"`
	Key               string            `toml:"key"`
	Model             string            `toml:"model"`
	APIVersion        string            `toml:"api_version"`
	PollInterval      string            `toml:"poll_interval"`
	Timeout           string            `toml:"timeout"`
	RequestsPerSecond float64           `toml:"requests_per_second"`
	Burst             int               `toml:"burst"`
	Resilience        resilience.Config `toml:"resilience"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Endpoint          string
	Key               string
	Model             string
	APIVersion        string
	PollInterval      string
	Timeout           string
	RequestsPerSecond string
	Resilience        *resilience.Env
}

// PollIntervalDuration returns PollInterval as a time.Duration.
func (c *Config) PollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	var rEnv *resilience.Env
	if env != nil {
		c.loadEnv(env)
		rEnv = env.Resilience
	}
	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Resilience.Finalize(rEnv); err != nil {
		return fmt.Errorf("resilience: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.Key != "" {
		c.Key = overlay.Key
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.APIVersion != "" {
		c.APIVersion = overlay.APIVersion
	}
	if overlay.PollInterval != "" {
		c.PollInterval = overlay.PollInterval
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.RequestsPerSecond != 0 {
		c.RequestsPerSecond = overlay.RequestsPerSecond
	}
	if overlay.Burst != 0 {
		c.Burst = overlay.Burst
	}
	c.Resilience.Merge(&overlay.Resilience)
}

func (c *Config) loadDefaults() {
	if c.Model == "" {
		c.Model = "prebuilt-read"
	}
	if c.APIVersion == "" {
		c.APIVersion = "2024-11-30"
	}
	if c.PollInterval == "" {
		c.PollInterval = "1s"
	}
	if c.Timeout == "" {
		c.Timeout = "60s"
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 5
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	set(env.Endpoint, &c.Endpoint)
	set(env.Key, &c.Key)
	set(env.Model, &c.Model)
	set(env.APIVersion, &c.APIVersion)
	set(env.PollInterval, &c.PollInterval)
	set(env.Timeout, &c.Timeout)

	if env.RequestsPerSecond != "" {
		if v := os.Getenv(env.RequestsPerSecond); v != "" {
			if rps, err := strconv.ParseFloat(v, 64); err == nil && rps > 0 {
				c.RequestsPerSecond = rps
			}
		}
	}
}

func (c *Config) validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint required")
	}
	poll, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return fmt.Errorf("invalid poll_interval: %w", err)
	}
	timeout, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if poll <= 0 || timeout <= poll {
		return fmt.Errorf("timeout (%s) must exceed a positive poll_interval (%s)", c.Timeout, c.PollInterval)
	}
	return nil
}
