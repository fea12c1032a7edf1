// Package config loads the service configuration from config.toml, an
// optional config.<env>.toml overlay, and FOLIO_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/folio/pkg/database"
	"github.com/JaimeStill/folio/pkg/ocr"
	"github.com/JaimeStill/folio/pkg/resilience"
	"github.com/JaimeStill/folio/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvFolioEnv             = "FOLIO_ENV"
	EnvFolioShutdownTimeout = "FOLIO_SHUTDOWN_TIMEOUT"
	EnvFolioVersion         = "FOLIO_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "FOLIO_DB_HOST",
	Port:            "FOLIO_DB_PORT",
	Name:            "FOLIO_DB_NAME",
	User:            "FOLIO_DB_USER",
	Password:        "FOLIO_DB_PASSWORD",
	SSLMode:         "FOLIO_DB_SSL_MODE",
	MaxOpenConns:    "FOLIO_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "FOLIO_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "FOLIO_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "FOLIO_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "FOLIO_STORAGE_CONTAINER_NAME",
	ConnectionString: "FOLIO_STORAGE_CONNECTION_STRING",
	MaxListSize:      "FOLIO_STORAGE_MAX_LIST_SIZE",
}

var ocrEnv = &ocr.Env{
	Endpoint:          "FOLIO_OCR_ENDPOINT",
	Key:               "FOLIO_OCR_KEY",
	Model:             "FOLIO_OCR_MODEL",
	APIVersion:        "FOLIO_OCR_API_VERSION",
	PollInterval:      "FOLIO_OCR_POLL_INTERVAL",
	Timeout:           "FOLIO_OCR_TIMEOUT",
	RequestsPerSecond: "FOLIO_OCR_REQUESTS_PER_SECOND",
	Resilience: &resilience.Env{
		MaxAttempts:    "FOLIO_OCR_MAX_ATTEMPTS",
		BreakerEnabled: "FOLIO_OCR_BREAKER_ENABLED",
	},
}

// Config is the root configuration for the folio service.
type Config struct {
	Agent           gaconfig.AgentConfig `toml:"agent"`
	Server          ServerConfig         `toml:"server"`
	Database        database.Config      `toml:"database"`
	Storage         storage.Config       `toml:"storage"`
	API             APIConfig            `toml:"api"`
	OCR             ocr.Config           `toml:"ocr"`
	Classifier      ClassifierConfig     `toml:"classifier"`
	Workspace       WorkspaceConfig      `toml:"workspace"`
	Pipeline        PipelineConfig       `toml:"pipeline"`
	Logging         LoggingConfig        `toml:"logging"`
	ShutdownTimeout string               `toml:"shutdown_timeout"`
	Version         string               `toml:"version"`
}

// Env returns the FOLIO_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvFolioEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Agent.Merge(&overlay.Agent)
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.OCR.Merge(&overlay.OCR)
	c.Classifier.Merge(&overlay.Classifier)
	c.Workspace.Merge(&overlay.Workspace)
	c.Pipeline.Merge(&overlay.Pipeline)
	c.Logging.Merge(&overlay.Logging)
}

// Finalize applies defaults, environment overrides, and validation to every
// section. The database and blob storage sections are only finalized when
// a component depends on them: the run ledger needs a database name, and the
// azure workspace backend needs a connection string.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := FinalizeAgent(&c.Agent); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Workspace.Finalize(); err != nil {
		return fmt.Errorf("workspace: %w", err)
	}
	if err := c.Pipeline.Finalize(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if c.Workspace.MaxAgeDuration() <= c.Pipeline.RunTimeoutDuration() {
		return fmt.Errorf(
			"workspace max_age %s must exceed pipeline run_timeout %s",
			c.Workspace.MaxAge, c.Pipeline.RunTimeout,
		)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.OCR.Finalize(ocrEnv); err != nil {
		return fmt.Errorf("ocr: %w", err)
	}
	if err := c.Classifier.Finalize(); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if c.Workspace.Backend == BackendAzure {
		if err := c.Storage.Finalize(storageEnv); err != nil {
			return fmt.Errorf("storage: %w", err)
		}
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvFolioShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvFolioVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvFolioEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
