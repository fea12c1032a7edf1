// Package infrastructure assembles the shared systems every domain module
// depends on: lifecycle coordination, logging, the run ledger database, the
// workspace store, and the pipeline collaborators.
package infrastructure

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/folio/internal/config"
	"github.com/JaimeStill/folio/internal/metrics"
	"github.com/JaimeStill/folio/internal/workflow"
	"github.com/JaimeStill/folio/pkg/database"
	"github.com/JaimeStill/folio/pkg/lifecycle"
	"github.com/JaimeStill/folio/pkg/ocr"
	"github.com/JaimeStill/folio/pkg/resilience"
	"github.com/JaimeStill/folio/pkg/storage"
	"github.com/JaimeStill/folio/pkg/workspace"
)

// Infrastructure holds the core systems required by all domain modules.
type Infrastructure struct {
	Agent      gaconfig.AgentConfig
	Lifecycle  *lifecycle.Coordinator
	Logger     *slog.Logger
	Database   database.System
	Workspaces *workspace.Manager
	Extractor  workflow.Extractor
	Classifier workflow.Classifier
	Metrics    *metrics.Pipeline

	blob storage.System
}

// New creates an Infrastructure from the application configuration, logging
// to stderr. Systems are created but not started; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is New with the log destination supplied by the caller.
func NewWithWriter(cfg *config.Config, w io.Writer) (*Infrastructure, error) {
	lc := lifecycle.New()

	logger := cfg.Logging.NewLogger(w)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, blob, err := newStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("workspace store init failed: %w", err)
	}

	extractor, err := ocr.New(&cfg.OCR, resilience.NewExecutor(cfg.OCR.Resilience, logger), logger, nil)
	if err != nil {
		return nil, fmt.Errorf("ocr init failed: %w", err)
	}

	return &Infrastructure{
		Agent:      cfg.Agent,
		Lifecycle:  lc,
		Logger:     logger,
		Database:   db,
		Workspaces: workspace.NewManager(store, logger),
		Extractor:  extractor,
		Classifier: workflow.NewAgentClassifier(cfg.Agent, resilience.NewExecutor(cfg.Classifier.Resilience, logger)),
		Metrics:    metrics.New(),
		blob:       blob,
	}, nil
}

// newStore selects the workspace backend. The blob system is returned
// separately so Start can register its container initialization; it is nil
// for the local backends.
func newStore(cfg *config.Config, logger *slog.Logger) (workspace.Store, storage.System, error) {
	switch cfg.Workspace.Backend {
	case config.BackendMemory:
		logger.Warn("using in-memory workspace store; artifacts do not survive restarts")
		return workspace.NewMemoryStore(), nil, nil
	case config.BackendAzure:
		blob, err := storage.New(&cfg.Storage, logger)
		if err != nil {
			return nil, nil, err
		}
		return blob, blob, nil
	default:
		store, err := workspace.NewFileStore(cfg.Workspace.Root)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}
}

// Start registers infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if i.blob != nil {
		if err := i.blob.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}
	return nil
}
