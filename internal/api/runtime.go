package api

import (
	"github.com/JaimeStill/folio/internal/config"
	"github.com/JaimeStill/folio/internal/infrastructure"
	"github.com/JaimeStill/folio/internal/workflow"
	"github.com/JaimeStill/folio/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Pipeline   *workflow.Runtime
}

// NewRuntime creates an API runtime with a module-scoped logger and the
// pipeline runtime built from the pipeline settings.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &scoped,
		Pagination:     cfg.API.Pagination,
		Pipeline: &workflow.Runtime{
			Workspaces: infra.Workspaces,
			Extractor:  infra.Extractor,
			Classifier: infra.Classifier,
			Settings: workflow.Settings{
				ExtractConcurrency: cfg.Pipeline.ExtractConcurrency,
				ExtractTimeout:     cfg.Pipeline.ExtractTimeoutDuration(),
				ExcerptLength:      cfg.Pipeline.ExcerptLength,
				RunTimeout:         cfg.Pipeline.RunTimeoutDuration(),
			},
			Logger: scoped.Logger.With("system", "workflow"),
		},
	}
}
