// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/folio/internal/config"
	"github.com/JaimeStill/folio/internal/infrastructure"
	"github.com/JaimeStill/folio/pkg/middleware"
	"github.com/JaimeStill/folio/pkg/module"
	"github.com/JaimeStill/folio/pkg/routes"
)

// Module is the mounted API together with the route groups it serves.
type Module struct {
	*module.Module
	Groups []routes.Group
}

// Endpoints lists every API route as "METHOD /path".
func (m *Module) Endpoints() []string {
	return routes.Describe(m.Prefix(), m.Groups...)
}

// NewModule creates the API module with all domain handlers and middleware,
// and schedules the domain's background work on the lifecycle coordinator.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(cfg, runtime)

	if err := domain.Segmentation.Start(infra.Lifecycle); err != nil {
		return nil, fmt.Errorf("segmentation start failed: %w", err)
	}

	mux := http.NewServeMux()
	groups := registerRoutes(mux, runtime, domain, cfg)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return &Module{Module: m, Groups: groups}, nil
}
