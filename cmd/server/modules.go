package main

import (
	"net/http"

	"github.com/JaimeStill/folio/internal/api"
	"github.com/JaimeStill/folio/internal/config"
	"github.com/JaimeStill/folio/internal/infrastructure"
	"github.com/JaimeStill/folio/pkg/handlers"
	"github.com/JaimeStill/folio/pkg/module"
)

// Modules holds the modules mounted on the root router.
type Modules struct {
	API *api.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API.Module)
}

type serviceIndex struct {
	Service   string   `json:"service"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

func buildRouter(infra *infrastructure.Infrastructure, cfg *config.Config, modules *Modules) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		checks := infra.Lifecycle.Checks()
		if !infra.Lifecycle.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not ready", "checks": checks})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]any{"status": "ready", "checks": checks})
	})

	router.Handle("GET /metrics", infra.Metrics.Handler())

	index := serviceIndex{
		Service: "folio",
		Version: cfg.Version,
		Endpoints: append(
			[]string{"GET /", "GET /healthz", "GET /readyz", "GET /metrics"},
			modules.API.Endpoints()...,
		),
	}

	router.HandleNative("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, index)
	})

	return router
}
