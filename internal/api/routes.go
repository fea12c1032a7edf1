package api

import (
	"net/http"

	"github.com/JaimeStill/folio/internal/config"
	"github.com/JaimeStill/folio/internal/prompts"
	"github.com/JaimeStill/folio/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, runtime *Runtime, domain *Domain, cfg *config.Config) []routes.Group {
	groups := []routes.Group{
		domain.Segmentation.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Runs.Handler().Routes(),
		prompts.NewHandler(runtime.Logger).Routes(),
	}

	routes.Register(mux, groups...)
	return groups
}
