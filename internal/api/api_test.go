package api_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/JaimeStill/folio/internal/api"
	"github.com/JaimeStill/folio/internal/config"
	"github.com/JaimeStill/folio/internal/infrastructure"
	"github.com/JaimeStill/folio/pkg/database"
	"github.com/JaimeStill/folio/pkg/module"
	"github.com/JaimeStill/folio/pkg/ocr"
)

func newModule(t *testing.T) *api.Module {
	t.Helper()
	cfg := &config.Config{
		Database: database.Config{Name: "folio", User: "folio"},
		OCR:      ocr.Config{Endpoint: "https://ocr.example.cognitiveservices.azure.com", Key: "secret"},
		Workspace: config.WorkspaceConfig{
			Backend: config.BackendMemory,
			Root:    filepath.Join(t.TempDir(), "workspaces"),
		},
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	infra, err := infrastructure.NewWithWriter(cfg, io.Discard)
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	t.Cleanup(func() { infra.Lifecycle.Shutdown(5 * time.Second) })

	m, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}
	return m
}

func TestEndpoints(t *testing.T) {
	got := newModule(t).Endpoints()
	want := []string{
		"POST /api/segmentation",
		"GET /api/segmentation/artifacts/{name}",
		"POST /api/segmentation/sweep",
		"GET /api/runs",
		"GET /api/runs/{id}",
		"GET /api/prompts",
		"GET /api/prompts/{part}",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Endpoints() = %v, want %v", got, want)
	}
}

func TestModuleServesRoutes(t *testing.T) {
	router := module.NewRouter()
	router.Mount(newModule(t).Module)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/prompts/spec", http.StatusOK},
		{http.MethodPost, "/api/segmentation", http.StatusBadRequest},
		{http.MethodGet, "/api/segmentation/artifacts/Nothing_1_1.pdf", http.StatusNotFound},
		{http.MethodGet, "/api/runs/not-a-uuid", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}
