package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/JaimeStill/folio/internal/config"
	"github.com/JaimeStill/folio/internal/infrastructure"
	"github.com/JaimeStill/folio/pkg/database"
	"github.com/JaimeStill/folio/pkg/ocr"
)

func newTestRouter(t *testing.T) http.Handler {
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

	modules, err := NewModules(infra, cfg)
	if err != nil {
		t.Fatalf("NewModules() error = %v", err)
	}

	router := buildRouter(infra, cfg, modules)
	modules.Mount(router)
	return router
}

func TestServiceEndpoints(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		path   string
		status int
		key    string
		want   string
	}{
		{"/healthz", http.StatusOK, "status", "ok"},
		{"/readyz", http.StatusServiceUnavailable, "status", "not ready"},
		{"/", http.StatusOK, "service", "folio"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type = %q, want application/json", ct)
			}

			var body map[string]any
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body[tt.key] != tt.want {
				t.Errorf("%s = %v, want %s", tt.key, body[tt.key], tt.want)
			}
		})
	}
}

func TestIndexListsEndpoints(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var index serviceIndex
	if err := json.NewDecoder(rec.Body).Decode(&index); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, want := range []string{"GET /metrics", "POST /api/segmentation", "GET /api/runs/{id}"} {
		if !slices.Contains(index.Endpoints, want) {
			t.Errorf("endpoints %v missing %q", index.Endpoints, want)
		}
	}
}
