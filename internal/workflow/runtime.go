package workflow

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/JaimeStill/folio/pkg/workspace"
)

// Extractor returns the text recognized on a single-page PDF.
type Extractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// Classifier sends a grouping prompt and returns the raw model response.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

// Settings bounds the per-run work of the pipeline. RunTimeout caps the
// collaborator stages of a run: once it passes, pages not yet extracted keep
// empty text and classification falls back. It must stay below the workspace
// max age so a sweep never reclaims a workspace with a run in flight.
type Settings struct {
	ExtractConcurrency int
	ExtractTimeout     time.Duration
	ExcerptLength      int
	RunTimeout         time.Duration
}

// Runtime bundles the dependencies that workflow nodes require.
// It is constructed by higher-level composition code from Infrastructure and Domain systems.
type Runtime struct {
	Workspaces *workspace.Manager
	Extractor  Extractor
	Classifier Classifier
	Settings   Settings
	Logger     *slog.Logger
}

func (rt *Runtime) extractConcurrency(pages int) int {
	limit := rt.Settings.ExtractConcurrency
	if limit <= 0 {
		limit = 4
	}
	return max(min(limit, pages), 1)
}

func (rt *Runtime) excerptLength() int {
	if rt.Settings.ExcerptLength <= 0 {
		return 1000
	}
	return rt.Settings.ExcerptLength
}

var defaultPDFConfig = sync.OnceValue(model.NewDefaultConfiguration)

// pdfConfig returns a private copy of the default pdfcpu configuration.
// pdfcpu records the running command on the configuration, so concurrent
// calls must not share one.
func pdfConfig() *model.Configuration {
	c := *defaultPDFConfig()
	return &c
}

func workerCount(pageCount int) int {
	return max(min(runtime.NumCPU(), pageCount), 1)
}
