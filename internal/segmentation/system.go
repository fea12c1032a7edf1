// Package segmentation exposes the document segmentation pipeline over
// HTTP: upload and split a PDF, download produced artifacts, and reclaim
// expired workspaces on demand or on a schedule.
package segmentation

import (
	"context"
	"io"
	"time"

	"github.com/JaimeStill/folio/internal/workflow"
	"github.com/JaimeStill/folio/pkg/lifecycle"
	"github.com/JaimeStill/folio/pkg/workspace"
)

// Sweep triggers recorded with reclaimed workspace counts.
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)

// System defines the segmentation operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// Segment runs the pipeline over one uploaded document. On a fatal
	// error the returned manifest describes the failure and err is non-nil.
	Segment(ctx context.Context, filename string, data []byte) (*workflow.Manifest, error)

	// OpenArtifact streams a produced output document by file name.
	OpenArtifact(ctx context.Context, name string) (io.ReadCloser, *workspace.Artifact, error)

	// Sweep removes workspaces older than the configured maximum age.
	Sweep(ctx context.Context, trigger string) (int, error)

	// Start schedules the periodic sweep on the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}

// Ledger records finished runs.
type Ledger interface {
	Record(ctx context.Context, m *workflow.Manifest) error
}

// Housekeeping configures workspace expiry.
type Housekeeping struct {
	MaxAge   time.Duration
	Schedule string
}
