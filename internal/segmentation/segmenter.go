package segmentation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/JaimeStill/folio/internal/metrics"
	"github.com/JaimeStill/folio/internal/workflow"
	"github.com/JaimeStill/folio/pkg/lifecycle"
	"github.com/JaimeStill/folio/pkg/workspace"
)

type segmenter struct {
	rt           *workflow.Runtime
	ledger       Ledger
	metrics      *metrics.Pipeline
	housekeeping Housekeeping
	logger       *slog.Logger
}

// New creates the segmentation system. ledger may be nil, in which case runs
// are not recorded.
func New(
	rt *workflow.Runtime,
	ledger Ledger,
	pm *metrics.Pipeline,
	housekeeping Housekeeping,
	logger *slog.Logger,
) System {
	return &segmenter{
		rt:           rt,
		ledger:       ledger,
		metrics:      pm,
		housekeeping: housekeeping,
		logger:       logger.With("system", "segmentation"),
	}
}

func (s *segmenter) Handler(maxUploadSize int64) *Handler {
	return NewHandler(s, s.logger, maxUploadSize)
}

func (s *segmenter) Segment(ctx context.Context, filename string, data []byte) (*workflow.Manifest, error) {
	in := workflow.Input{
		RunID:    uuid.NewString(),
		Filename: filename,
		Data:     data,
	}

	s.logger.InfoContext(ctx, "segmentation started", "run_id", in.RunID, "filename", filename, "size", len(data))

	start := time.Now()
	s.metrics.StartRun()

	m, err := workflow.Execute(ctx, s.rt, in)
	if err != nil {
		s.logger.ErrorContext(ctx, "segmentation failed", "run_id", in.RunID, "error", err)
		m = workflow.FailureManifest(in, err)
	}

	s.metrics.FinishRun(metrics.RunOutcome{
		Duration:           time.Since(start),
		Failed:             err != nil,
		TotalPages:         m.TotalPages,
		Fallback:           m.Fallback,
		ExtractionFailures: len(m.ExtractionFailures),
		MissingPages:       len(m.MissingPages),
	})
	s.record(ctx, m)

	return m, err
}

func (s *segmenter) record(ctx context.Context, m *workflow.Manifest) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.Record(context.WithoutCancel(ctx), m); err != nil {
		s.logger.WarnContext(ctx, "run not recorded", "run_id", m.RunID, "error", err)
	}
}

func (s *segmenter) OpenArtifact(ctx context.Context, name string) (io.ReadCloser, *workspace.Artifact, error) {
	return s.rt.Workspaces.OpenArtifact(ctx, name)
}

func (s *segmenter) Sweep(ctx context.Context, trigger string) (int, error) {
	n, err := s.rt.Workspaces.SweepExpired(ctx, s.housekeeping.MaxAge)
	if n > 0 {
		s.metrics.RecordSweep(trigger, n)
	}
	if err != nil {
		return n, fmt.Errorf("sweep workspaces: %w", err)
	}

	s.logger.InfoContext(ctx, "workspace sweep complete", "trigger", trigger, "reclaimed", n)
	return n, nil
}

func (s *segmenter) Start(lc *lifecycle.Coordinator) error {
	if s.housekeeping.Schedule == "" {
		s.logger.Info("scheduled sweep disabled")
		return nil
	}

	cl := cronLogger{s.logger}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	_, err := c.AddFunc(s.housekeeping.Schedule, func() {
		if _, err := s.Sweep(lc.Context(), TriggerSchedule); err != nil {
			s.logger.Error("scheduled sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule sweep %q: %w", s.housekeeping.Schedule, err)
	}

	lc.OnStartup(func() {
		c.Start()
		s.logger.Info("scheduled sweep started", "schedule", s.housekeeping.Schedule, "max_age", s.housekeeping.MaxAge)
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-c.Stop().Done()
		s.logger.Info("scheduled sweep stopped")
	})

	return nil
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
