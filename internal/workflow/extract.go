package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/folio/pkg/ocr"
	"github.com/JaimeStill/folio/pkg/workspace"
)

// extract fills in the text of every page with bounded concurrency. A page
// whose extraction fails or times out keeps empty text and is recorded in
// ExtractionFailures; it never aborts the run.
func extract(ctx context.Context, rt *Runtime, rs *RunState) error {
	failures := make([]error, len(rs.Pages))

	runCtx, cancel := rs.bounded(ctx)
	defer cancel()

	var g errgroup.Group
	g.SetLimit(rt.extractConcurrency(len(rs.Pages)))

	for i := range rs.Pages {
		g.Go(func() error {
			text, err := extractPage(runCtx, rt, rs.ws, rs.Pages[i].Number)
			if err != nil {
				failures[i] = err
				return nil
			}
			rs.Pages[i].Text = text
			return nil
		})
	}
	g.Wait()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		rs.warn("run deadline of %s reached during extraction; remaining pages have no text", rt.Settings.RunTimeout)
		rt.Logger.WarnContext(ctx, "run deadline reached during extraction", "run_timeout", rt.Settings.RunTimeout)
	}

	for i, err := range failures {
		if err == nil {
			continue
		}
		number := rs.Pages[i].Number
		rs.ExtractionFailures = append(rs.ExtractionFailures, number)
		rs.warn("page %d has no text: %v", number, err)
		rt.Logger.WarnContext(ctx, "page extraction failed", "page", number, "error", err)
	}

	rt.Logger.InfoContext(
		ctx, "extract node complete",
		"page_count", len(rs.Pages),
		"failures", len(rs.ExtractionFailures),
	)
	return nil
}

func extractPage(ctx context.Context, rt *Runtime, ws *workspace.Workspace, number int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", extractionError(err)
	}

	rc, err := ws.Open(ctx, workspace.AreaPages, PageName(number))
	if err != nil {
		return "", fmt.Errorf("%w: read page: %w", ErrExtractionFailed, err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return "", fmt.Errorf("%w: read page: %w", ErrExtractionFailed, err)
	}

	pageCtx := ctx
	if rt.Settings.ExtractTimeout > 0 {
		var cancel context.CancelFunc
		pageCtx, cancel = context.WithTimeout(ctx, rt.Settings.ExtractTimeout)
		defer cancel()
	}

	text, err := rt.Extractor.ExtractText(pageCtx, data)
	if err != nil {
		return "", extractionError(err)
	}
	return text, nil
}

func extractionError(err error) error {
	if errors.Is(err, ocr.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrExtractionTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrExtractionFailed, err)
}
