package workflow

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/folio/pkg/workspace"
)

// PageName returns the pages-area object name for a 1-based page number.
func PageName(number int) string {
	return fmt.Sprintf("page-%04d.pdf", number)
}

// segment splits the source into single-page documents stored in the
// workspace pages area. Any failure aborts the run.
func segment(ctx context.Context, rt *Runtime, rs *RunState) error {
	count, err := api.PageCount(bytes.NewReader(rs.Source), pdfConfig())
	if err != nil {
		return fmt.Errorf("%w: read document: %w", ErrSegmentationFailed, err)
	}
	if count < 1 {
		return fmt.Errorf("%w: document has no pages", ErrSegmentationFailed)
	}

	pages := make([]Page, count)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(count))

	for i := range count {
		number := i + 1

		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			var buf bytes.Buffer
			selected := []string{strconv.Itoa(number)}
			if err := api.Trim(bytes.NewReader(rs.Source), &buf, selected, pdfConfig()); err != nil {
				return fmt.Errorf("copy page %d: %w", number, err)
			}

			path, err := rs.ws.Write(gctx, workspace.AreaPages, PageName(number), &buf)
			if err != nil {
				return fmt.Errorf("store page %d: %w", number, err)
			}

			pages[i] = Page{Number: number, Path: path}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %w", ErrSegmentationFailed, err)
	}

	rs.Pages = pages

	rt.Logger.InfoContext(
		ctx, "segment node complete",
		"workspace_id", rs.WorkspaceID,
		"page_count", count,
	)
	return nil
}
