package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/folio/pkg/formatting"
)

type groupingResponse struct {
	Groups []GroupSpec `json:"groups"`
}

// classify asks the classifier to partition the pages and repairs its
// answer. Any classification failure substitutes a single group covering
// every page in order.
func classify(ctx context.Context, rt *Runtime, rs *RunState) error {
	total := len(rs.Pages)

	runCtx, cancel := rs.bounded(ctx)
	defer cancel()

	groups, err := requestGrouping(runCtx, rt, rs.Pages)
	if err == nil && !claimsAnyPage(groups, total) {
		err = fmt.Errorf("%w: no group lists a page between 1 and %d", ErrClassificationFailed, total)
	}
	if err != nil {
		rs.Specs = FallbackSpecs(total)
		rs.Fallback = true
		rs.warn("classification unavailable, returning the whole document as one group: %v", err)
		rt.Logger.WarnContext(ctx, "classification fallback", "error", err)
	} else {
		specs, repairs := Repair(groups, total)
		for _, r := range repairs {
			rs.warn("%s", r)
		}
		if len(repairs) > 0 {
			rt.Logger.WarnContext(ctx, "classifier response repaired", "repairs", len(repairs))
		}
		rs.Specs = specs
	}

	rt.Logger.InfoContext(
		ctx, "classify node complete",
		"groups", len(rs.Specs),
		"fallback", rs.Fallback,
	)
	return nil
}

func requestGrouping(ctx context.Context, rt *Runtime, pages []Page) ([]GroupSpec, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: not attempted: %w", ErrClassificationFailed, err)
	}

	prompt, err := ComposePrompt(pages, rt.excerptLength())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}

	content, err := rt.Classifier.Classify(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}

	parsed, err := formatting.Parse[groupingResponse](content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}

	if len(parsed.Groups) == 0 {
		return nil, fmt.Errorf("%w: response contains no groups", ErrClassificationFailed)
	}

	return parsed.Groups, nil
}

// claimsAnyPage reports whether at least one group lists an in-range page.
// The first such group always survives Repair, so a false result means the
// response would be reduced to nothing but unassigned pages.
func claimsAnyPage(groups []GroupSpec, total int) bool {
	for _, g := range groups {
		for _, p := range g.Pages {
			if p >= 1 && p <= total {
				return true
			}
		}
	}
	return false
}

// FallbackSpecs returns the single group used when classification fails:
// every page 1..total in order.
func FallbackSpecs(total int) []GroupSpec {
	pages := make([]int, total)
	for i := range pages {
		pages[i] = i + 1
	}
	return []GroupSpec{{
		Name:        FallbackGroupName,
		Description: "The classifier could not group this document, so every page is returned together.",
		Pages:       pages,
	}}
}
