package workflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/folio/pkg/workspace"
)

const maxBaseName = 64

var unsafeRun = regexp.MustCompile(`[^A-Za-z0-9]+`)

// FileName builds a filesystem-safe output name from a group name, the run's
// workspace id, and the group's 1-based position.
func FileName(groupName, workspaceID string, index int) string {
	base := strings.Trim(unsafeRun.ReplaceAllString(groupName, "_"), "_")
	if len(base) > maxBaseName {
		base = strings.TrimRight(base[:maxBaseName], "_")
	}
	if base == "" {
		base = "document"
	}
	return fmt.Sprintf("%s_%s_%d.pdf", base, workspaceID, index)
}

// materialize writes one output document per group spec into the
// workspace groups area. A group that fails is skipped and its pages are
// reported as missing; the run fails only if no group succeeds.
func materialize(ctx context.Context, rt *Runtime, rs *RunState) error {
	total := len(rs.Pages)

	for i, spec := range rs.Specs {
		group, err := materializeGroup(ctx, rs, spec, i+1)
		if err != nil {
			err = fmt.Errorf("%w: %q: %w", ErrMaterializeFailed, spec.Name, err)
			rs.MissingPages = append(rs.MissingPages, validPages(spec.Pages, total)...)
			rs.warn("group %q was skipped and its pages are missing: %v", spec.Name, err)
			rt.Logger.WarnContext(ctx, "group skipped", "group", spec.Name, "error", err)
			continue
		}
		rs.Groups = append(rs.Groups, group)
	}

	slices.Sort(rs.MissingPages)

	if len(rs.Groups) == 0 {
		return ErrNothingMaterialized
	}

	rt.Logger.InfoContext(
		ctx, "materialize node complete",
		"groups", len(rs.Groups),
		"skipped", len(rs.Specs)-len(rs.Groups),
	)
	return nil
}

func materializeGroup(ctx context.Context, rs *RunState, spec GroupSpec, index int) (Group, error) {
	pages := validPages(spec.Pages, len(rs.Pages))
	if len(pages) == 0 {
		return Group{}, errors.New("no valid pages")
	}

	selected := make([]string, len(pages))
	for i, p := range pages {
		selected[i] = strconv.Itoa(p)
	}

	var buf bytes.Buffer
	if err := api.Collect(bytes.NewReader(rs.Source), &buf, selected, pdfConfig()); err != nil {
		return Group{}, fmt.Errorf("assemble pages: %w", err)
	}

	name := FileName(spec.Name, rs.WorkspaceID, index)
	path, err := rs.ws.Write(ctx, workspace.AreaGroups, name, &buf)
	if err != nil {
		return Group{}, fmt.Errorf("store output: %w", err)
	}

	return Group{
		Name:        spec.Name,
		Description: spec.Description,
		Pages:       pages,
		FileName:    name,
		Path:        path,
	}, nil
}

// validPages keeps page numbers in [1, total], in listed order.
func validPages(pages []int, total int) []int {
	out := make([]int, 0, len(pages))
	for _, p := range pages {
		if p >= 1 && p <= total {
			out = append(out, p)
		}
	}
	return out
}
