package workflow

import (
	"fmt"
	"strings"
)

// Repair enforces the coverage invariant on a classifier response: every
// page 1..total appears in exactly one group. Out-of-range page numbers are
// dropped, the first group to claim a page keeps it, groups left empty are
// removed, unnamed groups get a positional name, and pages no group claimed
// are appended in ascending order as an Unclassified group. Each correction
// is described in the returned notes. Listed page order is preserved.
func Repair(groups []GroupSpec, total int) ([]GroupSpec, []string) {
	var (
		out   []GroupSpec
		notes []string
	)

	claimed := make([]bool, total+1)

	for i, g := range groups {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			name = fmt.Sprintf("Group %d", i+1)
			notes = append(notes, fmt.Sprintf("group %d had no name and was named %q", i+1, name))
		}

		var pages []int
		for _, p := range g.Pages {
			switch {
			case p < 1 || p > total:
				notes = append(notes, fmt.Sprintf("dropped page %d from %q: the document has %d pages", p, name, total))
			case claimed[p]:
				notes = append(notes, fmt.Sprintf("dropped page %d from %q: already assigned to an earlier group", p, name))
			default:
				claimed[p] = true
				pages = append(pages, p)
			}
		}

		if len(pages) == 0 {
			notes = append(notes, fmt.Sprintf("removed group %q: no valid pages", name))
			continue
		}

		out = append(out, GroupSpec{
			Name:        name,
			Description: strings.TrimSpace(g.Description),
			Pages:       pages,
		})
	}

	var missing []int
	for p := 1; p <= total; p++ {
		if !claimed[p] {
			missing = append(missing, p)
		}
	}

	if len(missing) > 0 {
		out = append(out, GroupSpec{
			Name:        UnclassifiedGroupName,
			Description: "Pages the classifier did not assign to any group.",
			Pages:       missing,
		})
		notes = append(notes, fmt.Sprintf("pages %v were not assigned and were added to %q", missing, UnclassifiedGroupName))
	}

	return out, notes
}
