package runs

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/JaimeStill/folio/pkg/query"
	"github.com/JaimeStill/folio/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "runs", "r").
	Project("id", "ID").
	Project("workspace_id", "WorkspaceID").
	Project("filename", "Filename").
	Project("total_pages", "TotalPages").
	Project("group_count", "GroupCount").
	Project("success", "Success").
	Project("fallback", "Fallback").
	Project("message", "Message").
	Project("manifest", "Manifest").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters narrows a run listing. Nil fields are ignored; Filename matches
// case-insensitively as a substring.
type Filters struct {
	Success  *bool             `json:"success,omitempty"`
	Fallback *bool             `json:"fallback,omitempty"`
	Filename *string           `json:"filename,omitempty"`
	Sort     []query.SortField `json:"-"`
}

// Apply adds the filter conditions and sort to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	b.
		WhereEquals("Success", f.Success).
		WhereEquals("Fallback", f.Fallback).
		WhereContains("Filename", f.Filename)

	if len(f.Sort) > 0 {
		b.OrderByFields(f.Sort)
	}
	return b
}

// FiltersFromQuery reads success, fallback, filename, and sort query
// parameters. Unparseable booleans are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("success"); s != "" {
		if v, err := strconv.ParseBool(s); err == nil {
			f.Success = &v
		}
	}

	if s := values.Get("fallback"); s != "" {
		if v, err := strconv.ParseBool(s); err == nil {
			f.Fallback = &v
		}
	}

	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	f.Sort = query.ParseSortFields(values.Get("sort"))
	return f
}

func scanRun(s repository.Scanner) (Run, error) {
	var r Run
	var manifest []byte
	err := s.Scan(
		&r.ID,
		&r.WorkspaceID,
		&r.Filename,
		&r.TotalPages,
		&r.GroupCount,
		&r.Success,
		&r.Fallback,
		&r.Message,
		&manifest,
		&r.CreatedAt,
	)
	r.Manifest = json.RawMessage(manifest)
	return r, err
}
