package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/JaimeStill/folio/pkg/workspace"
)

// KeyRun is the state bag key holding the RunState.
const KeyRun = "run"

// FallbackGroupName names the single group produced when classification fails.
const FallbackGroupName = "Full Document (classification unavailable)"

// UnclassifiedGroupName names the repair group holding pages the classifier omitted.
const UnclassifiedGroupName = "Unclassified"

// Input is one document submitted for segmentation.
type Input struct {
	RunID    string
	Filename string
	Data     []byte
}

// Page is a single-page artifact. Number is the only addressing scheme used
// downstream; Path is informational.
type Page struct {
	Number int
	Text   string
	Path   string
}

// GroupSpec is a named, ordered set of page numbers proposed for one output document.
type GroupSpec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Pages       []int  `json:"pages"`
}

// Group is a materialized GroupSpec.
type Group struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Pages       []int  `json:"pages"`
	FileName    string `json:"file_name"`
	Path        string `json:"-"`
}

// RunState is the data carried between graph nodes.
type RunState struct {
	RunID              string
	WorkspaceID        string
	Filename           string
	Source             []byte
	Pages              []Page
	Specs              []GroupSpec
	Groups             []Group
	Fallback           bool
	MissingPages       []int
	ExtractionFailures []int
	Warnings           []string

	ws       *workspace.Workspace
	deadline time.Time
}

// TotalPages returns the page count of the source document.
func (s *RunState) TotalPages() int {
	return len(s.Pages)
}

// bounded derives a context that expires at the run deadline, if one is set.
func (s *RunState) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.deadline.IsZero() {
		return context.WithCancel(ctx)
	}
	return context.WithDeadline(ctx, s.deadline)
}

func (s *RunState) warn(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// Manifest is the caller-visible outcome of a run. Every absorbed
// degradation appears in Fallback, MissingPages, ExtractionFailures, or
// Warnings.
type Manifest struct {
	Success            bool      `json:"success"`
	TotalPages         int       `json:"total_pages"`
	Groups             []Group   `json:"groups"`
	Message            string    `json:"message"`
	RunID              string    `json:"run_id"`
	WorkspaceID        string    `json:"workspace_id,omitempty"`
	Filename           string    `json:"filename"`
	Fallback           bool      `json:"fallback"`
	MissingPages       []int     `json:"missing_pages"`
	ExtractionFailures []int     `json:"extraction_failures"`
	Warnings           []string  `json:"warnings"`
	CompletedAt        time.Time `json:"completed_at"`
}

// FailureManifest describes a run that ended with a fatal error.
func FailureManifest(in Input, err error) *Manifest {
	return &Manifest{
		Success:            false,
		Groups:             []Group{},
		Message:            err.Error(),
		RunID:              in.RunID,
		Filename:           in.Filename,
		MissingPages:       []int{},
		ExtractionFailures: []int{},
		Warnings:           []string{},
		CompletedAt:        time.Now().UTC(),
	}
}

func buildManifest(s RunState) *Manifest {
	m := &Manifest{
		Success:            true,
		TotalPages:         s.TotalPages(),
		Groups:             orEmpty(s.Groups),
		RunID:              s.RunID,
		WorkspaceID:        s.WorkspaceID,
		Filename:           s.Filename,
		Fallback:           s.Fallback,
		MissingPages:       orEmpty(s.MissingPages),
		ExtractionFailures: orEmpty(s.ExtractionFailures),
		Warnings:           orEmpty(s.Warnings),
		CompletedAt:        time.Now().UTC(),
	}

	switch {
	case len(m.Warnings) > 0:
		m.Message = fmt.Sprintf("split %d pages into %d documents with %d warnings", m.TotalPages, len(m.Groups), len(m.Warnings))
	default:
		m.Message = fmt.Sprintf("split %d pages into %d documents", m.TotalPages, len(m.Groups))
	}
	return m
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
