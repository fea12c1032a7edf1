package runs

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/folio/internal/workflow"
	"github.com/JaimeStill/folio/pkg/pagination"
)

// System defines the run ledger operations.
type System interface {
	Handler() *Handler

	// Record stores the manifest of a finished run.
	Record(ctx context.Context, m *workflow.Manifest) error

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Run], error)

	Find(ctx context.Context, id uuid.UUID) (*Run, error)
}
