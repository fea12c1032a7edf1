// Package runs keeps a history of segmentation runs. Each run's manifest is
// stored alongside summary columns for listing and filtering. The ledger is
// never consulted for workspace lookup or expiry.
package runs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Run is one recorded segmentation run.
type Run struct {
	ID          uuid.UUID       `json:"id"`
	WorkspaceID string          `json:"workspace_id"`
	Filename    string          `json:"filename"`
	TotalPages  int             `json:"total_pages"`
	GroupCount  int             `json:"group_count"`
	Success     bool            `json:"success"`
	Fallback    bool            `json:"fallback"`
	Message     string          `json:"message"`
	Manifest    json.RawMessage `json:"manifest"`
	CreatedAt   time.Time       `json:"created_at"`
}
