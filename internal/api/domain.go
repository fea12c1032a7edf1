package api

import (
	"github.com/JaimeStill/folio/internal/config"
	"github.com/JaimeStill/folio/internal/runs"
	"github.com/JaimeStill/folio/internal/segmentation"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Runs         runs.System
	Segmentation segmentation.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	runsSystem := runs.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	segmentationSystem := segmentation.New(
		runtime.Pipeline,
		runsSystem,
		runtime.Metrics,
		segmentation.Housekeeping{
			MaxAge:   cfg.Workspace.MaxAgeDuration(),
			Schedule: cfg.Workspace.SweepSchedule,
		},
		runtime.Logger,
	)

	return &Domain{
		Runs:         runsSystem,
		Segmentation: segmentationSystem,
	}
}
