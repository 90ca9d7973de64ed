// Package activities implements the Temporal activities behind the
// validation journey: interviewing, research, scoring, report generation,
// consistency repair, and persistence. Activities hold all I/O; workflows
// stay deterministic.
package activities

import (
	"go.uber.org/zap"

	"github.com/validately/orchestrator/internal/assess"
	"github.com/validately/orchestrator/internal/config"
	"github.com/validately/orchestrator/internal/journey"
	"github.com/validately/orchestrator/internal/metrics"
	"github.com/validately/orchestrator/internal/research"
)

// Activities holds dependencies shared by all activity implementations.
type Activities struct {
	assess   assess.Client
	research *research.Coordinator
	store    *journey.Store
	cache    *journey.Cache
	cfg      *config.Store
	metrics  metrics.Sink
	logger   *zap.Logger
}

// NewActivities creates an activities instance with dependencies.
func NewActivities(
	assessClient assess.Client,
	coordinator *research.Coordinator,
	store *journey.Store,
	cache *journey.Cache,
	cfg *config.Store,
	sink metrics.Sink,
	logger *zap.Logger,
) *Activities {
	return &Activities{
		assess:   assessClient,
		research: coordinator,
		store:    store,
		cache:    cache,
		cfg:      cfg,
		metrics:  sink,
		logger:   logger,
	}
}
