package activities

import (
	"context"
	"fmt"

	"github.com/validately/orchestrator/internal/journey"
)

// SaveJourneyInput wraps the snapshot to persist.
type SaveJourneyInput struct {
	Snapshot journey.Snapshot `json:"snapshot"`
}

// SaveJourney persists the full snapshot in one atomic upsert. The workflow
// calls it after every state merge so a restart resumes from the last
// committed phase.
func (a *Activities) SaveJourney(ctx context.Context, input SaveJourneyInput) error {
	if err := a.store.Save(ctx, input.Snapshot); err != nil {
		return fmt.Errorf("save journey: %w", err)
	}
	a.metrics.PhaseTransition(string(input.Snapshot.Tier), string(input.Snapshot.Phase))
	return nil
}
