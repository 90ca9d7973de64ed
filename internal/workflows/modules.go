package workflows

import (
	"go.temporal.io/sdk/workflow"

	"github.com/validately/orchestrator/internal/activities"
	"github.com/validately/orchestrator/internal/journey"
)

// runModules generates every selected module concurrently. A failed module
// is logged and omitted from the merged result; siblings are unaffected and
// the batch never aborts.
func runModules(ctx workflow.Context, snap journey.Snapshot) map[string]map[string]any {
	logger := workflow.GetLogger(ctx)
	selected := snap.SelectedModules()

	directive := journey.StrategicDirective{}
	if snap.Directive != nil {
		directive = *snap.Directive
	}

	futures := make([]workflow.Future, len(selected))
	for i, module := range selected {
		futures[i] = workflow.ExecuteActivity(ctx, ActivityGenerateModule, activities.ModuleInput{
			JourneyID:   snap.ID,
			Module:      module,
			Description: snap.Description,
			Context:     snap.Context,
			Directive:   directive,
			Research:    snap.ComprehensiveResearch,
		})
	}

	merged := make(map[string]map[string]any, len(selected))
	for i, future := range futures {
		module := selected[i]
		var result activities.ModuleResult
		if err := future.Get(ctx, &result); err != nil {
			logger.Warn("Module generation failed, omitting from report",
				"journey_id", snap.ID, "module", module, "error", err)
			continue
		}
		merged[module] = result.Payload
	}

	logger.Info("Module generation complete",
		"journey_id", snap.ID,
		"requested", len(selected),
		"generated", len(merged),
	)
	return merged
}
