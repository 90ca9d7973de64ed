package workflows

import (
	"sort"

	"go.temporal.io/sdk/workflow"

	"github.com/validately/orchestrator/internal/activities"
	"github.com/validately/orchestrator/internal/journey"
)

// consistencyMaxIssues caps how many reported issues get a repair pass.
const consistencyMaxIssues = 2

// verifyAndRepair runs the bounded verify-and-fix cycle over the generated
// modules and returns the rewritten payloads, keyed by module. It never runs
// for fewer than two modules or for the custom tier, and every failure
// inside it fails open: the report ships unverified rather than blocked.
func verifyAndRepair(ctx workflow.Context, snap journey.Snapshot, maxAttempts int) map[string]map[string]any {
	logger := workflow.GetLogger(ctx)

	if len(snap.Modules) < 2 || snap.Tier == journey.TierCustom || maxAttempts <= 0 {
		return nil
	}

	directive := journey.StrategicDirective{}
	if snap.Directive != nil {
		directive = *snap.Directive
	}

	// Working copy: fixes feed later attempts without aliasing the snapshot.
	modules := make(map[string]map[string]any, len(snap.Modules))
	names := make([]string, 0, len(snap.Modules))
	for name, payload := range snap.Modules {
		modules[name] = payload
		names = append(names, name)
	}
	sort.Strings(names)

	repaired := make(map[string]map[string]any)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		// Digest every module concurrently; a failed digest drops that
		// module from the check.
		futures := make([]workflow.Future, len(names))
		for i, name := range names {
			futures[i] = workflow.ExecuteActivity(ctx, ActivitySummarizeModule, activities.SummarizeModuleInput{
				JourneyID: snap.ID,
				Module:    name,
				Payload:   modules[name],
			})
		}
		digests := make(map[string]string, len(names))
		for i, future := range futures {
			var result activities.SummarizeModuleResult
			if err := future.Get(ctx, &result); err != nil {
				logger.Warn("Module digest failed", "journey_id", snap.ID, "module", names[i], "error", err)
				continue
			}
			if result.Digest != "" {
				digests[names[i]] = result.Digest
			}
		}
		if len(digests) < 2 {
			return repaired
		}

		var check activities.CheckConsistencyResult
		err := workflow.ExecuteActivity(ctx, ActivityCheckConsistency, activities.CheckConsistencyInput{
			JourneyID: snap.ID,
			Digests:   digests,
		}).Get(ctx, &check)
		if err != nil {
			logger.Warn("Consistency check failed, passing report through",
				"journey_id", snap.ID, "error", err)
			return repaired
		}
		if check.Consistent || len(check.Issues) == 0 {
			return repaired
		}

		issues := check.Issues
		if len(issues) > consistencyMaxIssues {
			issues = issues[:consistencyMaxIssues]
		}

		applied := 0
		for _, issue := range issues {
			var fix activities.FixIssueResult
			err := workflow.ExecuteActivity(ctx, ActivityFixIssue, activities.FixIssueInput{
				JourneyID: snap.ID,
				Issue:     issue,
				Directive: directive,
				Modules:   modules,
			}).Get(ctx, &fix)
			if err != nil {
				logger.Warn("Consistency fix failed", "journey_id", snap.ID, "error", err)
				continue
			}
			if fix.Applied {
				modules[fix.Module] = fix.Payload
				repaired[fix.Module] = fix.Payload
				applied++
			}
		}

		logger.Info("Consistency repair attempt finished",
			"journey_id", snap.ID,
			"attempt", attempt+1,
			"fixes_applied", applied,
		)
		if applied == 0 {
			return repaired
		}
	}
	return repaired
}
