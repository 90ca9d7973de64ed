package journey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/validately/orchestrator/internal/scoring"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func baseSnapshot() Snapshot {
	return New("j-1", "AI invoice processing for accounting firms", TierFree, nil, t0)
}

func TestApplyDoesNotMutateReceiver(t *testing.T) {
	s := baseSnapshot()
	s.Interview = []QA{{Question: "Q1", Answer: "A1"}}
	s.Modules = map[string]map[string]any{ModuleMarket: {"tam": "500M"}}

	u := Update{
		Phase:    phasePtr(PhaseResearching),
		AppendQA: &QA{Question: "Q2", Answer: "A2"},
		Modules:  map[string]map[string]any{ModuleComp: {"rivals": 3}},
	}
	merged := u.Apply(s, t0.Add(time.Minute))

	// Original untouched.
	assert.Equal(t, PhaseInterviewing, s.Phase)
	assert.Len(t, s.Interview, 1)
	assert.NotContains(t, s.Modules, ModuleComp)

	// Merge applied.
	assert.Equal(t, PhaseResearching, merged.Phase)
	assert.Len(t, merged.Interview, 2)
	assert.Contains(t, merged.Modules, ModuleMarket)
	assert.Contains(t, merged.Modules, ModuleComp)
	assert.Equal(t, t0.Add(time.Minute), merged.UpdatedAt)

	// Mutating the merged module map must not leak back.
	merged.Modules[ModuleMarket]["tam"] = "overwritten"
	assert.Equal(t, "500M", s.Modules[ModuleMarket]["tam"])
}

func TestApplyNilFieldsAreUntouched(t *testing.T) {
	s := baseSnapshot()
	s.Title = "Invoice AI"
	s.ResearchCache = "cached research"

	merged := Update{}.Apply(s, t0.Add(time.Hour))
	assert.Equal(t, s.Title, merged.Title)
	assert.Equal(t, s.ResearchCache, merged.ResearchCache)
	assert.Equal(t, s.Phase, merged.Phase)
}

func TestScoreBundleSurvivesUnrelatedUpdates(t *testing.T) {
	s := baseSnapshot()
	bundle := ScoreBundle{
		Score: 72.5,
		Breakdown: map[string]scoring.DimensionScore{
			scoring.DimMarketDemand: {Score: 8, Reasoning: "strong signals"},
		},
		Research: map[string]string{"market_demand": "evidence"},
	}
	s = Update{GoNoGoBundle: &bundle}.Apply(s, t0)

	// A later tier upgrade must not disturb the persisted bundle.
	tier := TierPremium
	upgraded := Update{Tier: &tier, Phase: phasePtr(PhasePaidAnalysis)}.Apply(s, t0.Add(time.Hour))

	require.NotNil(t, upgraded.GoNoGoBundle)
	assert.Equal(t, 72.5, upgraded.GoNoGoBundle.Score)
	assert.Equal(t, 8, upgraded.GoNoGoBundle.Breakdown[scoring.DimMarketDemand].Score)
	assert.Equal(t, "evidence", upgraded.GoNoGoBundle.Research["market_demand"])

	// And the bundle inside the upgraded snapshot is an independent copy.
	bundle.Breakdown[scoring.DimMarketDemand] = scoring.DimensionScore{Score: 1}
	assert.Equal(t, 8, upgraded.GoNoGoBundle.Breakdown[scoring.DimMarketDemand].Score)
}

func TestSelectedModules(t *testing.T) {
	s := baseSnapshot()
	assert.Equal(t, StandardModules(), s.SelectedModules())

	s.CustomModules = []string{ModuleMarket, ModuleFinance, "mod_unknown"}
	assert.Equal(t, []string{ModuleMarket, ModuleFinance}, s.SelectedModules())
}

func TestStatusDerivation(t *testing.T) {
	cases := []struct {
		phase  Phase
		report map[string]any
		want   string
	}{
		{PhaseInterviewing, nil, "awaiting_answer"},
		{PhaseResearching, nil, "processing"},
		{PhasePausedForUpgrade, nil, "awaiting_upgrade"},
		{PhaseWaitingForApproval, nil, "awaiting_approval"},
		{PhaseComplete, map[string]any{"score": 80.0}, "complete"},
		{PhaseFailed, nil, "failed"},
		{PhasePaidAnalysis, map[string]any{"score": 80.0}, "report_ready"},
	}
	for _, tc := range cases {
		s := baseSnapshot()
		s.Phase = tc.phase
		s.FinalReport = tc.report
		assert.Equal(t, tc.want, s.Status(), "phase %s", tc.phase)
	}
}

func TestTierHelpers(t *testing.T) {
	assert.False(t, TierFree.Paid())
	assert.True(t, TierBasic.Paid())
	assert.False(t, TierBasic.ParallelModules())
	assert.True(t, TierStandard.ParallelModules())
	assert.True(t, TierPremium.ParallelModules())
	assert.True(t, TierCustom.ParallelModules())
}
