// Package journey defines the ValidationJourney aggregate: an immutable
// snapshot type, a partial-update type, and a pure merge. Only the workflow
// engine mutates a journey, and it does so by applying an Update to a
// Snapshot and persisting the result atomically.
package journey

import (
	"time"

	"github.com/validately/orchestrator/internal/scoring"
)

// Phase is the workflow state of a journey.
type Phase string

const (
	PhaseInterviewing       Phase = "interviewing"
	PhaseResearching        Phase = "researching"
	PhaseFreeReport         Phase = "free_report"
	PhasePausedForUpgrade   Phase = "paused_for_upgrade"
	PhasePaidAnalysis       Phase = "paid_analysis"
	PhaseWaitingForApproval Phase = "waiting_for_approval"
	PhaseComplete           Phase = "complete"
	PhaseFailed             Phase = "failed"
)

// Tier is the requested report depth.
type Tier string

const (
	TierFree     Tier = "free"
	TierBasic    Tier = "basic"
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
	TierCustom   Tier = "custom"
)

// Paid reports whether the tier runs a paid generation path.
func (t Tier) Paid() bool { return t != TierFree && t != "" }

// ParallelModules reports whether the tier generates via the parallel module
// orchestrator rather than the single basic pass.
func (t Tier) ParallelModules() bool {
	return t == TierStandard || t == TierPremium || t == TierCustom
}

// Module names, one per report section generator.
const (
	ModuleBMC     = "mod_bmc"
	ModuleMarket  = "mod_market"
	ModuleComp    = "mod_comp"
	ModuleFinance = "mod_finance"
	ModuleTech    = "mod_tech"
	ModuleReg     = "mod_reg"
	ModuleGTM     = "mod_gtm"
	ModuleRisk    = "mod_risk"
	ModuleRoadmap = "mod_roadmap"
	ModuleFunding = "mod_funding"
)

// StandardModules is the full generation set for standard and premium tiers.
func StandardModules() []string {
	return []string{ModuleBMC, ModuleMarket, ModuleComp, ModuleFinance, ModuleTech,
		ModuleReg, ModuleGTM, ModuleRisk, ModuleRoadmap, ModuleFunding}
}

// QA is one question/answer pair from the interview.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Context is what synthesis extracted from the interview.
type Context struct {
	Industry    string  `json:"industry,omitempty"`
	Geography   string  `json:"geography,omitempty"`
	Regulatory  string  `json:"regulatory,omitempty"`
	Specificity float64 `json:"specificity,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
}

// ScoreBundle is the persisted triple of score, per-dimension breakdown, and
// the research snapshot used to compute it. Once persisted it is returned
// verbatim on every later read; a tier upgrade never recomputes it.
type ScoreBundle struct {
	Score     float64                           `json:"score"`
	Breakdown map[string]scoring.DimensionScore `json:"breakdown"`
	Research  map[string]string                 `json:"research"`
}

// StrategicDirective is the single authoritative fact sheet generated once
// before parallel modules so each section works from the same decisions.
type StrategicDirective struct {
	TargetCustomer  string   `json:"target_customer"`
	Pricing         string   `json:"pricing"`
	ValueProp       string   `json:"value_prop"`
	Differentiation string   `json:"differentiation"`
	Constraints     []string `json:"constraints,omitempty"`
	YearOneGoals    string   `json:"year_one_goals"`
}

// ErrorInfo is the captured failure of a journey execution.
type ErrorInfo struct {
	Failed  bool   `json:"failed"`
	Message string `json:"message,omitempty"`
	Node    string `json:"node,omitempty"`
}

// Snapshot is the full persisted state of one journey. Treated as immutable:
// phase handlers receive a copy and return an Update, never write through.
type Snapshot struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Phase       Phase  `json:"phase"`
	Tier        Tier   `json:"tier"`

	CustomModules []string `json:"custom_modules,omitempty"`

	Interview       []QA    `json:"interview,omitempty"`
	PendingQuestion string  `json:"pending_question,omitempty"`
	Title           string  `json:"title,omitempty"`
	Context         Context `json:"context"`

	Quality *scoring.QualityProfile `json:"quality,omitempty"`

	ResearchCache         string              `json:"research_cache,omitempty"`
	ComprehensiveResearch string              `json:"comprehensive_research,omitempty"`
	Directive             *StrategicDirective `json:"directive,omitempty"`

	ViabilityBundle *ScoreBundle `json:"viability_bundle,omitempty"`
	GoNoGoBundle    *ScoreBundle `json:"go_no_go_bundle,omitempty"`

	Modules map[string]map[string]any `json:"modules,omitempty"`

	FreeReport  map[string]any `json:"free_report,omitempty"`
	FinalReport map[string]any `json:"final_report,omitempty"`

	Error ErrorInfo `json:"error"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New builds the initial snapshot for a submitted idea.
func New(id, description string, tier Tier, customModules []string, now time.Time) Snapshot {
	return Snapshot{
		ID:            id,
		Description:   description,
		Phase:         PhaseInterviewing,
		Tier:          tier,
		CustomModules: append([]string(nil), customModules...),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// SelectedModules returns the modules the tier generates: the custom
// allow-list when present, otherwise the full standard set.
func (s Snapshot) SelectedModules() []string {
	if len(s.CustomModules) > 0 {
		selected := make([]string, 0, len(s.CustomModules))
		known := make(map[string]bool, 10)
		for _, m := range StandardModules() {
			known[m] = true
		}
		for _, m := range s.CustomModules {
			if known[m] {
				selected = append(selected, m)
			}
		}
		return selected
	}
	return StandardModules()
}

// Status derives the user-facing status purely from phase and report
// presence.
func (s Snapshot) Status() string {
	switch s.Phase {
	case PhaseFailed:
		return "failed"
	case PhaseComplete:
		return "complete"
	case PhaseInterviewing:
		return "awaiting_answer"
	case PhasePausedForUpgrade:
		return "awaiting_upgrade"
	case PhaseWaitingForApproval:
		return "awaiting_approval"
	default:
		if s.FinalReport != nil {
			return "report_ready"
		}
		return "processing"
	}
}
