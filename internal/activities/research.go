package activities

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/validately/orchestrator/internal/assess"
	"github.com/validately/orchestrator/internal/journey"
	"github.com/validately/orchestrator/internal/research"
)

// ScoringResearchInput is the input for the baseline scoring research pass.
type ScoringResearchInput struct {
	JourneyID   string          `json:"journey_id"`
	Description string          `json:"description"`
	Context     journey.Context `json:"context"`
}

// ScoringResearchResult carries research keyed by scoring area.
type ScoringResearchResult struct {
	Research map[string]string `json:"research"`
}

// ConductScoringResearch gathers evidence for the five scoring areas
// concurrently. Areas with no data carry the sentinel and score from the
// model's prior knowledge alone.
func (a *Activities) ConductScoringResearch(ctx context.Context, input ScoringResearchInput) (ScoringResearchResult, error) {
	objectives := research.ScoringObjectives(input.Context.Geography, input.Context.Industry)

	results := a.research.MultiObjective(ctx, input.Description, objectives, research.Options{
		NumQueries: a.cfg.Get().Research.QueriesFor("scoring"),
	})

	missing := 0
	for _, content := range results {
		if research.IsSentinel(content) {
			missing++
		}
	}
	a.logger.Info("Scoring research complete",
		zap.String("journey_id", input.JourneyID),
		zap.Int("areas", len(results)),
		zap.Int("missing", missing),
	)
	return ScoringResearchResult{Research: results}, nil
}

// ComprehensiveResearchInput is the input for the upfront paid-tier pass.
type ComprehensiveResearchInput struct {
	JourneyID   string          `json:"journey_id"`
	Description string          `json:"description"`
	Context     journey.Context `json:"context"`
	Tier        journey.Tier    `json:"tier"`
	Modules     []string        `json:"modules,omitempty"`
}

// ComprehensiveResearchResult carries the combined research corpus shared by
// every generated module.
type ComprehensiveResearchResult struct {
	Research string `json:"research"`
}

// ComprehensiveResearch runs the deep multi-topic pass once per paid
// journey and caches the corpus so a retried generation phase reuses it.
func (a *Activities) ComprehensiveResearch(ctx context.Context, input ComprehensiveResearchInput) (ComprehensiveResearchResult, error) {
	if a.cache != nil {
		if cached, ok, err := a.cache.GetResearch(ctx, input.JourneyID); err == nil && ok {
			a.logger.Info("Comprehensive research cache hit",
				zap.String("journey_id", input.JourneyID),
				zap.Int("chars", len(cached)),
			)
			return ComprehensiveResearchResult{Research: cached}, nil
		}
	}

	combined, err := a.research.Comprehensive(ctx, input.Description,
		input.Context.Geography, input.Context.Industry, string(input.Tier), input.Modules)
	if err != nil {
		return ComprehensiveResearchResult{}, fmt.Errorf("comprehensive research: %w", err)
	}

	if a.cache != nil && combined != "" {
		if err := a.cache.SetResearch(ctx, input.JourneyID, combined); err != nil {
			a.logger.Warn("Failed to cache comprehensive research",
				zap.String("journey_id", input.JourneyID),
				zap.Error(err),
			)
		}
	}
	return ComprehensiveResearchResult{Research: combined}, nil
}

// DirectiveInput is the input for strategic directive generation.
type DirectiveInput struct {
	JourneyID   string          `json:"journey_id"`
	Description string          `json:"description"`
	Context     journey.Context `json:"context"`
	Research    string          `json:"research"`
}

// DirectiveResult carries the single authoritative fact sheet every module
// generator receives.
type DirectiveResult struct {
	Directive journey.StrategicDirective `json:"directive"`
}

// GenerateDirective fixes the strategic decisions (target customer, pricing,
// positioning) before module fan-out so parallel sections cannot diverge on
// them.
func (a *Activities) GenerateDirective(ctx context.Context, input DirectiveInput) (DirectiveResult, error) {
	var directive journey.StrategicDirective
	err := a.assess.InvokeStructured(ctx, assess.PromptSpec{Name: "strategic_directive", UseComplex: true}, map[string]any{
		"description": input.Description,
		"context":     input.Context,
		"research":    input.Research,
	}, &directive)
	if err != nil {
		return DirectiveResult{}, fmt.Errorf("generate directive: %w", err)
	}
	a.logger.Info("Strategic directive generated",
		zap.String("journey_id", input.JourneyID),
		zap.String("target_customer", directive.TargetCustomer),
	)
	return DirectiveResult{Directive: directive}, nil
}
