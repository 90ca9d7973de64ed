package activities

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/validately/orchestrator/internal/assess"
	"github.com/validately/orchestrator/internal/journey"
	"github.com/validately/orchestrator/internal/scoring"
)

// ScoreViabilityInput is the input for the free-tier viability score.
type ScoreViabilityInput struct {
	JourneyID   string                  `json:"journey_id"`
	Description string                  `json:"description"`
	Context     journey.Context         `json:"context"`
	Research    map[string]string       `json:"research"`
	Quality     *scoring.QualityProfile `json:"quality,omitempty"`
}

// ScoreViabilityResult carries the persisted score bundle.
type ScoreViabilityResult struct {
	Bundle journey.ScoreBundle `json:"bundle"`
}

// ScoreViability asks the assessment capability for raw dimension scores and
// runs them through the deterministic viability computation. The research
// that backed the score travels in the bundle so the triple stays coherent.
func (a *Activities) ScoreViability(ctx context.Context, input ScoreViabilityInput) (ScoreViabilityResult, error) {
	raw, err := a.rawScores(ctx, "viability_scoring", input.Description, input.Context, input.Research, scoring.ViabilityDimensions())
	if err != nil {
		return ScoreViabilityResult{}, err
	}

	quality := scoring.NeutralQuality()
	if input.Quality != nil {
		quality = *input.Quality
	}

	score, breakdown := scoring.Viability(raw, quality)
	a.metrics.ScoreComputed("viability", score)
	a.logger.Info("Viability score computed",
		zap.String("journey_id", input.JourneyID),
		zap.Float64("score", score),
	)
	return ScoreViabilityResult{Bundle: journey.ScoreBundle{
		Score:     score,
		Breakdown: breakdown,
		Research:  input.Research,
	}}, nil
}

// ScoreGoNoGoInput is the input for the paid-tier go/no-go score.
type ScoreGoNoGoInput struct {
	JourneyID   string            `json:"journey_id"`
	Description string            `json:"description"`
	Context     journey.Context   `json:"context"`
	Research    map[string]string `json:"research"`
}

// ScoreGoNoGoResult carries the persisted score bundle.
type ScoreGoNoGoResult struct {
	Bundle journey.ScoreBundle `json:"bundle"`
}

// ScoreGoNoGo computes the eight-dimension investment-style score used by
// paid reports.
func (a *Activities) ScoreGoNoGo(ctx context.Context, input ScoreGoNoGoInput) (ScoreGoNoGoResult, error) {
	raw, err := a.rawScores(ctx, "go_no_go_scoring", input.Description, input.Context, input.Research, scoring.GoNoGoDimensions())
	if err != nil {
		return ScoreGoNoGoResult{}, err
	}

	score, breakdown := scoring.GoNoGo(raw)
	a.metrics.ScoreComputed("go_no_go", score)
	a.logger.Info("Go/no-go score computed",
		zap.String("journey_id", input.JourneyID),
		zap.Float64("score", score),
	)
	return ScoreGoNoGoResult{Bundle: journey.ScoreBundle{
		Score:     score,
		Breakdown: breakdown,
		Research:  input.Research,
	}}, nil
}

func (a *Activities) rawScores(ctx context.Context, prompt, description string, bizCtx journey.Context, research map[string]string, dimensions []string) (map[string]scoring.RawScore, error) {
	var raw map[string]scoring.RawScore
	err := a.assess.InvokeStructured(ctx, assess.PromptSpec{Name: prompt, UseComplex: true}, map[string]any{
		"description": description,
		"context":     bizCtx,
		"research":    research,
		"dimensions":  dimensions,
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", prompt, err)
	}
	return raw, nil
}
