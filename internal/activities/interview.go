package activities

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/validately/orchestrator/internal/assess"
	"github.com/validately/orchestrator/internal/journey"
	"github.com/validately/orchestrator/internal/scoring"
)

const fallbackTitleLength = 60

// InterviewStepInput is the input for one interview turn.
type InterviewStepInput struct {
	JourneyID   string       `json:"journey_id"`
	Description string       `json:"description"`
	History     []journey.QA `json:"history,omitempty"`
}

// InterviewStepResult carries either the next question or the completion
// decision.
type InterviewStepResult struct {
	Question string `json:"question,omitempty"`
	Complete bool   `json:"complete"`
	Forced   bool   `json:"forced,omitempty"`
}

type interviewDecision struct {
	Question string `json:"question"`
	Complete bool   `json:"complete"`
}

// InterviewStep asks the assessment capability for the next interview
// question, enforcing the question-count policy: the interview can never end
// before the minimum number of answers and never continue past the maximum.
func (a *Activities) InterviewStep(ctx context.Context, input InterviewStepInput) (InterviewStepResult, error) {
	cfg := a.cfg.Get()
	answered := len(input.History)

	if answered >= cfg.Interview.MaxQuestions {
		a.logger.Info("Interview reached question cap, forcing completion",
			zap.String("journey_id", input.JourneyID),
			zap.Int("answered", answered),
		)
		return InterviewStepResult{Complete: true, Forced: true}, nil
	}

	var decision interviewDecision
	err := a.assess.InvokeStructured(ctx, assess.PromptSpec{Name: "interview_step"}, map[string]any{
		"description":   input.Description,
		"history":       input.History,
		"min_questions": cfg.Interview.MinQuestions,
		"max_questions": cfg.Interview.MaxQuestions,
	}, &decision)
	if err != nil {
		a.logger.Warn("Interview step invocation failed",
			zap.String("journey_id", input.JourneyID),
			zap.Error(err),
		)
		// Enough answers collected to proceed; treat the failure as done.
		if answered >= cfg.Interview.MinQuestions {
			return InterviewStepResult{Complete: true, Forced: true}, nil
		}
		return InterviewStepResult{}, err
	}

	if decision.Complete && answered < cfg.Interview.MinQuestions {
		a.logger.Info("Model signalled completion below minimum, continuing",
			zap.String("journey_id", input.JourneyID),
			zap.Int("answered", answered),
		)
		decision.Complete = false
	}
	if decision.Complete {
		return InterviewStepResult{Complete: true}, nil
	}
	if decision.Question == "" {
		return InterviewStepResult{Complete: true, Forced: true}, nil
	}
	return InterviewStepResult{Question: decision.Question}, nil
}

// EvaluateQualityInput is the input for interview quality evaluation.
type EvaluateQualityInput struct {
	JourneyID   string       `json:"journey_id"`
	Description string       `json:"description"`
	History     []journey.QA `json:"history"`
}

// EvaluateQualityResult carries the quality profile fed into viability
// scoring.
type EvaluateQualityResult struct {
	Quality scoring.QualityProfile `json:"quality"`
}

// EvaluateInterviewQuality grades answer depth per quality axis. A failed
// evaluation degrades to the neutral profile rather than blocking the
// journey.
func (a *Activities) EvaluateInterviewQuality(ctx context.Context, input EvaluateQualityInput) (EvaluateQualityResult, error) {
	var quality scoring.QualityProfile
	err := a.assess.InvokeStructured(ctx, assess.PromptSpec{Name: "interview_quality"}, map[string]any{
		"description": input.Description,
		"history":     input.History,
	}, &quality)
	if err != nil {
		a.logger.Warn("Interview quality evaluation failed, using neutral profile",
			zap.String("journey_id", input.JourneyID),
			zap.Error(err),
		)
		return EvaluateQualityResult{Quality: scoring.NeutralQuality()}, nil
	}
	return EvaluateQualityResult{Quality: quality}, nil
}

// SynthesizeContextInput is the input for context synthesis.
type SynthesizeContextInput struct {
	JourneyID   string       `json:"journey_id"`
	Description string       `json:"description"`
	History     []journey.QA `json:"history"`
}

// SynthesizeContextResult carries the extracted title and business context.
type SynthesizeContextResult struct {
	Title   string          `json:"title"`
	Context journey.Context `json:"context"`
}

type contextSynthesis struct {
	Title   string          `json:"title"`
	Context journey.Context `json:"context"`
}

// SynthesizeContext distils the interview into a short title plus the
// industry/geography/regulatory context that drives research targeting.
func (a *Activities) SynthesizeContext(ctx context.Context, input SynthesizeContextInput) (SynthesizeContextResult, error) {
	var out contextSynthesis
	err := a.assess.InvokeStructured(ctx, assess.PromptSpec{Name: "context_synthesis", UseComplex: true}, map[string]any{
		"description": input.Description,
		"history":     input.History,
	}, &out)
	if err != nil {
		a.logger.Warn("Context synthesis failed, falling back to truncated title",
			zap.String("journey_id", input.JourneyID),
			zap.Error(err),
		)
		return SynthesizeContextResult{Title: fallbackTitle(input.Description)}, nil
	}
	if out.Title == "" {
		out.Title = fallbackTitle(input.Description)
	}
	return SynthesizeContextResult{Title: out.Title, Context: out.Context}, nil
}

func fallbackTitle(description string) string {
	title := strings.TrimSpace(description)
	runes := []rune(title)
	if len(runes) > fallbackTitleLength {
		title = string(runes[:fallbackTitleLength-3]) + "..."
	}
	return title
}
