package activities

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/validately/orchestrator/internal/assess"
	"github.com/validately/orchestrator/internal/journey"
	"github.com/validately/orchestrator/internal/scoring"
)

// FreeReportInput is the input for free-report generation.
type FreeReportInput struct {
	JourneyID   string              `json:"journey_id"`
	Description string              `json:"description"`
	Title       string              `json:"title"`
	Context     journey.Context     `json:"context"`
	Bundle      journey.ScoreBundle `json:"bundle"`
}

// FreeReportResult carries the generated teaser report.
type FreeReportResult struct {
	Report map[string]any `json:"report"`
}

// GenerateFreeReport builds the teaser report around the viability score:
// narrative sections from the assessment capability plus the deterministic
// gauge status and package recommendation.
func (a *Activities) GenerateFreeReport(ctx context.Context, input FreeReportInput) (FreeReportResult, error) {
	report, err := a.assess.Invoke(ctx, assess.PromptSpec{Name: "free_report"}, map[string]any{
		"description": input.Description,
		"context":     input.Context,
		"score":       input.Bundle.Score,
		"breakdown":   input.Bundle.Breakdown,
		"research":    input.Bundle.Research,
	})
	if err != nil {
		return FreeReportResult{}, fmt.Errorf("generate free report: %w", err)
	}
	if report == nil {
		report = map[string]any{}
	}
	report["title"] = input.Title
	report["viability_score"] = input.Bundle.Score
	report["score_breakdown"] = input.Bundle.Breakdown
	report["gauge_status"] = scoring.GaugeStatus(input.Bundle.Score)
	report["recommended_package"] = scoring.PackageRecommendation(input.Bundle.Score)

	a.logger.Info("Free report generated",
		zap.String("journey_id", input.JourneyID),
		zap.Float64("score", input.Bundle.Score),
	)
	return FreeReportResult{Report: report}, nil
}

// BasicReportInput is the input for the single-pass basic report.
type BasicReportInput struct {
	JourneyID   string              `json:"journey_id"`
	Description string              `json:"description"`
	Title       string              `json:"title"`
	Context     journey.Context     `json:"context"`
	Research    string              `json:"research"`
	Bundle      journey.ScoreBundle `json:"bundle"`
}

// BasicReportResult carries the generated basic report.
type BasicReportResult struct {
	Report map[string]any `json:"report"`
}

// GenerateBasicReport produces the basic tier's report in one generation
// pass over the shared research corpus, without the parallel module
// orchestrator.
func (a *Activities) GenerateBasicReport(ctx context.Context, input BasicReportInput) (BasicReportResult, error) {
	report, err := a.assess.Invoke(ctx, assess.PromptSpec{Name: "basic_report", UseComplex: true}, map[string]any{
		"description": input.Description,
		"context":     input.Context,
		"research":    input.Research,
		"score":       input.Bundle.Score,
		"breakdown":   input.Bundle.Breakdown,
	})
	if err != nil {
		return BasicReportResult{}, fmt.Errorf("generate basic report: %w", err)
	}
	if report == nil {
		report = map[string]any{}
	}
	report["title"] = input.Title
	report["go_no_go_score"] = input.Bundle.Score

	a.logger.Info("Basic report generated", zap.String("journey_id", input.JourneyID))
	return BasicReportResult{Report: report}, nil
}

// ModuleInput is the input for one report module generation.
type ModuleInput struct {
	JourneyID   string                     `json:"journey_id"`
	Module      string                     `json:"module"`
	Description string                     `json:"description"`
	Context     journey.Context            `json:"context"`
	Directive   journey.StrategicDirective `json:"directive"`
	Research    string                     `json:"research"`
}

// ModuleResult carries one module's generated payload.
type ModuleResult struct {
	Module  string         `json:"module"`
	Payload map[string]any `json:"payload"`
}

// GenerateModule produces one report section. Every module receives the same
// directive and research corpus so parallel sections agree on the strategic
// decisions.
func (a *Activities) GenerateModule(ctx context.Context, input ModuleInput) (ModuleResult, error) {
	payload, err := a.assess.Invoke(ctx, assess.PromptSpec{Name: input.Module, UseComplex: true}, map[string]any{
		"description": input.Description,
		"context":     input.Context,
		"directive":   input.Directive,
		"research":    input.Research,
	})
	if err != nil {
		a.metrics.ModuleExecution(input.Module, "error")
		return ModuleResult{}, fmt.Errorf("generate module %s: %w", input.Module, err)
	}
	a.metrics.ModuleExecution(input.Module, "ok")
	a.logger.Info("Module generated",
		zap.String("journey_id", input.JourneyID),
		zap.String("module", input.Module),
	)
	return ModuleResult{Module: input.Module, Payload: payload}, nil
}

// CompileReportInput is the input for final report assembly.
type CompileReportInput struct {
	JourneyID   string                    `json:"journey_id"`
	Description string                    `json:"description"`
	Title       string                    `json:"title"`
	Tier        journey.Tier              `json:"tier"`
	Modules     map[string]map[string]any `json:"modules"`
	Bundle      journey.ScoreBundle       `json:"bundle"`
}

// CompileReportResult carries the assembled final report.
type CompileReportResult struct {
	Report map[string]any `json:"report"`
}

// CompileReport assembles the final report: an executive summary synthesized
// over the generated modules plus the module payloads and score.
func (a *Activities) CompileReport(ctx context.Context, input CompileReportInput) (CompileReportResult, error) {
	summary, err := a.assess.Invoke(ctx, assess.PromptSpec{Name: "executive_summary", UseComplex: true}, map[string]any{
		"description": input.Description,
		"modules":     input.Modules,
		"score":       input.Bundle.Score,
	})
	if err != nil {
		a.logger.Warn("Executive summary generation failed, compiling without it",
			zap.String("journey_id", input.JourneyID),
			zap.Error(err),
		)
		summary = nil
	}

	sections := make(map[string]any, len(input.Modules))
	for name, payload := range input.Modules {
		sections[name] = payload
	}

	report := map[string]any{
		"title":           input.Title,
		"tier":            string(input.Tier),
		"go_no_go_score":  input.Bundle.Score,
		"score_breakdown": input.Bundle.Breakdown,
		"sections":        sections,
	}
	if summary != nil {
		report["executive_summary"] = summary
	}

	a.logger.Info("Final report compiled",
		zap.String("journey_id", input.JourneyID),
		zap.Int("sections", len(sections)),
	)
	return CompileReportResult{Report: report}, nil
}
