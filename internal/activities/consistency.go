package activities

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/validately/orchestrator/internal/assess"
	"github.com/validately/orchestrator/internal/journey"
)

// moduleAliases maps the informal section names the consistency checker
// tends to emit back to canonical module keys.
var moduleAliases = map[string]string{
	"customer":     journey.ModuleBMC,
	"business":     journey.ModuleBMC,
	"market":       journey.ModuleMarket,
	"competition":  journey.ModuleComp,
	"competitors":  journey.ModuleComp,
	"financials":   journey.ModuleFinance,
	"finance":      journey.ModuleFinance,
	"technology":   journey.ModuleTech,
	"regulatory":   journey.ModuleReg,
	"go_to_market": journey.ModuleGTM,
	"risks":        journey.ModuleRisk,
	"roadmap":      journey.ModuleRoadmap,
	"funding":      journey.ModuleFunding,
}

// repairPrecedence lists which module's content is authoritative over
// which: when an issue pairs the two, the subordinate module is rewritten.
var repairPrecedence = map[string]string{
	journey.ModuleMarket: journey.ModuleFinance, // market sizing over projections
	journey.ModuleTech:   journey.ModuleRoadmap, // technical complexity over the roadmap
	journey.ModuleBMC:    journey.ModuleGTM,     // customer segments over go-to-market
}

// CanonicalModule resolves a module name or alias, case-insensitively, to
// its canonical key, or returns false when it matches nothing known.
func CanonicalModule(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, m := range journey.StandardModules() {
		if name == m {
			return m, true
		}
	}
	if canonical, ok := moduleAliases[name]; ok {
		return canonical, true
	}
	return "", false
}

// RepairTarget picks which module of an issue pair gets rewritten: the
// subordinate one under the precedence rules, otherwise the second named.
func RepairTarget(pair []string) (string, bool) {
	if len(pair) < 2 {
		return "", false
	}
	a, b := pair[0], pair[1]
	if repairPrecedence[a] == b {
		return b, true
	}
	if repairPrecedence[b] == a {
		return a, true
	}
	return b, true
}

// Issue is one cross-module contradiction found by the checker.
type Issue struct {
	Modules     []string `json:"modules"`
	Description string   `json:"description"`
}

// SummarizeModuleInput is the input for one module digest.
type SummarizeModuleInput struct {
	JourneyID string         `json:"journey_id"`
	Module    string         `json:"module"`
	Payload   map[string]any `json:"payload"`
}

// SummarizeModuleResult carries a compact digest of one module.
type SummarizeModuleResult struct {
	Module string `json:"module"`
	Digest string `json:"digest"`
}

// SummarizeModule compresses one module's payload into a digest small enough
// that the checker can see every module at once.
func (a *Activities) SummarizeModule(ctx context.Context, input SummarizeModuleInput) (SummarizeModuleResult, error) {
	var digest struct {
		Digest string `json:"digest"`
	}
	err := a.assess.InvokeStructured(ctx, assess.PromptSpec{Name: "module_digest"}, map[string]any{
		"module":  input.Module,
		"payload": input.Payload,
	}, &digest)
	if err != nil {
		return SummarizeModuleResult{}, fmt.Errorf("summarize module %s: %w", input.Module, err)
	}
	return SummarizeModuleResult{Module: input.Module, Digest: digest.Digest}, nil
}

// CheckConsistencyInput is the input for the cross-module check.
type CheckConsistencyInput struct {
	JourneyID string            `json:"journey_id"`
	Digests   map[string]string `json:"digests"`
}

// CheckConsistencyResult reports whether the module set agrees with itself.
type CheckConsistencyResult struct {
	Consistent bool    `json:"consistent"`
	Score      float64 `json:"score"`
	Issues     []Issue `json:"issues,omitempty"`
}

type consistencyVerdict struct {
	Score  float64 `json:"score"`
	Issues []Issue `json:"issues"`
}

// CheckConsistency grades cross-module agreement over the digests. The set
// passes when the score clears the configured floor. A failed check fails
// open: an unverifiable report ships rather than blocking the journey.
func (a *Activities) CheckConsistency(ctx context.Context, input CheckConsistencyInput) (CheckConsistencyResult, error) {
	var verdict consistencyVerdict
	err := a.assess.InvokeStructured(ctx, assess.PromptSpec{Name: "consistency_check", UseComplex: true}, map[string]any{
		"digests": input.Digests,
	}, &verdict)
	if err != nil {
		a.logger.Warn("Consistency check failed, passing report through",
			zap.String("journey_id", input.JourneyID),
			zap.Error(err),
		)
		a.metrics.ConsistencyCheck("error")
		return CheckConsistencyResult{Consistent: true, Score: 0}, nil
	}

	issues := canonicalizeIssues(verdict.Issues)
	consistent := verdict.Score >= a.cfg.Get().Consistency.MinScore
	if consistent {
		a.metrics.ConsistencyCheck("pass")
	} else {
		a.metrics.ConsistencyCheck("fail")
	}

	a.logger.Info("Consistency check complete",
		zap.String("journey_id", input.JourneyID),
		zap.Float64("score", verdict.Score),
		zap.Int("issues", len(issues)),
		zap.Bool("consistent", consistent),
	)
	return CheckConsistencyResult{Consistent: consistent, Score: verdict.Score, Issues: issues}, nil
}

// canonicalizeIssues resolves module aliases and drops issues that do not
// name a pair of known modules.
func canonicalizeIssues(issues []Issue) []Issue {
	var out []Issue
	for _, issue := range issues {
		var modules []string
		for _, name := range issue.Modules {
			if canonical, ok := CanonicalModule(name); ok {
				modules = append(modules, canonical)
			}
		}
		if len(modules) < 2 {
			continue
		}
		issue.Modules = modules[:2]
		out = append(out, issue)
	}
	return out
}

// FixIssueInput is the input for one targeted repair.
type FixIssueInput struct {
	JourneyID string                     `json:"journey_id"`
	Issue     Issue                      `json:"issue"`
	Directive journey.StrategicDirective `json:"directive"`
	Modules   map[string]map[string]any  `json:"modules"`
}

// FixIssueResult carries the single rewritten module, or nothing when the
// issue could not be repaired.
type FixIssueResult struct {
	Module  string         `json:"module,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
	Applied bool           `json:"applied"`
}

// FixIssue rewrites exactly one module of an issue pair: the subordinate one
// under the precedence rules, using the other module and the directive as
// the source of truth.
func (a *Activities) FixIssue(ctx context.Context, input FixIssueInput) (FixIssueResult, error) {
	target, ok := RepairTarget(input.Issue.Modules)
	if !ok {
		return FixIssueResult{}, nil
	}
	targetPayload, ok := input.Modules[target]
	if !ok {
		return FixIssueResult{}, nil
	}

	authority := input.Issue.Modules[0]
	if authority == target {
		authority = input.Issue.Modules[1]
	}

	var payload map[string]any
	err := a.assess.InvokeStructured(ctx, assess.PromptSpec{Name: "consistency_fix", UseComplex: true}, map[string]any{
		"issue":             input.Issue.Description,
		"rewrite_module":    target,
		"rewrite_payload":   targetPayload,
		"authority_module":  authority,
		"authority_payload": input.Modules[authority],
		"directive":         input.Directive,
	}, &payload)
	if err != nil {
		return FixIssueResult{}, fmt.Errorf("fix issue on %s: %w", target, err)
	}
	if len(payload) == 0 {
		return FixIssueResult{}, nil
	}

	a.metrics.ConsistencyFix()
	a.logger.Info("Consistency fix applied",
		zap.String("journey_id", input.JourneyID),
		zap.String("module", target),
	)
	return FixIssueResult{Module: target, Payload: payload, Applied: true}, nil
}
