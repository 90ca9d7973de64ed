// Package scoring converts raw dimension assessments into the composite
// 0-100 viability and go/no-go scores. The engine is deterministic: given the
// same raw inputs it always produces the same score, which is what lets a
// persisted score bundle survive tier upgrades unchanged.
package scoring

import "math"

// Viability pass dimensions (shallow 5-dimension set).
const (
	DimProblemSeverity       = "problem_severity"
	DimMarketOpportunity     = "market_opportunity"
	DimCompetitionIntensity  = "competition_intensity"
	DimExecutionComplexity   = "execution_complexity"
	DimFounderAlignment      = "founder_alignment"
)

// Go/no-go pass dimensions (deep 8-dimension set).
const (
	DimMarketDemand         = "market_demand"
	DimFinancialViability   = "financial_viability"
	DimCompetitionAnalysis  = "competition_analysis"
	DimFounderMarketFit     = "founder_market_fit"
	DimTechnicalFeasibility = "technical_feasibility"
	DimRegulatoryCompliance = "regulatory_compliance"
	DimTimingAssessment     = "timing_assessment"
	DimScalabilityPotential = "scalability_potential"
)

var viabilityWeights = map[string]float64{
	DimProblemSeverity:      0.30,
	DimMarketOpportunity:    0.25,
	DimCompetitionIntensity: 0.20,
	DimExecutionComplexity:  0.15,
	DimFounderAlignment:     0.10,
}

var goNoGoWeights = map[string]float64{
	DimMarketDemand:         0.25,
	DimFinancialViability:   0.20,
	DimCompetitionAnalysis:  0.15,
	DimFounderMarketFit:     0.10,
	DimTechnicalFeasibility: 0.10,
	DimRegulatoryCompliance: 0.10,
	DimTimingAssessment:     0.05,
	DimScalabilityPotential: 0.05,
}

// invertedDimensions are the dimensions where a high raw score is a bad
// outcome. Inversion is a property of the dimension name, never of the
// journey.
var invertedDimensions = map[string]bool{
	DimCompetitionIntensity: true,
	DimExecutionComplexity:  true,
	DimCompetitionAnalysis:  true,
}

// dimensionQualityMap links each viability dimension to the interview-quality
// axis that scales it.
var dimensionQualityMap = map[string]string{
	DimProblemSeverity:      "problem_understanding",
	DimMarketOpportunity:    "market_knowledge",
	DimCompetitionIntensity: "competitive_awareness",
	DimExecutionComplexity:  "execution_readiness",
	DimFounderAlignment:     "founder_credibility",
}

// Recommendation and gauge thresholds on the 0-100 scale.
const (
	quitThreshold      = 35
	premiumThreshold   = 60
	standardThreshold  = 85
	promisingThreshold = 70
)

// RawScore is one dimension's assessment as produced by the external
// assessor: a 0-10 value plus its reasoning text.
type RawScore struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning,omitempty"`
}

// DimensionScore is the displayed value for one dimension: the rounded,
// clamped 0-10 integer shown to the user. Calc values (inversion applied)
// never leave this package.
type DimensionScore struct {
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning,omitempty"`
	Inverted  bool   `json:"inverted,omitempty"`
}

// QualityProfile carries the interview-quality assessment that scales the
// viability pass. Axes are 0-10; ContextSpecificity below 5 additionally
// penalizes the market and problem dimensions.
type QualityProfile struct {
	ProblemUnderstanding float64 `json:"problem_understanding"`
	MarketKnowledge      float64 `json:"market_knowledge"`
	CompetitiveAwareness float64 `json:"competitive_awareness"`
	ExecutionReadiness   float64 `json:"execution_readiness"`
	FounderCredibility   float64 `json:"founder_credibility"`
	ContextSpecificity   float64 `json:"context_specificity"`
}

// NeutralQuality is the profile used when no interview-quality assessment is
// available: all axes at 5, context specificity at 10 (no penalty).
func NeutralQuality() QualityProfile {
	return QualityProfile{
		ProblemUnderstanding: 5,
		MarketKnowledge:      5,
		CompetitiveAwareness: 5,
		ExecutionReadiness:   5,
		FounderCredibility:   5,
		ContextSpecificity:   10,
	}
}

func (q QualityProfile) axis(name string) float64 {
	switch name {
	case "problem_understanding":
		return q.ProblemUnderstanding
	case "market_knowledge":
		return q.MarketKnowledge
	case "competitive_awareness":
		return q.CompetitiveAwareness
	case "execution_readiness":
		return q.ExecutionReadiness
	case "founder_credibility":
		return q.FounderCredibility
	default:
		return 5
	}
}

// Inverted reports whether a dimension is subtracted from 10 before
// weighting.
func Inverted(dimension string) bool { return invertedDimensions[dimension] }

// ViabilityDimensions returns the 5-dimension set names.
func ViabilityDimensions() []string {
	return []string{DimProblemSeverity, DimMarketOpportunity, DimCompetitionIntensity,
		DimExecutionComplexity, DimFounderAlignment}
}

// GoNoGoDimensions returns the 8-dimension set names.
func GoNoGoDimensions() []string {
	return []string{DimMarketDemand, DimFinancialViability, DimCompetitionAnalysis,
		DimFounderMarketFit, DimTechnicalFeasibility, DimRegulatoryCompliance,
		DimTimingAssessment, DimScalabilityPotential}
}

// Viability computes the 5-dimension score. Per dimension: scale the raw
// 0-10 value by the quality multiplier 0.7 + 0.3*q/10 for the mapped quality
// axis; when context specificity < 5 the market and problem dimensions take
// an extra 0.85 multiplier on top (the penalties stack; this mirrors the
// historical behavior and is intentionally not collapsed). The scaled value
// is rounded and clamped to [0,10] as the display value; inverted dimensions
// contribute 10-display to the weighted sum. The final score is the weighted
// sum scaled to [0,100], one decimal.
func Viability(raw map[string]RawScore, quality QualityProfile) (float64, map[string]DimensionScore) {
	display := make(map[string]DimensionScore, len(viabilityWeights))
	total := 0.0

	for dimension, weight := range viabilityWeights {
		rs, ok := raw[dimension]
		if !ok {
			rs = RawScore{Score: 5}
		}

		multiplier := 0.7 + 0.3*quality.axis(dimensionQualityMap[dimension])/10.0
		if quality.ContextSpecificity < 5 &&
			(dimension == DimMarketOpportunity || dimension == DimProblemSeverity) {
			multiplier *= 0.85
		}

		d := displayValue(rs.Score * multiplier)
		display[dimension] = DimensionScore{Score: d, Reasoning: rs.Reasoning, Inverted: Inverted(dimension)}
		total += float64(calcValue(dimension, d)) * weight
	}

	return clampRound1(total * 10), display
}

// GoNoGo computes the 8-dimension score. No quality multiplier applies; the
// raw value is rounded and clamped for display and inverted dimensions
// contribute 10-display to the weighted sum.
func GoNoGo(raw map[string]RawScore) (float64, map[string]DimensionScore) {
	display := make(map[string]DimensionScore, len(goNoGoWeights))
	total := 0.0

	for dimension, weight := range goNoGoWeights {
		rs, ok := raw[dimension]
		if !ok {
			rs = RawScore{Score: 5}
		}
		d := displayValue(rs.Score)
		display[dimension] = DimensionScore{Score: d, Reasoning: rs.Reasoning, Inverted: Inverted(dimension)}
		total += float64(calcValue(dimension, d)) * weight
	}

	return clampRound1(total * 10), display
}

// displayValue rounds to the nearest integer and clamps to [0,10]. Ties
// round half to even, so a multiplier landing exactly on .5 never inflates
// the displayed score.
func displayValue(v float64) int {
	if v < 0 {
		v = 0
	}
	if v > 10 {
		v = 10
	}
	return int(math.RoundToEven(v))
}

// calcValue applies inversion to a display value.
func calcValue(dimension string, display int) int {
	if Inverted(dimension) {
		return 10 - display
	}
	return display
}

func clampRound1(v float64) float64 {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return math.Round(v*10) / 10
}

// PackageRecommendation maps a 0-100 score to the report package suggested to
// the user: <=35 quit, <=60 premium, <=85 standard, else basic.
func PackageRecommendation(score float64) string {
	switch {
	case score <= quitThreshold:
		return "quit"
	case score <= premiumThreshold:
		return "premium"
	case score <= standardThreshold:
		return "standard"
	default:
		return "basic"
	}
}

// GaugeStatus maps a 0-100 score to the coarse gauge shown on the report.
func GaugeStatus(score float64) string {
	if score > promisingThreshold {
		return "promising"
	}
	return "needs work"
}
