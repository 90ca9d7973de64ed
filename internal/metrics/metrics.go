package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Journey metrics
	JourneysStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validately_journeys_started_total",
			Help: "Total number of validation journeys started",
		},
		[]string{"tier"},
	)

	JourneysCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validately_journeys_completed_total",
			Help: "Total number of validation journeys completed",
		},
		[]string{"tier", "status"},
	)

	PhaseTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validately_phase_transitions_total",
			Help: "Total number of journey phase transitions",
		},
		[]string{"phase"},
	)

	// Research metrics
	ResearchQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validately_research_queries_total",
			Help: "Total number of search queries issued",
		},
		[]string{"outcome"},
	)

	ResearchEscalations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validately_research_escalations_total",
			Help: "Research escalation levels reached when strict filtering was empty",
		},
		[]string{"level"},
	)

	// Scoring metrics
	ScoresComputed = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "validately_scores_computed",
			Help:    "Distribution of computed 0-100 scores",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"pass"},
	)

	// Module metrics
	ModuleExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validately_module_executions_total",
			Help: "Total number of report module generations",
		},
		[]string{"module", "status"},
	)

	// Consistency metrics
	ConsistencyChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validately_consistency_checks_total",
			Help: "Cross-module consistency check outcomes",
		},
		[]string{"outcome"},
	)

	ConsistencyFixes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "validately_consistency_fixes_total",
			Help: "Total number of applied cross-module consistency fixes",
		},
	)
)
