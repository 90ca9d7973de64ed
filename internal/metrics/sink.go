package metrics

// Sink is the metrics interface injected into capability adapters so they
// never touch process-wide collectors directly. The default implementation
// forwards to the prometheus collectors in this package; tests inject Nop.
type Sink interface {
	JourneyStarted(tier string)
	PhaseTransition(tier, phase string)
	ResearchQuery(outcome string)
	ResearchEscalation(level string)
	ScoreComputed(pass string, score float64)
	ModuleExecution(module, status string)
	ConsistencyCheck(outcome string)
	ConsistencyFix()
}

type promSink struct{}

// Default forwards to the package prometheus collectors.
var Default Sink = promSink{}

func (promSink) JourneyStarted(tier string) { JourneysStarted.WithLabelValues(tier).Inc() }

func (promSink) PhaseTransition(tier, phase string) {
	PhaseTransitions.WithLabelValues(phase).Inc()
	if phase == "complete" || phase == "failed" {
		JourneysCompleted.WithLabelValues(tier, phase).Inc()
	}
}
func (promSink) ResearchQuery(outcome string)  { ResearchQueries.WithLabelValues(outcome).Inc() }
func (promSink) ResearchEscalation(lvl string) { ResearchEscalations.WithLabelValues(lvl).Inc() }
func (promSink) ScoreComputed(pass string, score float64) {
	ScoresComputed.WithLabelValues(pass).Observe(score)
}
func (promSink) ModuleExecution(module, status string) {
	ModuleExecutions.WithLabelValues(module, status).Inc()
}
func (promSink) ConsistencyCheck(outcome string) { ConsistencyChecks.WithLabelValues(outcome).Inc() }
func (promSink) ConsistencyFix()                 { ConsistencyFixes.Inc() }

type nopSink struct{}

// Nop discards all observations.
var Nop Sink = nopSink{}

func (nopSink) JourneyStarted(string)          {}
func (nopSink) PhaseTransition(string, string) {}
func (nopSink) ResearchQuery(string)           {}
func (nopSink) ResearchEscalation(string)      {}
func (nopSink) ScoreComputed(string, float64)  {}
func (nopSink) ModuleExecution(string, string) {}
func (nopSink) ConsistencyCheck(string)        {}
func (nopSink) ConsistencyFix()                {}
