package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/validately/orchestrator/internal/activities"
	"github.com/validately/orchestrator/internal/journey"
)

// ValidationWorkflow is the resumable journey state machine. It sequences
// interview, research, tier-specific generation, and the approval gate, and
// persists the merged snapshot after every transition so a worker restart
// resumes exactly where it halted. External resumption arrives as signals;
// a signal targeting the wrong gate is drained and ignored.
func ValidationWorkflow(ctx workflow.Context, input JourneyInput) (JourneyResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting validation journey",
		"journey_id", input.JourneyID,
		"tier", string(input.Tier),
	)

	snap := journey.New(input.JourneyID, input.Description, input.Tier, input.CustomModules, workflow.Now(ctx).UTC())
	gate := GateNone

	if err := workflow.SetQueryHandler(ctx, QueryState, func() (StateView, error) {
		return stateView(snap, gate), nil
	}); err != nil {
		return JourneyResult{}, err
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
	})

	answerCh := workflow.GetSignalChannel(ctx, SignalAnswer)
	upgradeCh := workflow.GetSignalChannel(ctx, SignalUpgrade)
	approvalCh := workflow.GetSignalChannel(ctx, SignalApproval)

	// commit merges an update into the snapshot and persists the whole
	// result atomically before the workflow moves on.
	commit := func(u journey.Update) error {
		snap = u.Apply(snap, workflow.Now(ctx).UTC())
		return workflow.ExecuteActivity(ctx, ActivitySaveJourney,
			activities.SaveJourneyInput{Snapshot: snap}).Get(ctx, nil)
	}

	// fail converts any node failure into the terminal failed phase while
	// keeping everything already persisted.
	fail := func(node string, cause error) (JourneyResult, error) {
		logger.Error("Journey node failed", "journey_id", snap.ID, "node", node, "error", cause)
		_ = commit(journey.Update{
			Phase: phasePtr(journey.PhaseFailed),
			Error: &journey.ErrorInfo{Failed: true, Message: cause.Error(), Node: node},
		})
		return JourneyResult{JourneyID: snap.ID, Phase: journey.PhaseFailed, Status: "failed"}, cause
	}

	if err := commit(journey.Update{}); err != nil {
		return fail("persist", err)
	}

	// Interview loop: ask until the completion policy fires, suspending on
	// every question.
	for {
		var step activities.InterviewStepResult
		err := workflow.ExecuteActivity(ctx, ActivityInterviewStep, activities.InterviewStepInput{
			JourneyID:   snap.ID,
			Description: snap.Description,
			History:     snap.Interview,
		}).Get(ctx, &step)
		if err != nil {
			return fail("interview", err)
		}
		if step.Complete {
			break
		}

		if err := commit(journey.Update{PendingQuestion: &step.Question}); err != nil {
			return fail("persist", err)
		}

		gate = GateAnswer
		drainSignals(answerCh, upgradeCh, approvalCh)
		var answer AnswerSignal
		for {
			answerCh.Receive(ctx, &answer)
			if answer.Answer != "" {
				break
			}
			logger.Warn("Ignoring empty answer signal", "journey_id", snap.ID)
		}
		gate = GateNone

		qa := journey.QA{Question: snap.PendingQuestion, Answer: answer.Answer}
		none := ""
		if err := commit(journey.Update{AppendQA: &qa, PendingQuestion: &none}); err != nil {
			return fail("persist", err)
		}
	}

	// Quality evaluation and context synthesis run concurrently; both feed
	// the research and scoring that follow.
	qualityF := workflow.ExecuteActivity(ctx, ActivityEvaluateQuality, activities.EvaluateQualityInput{
		JourneyID: snap.ID, Description: snap.Description, History: snap.Interview,
	})
	synthF := workflow.ExecuteActivity(ctx, ActivitySynthesizeContext, activities.SynthesizeContextInput{
		JourneyID: snap.ID, Description: snap.Description, History: snap.Interview,
	})

	var quality activities.EvaluateQualityResult
	if err := qualityF.Get(ctx, &quality); err != nil {
		return fail("interview_quality", err)
	}
	var synth activities.SynthesizeContextResult
	if err := synthF.Get(ctx, &synth); err != nil {
		return fail("context_synthesis", err)
	}

	if err := commit(journey.Update{
		Phase:   phasePtr(journey.PhaseResearching),
		Quality: &quality.Quality,
		Title:   &synth.Title,
		Context: &synth.Context,
	}); err != nil {
		return fail("persist", err)
	}

	// The generation path after research is chosen solely by tier. The free
	// tier produces the teaser report and suspends; a tier upgrade resumes
	// into the paid path below.
	if !snap.Tier.Paid() {
		// Scoring research and the viability score run once per journey: a
		// persisted bundle is reused verbatim, never recomputed.
		if snap.ViabilityBundle == nil {
			var research activities.ScoringResearchResult
			err := workflow.ExecuteActivity(ctx, ActivityScoringResearch, activities.ScoringResearchInput{
				JourneyID: snap.ID, Description: snap.Description, Context: snap.Context,
			}).Get(ctx, &research)
			if err != nil {
				return fail("scoring_research", err)
			}

			var scored activities.ScoreViabilityResult
			err = workflow.ExecuteActivity(ctx, ActivityScoreViability, activities.ScoreViabilityInput{
				JourneyID:   snap.ID,
				Description: snap.Description,
				Context:     snap.Context,
				Research:    research.Research,
				Quality:     snap.Quality,
			}).Get(ctx, &scored)
			if err != nil {
				return fail("viability_scoring", err)
			}

			if err := commit(journey.Update{ViabilityBundle: &scored.Bundle}); err != nil {
				return fail("persist", err)
			}
		}

		var free activities.FreeReportResult
		err := workflow.ExecuteActivity(ctx, ActivityGenerateFreeReport, activities.FreeReportInput{
			JourneyID:   snap.ID,
			Description: snap.Description,
			Title:       snap.Title,
			Context:     snap.Context,
			Bundle:      *snap.ViabilityBundle,
		}).Get(ctx, &free)
		if err != nil {
			return fail("free_report", err)
		}
		if err := commit(journey.Update{
			Phase:      phasePtr(journey.PhaseFreeReport),
			FreeReport: free.Report,
		}); err != nil {
			return fail("persist", err)
		}

		// The free report is terminal unless the user upgrades.
		if err := commit(journey.WithPhase(journey.PhasePausedForUpgrade)); err != nil {
			return fail("persist", err)
		}

		gate = GateUpgrade
		drainSignals(answerCh, upgradeCh, approvalCh)
		for {
			var upgrade UpgradeSignal
			upgradeCh.Receive(ctx, &upgrade)
			if !upgrade.Tier.Paid() {
				logger.Warn("Ignoring upgrade signal without a paid tier",
					"journey_id", snap.ID, "tier", string(upgrade.Tier))
				continue
			}
			if err := commit(journey.Update{
				Tier:          &upgrade.Tier,
				CustomModules: &upgrade.CustomModules,
			}); err != nil {
				return fail("persist", err)
			}
			break
		}
		gate = GateNone
	}

	if err := commit(journey.WithPhase(journey.PhasePaidAnalysis)); err != nil {
		return fail("persist", err)
	}

	// Comprehensive research is the expensive shared prerequisite; computed
	// at most once per journey.
	if snap.ComprehensiveResearch == "" {
		var modules []string
		if snap.Tier == journey.TierCustom {
			modules = snap.SelectedModules()
		}
		var research activities.ComprehensiveResearchResult
		err := workflow.ExecuteActivity(ctx, ActivityComprehensiveResearch, activities.ComprehensiveResearchInput{
			JourneyID:   snap.ID,
			Description: snap.Description,
			Context:     snap.Context,
			Tier:        snap.Tier,
			Modules:     modules,
		}).Get(ctx, &research)
		if err != nil {
			return fail("comprehensive_research", err)
		}
		if err := commit(journey.Update{ComprehensiveResearch: &research.Research}); err != nil {
			return fail("persist", err)
		}
	}

	if snap.GoNoGoBundle == nil {
		// An upgraded journey reuses the research snapshot already persisted
		// with the viability bundle; a directly paid journey gathers it here.
		var research map[string]string
		if snap.ViabilityBundle != nil {
			research = snap.ViabilityBundle.Research
		} else {
			var gathered activities.ScoringResearchResult
			err := workflow.ExecuteActivity(ctx, ActivityScoringResearch, activities.ScoringResearchInput{
				JourneyID: snap.ID, Description: snap.Description, Context: snap.Context,
			}).Get(ctx, &gathered)
			if err != nil {
				return fail("scoring_research", err)
			}
			research = gathered.Research
		}
		var scored activities.ScoreGoNoGoResult
		err := workflow.ExecuteActivity(ctx, ActivityScoreGoNoGo, activities.ScoreGoNoGoInput{
			JourneyID:   snap.ID,
			Description: snap.Description,
			Context:     snap.Context,
			Research:    research,
		}).Get(ctx, &scored)
		if err != nil {
			return fail("go_no_go_scoring", err)
		}
		if err := commit(journey.Update{GoNoGoBundle: &scored.Bundle}); err != nil {
			return fail("persist", err)
		}
	}

	var final map[string]any
	if snap.Tier.ParallelModules() {
		// The strategic directive is the second shared prerequisite.
		if snap.Directive == nil {
			var directive activities.DirectiveResult
			err := workflow.ExecuteActivity(ctx, ActivityGenerateDirective, activities.DirectiveInput{
				JourneyID:   snap.ID,
				Description: snap.Description,
				Context:     snap.Context,
				Research:    snap.ComprehensiveResearch,
			}).Get(ctx, &directive)
			if err != nil {
				return fail("strategic_directive", err)
			}
			if err := commit(journey.Update{Directive: &directive.Directive}); err != nil {
				return fail("persist", err)
			}
		}

		generated := runModules(ctx, snap)
		if err := commit(journey.Update{Modules: generated}); err != nil {
			return fail("persist", err)
		}

		if repaired := verifyAndRepair(ctx, snap, input.MaxFixAttempts); len(repaired) > 0 {
			if err := commit(journey.Update{Modules: repaired}); err != nil {
				return fail("persist", err)
			}
		}

		var compiled activities.CompileReportResult
		err := workflow.ExecuteActivity(ctx, ActivityCompileReport, activities.CompileReportInput{
			JourneyID:   snap.ID,
			Description: snap.Description,
			Title:       snap.Title,
			Tier:        snap.Tier,
			Modules:     snap.Modules,
			Bundle:      *snap.GoNoGoBundle,
		}).Get(ctx, &compiled)
		if err != nil {
			return fail("compile_report", err)
		}
		final = compiled.Report
	} else {
		var basic activities.BasicReportResult
		err := workflow.ExecuteActivity(ctx, ActivityGenerateBasicReport, activities.BasicReportInput{
			JourneyID:   snap.ID,
			Description: snap.Description,
			Title:       snap.Title,
			Context:     snap.Context,
			Research:    snap.ComprehensiveResearch,
			Bundle:      *snap.GoNoGoBundle,
		}).Get(ctx, &basic)
		if err != nil {
			return fail("basic_report", err)
		}
		final = basic.Report
	}

	if err := commit(journey.Update{
		Phase:       phasePtr(journey.PhaseWaitingForApproval),
		FinalReport: final,
	}); err != nil {
		return fail("persist", err)
	}

	// Approval gate: delivery is held until an admin approves, optionally
	// substituting an edited report.
	gate = GateApproval
	drainSignals(answerCh, upgradeCh, approvalCh)
	var approval ApprovalSignal
	for {
		approvalCh.Receive(ctx, &approval)
		if approval.Approved {
			break
		}
		logger.Warn("Ignoring unapproved decision signal", "journey_id", snap.ID)
	}
	gate = GateNone

	done := journey.Update{Phase: phasePtr(journey.PhaseComplete)}
	if approval.EditedReport != nil {
		done.FinalReport = approval.EditedReport
	}
	if err := commit(done); err != nil {
		return fail("persist", err)
	}

	// Delivery notification is best effort; the journey is complete either
	// way.
	if err := workflow.ExecuteActivity(ctx, ActivityNotifyReportReady, activities.NotifyInput{
		JourneyID: snap.ID,
		Phase:     snap.Phase,
		Tier:      snap.Tier,
		Title:     snap.Title,
	}).Get(ctx, nil); err != nil {
		logger.Warn("Report-ready notification failed", "journey_id", snap.ID, "error", err)
	}

	logger.Info("Validation journey complete", "journey_id", snap.ID, "tier", string(snap.Tier))
	return JourneyResult{JourneyID: snap.ID, Phase: snap.Phase, Status: snap.Status()}, nil
}

func stateView(snap journey.Snapshot, gate Gate) StateView {
	return StateView{
		JourneyID:       snap.ID,
		Phase:           snap.Phase,
		Status:          snap.Status(),
		Gate:            gate,
		Tier:            snap.Tier,
		PendingQuestion: snap.PendingQuestion,
		Title:           snap.Title,
		FreeReport:      snap.FreeReport,
		FinalReport:     snap.FinalReport,
		Error:           snap.Error,
	}
}

// drainSignals discards queued signals aimed at gates the journey is not
// suspended at.
func drainSignals(channels ...workflow.ReceiveChannel) {
	for _, ch := range channels {
		for {
			var discard any
			if !ch.ReceiveAsync(&discard) {
				break
			}
		}
	}
}

func phasePtr(p journey.Phase) *journey.Phase { return &p }
