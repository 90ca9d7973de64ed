// Package workflows contains the Temporal workflows driving a validation
// journey: the top-level state machine and the parallel module generation
// with consistency repair. Workflow code is deterministic; all I/O lives in
// the activities package.
package workflows

import (
	"github.com/validately/orchestrator/internal/journey"
)

// Signal and query names exposed to the service layer.
const (
	SignalAnswer   = "answer-submitted"
	SignalUpgrade  = "tier-upgraded"
	SignalApproval = "approval-decision"

	QueryState = "journey-state"
)

// Activity names, matching the method names on activities.Activities.
const (
	ActivityInterviewStep         = "InterviewStep"
	ActivityEvaluateQuality       = "EvaluateInterviewQuality"
	ActivitySynthesizeContext     = "SynthesizeContext"
	ActivityScoringResearch       = "ConductScoringResearch"
	ActivityComprehensiveResearch = "ComprehensiveResearch"
	ActivityGenerateDirective     = "GenerateDirective"
	ActivityScoreViability        = "ScoreViability"
	ActivityScoreGoNoGo           = "ScoreGoNoGo"
	ActivityGenerateFreeReport    = "GenerateFreeReport"
	ActivityGenerateBasicReport   = "GenerateBasicReport"
	ActivityGenerateModule        = "GenerateModule"
	ActivitySummarizeModule       = "SummarizeModule"
	ActivityCheckConsistency      = "CheckConsistency"
	ActivityFixIssue              = "FixIssue"
	ActivityCompileReport         = "CompileReport"
	ActivitySaveJourney           = "SaveJourney"
	ActivityNotifyReportReady     = "NotifyReportReady"
)

// Gate tags a suspension point so the calling boundary can tell the waits
// apart.
type Gate string

const (
	GateNone     Gate = ""
	GateAnswer   Gate = "waiting_for_answer"
	GateUpgrade  Gate = "waiting_for_upgrade"
	GateApproval Gate = "waiting_for_approval"
)

// JourneyInput starts a validation workflow. MaxFixAttempts bounds the
// consistency verify-and-fix cycle; zero disables repair entirely.
type JourneyInput struct {
	JourneyID      string       `json:"journey_id"`
	Description    string       `json:"description"`
	Tier           journey.Tier `json:"tier"`
	CustomModules  []string     `json:"custom_modules,omitempty"`
	MaxFixAttempts int          `json:"max_fix_attempts"`
}

// JourneyResult is the workflow's terminal summary.
type JourneyResult struct {
	JourneyID string        `json:"journey_id"`
	Phase     journey.Phase `json:"phase"`
	Status    string        `json:"status"`
}

// AnswerSignal resumes the interview gate.
type AnswerSignal struct {
	Answer string `json:"answer"`
}

// UpgradeSignal resumes the upgrade gate with the paid tier to run.
type UpgradeSignal struct {
	Tier          journey.Tier `json:"tier"`
	CustomModules []string     `json:"custom_modules,omitempty"`
}

// ApprovalSignal resumes the approval gate, optionally overwriting the
// generated report with an edited one.
type ApprovalSignal struct {
	Approved     bool           `json:"approved"`
	EditedReport map[string]any `json:"edited_report,omitempty"`
}

// StateView is the pure-read projection served by the journey-state query.
type StateView struct {
	JourneyID       string            `json:"journey_id"`
	Phase           journey.Phase     `json:"phase"`
	Status          string            `json:"status"`
	Gate            Gate              `json:"gate,omitempty"`
	Tier            journey.Tier      `json:"tier"`
	PendingQuestion string            `json:"pending_question,omitempty"`
	Title           string            `json:"title,omitempty"`
	FreeReport      map[string]any    `json:"free_report,omitempty"`
	FinalReport     map[string]any    `json:"final_report,omitempty"`
	Error           journey.ErrorInfo `json:"error"`
}
