// Package server exposes the journey contract consumed by the HTTP boundary:
// submit, answer, upgrade, approve, and the pure state read. It owns the
// Temporal client plumbing; all journey semantics live in the workflow.
package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/validately/orchestrator/internal/config"
	"github.com/validately/orchestrator/internal/journey"
	"github.com/validately/orchestrator/internal/metrics"
	"github.com/validately/orchestrator/internal/workflows"
)

// TaskQueue is the Temporal task queue the journey worker listens on.
const TaskQueue = "validately-journeys"

// ErrWrongGate is returned when a resumption call targets a journey that is
// not suspended at the matching gate.
var ErrWrongGate = errors.New("journey is not suspended at this gate")

// JourneyService drives validation journeys over a Temporal client.
type JourneyService struct {
	temporal client.Client
	store    *journey.Store
	cfg      *config.Store
	metrics  metrics.Sink
	logger   *zap.Logger
}

// NewJourneyService wires a service.
func NewJourneyService(tc client.Client, store *journey.Store, cfg *config.Store, sink metrics.Sink, logger *zap.Logger) *JourneyService {
	return &JourneyService{temporal: tc, store: store, cfg: cfg, metrics: sink, logger: logger}
}

func workflowID(journeyID string) string { return "validation-" + journeyID }

// Submit starts a journey and returns its ID once the workflow is running;
// the workflow advances to the first suspension point on its own.
func (s *JourneyService) Submit(ctx context.Context, description string, tier journey.Tier, customModules []string) (string, error) {
	if description == "" {
		return "", errors.New("description is required")
	}
	if tier == "" {
		tier = journey.TierFree
	}
	switch tier {
	case journey.TierFree, journey.TierBasic, journey.TierStandard, journey.TierPremium, journey.TierCustom:
	default:
		return "", fmt.Errorf("unknown tier %q", tier)
	}
	if tier == journey.TierCustom && len(customModules) == 0 {
		return "", errors.New("custom tier requires a module selection")
	}

	journeyID := uuid.NewString()
	_, err := s.temporal.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        workflowID(journeyID),
		TaskQueue: TaskQueue,
	}, workflows.ValidationWorkflow, workflows.JourneyInput{
		JourneyID:      journeyID,
		Description:    description,
		Tier:           tier,
		CustomModules:  customModules,
		MaxFixAttempts: s.cfg.Get().Consistency.MaxFixAttempts,
	})
	if err != nil {
		return "", fmt.Errorf("start journey workflow: %w", err)
	}

	s.metrics.JourneyStarted(string(tier))
	s.logger.Info("Journey submitted",
		zap.String("journey_id", journeyID),
		zap.String("tier", string(tier)),
	)
	return journeyID, nil
}

// SubmitAnswer resumes a journey waiting at the interview gate.
func (s *JourneyService) SubmitAnswer(ctx context.Context, journeyID, answer string) error {
	if answer == "" {
		return errors.New("answer is required")
	}
	if err := s.requireGate(ctx, journeyID, workflows.GateAnswer); err != nil {
		return err
	}
	if err := s.temporal.SignalWorkflow(ctx, workflowID(journeyID), "",
		workflows.SignalAnswer, workflows.AnswerSignal{Answer: answer}); err != nil {
		return fmt.Errorf("signal answer: %w", err)
	}
	return nil
}

// UpgradeTier resumes a journey paused after its free report into the paid
// path.
func (s *JourneyService) UpgradeTier(ctx context.Context, journeyID string, tier journey.Tier, customModules []string) error {
	if !tier.Paid() {
		return fmt.Errorf("tier %q is not a paid tier", tier)
	}
	if tier == journey.TierCustom && len(customModules) == 0 {
		return errors.New("custom tier requires a module selection")
	}
	if err := s.requireGate(ctx, journeyID, workflows.GateUpgrade); err != nil {
		return err
	}
	if err := s.temporal.SignalWorkflow(ctx, workflowID(journeyID), "",
		workflows.SignalUpgrade, workflows.UpgradeSignal{Tier: tier, CustomModules: customModules}); err != nil {
		return fmt.Errorf("signal upgrade: %w", err)
	}
	return nil
}

// Approve resumes a journey past the approval gate, optionally substituting
// an edited report for the generated one.
func (s *JourneyService) Approve(ctx context.Context, journeyID string, editedReport map[string]any) error {
	if err := s.requireGate(ctx, journeyID, workflows.GateApproval); err != nil {
		return err
	}
	if err := s.temporal.SignalWorkflow(ctx, workflowID(journeyID), "",
		workflows.SignalApproval, workflows.ApprovalSignal{Approved: true, EditedReport: editedReport}); err != nil {
		return fmt.Errorf("signal approval: %w", err)
	}
	return nil
}

// GetState is the pure read: the live workflow's query handler when the
// execution is running, the persisted snapshot once it is gone.
func (s *JourneyService) GetState(ctx context.Context, journeyID string) (workflows.StateView, error) {
	view, err := s.queryState(ctx, journeyID)
	if err == nil {
		return view, nil
	}

	snap, loadErr := s.store.Load(ctx, journeyID)
	if loadErr != nil {
		if errors.Is(loadErr, journey.ErrNotFound) {
			return workflows.StateView{}, loadErr
		}
		return workflows.StateView{}, fmt.Errorf("load journey state: %w", loadErr)
	}
	return workflows.StateView{
		JourneyID:       snap.ID,
		Phase:           snap.Phase,
		Status:          snap.Status(),
		Tier:            snap.Tier,
		PendingQuestion: snap.PendingQuestion,
		Title:           snap.Title,
		FreeReport:      snap.FreeReport,
		FinalReport:     snap.FinalReport,
		Error:           snap.Error,
	}, nil
}

func (s *JourneyService) queryState(ctx context.Context, journeyID string) (workflows.StateView, error) {
	resp, err := s.temporal.QueryWorkflow(ctx, workflowID(journeyID), "", workflows.QueryState)
	if err != nil {
		return workflows.StateView{}, err
	}
	var view workflows.StateView
	if err := resp.Get(&view); err != nil {
		return workflows.StateView{}, err
	}
	return view, nil
}

// requireGate rejects a resumption event unless the journey is currently
// suspended at the matching gate.
func (s *JourneyService) requireGate(ctx context.Context, journeyID string, gate workflows.Gate) error {
	view, err := s.queryState(ctx, journeyID)
	if err != nil {
		return fmt.Errorf("query journey %s: %w", journeyID, err)
	}
	if view.Gate != gate {
		s.logger.Warn("Rejected resumption at wrong gate",
			zap.String("journey_id", journeyID),
			zap.String("wanted", string(gate)),
			zap.String("actual", string(view.Gate)),
		)
		return fmt.Errorf("%w: journey %s is at %q, not %q", ErrWrongGate, journeyID, view.Gate, gate)
	}
	return nil
}
