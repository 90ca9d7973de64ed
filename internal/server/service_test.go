package server

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"
	"go.uber.org/zap/zaptest"

	"github.com/validately/orchestrator/internal/config"
	"github.com/validately/orchestrator/internal/journey"
	"github.com/validately/orchestrator/internal/metrics"
	"github.com/validately/orchestrator/internal/workflows"
)

// encodedView satisfies converter.EncodedValue for query responses.
type encodedView struct {
	view workflows.StateView
}

func (e encodedView) HasValue() bool { return true }
func (e encodedView) Get(out any) error {
	blob, err := json.Marshal(e.view)
	if err != nil {
		return err
	}
	return json.Unmarshal(blob, out)
}

func testService(t *testing.T, tc client.Client, store *journey.Store) *JourneyService {
	t.Helper()
	cfg := &config.Config{Consistency: config.ConsistencyConfig{MaxFixAttempts: 1}}
	return NewJourneyService(tc, store, config.NewStore(cfg), metrics.Nop, zaptest.NewLogger(t))
}

func TestSubmitValidation(t *testing.T) {
	mockClient := &mocks.Client{}
	svc := testService(t, mockClient, nil)

	_, err := svc.Submit(context.Background(), "", journey.TierFree, nil)
	assert.Error(t, err)

	_, err = svc.Submit(context.Background(), "idea", journey.Tier("platinum"), nil)
	assert.Error(t, err)

	_, err = svc.Submit(context.Background(), "idea", journey.TierCustom, nil)
	assert.Error(t, err, "custom tier without modules is rejected")

	mockClient.AssertNotCalled(t, "ExecuteWorkflow")
}

func TestSubmitStartsWorkflow(t *testing.T) {
	mockClient := &mocks.Client{}
	mockRun := &mocks.WorkflowRun{}
	mockRun.On("GetID").Return("validation-x")

	mockClient.On("ExecuteWorkflow",
		mock.Anything,
		mock.MatchedBy(func(opts client.StartWorkflowOptions) bool {
			return opts.TaskQueue == TaskQueue && opts.ID != ""
		}),
		mock.Anything,
		mock.MatchedBy(func(in workflows.JourneyInput) bool {
			return in.Description == "idea" &&
				in.Tier == journey.TierFree &&
				in.MaxFixAttempts == 1
		}),
	).Return(mockRun, nil)

	sink := &recordingSink{Sink: metrics.Nop}
	cfg := &config.Config{Consistency: config.ConsistencyConfig{MaxFixAttempts: 1}}
	svc := NewJourneyService(mockClient, nil, config.NewStore(cfg), sink, zaptest.NewLogger(t))
	id, err := svc.Submit(context.Background(), "idea", journey.TierFree, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, []string{"free"}, sink.started)
	mockClient.AssertExpectations(t)
}

// recordingSink captures journey-start observations and discards the rest.
type recordingSink struct {
	metrics.Sink
	started []string
}

func (r *recordingSink) JourneyStarted(tier string) { r.started = append(r.started, tier) }

func TestSubmitAnswerRejectsWrongGate(t *testing.T) {
	mockClient := &mocks.Client{}
	mockClient.On("QueryWorkflow", mock.Anything, "validation-j1", "", workflows.QueryState).
		Return(encodedView{workflows.StateView{Gate: workflows.GateUpgrade}}, nil)

	svc := testService(t, mockClient, nil)
	err := svc.SubmitAnswer(context.Background(), "j1", "my answer")
	assert.ErrorIs(t, err, ErrWrongGate)
	mockClient.AssertNotCalled(t, "SignalWorkflow")
}

func TestSubmitAnswerSignalsAtAnswerGate(t *testing.T) {
	mockClient := &mocks.Client{}
	mockClient.On("QueryWorkflow", mock.Anything, "validation-j1", "", workflows.QueryState).
		Return(encodedView{workflows.StateView{Gate: workflows.GateAnswer}}, nil)
	mockClient.On("SignalWorkflow", mock.Anything, "validation-j1", "",
		workflows.SignalAnswer, workflows.AnswerSignal{Answer: "my answer"}).Return(nil)

	svc := testService(t, mockClient, nil)
	require.NoError(t, svc.SubmitAnswer(context.Background(), "j1", "my answer"))
	mockClient.AssertExpectations(t)
}

func TestUpgradeTierRequiresPaidTier(t *testing.T) {
	mockClient := &mocks.Client{}
	svc := testService(t, mockClient, nil)

	err := svc.UpgradeTier(context.Background(), "j1", journey.TierFree, nil)
	assert.Error(t, err)
	mockClient.AssertNotCalled(t, "QueryWorkflow")
}

func TestApproveSignalsApprovalGate(t *testing.T) {
	mockClient := &mocks.Client{}
	mockClient.On("QueryWorkflow", mock.Anything, "validation-j1", "", workflows.QueryState).
		Return(encodedView{workflows.StateView{Gate: workflows.GateApproval}}, nil)
	edited := map[string]any{"report": "edited"}
	mockClient.On("SignalWorkflow", mock.Anything, "validation-j1", "",
		workflows.SignalApproval, workflows.ApprovalSignal{Approved: true, EditedReport: edited}).Return(nil)

	svc := testService(t, mockClient, nil)
	require.NoError(t, svc.Approve(context.Background(), "j1", edited))
	mockClient.AssertExpectations(t)
}

func TestGetStateFallsBackToStore(t *testing.T) {
	mockClient := &mocks.Client{}
	mockClient.On("QueryWorkflow", mock.Anything, "validation-j1", "", workflows.QueryState).
		Return(nil, errors.New("workflow execution not found"))

	db, dbMock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	snap := journey.Snapshot{
		ID:    "j1",
		Phase: journey.PhaseComplete,
		Tier:  journey.TierPremium,
		Title: "Done Venture",
		FinalReport: map[string]any{
			"report": "final",
		},
	}
	blob, err := json.Marshal(snap)
	require.NoError(t, err)
	dbMock.ExpectQuery(`SELECT snapshot FROM journeys`).
		WithArgs("j1").
		WillReturnRows(sqlmock.NewRows([]string{"snapshot"}).AddRow(blob))

	store := journey.NewStoreWithDB(sqlx.NewDb(db, "postgres"), zaptest.NewLogger(t))
	svc := testService(t, mockClient, store)

	view, err := svc.GetState(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, journey.PhaseComplete, view.Phase)
	assert.Equal(t, "complete", view.Status)
	assert.Equal(t, "Done Venture", view.Title)
	assert.NotNil(t, view.FinalReport)
	require.NoError(t, dbMock.ExpectationsWereMet())
}
