package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/mocks"
	"go.uber.org/zap/zaptest"

	"github.com/validately/orchestrator/internal/config"
	"github.com/validately/orchestrator/internal/journey"
	"github.com/validately/orchestrator/internal/metrics"
	"github.com/validately/orchestrator/internal/server"
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

func testMux(t *testing.T, tc client.Client) *http.ServeMux {
	t.Helper()
	cfg := &config.Config{Consistency: config.ConsistencyConfig{MaxFixAttempts: 1}}
	svc := server.NewJourneyService(tc, nil, config.NewStore(cfg), metrics.Nop, zaptest.NewLogger(t))
	mux := http.NewServeMux()
	NewJourneyHandler(svc, zaptest.NewLogger(t)).RegisterRoutes(mux)
	return mux
}

func TestSubmitJourneyEndpoint(t *testing.T) {
	mockClient := &mocks.Client{}
	mockRun := &mocks.WorkflowRun{}
	mockRun.On("GetID").Return("validation-x")
	mockClient.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(mockRun, nil)

	mux := testMux(t, mockClient)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/journeys",
		strings.NewReader(`{"description":"AI bookkeeping for florists","tier":"free"}`)))

	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["journey_id"])
}

func TestSubmitJourneyRejectsBadRequests(t *testing.T) {
	mockClient := &mocks.Client{}
	mux := testMux(t, mockClient)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/journeys", strings.NewReader(`{"tier"`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "malformed JSON")

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/journeys",
		strings.NewReader(`{"tier":"free"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing description")

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/journeys", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	mockClient.AssertNotCalled(t, "ExecuteWorkflow")
}

func TestAnswerAtWrongGateIsConflict(t *testing.T) {
	mockClient := &mocks.Client{}
	mockClient.On("QueryWorkflow", mock.Anything, "validation-j1", "", workflows.QueryState).
		Return(encodedView{view: workflows.StateView{
			JourneyID: "j1",
			Gate:      workflows.GateUpgrade,
		}}, nil)

	mux := testMux(t, mockClient)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/journeys/j1/answer",
		strings.NewReader(`{"answer":"professional services"}`)))

	assert.Equal(t, http.StatusConflict, rec.Code)
	mockClient.AssertNotCalled(t, "SignalWorkflow")
}

func TestAnswerAtAnswerGateSignals(t *testing.T) {
	mockClient := &mocks.Client{}
	mockClient.On("QueryWorkflow", mock.Anything, "validation-j1", "", workflows.QueryState).
		Return(encodedView{view: workflows.StateView{
			JourneyID: "j1",
			Gate:      workflows.GateAnswer,
		}}, nil)
	mockClient.On("SignalWorkflow", mock.Anything, "validation-j1", "",
		workflows.SignalAnswer, workflows.AnswerSignal{Answer: "professional services"}).
		Return(nil)

	mux := testMux(t, mockClient)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/journeys/j1/answer",
		strings.NewReader(`{"answer":"professional services"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	mockClient.AssertExpectations(t)
}

func TestApproveRequiresApprovedTrue(t *testing.T) {
	mockClient := &mocks.Client{}
	mux := testMux(t, mockClient)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/journeys/j1/approve",
		strings.NewReader(`{"approved":false}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockClient.AssertNotCalled(t, "SignalWorkflow")
}

func TestGetStateEndpoint(t *testing.T) {
	mockClient := &mocks.Client{}
	mockClient.On("QueryWorkflow", mock.Anything, "validation-j1", "", workflows.QueryState).
		Return(encodedView{view: workflows.StateView{
			JourneyID: "j1",
			Phase:     journey.PhaseWaitingForApproval,
			Gate:      workflows.GateApproval,
			Tier:      journey.TierPremium,
		}}, nil)

	mux := testMux(t, mockClient)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/journeys/j1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var view workflows.StateView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, journey.PhaseWaitingForApproval, view.Phase)
	assert.Equal(t, workflows.GateApproval, view.Gate)
}

func TestUnknownJourneyRouteIs404(t *testing.T) {
	mux := testMux(t, &mocks.Client{})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/journeys/j1/reset", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
