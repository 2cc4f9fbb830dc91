package event

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/ingestion"
	"github.com/Ramsey-B/fern/pkg/logging"
	"github.com/Ramsey-B/fern/pkg/models"
)

type fakeTx struct {
	database.Tx
}

func (t *fakeTx) Commit(ctx context.Context) error   { return nil }
func (t *fakeTx) Rollback(ctx context.Context) error { return nil }
func (t *fakeTx) IsOpen() bool                       { return true }

type fakeDB struct {
	database.DB
}

func (f *fakeDB) GetTx(ctx context.Context, opts *sql.TxOptions) (context.Context, database.Tx, error) {
	return ctx, &fakeTx{}, nil
}

type fakeContracts struct {
	byNumber map[string]*models.Contract
}

func (f *fakeContracts) Create(ctx context.Context, req models.CreateContractRequest) (*models.Contract, error) {
	panic("not used")
}

func (f *fakeContracts) GetByNumber(ctx context.Context, contractNumber string) (*models.Contract, error) {
	return f.byNumber[contractNumber], nil
}

func (f *fakeContracts) Delete(ctx context.Context, id string) error {
	panic("not used")
}

type fakeStates struct {
	states map[string]*models.ComponentState
}

func (f *fakeStates) Get(ctx context.Context, contractID, componentType string) (*models.ComponentState, error) {
	return f.states[contractID+"/"+componentType], nil
}

func (f *fakeStates) LockPair(ctx context.Context, contractID, componentType string) error {
	return nil
}

func (f *fakeStates) GetForUpdate(ctx context.Context, contractID, componentType string) (*models.ComponentState, error) {
	return f.states[contractID+"/"+componentType], nil
}

func (f *fakeStates) Upsert(ctx context.Context, contractID, componentType string, fields models.ComponentStateFields) (*models.ComponentState, error) {
	key := contractID + "/" + componentType
	state := f.states[key]
	if state == nil {
		state = &models.ComponentState{ContractID: contractID, ComponentType: componentType}
		f.states[key] = state
	}
	if fields.StartDate != nil {
		state.StartDate = fields.StartDate
	}
	if fields.StartEventCreatedAt != nil {
		state.StartEventCreatedAt = fields.StartEventCreatedAt
	}
	if fields.EndDate != nil {
		state.EndDate = fields.EndDate
	}
	if fields.EndEventCreatedAt != nil {
		state.EndEventCreatedAt = fields.EndEventCreatedAt
	}
	return state, nil
}

func (f *fakeStates) ListByContract(ctx context.Context, contractID string) ([]models.ComponentState, error) {
	panic("not used")
}

type fakeAudits struct{}

func (f *fakeAudits) Append(ctx context.Context, audit models.EventAudit) (*models.EventAudit, error) {
	return &audit, nil
}

func (f *fakeAudits) ListByContract(ctx context.Context, contractID string) ([]models.EventAudit, error) {
	panic("not used")
}

func newTestHandler() *Handler {
	logger := logging.NewNopLogger()
	contracts := &fakeContracts{byNumber: map[string]*models.Contract{
		"C-100": {ID: "contract-100", ContractNumber: "C-100", Components: []string{"battery_optimization"}},
	}}
	processor := ingestion.NewProcessor(&fakeDB{}, contracts, &fakeStates{states: map[string]*models.ComponentState{}}, &fakeAudits{}, nil, logger, ingestion.Options{})
	return NewHandler(processor, logger)
}

func postEvent(t *testing.T, h *Handler, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/event", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, h.Process(e.NewContext(req, rec))
}

func TestProcessEvent_Accepted(t *testing.T) {
	h := newTestHandler()

	rec, err := postEvent(t, h, `{"type":"battery_optimization_start","contract_number":"C-100","date":"2024-03-03","created_at":"2024-03-03T10:00:00Z"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var result models.EventResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, models.StatusAccepted, result.Status)
	assert.Equal(t, "Event processed successfully.", result.Message)
}

func TestProcessEvent_RejectionStillReturns200(t *testing.T) {
	h := newTestHandler()

	rec, err := postEvent(t, h, `{"type":"battery_optimization_end","contract_number":"C-100","date":"2024-04-04","created_at":"2024-04-04T10:00:00Z"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var result models.EventResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, models.StatusRejected, result.Status)
	assert.Equal(t, "End event without a start event should be rejected.", result.Message)
}

func TestProcessEvent_UnknownTypeIs422(t *testing.T) {
	h := newTestHandler()

	_, err := postEvent(t, h, `{"type":"solar_panel_start","contract_number":"C-100","date":"2024-03-03","created_at":"2024-03-03T10:00:00Z"}`)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, httperror.GetStatusCode(err))
}

func TestProcessEvent_MalformedDateIs422(t *testing.T) {
	h := newTestHandler()

	_, err := postEvent(t, h, `{"type":"battery_optimization_start","contract_number":"C-100","date":"03/03/2024","created_at":"2024-03-03T10:00:00Z"}`)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, httperror.GetStatusCode(err))
}

func TestProcessEvent_MissingFieldsIs422(t *testing.T) {
	h := newTestHandler()

	_, err := postEvent(t, h, `{"type":"battery_optimization_start"}`)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, httperror.GetStatusCode(err))
}
