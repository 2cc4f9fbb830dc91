package ingestion

import (
	"context"
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/logging"
	"github.com/Ramsey-B/fern/pkg/models"
)

type failingContracts struct{}

func (f *failingContracts) Create(ctx context.Context, req models.CreateContractRequest) (*models.Contract, error) {
	panic("not used")
}

func (f *failingContracts) GetByNumber(ctx context.Context, contractNumber string) (*models.Contract, error) {
	return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get contract")
}

func (f *failingContracts) Delete(ctx context.Context, id string) error {
	panic("not used")
}

func busMessage(event *kafka.EventMessage) *kafka.ReceivedMessage {
	return &kafka.ReceivedMessage{Topic: "contract-events", Offset: 7, Event: event}
}

func TestBusHandler_ProcessesEvent(t *testing.T) {
	f := newFixture(t, Options{AuditEnabled: true})
	handler := NewBusHandler(f.processor, logging.NewNopLogger())

	err := handler(context.Background(), busMessage(&kafka.EventMessage{
		Type:           "battery_optimization_start",
		ContractNumber: "C-100",
		Date:           "2024-03-03",
		CreatedAt:      "2024-03-03T10:00:00Z",
	}))
	require.NoError(t, err)

	state := f.states.states[stateKey("contract-100", "battery_optimization")]
	require.NotNil(t, state)
	assert.Equal(t, "2024-03-03", state.StartDate.String())
}

func TestBusHandler_MalformedPayloadDiscarded(t *testing.T) {
	f := newFixture(t, Options{AuditEnabled: true})
	handler := NewBusHandler(f.processor, logging.NewNopLogger())

	// A bad payload returns nil so the consumer commits past it instead of
	// redelivering it forever.
	err := handler(context.Background(), busMessage(&kafka.EventMessage{
		Type:           "battery_optimization_start",
		ContractNumber: "C-100",
		Date:           "03/03/2024",
		CreatedAt:      "2024-03-03T10:00:00Z",
	}))
	require.NoError(t, err)
	assert.Empty(t, f.states.states)
	assert.Empty(t, f.audits.rows)
}

func TestBusHandler_MissingPayloadDiscarded(t *testing.T) {
	f := newFixture(t, Options{AuditEnabled: true})
	handler := NewBusHandler(f.processor, logging.NewNopLogger())

	err := handler(context.Background(), busMessage(nil))
	require.NoError(t, err)
	assert.Empty(t, f.audits.rows)
}

func TestBusHandler_StorageFailureSurfaces(t *testing.T) {
	processor := NewProcessor(
		&fakeDB{},
		&failingContracts{},
		&fakeStates{states: map[string]*models.ComponentState{}},
		&fakeAudits{},
		nil,
		logging.NewNopLogger(),
		Options{},
	)
	handler := NewBusHandler(processor, logging.NewNopLogger())

	// Processing failures propagate so the consumer leaves the offset
	// uncommitted and the event is retried.
	err := handler(context.Background(), busMessage(&kafka.EventMessage{
		Type:           "battery_optimization_start",
		ContractNumber: "C-100",
		Date:           "2024-03-03",
		CreatedAt:      "2024-03-03T10:00:00Z",
	}))
	require.Error(t, err)
}
