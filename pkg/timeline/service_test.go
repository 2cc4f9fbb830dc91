package timeline

import (
	"context"
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/logging"
	"github.com/Ramsey-B/fern/pkg/models"
)

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
	byContract map[string][]models.ComponentState
}

func (f *fakeStates) Get(ctx context.Context, contractID, componentType string) (*models.ComponentState, error) {
	panic("not used")
}

func (f *fakeStates) LockPair(ctx context.Context, contractID, componentType string) error {
	panic("not used")
}

func (f *fakeStates) GetForUpdate(ctx context.Context, contractID, componentType string) (*models.ComponentState, error) {
	panic("not used")
}

func (f *fakeStates) Upsert(ctx context.Context, contractID, componentType string, fields models.ComponentStateFields) (*models.ComponentState, error) {
	panic("not used")
}

func (f *fakeStates) ListByContract(ctx context.Context, contractID string) ([]models.ComponentState, error) {
	return f.byContract[contractID], nil
}

func datePtr(t *testing.T, value string) *models.Date {
	t.Helper()
	d, err := models.ParseDate(value)
	require.NoError(t, err)
	return &d
}

func TestGetTimeline(t *testing.T) {
	contracts := &fakeContracts{byNumber: map[string]*models.Contract{
		"C-100": {ID: "contract-100", ContractNumber: "C-100", Components: []string{"battery_optimization", "energy_supply"}},
	}}
	states := &fakeStates{byContract: map[string][]models.ComponentState{
		"contract-100": {
			{
				ContractID:    "contract-100",
				ComponentType: "battery_optimization",
				StartDate:     datePtr(t, "2024-03-03"),
				EndDate:       datePtr(t, "2024-04-04"),
			},
			{
				ContractID:    "contract-100",
				ComponentType: "energy_supply",
				StartDate:     datePtr(t, "2024-01-01"),
			},
		},
	}}

	service := NewService(contracts, states, logging.NewNopLogger())

	view, err := service.GetTimeline(context.Background(), "C-100")
	require.NoError(t, err)
	assert.Equal(t, "C-100", view.ContractNumber)
	require.Len(t, view.Components, 2)

	battery := view.Components["battery_optimization"]
	require.NotNil(t, battery.Start)
	assert.Equal(t, "2024-03-03", battery.Start.String())
	require.NotNil(t, battery.End)
	assert.Equal(t, "2024-04-04", battery.End.String())

	supply := view.Components["energy_supply"]
	require.NotNil(t, supply.Start)
	assert.Nil(t, supply.End)
}

func TestGetTimeline_NoStatesYet(t *testing.T) {
	contracts := &fakeContracts{byNumber: map[string]*models.Contract{
		"C-200": {ID: "contract-200", ContractNumber: "C-200", Components: []string{"heatpump_optimization"}},
	}}
	states := &fakeStates{byContract: map[string][]models.ComponentState{}}

	service := NewService(contracts, states, logging.NewNopLogger())

	view, err := service.GetTimeline(context.Background(), "C-200")
	require.NoError(t, err)
	assert.Empty(t, view.Components)
}

func TestGetTimeline_ContractNotFound(t *testing.T) {
	contracts := &fakeContracts{byNumber: map[string]*models.Contract{}}
	states := &fakeStates{byContract: map[string][]models.ComponentState{}}

	service := NewService(contracts, states, logging.NewNopLogger())

	_, err := service.GetTimeline(context.Background(), "C-404")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
}
