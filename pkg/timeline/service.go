// Package timeline derives the read-side lifecycle view over a contract's
// component states.
package timeline

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/internal/repositories"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Service aggregates component states into a per-contract timeline
type Service struct {
	contracts repositories.ContractRepository
	states    repositories.ComponentStateRepository
	logger    ectologger.Logger
}

// NewService creates a new timeline service
func NewService(contracts repositories.ContractRepository, states repositories.ComponentStateRepository, logger ectologger.Logger) *Service {
	return &Service{
		contracts: contracts,
		states:    states,
		logger:    logger,
	}
}

// GetTimeline returns the start/end window per component type for the given
// contract. Components with no state row yet are omitted.
func (s *Service) GetTimeline(ctx context.Context, contractNumber string) (*models.TimelineResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "timeline.Service.GetTimeline")
	defer span.End()

	contract, err := s.contracts.GetByNumber(ctx, contractNumber)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "Contract %s not found.", contractNumber)
	}

	states, err := s.states.ListByContract(ctx, contract.ID)
	if err != nil {
		return nil, err
	}

	components := make(map[string]models.ComponentWindow, len(states))
	for _, state := range states {
		components[state.ComponentType] = models.ComponentWindow{
			Start: state.StartDate,
			End:   state.EndDate,
		}
	}

	return &models.TimelineResponse{
		ContractNumber: contract.ContractNumber,
		Components:     components,
	}, nil
}
