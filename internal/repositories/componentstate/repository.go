package componentstate

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

const stateColumns = "id, contract_id, component_type, start_date, start_event_created_at, end_date, end_event_created_at, created_at, updated_at"

// Repository handles component lifecycle state persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new component state repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Get returns the state row for (contract, component), or nil when none
// exists yet.
func (r *Repository) Get(ctx context.Context, contractID, componentType string) (*models.ComponentState, error) {
	ctx, span := tracing.StartSpan(ctx, "componentstate.Repository.Get")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(stateColumns)
	sb.From("component_states")
	sb.Where(
		sb.Equal("contract_id", contractID),
		sb.Equal("component_type", componentType),
	)
	sb.Limit(1)

	query, args := sb.Build()
	var state models.ComponentState
	if err := r.db.GetContext(ctx, &state, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"contract_id": contractID, "component_type": componentType}).Error("Failed to get component state")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get component state")
	}
	return &state, nil
}

// LockPair takes a transaction-scoped advisory lock on the
// (contract, component) pair inside the transaction carried by ctx. FOR
// UPDATE alone cannot serialize the first event for a pair, there is no row
// to lock yet; the advisory lock closes that gap. Postgres releases it when
// the transaction ends.
func (r *Repository) LockPair(ctx context.Context, contractID, componentType string) error {
	ctx, span := tracing.StartSpan(ctx, "componentstate.Repository.LockPair")
	defer span.End()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to lock component state")
	}

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1 || ':' || $2))", contractID, componentType); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"contract_id": contractID, "component_type": componentType}).Error("Failed to lock component pair")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to lock component state")
	}
	return nil
}

// GetForUpdate reads the state row under a row lock inside the transaction
// carried by ctx. Concurrent events for the same (contract, component) queue
// on the lock so reconciliation never runs against stale state.
func (r *Repository) GetForUpdate(ctx context.Context, contractID, componentType string) (*models.ComponentState, error) {
	ctx, span := tracing.StartSpan(ctx, "componentstate.Repository.GetForUpdate")
	defer span.End()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get component state")
	}

	query := `
		SELECT ` + stateColumns + `
		FROM component_states
		WHERE contract_id = $1 AND component_type = $2
		FOR UPDATE
	`

	var state models.ComponentState
	if err := tx.GetContext(ctx, &state, query, contractID, componentType); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"contract_id": contractID, "component_type": componentType}).Error("Failed to lock component state")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get component state")
	}
	return &state, nil
}

// Upsert creates or updates the state row for (contract, component) inside
// the transaction carried by ctx. Nil fields leave the stored column
// untouched.
func (r *Repository) Upsert(ctx context.Context, contractID, componentType string, fields models.ComponentStateFields) (*models.ComponentState, error) {
	ctx, span := tracing.StartSpan(ctx, "componentstate.Repository.Upsert")
	defer span.End()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert component state")
	}

	query := `
		INSERT INTO component_states (id, contract_id, component_type, start_date, start_event_created_at, end_date, end_event_created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (contract_id, component_type) DO UPDATE SET
			start_date = COALESCE(EXCLUDED.start_date, component_states.start_date),
			start_event_created_at = COALESCE(EXCLUDED.start_event_created_at, component_states.start_event_created_at),
			end_date = COALESCE(EXCLUDED.end_date, component_states.end_date),
			end_event_created_at = COALESCE(EXCLUDED.end_event_created_at, component_states.end_event_created_at),
			updated_at = NOW()
		RETURNING ` + stateColumns + `
	`

	var state models.ComponentState
	err = tx.GetContext(ctx, &state, query,
		uuid.New().String(),
		contractID,
		componentType,
		fields.StartDate,
		fields.StartEventCreatedAt,
		fields.EndDate,
		fields.EndEventCreatedAt,
	)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"contract_id": contractID, "component_type": componentType}).Error("Failed to upsert component state")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert component state")
	}
	return &state, nil
}

// ListByContract returns every state row belonging to the contract.
func (r *Repository) ListByContract(ctx context.Context, contractID string) ([]models.ComponentState, error) {
	ctx, span := tracing.StartSpan(ctx, "componentstate.Repository.ListByContract")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(stateColumns)
	sb.From("component_states")
	sb.Where(sb.Equal("contract_id", contractID))
	sb.OrderBy("component_type")

	query, args := sb.Build()
	var states []models.ComponentState
	if err := r.db.SelectContext(ctx, &states, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("contract_id", contractID).Error("Failed to list component states")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list component states")
	}
	return states, nil
}
