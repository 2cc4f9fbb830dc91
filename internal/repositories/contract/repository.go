package contract

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

const uniqueViolation = "23505"

// Repository handles contract persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new contract repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new contract. Duplicate contract numbers surface as a
// 409 conflict.
func (r *Repository) Create(ctx context.Context, req models.CreateContractRequest) (*models.Contract, error) {
	ctx, span := tracing.StartSpan(ctx, "contract.Repository.Create")
	defer span.End()

	query := `
		INSERT INTO contracts (id, contract_number, components)
		VALUES ($1, $2, $3)
		RETURNING id, contract_number, components, created_at
	`

	var contract models.Contract
	err := r.db.GetContext(ctx, &contract, query, uuid.New().String(), req.ContractNumber, pq.StringArray(req.Components))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return nil, httperror.NewHTTPErrorf(http.StatusConflict, "Contract %s already exists", req.ContractNumber)
		}
		r.logger.WithContext(ctx).WithError(err).WithField("contract_number", req.ContractNumber).Error("Failed to create contract")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create contract")
	}
	return &contract, nil
}

// GetByNumber returns the contract with the given number, or nil when none
// exists.
func (r *Repository) GetByNumber(ctx context.Context, contractNumber string) (*models.Contract, error) {
	ctx, span := tracing.StartSpan(ctx, "contract.Repository.GetByNumber")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select("id", "contract_number", "components", "created_at")
	sb.From("contracts")
	sb.Where(sb.Equal("contract_number", contractNumber))
	sb.Limit(1)

	query, args := sb.Build()
	var contract models.Contract
	if err := r.db.GetContext(ctx, &contract, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithField("contract_number", contractNumber).Error("Failed to get contract")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get contract")
	}
	return &contract, nil
}

// Delete removes a contract by id. Component states and audit rows cascade.
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "contract.Repository.Delete")
	defer span.End()

	db := database.NewDeleteBuilder()
	db.DeleteFrom("contracts")
	db.Where(db.Equal("id", id))

	query, args := db.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("contract_id", id).Error("Failed to delete contract")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete contract")
	}
	return nil
}
