package eventaudit

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

const auditColumns = "id, contract_id, raw_type, component_type, action, event_date, event_created_at, status, message, processed_at"

// Repository handles the append-only event audit log
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new event audit repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Append writes one audit row. Rows are immutable once written.
func (r *Repository) Append(ctx context.Context, audit models.EventAudit) (*models.EventAudit, error) {
	ctx, span := tracing.StartSpan(ctx, "eventaudit.Repository.Append")
	defer span.End()

	ib := database.NewInsertBuilder()
	ib.InsertInto("event_audit")
	ib.Cols("id", "contract_id", "raw_type", "component_type", "action", "event_date", "event_created_at", "status", "message")
	ib.Values(
		uuid.New().String(),
		audit.ContractID,
		audit.RawType,
		audit.ComponentType,
		audit.Action,
		audit.EventDate,
		audit.EventCreatedAt,
		audit.Status,
		audit.Message,
	)

	query, args := ib.Build()
	query += " RETURNING " + auditColumns

	var row models.EventAudit
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("raw_type", audit.RawType).Error("Failed to append event audit")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to append event audit")
	}
	return &row, nil
}

// ListByContract returns the contract's audit trail in submission order.
func (r *Repository) ListByContract(ctx context.Context, contractID string) ([]models.EventAudit, error) {
	ctx, span := tracing.StartSpan(ctx, "eventaudit.Repository.ListByContract")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(auditColumns)
	sb.From("event_audit")
	sb.Where(sb.Equal("contract_id", contractID))
	sb.OrderBy("event_created_at", "processed_at")

	query, args := sb.Build()
	var rows []models.EventAudit
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("contract_id", contractID).Error("Failed to list event audit")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list event audit")
	}
	return rows, nil
}
