// Package ingestion runs inbound lifecycle events through resolution,
// reconciliation and persistence.
package ingestion

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/internal/repositories"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/lifecycle"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// DecisionEmitter publishes processed event decisions downstream. Emission is
// best-effort and never changes the decision.
type DecisionEmitter interface {
	EmitDecision(ctx context.Context, req models.EventRequest, componentType, action string, result models.EventResult) error
}

// Options toggles optional processor behavior
type Options struct {
	AuditEnabled bool
}

// Processor decides and persists the outcome of inbound lifecycle events
type Processor struct {
	db        database.DB
	contracts repositories.ContractRepository
	states    repositories.ComponentStateRepository
	audits    repositories.EventAuditRepository
	emitter   DecisionEmitter
	logger    ectologger.Logger
	options   Options
}

// NewProcessor creates a new event processor. emitter may be nil.
func NewProcessor(
	db database.DB,
	contracts repositories.ContractRepository,
	states repositories.ComponentStateRepository,
	audits repositories.EventAuditRepository,
	emitter DecisionEmitter,
	logger ectologger.Logger,
	options Options,
) *Processor {
	return &Processor{
		db:        db,
		contracts: contracts,
		states:    states,
		audits:    audits,
		emitter:   emitter,
		logger:    logger,
		options:   options,
	}
}

// Process runs one event through the full pipeline. Domain rejections come
// back as a rejected EventResult, not an error; an error means the event
// could not be decided (unknown type, storage failure).
func (p *Processor) Process(ctx context.Context, req models.EventRequest) (models.EventResult, error) {
	ctx, span := tracing.StartSpan(ctx, "ingestion.Processor.Process")
	defer span.End()

	start := time.Now()

	componentType, action, err := lifecycle.ResolveComponentAction(req.Type)
	if err != nil {
		return models.EventResult{}, httperror.NewHTTPErrorf(http.StatusUnprocessableEntity, "unsupported event type: %s", req.Type)
	}

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"contract_number": req.ContractNumber,
		"component":       string(componentType),
		"action":          string(action),
		"event_date":      req.Date.String(),
	})
	log.Infof("Processing event %s for contract %s", req.Type, req.ContractNumber)

	contract, err := p.contracts.GetByNumber(ctx, req.ContractNumber)
	if err != nil {
		return models.EventResult{}, err
	}
	if contract == nil {
		result := models.EventResult{
			Status:  models.StatusRejected,
			Message: fmt.Sprintf("Contract %s not found.", req.ContractNumber),
		}
		p.finish(ctx, req, nil, componentType, action, result, start)
		return result, nil
	}

	if !contract.HasComponent(string(componentType)) {
		result := models.EventResult{
			Status:  models.StatusRejected,
			Message: fmt.Sprintf("Component %s is not configured for contract %s.", componentType, req.ContractNumber),
		}
		p.finish(ctx, req, &contract.ID, componentType, action, result, start)
		return result, nil
	}

	result, err := p.decide(ctx, contract.ID, componentType, action, req)
	if err != nil {
		return models.EventResult{}, err
	}

	p.finish(ctx, req, &contract.ID, componentType, action, result, start)
	return result, nil
}

// decide serializes the read-modify-write for one (contract, component) pair
// behind a pair advisory lock plus a row lock and commits the accepted state
// before returning.
func (p *Processor) decide(ctx context.Context, contractID string, componentType lifecycle.ComponentType, action lifecycle.EventAction, req models.EventRequest) (models.EventResult, error) {
	ctx, span := tracing.StartSpan(ctx, "ingestion.Processor.decide")
	defer span.End()

	ctx, tx, err := p.db.GetTx(ctx, nil)
	if err != nil {
		return models.EventResult{}, httperror.NewHTTPError(http.StatusInternalServerError, "failed to process event")
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Serializes concurrent events for the pair, including the first event
	// where no row exists for GetForUpdate to lock.
	if err := p.states.LockPair(ctx, contractID, string(componentType)); err != nil {
		return models.EventResult{}, err
	}

	state, err := p.states.GetForUpdate(ctx, contractID, string(componentType))
	if err != nil {
		return models.EventResult{}, err
	}

	decision := lifecycle.Reconcile(state, action, req.Date, req.CreatedAt.Time)
	if decision.Accepted {
		if _, err := p.states.Upsert(ctx, contractID, string(componentType), decision.Fields); err != nil {
			return models.EventResult{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return models.EventResult{}, httperror.NewHTTPError(http.StatusInternalServerError, "failed to process event")
	}

	status := models.StatusRejected
	if decision.Accepted {
		status = models.StatusAccepted
	}
	return models.EventResult{Status: status, Message: decision.Message}, nil
}

// finish records the decided outcome: audit row, downstream emission and
// metrics. The decision is already committed, so failures here are logged
// and counted but never surfaced.
func (p *Processor) finish(ctx context.Context, req models.EventRequest, contractID *string, componentType lifecycle.ComponentType, action lifecycle.EventAction, result models.EventResult, start time.Time) {
	if p.options.AuditEnabled {
		component := string(componentType)
		act := string(action)
		eventDate := req.Date
		eventCreatedAt := req.CreatedAt.Time

		_, err := p.audits.Append(ctx, models.EventAudit{
			ContractID:     contractID,
			RawType:        req.Type,
			ComponentType:  &component,
			Action:         &act,
			EventDate:      &eventDate,
			EventCreatedAt: &eventCreatedAt,
			Status:         result.Status,
			Message:        result.Message,
		})
		if err != nil {
			metrics.AuditAppendFailuresTotal.Inc()
			p.logger.WithContext(ctx).WithError(err).WithField("raw_type", req.Type).Error("Failed to append audit row for decided event")
		}
	}

	if p.emitter != nil {
		if err := p.emitter.EmitDecision(ctx, req, string(componentType), string(action), result); err != nil {
			p.logger.WithContext(ctx).WithError(err).WithField("raw_type", req.Type).Warnf("Failed to emit decision event")
		}
	}

	metrics.RecordEventDecision(string(componentType), string(action), result.Status, time.Since(start).Seconds())
}
