// Package events handles downstream emission of decided lifecycle events
package events

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Emitter publishes event decisions to the bus
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new decision emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitDecision publishes the outcome of one processed event
func (e *Emitter) EmitDecision(ctx context.Context, req models.EventRequest, componentType, action string, result models.EventResult) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitDecision")
	defer span.End()

	msg := &kafka.DecisionMessage{
		ContractNumber: req.ContractNumber,
		RawType:        req.Type,
		ComponentType:  componentType,
		Action:         action,
		EventDate:      req.Date.String(),
		EventCreatedAt: req.CreatedAt.UTC().Format(time.RFC3339Nano),
		Status:         result.Status,
		Message:        result.Message,
		ProcessedAt:    time.Now().UTC(),
	}

	if err := e.producer.PublishDecision(ctx, msg); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit event decision")
		return err
	}

	return nil
}
