package ingestion

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
)

// NewBusHandler adapts the processor to the Kafka consumer, so events can
// arrive over the bus with the same semantics as the HTTP path. Domain
// rejections are a normal outcome and malformed payloads are discarded;
// only processing failures return an error, which leaves the offset
// uncommitted so the message is redelivered.
func NewBusHandler(processor *Processor, logger ectologger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg *kafka.ReceivedMessage) error {
		if msg.Event == nil {
			metrics.RecordKafkaConsume(msg.Topic, "invalid")
			logger.WithContext(ctx).Errorf("Discarding message at offset %d with no event payload", msg.Offset)
			return nil
		}

		req, err := toEventRequest(msg.Event)
		if err != nil {
			metrics.RecordKafkaConsume(msg.Topic, "invalid")
			logger.WithContext(ctx).WithError(err).WithField("raw_type", msg.Event.Type).Error("Discarding malformed bus event")
			return nil
		}

		result, err := processor.Process(ctx, req)
		if err != nil {
			metrics.RecordKafkaConsume(msg.Topic, "error")
			return err
		}

		metrics.RecordKafkaConsume(msg.Topic, result.Status)
		logger.WithContext(ctx).WithFields(map[string]any{
			"contract_number": req.ContractNumber,
			"raw_type":        req.Type,
			"status":          result.Status,
		}).Info("Processed bus event")
		return nil
	}
}

func toEventRequest(event *kafka.EventMessage) (models.EventRequest, error) {
	eventDate, err := models.ParseDate(event.Date)
	if err != nil {
		return models.EventRequest{}, fmt.Errorf("invalid event date: %w", err)
	}
	createdAt, err := models.ParseTimestamp(event.CreatedAt)
	if err != nil {
		return models.EventRequest{}, fmt.Errorf("invalid event created_at: %w", err)
	}

	return models.EventRequest{
		Type:           event.Type,
		ContractNumber: event.ContractNumber,
		Date:           eventDate,
		CreatedAt:      createdAt,
	}, nil
}
