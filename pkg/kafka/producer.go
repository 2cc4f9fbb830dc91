package kafka

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"

	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Producer publishes messages to Kafka
type Producer struct {
	writer *kafka.Writer
	logger ectologger.Logger
	config ProducerConfig
}

// NewProducer creates a new Kafka producer
func NewProducer(config ProducerConfig, logger ectologger.Logger) (*Producer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid producer config: %w", err)
	}

	var compression kafka.Compression
	switch config.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "snappy":
		compression = kafka.Snappy
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	default:
		compression = 0 // No compression
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(config.Brokers...),
		Topic:                  config.Topic,
		Balancer:               &kafka.Hash{}, // Hash by key for partition affinity
		BatchSize:              config.BatchSize,
		BatchTimeout:           config.BatchTimeout,
		MaxAttempts:            config.MaxAttempts,
		WriteTimeout:           config.WriteTimeout,
		Async:                  config.Async,
		Compression:            compression,
		RequiredAcks:           kafka.RequiredAcks(config.RequiredAcks),
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		config: config,
	}, nil
}

// PublishDecision publishes one decided event. Messages are keyed by
// contract number so decisions for the same contract stay ordered within a
// partition.
func (p *Producer) PublishDecision(ctx context.Context, msg *DecisionMessage) error {
	msg.TraceID = tracing.GetTraceID(ctx)
	msg.SpanID = tracing.GetSpanID(ctx)

	data, err := msg.ToJSON()
	if err != nil {
		metrics.RecordKafkaPublish(p.config.Topic, "error")
		return fmt.Errorf("failed to serialize message: %w", err)
	}

	headers := MessageHeaders{
		ContractNumber: msg.ContractNumber,
		TraceParent:    tracing.GetTraceParent(ctx),
		TraceState:     tracing.GetTraceState(ctx),
	}

	kafkaHeaders := make([]kafka.Header, 0)
	for _, h := range headers.ToKafkaHeaders() {
		kafkaHeaders = append(kafkaHeaders, kafka.Header{Key: h.Key, Value: h.Value})
	}

	kafkaMsg := kafka.Message{
		Key:     []byte(msg.ContractNumber),
		Value:   data,
		Headers: kafkaHeaders,
		Time:    msg.ProcessedAt,
	}

	if err := p.writer.WriteMessages(ctx, kafkaMsg); err != nil {
		metrics.RecordKafkaPublish(p.config.Topic, "error")
		return fmt.Errorf("failed to publish message: %w", err)
	}

	metrics.RecordKafkaPublish(p.config.Topic, "success")
	return nil
}

// Close closes the producer
func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close producer: %w", err)
	}
	p.logger.Info("Kafka producer closed")
	return nil
}

// Stats returns producer statistics
func (p *Producer) Stats() kafka.WriterStats {
	return p.writer.Stats()
}
