package kafka

import (
	"encoding/json"
	"time"
)

// EventMessage is an inbound lifecycle event delivered over the bus. The
// payload mirrors the HTTP event body so both ingestion paths share the same
// semantics.
type EventMessage struct {
	Type           string `json:"type"`
	ContractNumber string `json:"contract_number"`
	Date           string `json:"date"`
	CreatedAt      string `json:"created_at"`

	// Tracing
	TraceID string `json:"trace_id,omitempty"`
	SpanID  string `json:"span_id,omitempty"`
}

// ParseEventMessage parses a raw Kafka message into an EventMessage
func ParseEventMessage(data []byte) (*EventMessage, error) {
	var msg EventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DecisionMessage is the outbound record of one decided event
type DecisionMessage struct {
	ContractNumber string    `json:"contract_number"`
	RawType        string    `json:"raw_type"`
	ComponentType  string    `json:"component_type"`
	Action         string    `json:"action"`
	EventDate      string    `json:"event_date"`
	EventCreatedAt string    `json:"event_created_at"`
	Status         string    `json:"status"`
	Message        string    `json:"message"`
	ProcessedAt    time.Time `json:"processed_at"`

	// Tracing
	TraceID string `json:"trace_id,omitempty"`
	SpanID  string `json:"span_id,omitempty"`
}

// ToJSON serializes the decision message
func (m *DecisionMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Header is a key/value message header
type Header struct {
	Key   string
	Value []byte
}

// MessageHeaders carries the well-known headers attached to bus messages
type MessageHeaders struct {
	ContractNumber string
	TraceParent    string
	TraceState     string
}

// ToKafkaHeaders converts the header set to wire headers
func (h MessageHeaders) ToKafkaHeaders() []Header {
	headers := make([]Header, 0, 3)
	if h.ContractNumber != "" {
		headers = append(headers, Header{Key: "contract_number", Value: []byte(h.ContractNumber)})
	}
	if h.TraceParent != "" {
		headers = append(headers, Header{Key: "traceparent", Value: []byte(h.TraceParent)})
	}
	if h.TraceState != "" {
		headers = append(headers, Header{Key: "tracestate", Value: []byte(h.TraceState)})
	}
	return headers
}

// ExtractHeaders reads the well-known headers from wire headers
func ExtractHeaders(headers []Header) MessageHeaders {
	var out MessageHeaders
	for _, h := range headers {
		switch h.Key {
		case "contract_number":
			out.ContractNumber = string(h.Value)
		case "traceparent":
			out.TraceParent = string(h.Value)
		case "tracestate":
			out.TraceState = string(h.Value)
		}
	}
	return out
}
