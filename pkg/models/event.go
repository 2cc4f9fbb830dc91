package models

import "time"

const (
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// EventRequest is the inbound lifecycle event payload
type EventRequest struct {
	Type           string    `json:"type" validate:"required"`
	ContractNumber string    `json:"contract_number" validate:"required"`
	Date           Date      `json:"date" validate:"required"`
	CreatedAt      Timestamp `json:"created_at" validate:"required"`
}

// EventResult is the outcome of processing one event. Both accepted and
// rejected events resolve to a 200 response; the status field carries the
// decision.
type EventResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// EventAudit is one immutable row in the event audit log
type EventAudit struct {
	ID             string     `json:"id" db:"id"`
	ContractID     *string    `json:"contract_id,omitempty" db:"contract_id"`
	RawType        string     `json:"raw_type" db:"raw_type"`
	ComponentType  *string    `json:"component_type,omitempty" db:"component_type"`
	Action         *string    `json:"action,omitempty" db:"action"`
	EventDate      *Date      `json:"event_date,omitempty" db:"event_date"`
	EventCreatedAt *time.Time `json:"event_created_at,omitempty" db:"event_created_at"`
	Status         string     `json:"status" db:"status"`
	Message        string     `json:"message" db:"message"`
	ProcessedAt    time.Time  `json:"processed_at" db:"processed_at"`
}

// EventAuditListResponse is the response for listing a contract's audit trail
type EventAuditListResponse struct {
	ContractNumber string       `json:"contract_number"`
	Items          []EventAudit `json:"items"`
	TotalCount     int          `json:"total_count"`
}
