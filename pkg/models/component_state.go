package models

import "time"

// ComponentState is the accepted lifecycle window for one
// (contract, component type) pair. One row per pair; created lazily on the
// first accepted event and updated in place afterwards.
type ComponentState struct {
	ID                  string     `json:"id" db:"id"`
	ContractID          string     `json:"contract_id" db:"contract_id"`
	ComponentType       string     `json:"component_type" db:"component_type"`
	StartDate           *Date      `json:"start_date,omitempty" db:"start_date"`
	StartEventCreatedAt *time.Time `json:"start_event_created_at,omitempty" db:"start_event_created_at"`
	EndDate             *Date      `json:"end_date,omitempty" db:"end_date"`
	EndEventCreatedAt   *time.Time `json:"end_event_created_at,omitempty" db:"end_event_created_at"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// ComponentStateFields carries the subset of state columns an accepted event
// writes. Nil fields are left untouched by the upsert.
type ComponentStateFields struct {
	StartDate           *Date
	StartEventCreatedAt *time.Time
	EndDate             *Date
	EndEventCreatedAt   *time.Time
}
