package models

import (
	"time"

	"github.com/lib/pq"
)

// Contract is a registered contract and the set of component types it has
// enabled. Immutable after creation except deletion.
type Contract struct {
	ID             string         `json:"id" db:"id"`
	ContractNumber string         `json:"contract_number" db:"contract_number"`
	Components     pq.StringArray `json:"components" db:"components"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}

// HasComponent reports whether the contract has the given component enabled.
func (c *Contract) HasComponent(componentType string) bool {
	for _, component := range c.Components {
		if component == componentType {
			return true
		}
	}
	return false
}

// CreateContractRequest is the request body for registering a contract
type CreateContractRequest struct {
	ContractNumber string   `json:"contract_number" validate:"required"`
	Components     []string `json:"components" validate:"required,min=1,dive,required"`
}

// ContractResponse is the API response for contract operations
type ContractResponse struct {
	Contract
}

// DeleteContractResponse is the API response for contract deletion
type DeleteContractResponse struct {
	Detail string `json:"detail"`
}
