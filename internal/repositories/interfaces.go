// Package repositories defines the persistence interfaces the service layer
// depends on. Concrete implementations live in the subpackages.
package repositories

import (
	"context"

	"github.com/Ramsey-B/fern/pkg/models"
)

// ContractRepository handles contract persistence
type ContractRepository interface {
	Create(ctx context.Context, req models.CreateContractRequest) (*models.Contract, error)
	GetByNumber(ctx context.Context, contractNumber string) (*models.Contract, error)
	Delete(ctx context.Context, id string) error
}

// ComponentStateRepository handles component lifecycle state persistence.
// LockPair, GetForUpdate and Upsert join the transaction carried by ctx when
// one is open, so a caller owning the transaction serializes the
// read-modify-write. LockPair must come first: it also covers pairs that
// have no state row yet.
type ComponentStateRepository interface {
	Get(ctx context.Context, contractID, componentType string) (*models.ComponentState, error)
	LockPair(ctx context.Context, contractID, componentType string) error
	GetForUpdate(ctx context.Context, contractID, componentType string) (*models.ComponentState, error)
	Upsert(ctx context.Context, contractID, componentType string, fields models.ComponentStateFields) (*models.ComponentState, error)
	ListByContract(ctx context.Context, contractID string) ([]models.ComponentState, error)
}

// EventAuditRepository handles the append-only event audit log
type EventAuditRepository interface {
	Append(ctx context.Context, audit models.EventAudit) (*models.EventAudit, error)
	ListByContract(ctx context.Context, contractID string) ([]models.EventAudit, error)
}
