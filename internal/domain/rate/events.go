package rate

import (
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeRateContract = "RateContract"

// Event type constants
const (
	EventTypeContractActivated  = "RateContractActivated"
	EventTypeContractTerminated = "RateContractTerminated"
)

// ContractActivatedEvent is published when a contract starts pricing bookings
type ContractActivatedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID `json:"contract_id"`
	ContractNumber string    `json:"contract_number"`
	CustomerID     uuid.UUID `json:"customer_id"`
	SlabCount      int       `json:"slab_count"`
}

// NewContractActivatedEvent creates a new ContractActivatedEvent
func NewContractActivatedEvent(c *RateContract) *ContractActivatedEvent {
	return &ContractActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractActivated, AggregateTypeRateContract, c.ID, c.OrgID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		CustomerID:      c.CustomerID,
		SlabCount:       len(c.Slabs),
	}
}

// ContractTerminatedEvent is published when a contract is closed early
type ContractTerminatedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID `json:"contract_id"`
	ContractNumber string    `json:"contract_number"`
	CustomerID     uuid.UUID `json:"customer_id"`
	Reason         string    `json:"reason,omitempty"`
}

// NewContractTerminatedEvent creates a new ContractTerminatedEvent
func NewContractTerminatedEvent(c *RateContract, reason string) *ContractTerminatedEvent {
	return &ContractTerminatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractTerminated, AggregateTypeRateContract, c.ID, c.OrgID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		CustomerID:      c.CustomerID,
		Reason:          reason,
	}
}
