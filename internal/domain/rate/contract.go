package rate

import (
	"strings"
	"time"

	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractStatus represents the lifecycle state of a rate contract
type ContractStatus string

const (
	ContractStatusDraft      ContractStatus = "draft"
	ContractStatusActive     ContractStatus = "active"
	ContractStatusExpired    ContractStatus = "expired"
	ContractStatusTerminated ContractStatus = "terminated"
)

// IsValid checks if the status is a valid value
func (s ContractStatus) IsValid() bool {
	switch s {
	case ContractStatusDraft, ContractStatusActive, ContractStatusExpired, ContractStatusTerminated:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s ContractStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions are possible
func (s ContractStatus) IsTerminal() bool {
	return s == ContractStatusExpired || s == ContractStatusTerminated
}

// CanTransitionTo checks if transition to target status is allowed
func (s ContractStatus) CanTransitionTo(target ContractStatus) bool {
	switch s {
	case ContractStatusDraft:
		return target == ContractStatusActive || target == ContractStatusTerminated
	case ContractStatusActive:
		return target == ContractStatusExpired || target == ContractStatusTerminated
	}
	return false
}

// RateContract is a customer's negotiated pricing agreement
type RateContract struct {
	shared.OrgAggregateRoot
	CustomerID             uuid.UUID
	ContractNumber         string
	ValidFrom              time.Time
	ValidUntil             time.Time
	PaymentTerms           string
	CreditLimit            decimal.Decimal
	BaseDiscountPercentage decimal.Decimal
	Status                 ContractStatus
	Slabs                  []RateSlab
}

// ContractInput carries the header fields of a new contract
type ContractInput struct {
	CustomerID             uuid.UUID
	ContractNumber         string
	ValidFrom              time.Time
	ValidUntil             time.Time
	PaymentTerms           string
	CreditLimit            decimal.Decimal
	BaseDiscountPercentage decimal.Decimal
}

// NewRateContract creates a draft contract
func NewRateContract(orgID, createdBy uuid.UUID, in ContractInput) (*RateContract, error) {
	if in.CustomerID == uuid.Nil {
		return nil, shared.NewValidationError("customer_id is required")
	}
	number := strings.TrimSpace(in.ContractNumber)
	if number == "" {
		return nil, shared.NewValidationError("contract_number is required")
	}
	if len(number) > 50 {
		return nil, shared.NewValidationError("contract_number cannot exceed 50 characters")
	}
	validFrom, validUntil := DateOf(in.ValidFrom), DateOf(in.ValidUntil)
	if validFrom.IsZero() || validUntil.IsZero() {
		return nil, shared.NewValidationError("valid_from and valid_until are required")
	}
	if validUntil.Before(validFrom) {
		return nil, shared.NewValidationError("valid_until cannot be before valid_from")
	}
	if in.CreditLimit.IsNegative() {
		return nil, shared.NewValidationError("credit_limit cannot be negative")
	}
	if in.BaseDiscountPercentage.IsNegative() || in.BaseDiscountPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewValidationError("base_discount_percentage must be between 0 and 100")
	}
	if err := shared.MoneyColumn.Check("credit_limit", in.CreditLimit); err != nil {
		return nil, err
	}
	if err := shared.PercentColumn.Check("base_discount_percentage", in.BaseDiscountPercentage); err != nil {
		return nil, err
	}

	c := &RateContract{
		OrgAggregateRoot:       shared.NewOrgAggregateRootWithCreator(orgID, createdBy),
		CustomerID:             in.CustomerID,
		ContractNumber:         number,
		ValidFrom:              validFrom,
		ValidUntil:             validUntil,
		PaymentTerms:           strings.TrimSpace(in.PaymentTerms),
		CreditLimit:            in.CreditLimit,
		BaseDiscountPercentage: in.BaseDiscountPercentage,
		Status:                 ContractStatusDraft,
		Slabs:                  make([]RateSlab, 0),
	}
	return c, nil
}

// AddSlab attaches a new slab. Closed contracts cannot change.
func (c *RateContract) AddSlab(in SlabInput) (*RateSlab, error) {
	if c.Status.IsTerminal() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "cannot add slabs to a "+c.Status.String()+" contract")
	}
	slab, err := NewRateSlab(c.ID, in)
	if err != nil {
		return nil, err
	}
	c.Slabs = append(c.Slabs, *slab)
	c.Touch()
	return slab, nil
}

// Activate moves a draft contract to active
func (c *RateContract) Activate() error {
	if err := c.transition(ContractStatusActive); err != nil {
		return err
	}
	c.AddDomainEvent(NewContractActivatedEvent(c))
	return nil
}

// Terminate closes a draft or active contract
func (c *RateContract) Terminate(reason string) error {
	if err := c.transition(ContractStatusTerminated); err != nil {
		return err
	}
	c.AddDomainEvent(NewContractTerminatedEvent(c, reason))
	return nil
}

// Expire closes an active contract whose window has passed
func (c *RateContract) Expire(today time.Time) error {
	if !DateOf(today).After(c.ValidUntil) {
		return shared.NewDomainError(shared.CodeInvalidState, "contract validity window has not ended")
	}
	return c.transition(ContractStatusExpired)
}

func (c *RateContract) transition(target ContractStatus) error {
	if !c.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidState,
			"cannot move contract from "+c.Status.String()+" to "+target.String())
	}
	c.Status = target
	c.Touch()
	return nil
}

// IsUsableOn reports whether the contract prices bookings dated on the given
// day: active and inside the inclusive validity window
func (c *RateContract) IsUsableOn(date time.Time) bool {
	if c.Status != ContractStatusActive {
		return false
	}
	d := DateOf(date)
	return !d.Before(c.ValidFrom) && !d.After(c.ValidUntil)
}

// DateOf truncates t to its UTC calendar day
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
