// Package booking holds the shipment aggregate, its priced lines and the
// status state machine.
package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/freightcore/backend/internal/domain/rate"
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tariff"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType decides who is billed for a booking
type PaymentType string

const (
	PaymentPaid       PaymentType = "paid"
	PaymentToPay      PaymentType = "to_pay"
	PaymentToBeBilled PaymentType = "to_be_billed"
)

// IsValid checks if the payment type is a known value
func (p PaymentType) IsValid() bool {
	switch p {
	case PaymentPaid, PaymentToPay, PaymentToBeBilled:
		return true
	}
	return false
}

// String returns the string representation of PaymentType
func (p PaymentType) String() string {
	return string(p)
}

// BillingCustomer returns the sender for paid and to_be_billed bookings and
// the receiver for to_pay bookings
func (p PaymentType) BillingCustomer(senderID, receiverID uuid.UUID) uuid.UUID {
	if p == PaymentToPay {
		return receiverID
	}
	return senderID
}

// Booking is the shipment header with its priced lines
type Booking struct {
	shared.OrgAggregateRoot
	LRNumber          string
	BranchID          uuid.UUID
	FromBranchID      uuid.UUID
	ToBranchID        uuid.UUID
	FromLocation      string
	ToLocation        string
	SenderID          uuid.UUID
	ReceiverID        uuid.UUID
	BillingCustomerID uuid.UUID
	PaymentType       PaymentType
	PickupDate        time.Time
	Status            Status
	RateSource        RateSource
	ContractID        *uuid.UUID
	TotalAmount       decimal.Decimal
	Articles          []Article
}

// Header carries the fields of a new booking
type Header struct {
	BranchID     uuid.UUID
	FromBranchID uuid.UUID
	ToBranchID   uuid.UUID
	FromLocation string
	ToLocation   string
	SenderID     uuid.UUID
	ReceiverID   uuid.UUID
	PaymentType  PaymentType
	PickupDate   time.Time
}

// Validate checks the header shape. today is the caller's current day; a
// pickup date before it is rejected.
func (h Header) Validate(today time.Time) error {
	if h.BranchID == uuid.Nil || h.FromBranchID == uuid.Nil || h.ToBranchID == uuid.Nil {
		return shared.NewValidationError("branch_id, from_branch_id and to_branch_id are required")
	}
	if strings.TrimSpace(h.FromLocation) == "" || strings.TrimSpace(h.ToLocation) == "" {
		return shared.NewValidationError("from_location and to_location are required")
	}
	if h.SenderID == uuid.Nil || h.ReceiverID == uuid.Nil {
		return shared.NewValidationError("sender_id and receiver_id are required")
	}
	if !h.PaymentType.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("unknown payment type %q", h.PaymentType))
	}
	if h.PickupDate.IsZero() {
		return shared.NewValidationError("pickup_date is required")
	}
	if rate.DateOf(h.PickupDate).Before(rate.DateOf(today)) {
		return shared.NewValidationError("pickup_date cannot be in the past")
	}
	return nil
}

// NewBooking creates a booked shipment without lines or LR number
func NewBooking(orgID, createdBy uuid.UUID, h Header, today time.Time) (*Booking, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewValidationError("org_id is required")
	}
	if err := h.Validate(today); err != nil {
		return nil, err
	}
	return &Booking{
		OrgAggregateRoot:  shared.NewOrgAggregateRootWithCreator(orgID, createdBy),
		BranchID:          h.BranchID,
		FromBranchID:      h.FromBranchID,
		ToBranchID:        h.ToBranchID,
		FromLocation:      strings.TrimSpace(h.FromLocation),
		ToLocation:        strings.TrimSpace(h.ToLocation),
		SenderID:          h.SenderID,
		ReceiverID:        h.ReceiverID,
		BillingCustomerID: h.PaymentType.BillingCustomer(h.SenderID, h.ReceiverID),
		PaymentType:       h.PaymentType,
		PickupDate:        rate.DateOf(h.PickupDate),
		Status:            StatusBooked,
		TotalAmount:       decimal.Zero,
		Articles:          make([]Article, 0),
	}, nil
}

// Scope returns the tenancy footprint of the booking
func (b *Booking) Scope() tenancy.ResourceScope {
	return tenancy.BookingScope(b.OrgID, b.BranchID, b.FromBranchID, b.ToBranchID)
}

// AttachLines adds the lines priced at creation and sets the contract used.
// Only valid before the booking has an LR number.
func (b *Booking) AttachLines(lines []*Article, contractID *uuid.UUID) error {
	if b.LRNumber != "" {
		return shared.NewDomainError(shared.CodeInvalidState, "booking lines are already attached")
	}
	if len(lines) == 0 {
		return shared.NewValidationError("a booking needs at least one article")
	}
	if err := b.checkTotalWith(lines...); err != nil {
		return err
	}
	for _, l := range lines {
		l.BookingID = b.ID
		b.Articles = append(b.Articles, *l)
	}
	b.ContractID = contractID
	b.refreshTotals()
	return nil
}

// AssignLRNumber sets the allocated document number and records creation
func (b *Booking) AssignLRNumber(lr string) error {
	if lr == "" {
		return shared.NewValidationError("lr_number cannot be empty")
	}
	if b.LRNumber != "" {
		return shared.NewDomainError(shared.CodeInvalidState, "lr_number is already assigned")
	}
	b.LRNumber = lr
	b.AddDomainEvent(NewBookingCreatedEvent(b))
	return nil
}

// AddArticle appends a line to an existing booking. Terminal bookings are immutable.
func (b *Booking) AddArticle(line *Article) error {
	if b.Status.IsTerminal() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("cannot add articles to a %s booking", b.Status))
	}
	if err := b.checkTotalWith(line); err != nil {
		return err
	}
	line.BookingID = b.ID
	b.Articles = append(b.Articles, *line)
	b.refreshTotals()
	b.Touch()
	b.AddDomainEvent(NewBookingArticleAddedEvent(b, line))
	return nil
}

// ApplyStatus validates and applies a transition, returning the history entry
func (b *Booking) ApplyStatus(to Status, ctx WorkflowContext, by uuid.UUID) (StatusChange, error) {
	if err := Transition(b.Status, to, ctx); err != nil {
		return StatusChange{}, err
	}
	change := StatusChange{
		ID:              uuid.New(),
		BookingID:       b.ID,
		OrgID:           b.OrgID,
		FromStatus:      b.Status,
		ToStatus:        to,
		WorkflowContext: ctx,
		ChangedBy:       by,
		ChangedAt:       time.Now(),
	}
	b.Status = to
	b.Touch()
	b.AddDomainEvent(NewBookingStatusChangedEvent(b, change))
	return change, nil
}

// LineTotal sums the line totals, rounded to two places
func (b *Booking) LineTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, a := range b.Articles {
		sum = sum.Add(a.TotalAmount)
	}
	return sum.Round(tariff.MoneyPlaces)
}

// TotalsConsistent reports whether the header total matches the lines
func (b *Booking) TotalsConsistent() bool {
	return b.TotalAmount.Sub(b.LineTotal()).Abs().LessThan(tariff.Tolerance)
}

// checkTotalWith rejects lines whose addition would push the booking total
// past what the total column holds
func (b *Booking) checkTotalWith(lines ...*Article) error {
	sum := b.LineTotal()
	for _, l := range lines {
		sum = sum.Add(l.TotalAmount)
	}
	return shared.MoneyColumn.Check("booking total", sum)
}

func (b *Booking) refreshTotals() {
	b.TotalAmount = b.LineTotal()
	b.RateSource = summarizeSources(b.Articles)
}

func summarizeSources(lines []Article) RateSource {
	var src RateSource
	for _, l := range lines {
		switch {
		case src == "":
			src = l.RateSource
		case src != l.RateSource:
			return RateSourceMixed
		}
	}
	return src
}

// StatusChange is one row of a booking's status history
type StatusChange struct {
	ID              uuid.UUID
	BookingID       uuid.UUID
	OrgID           uuid.UUID
	FromStatus      Status
	ToStatus        Status
	WorkflowContext WorkflowContext
	ChangedBy       uuid.UUID
	ChangedAt       time.Time
}
