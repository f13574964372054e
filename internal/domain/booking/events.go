package booking

import (
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeBooking = "Booking"

// Event type constants
const (
	EventTypeBookingCreated       = "BookingCreated"
	EventTypeBookingStatusChanged = "BookingStatusChanged"
	EventTypeBookingArticleAdded  = "BookingArticleAdded"
)

// BookingCreatedEvent is published once a booking has its LR number
type BookingCreatedEvent struct {
	shared.BaseDomainEvent
	BookingID    uuid.UUID       `json:"booking_id"`
	LRNumber     string          `json:"lr_number"`
	BranchID     uuid.UUID       `json:"branch_id"`
	FromBranchID uuid.UUID       `json:"from_branch_id"`
	ToBranchID   uuid.UUID       `json:"to_branch_id"`
	PaymentType  PaymentType     `json:"payment_type"`
	RateSource   RateSource      `json:"rate_source"`
	ArticleCount int             `json:"article_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// NewBookingCreatedEvent creates a new BookingCreatedEvent
func NewBookingCreatedEvent(b *Booking) *BookingCreatedEvent {
	return &BookingCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookingCreated, AggregateTypeBooking, b.ID, b.OrgID),
		BookingID:       b.ID,
		LRNumber:        b.LRNumber,
		BranchID:        b.BranchID,
		FromBranchID:    b.FromBranchID,
		ToBranchID:      b.ToBranchID,
		PaymentType:     b.PaymentType,
		RateSource:      b.RateSource,
		ArticleCount:    len(b.Articles),
		TotalAmount:     b.TotalAmount,
	}
}

// BookingStatusChangedEvent is published on every applied transition
type BookingStatusChangedEvent struct {
	shared.BaseDomainEvent
	BookingID       uuid.UUID       `json:"booking_id"`
	LRNumber        string          `json:"lr_number"`
	OldStatus       Status          `json:"old_status"`
	NewStatus       Status          `json:"new_status"`
	WorkflowContext WorkflowContext `json:"workflow_context"`
	ChangedBy       uuid.UUID       `json:"changed_by"`
}

// NewBookingStatusChangedEvent creates a new BookingStatusChangedEvent
func NewBookingStatusChangedEvent(b *Booking, change StatusChange) *BookingStatusChangedEvent {
	return &BookingStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookingStatusChanged, AggregateTypeBooking, b.ID, b.OrgID),
		BookingID:       b.ID,
		LRNumber:        b.LRNumber,
		OldStatus:       change.FromStatus,
		NewStatus:       change.ToStatus,
		WorkflowContext: change.WorkflowContext,
		ChangedBy:       change.ChangedBy,
	}
}

// BookingArticleAddedEvent is published when a line is added after creation
type BookingArticleAddedEvent struct {
	shared.BaseDomainEvent
	BookingID   uuid.UUID       `json:"booking_id"`
	LineID      uuid.UUID       `json:"line_id"`
	LineTotal   decimal.Decimal `json:"line_total"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewBookingArticleAddedEvent creates a new BookingArticleAddedEvent
func NewBookingArticleAddedEvent(b *Booking, line *Article) *BookingArticleAddedEvent {
	return &BookingArticleAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookingArticleAdded, AggregateTypeBooking, b.ID, b.OrgID),
		BookingID:       b.ID,
		LineID:          line.ID,
		LineTotal:       line.TotalAmount,
		TotalAmount:     b.TotalAmount,
	}
}
