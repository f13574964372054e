package models

import (
	"time"

	"github.com/freightcore/backend/internal/domain/booking"
	"github.com/freightcore/backend/internal/domain/rate"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingModel is the persistence model for the booking header.
// (org_id, lr_number) is unique; the index lives in the SQL migrations.
type BookingModel struct {
	OrgAggregateModel
	LRNumber          string              `gorm:"type:varchar(32);not null;index"`
	BranchID          uuid.UUID           `gorm:"type:uuid;not null;index"`
	FromBranchID      uuid.UUID           `gorm:"type:uuid;not null;index"`
	ToBranchID        uuid.UUID           `gorm:"type:uuid;not null;index"`
	FromLocation      string              `gorm:"type:varchar(100);not null"`
	ToLocation        string              `gorm:"type:varchar(100);not null"`
	SenderID          uuid.UUID           `gorm:"type:uuid;not null"`
	ReceiverID        uuid.UUID           `gorm:"type:uuid;not null"`
	BillingCustomerID uuid.UUID           `gorm:"type:uuid;not null"`
	PaymentType       booking.PaymentType `gorm:"type:varchar(20);not null"`
	PickupDate        time.Time           `gorm:"type:date;not null"`
	Status            booking.Status      `gorm:"type:varchar(20);not null;index"`
	RateSource        booking.RateSource  `gorm:"type:varchar(20);not null"`
	ContractID        *uuid.UUID          `gorm:"type:uuid"`
	TotalAmount       decimal.Decimal     `gorm:"type:decimal(18,2);not null"`

	Articles []BookingArticleModel `gorm:"foreignKey:BookingID;references:ID"`
}

// TableName returns the table name for GORM
func (BookingModel) TableName() string {
	return "bookings"
}

// ToDomain converts the persistence model to a domain Booking
func (m *BookingModel) ToDomain() *booking.Booking {
	b := &booking.Booking{
		LRNumber:          m.LRNumber,
		BranchID:          m.BranchID,
		FromBranchID:      m.FromBranchID,
		ToBranchID:        m.ToBranchID,
		FromLocation:      m.FromLocation,
		ToLocation:        m.ToLocation,
		SenderID:          m.SenderID,
		ReceiverID:        m.ReceiverID,
		BillingCustomerID: m.BillingCustomerID,
		PaymentType:       m.PaymentType,
		PickupDate:        m.PickupDate.UTC(),
		Status:            m.Status,
		RateSource:        m.RateSource,
		ContractID:        m.ContractID,
		TotalAmount:       m.TotalAmount,
		Articles:          make([]booking.Article, 0, len(m.Articles)),
	}
	m.PopulateOrgAggregateRoot(&b.OrgAggregateRoot)
	for i := range m.Articles {
		b.Articles = append(b.Articles, *m.Articles[i].ToDomain())
	}
	return b
}

// BookingModelFromDomain creates a persistence model, lines included
func BookingModelFromDomain(b *booking.Booking) *BookingModel {
	m := &BookingModel{
		LRNumber:          b.LRNumber,
		BranchID:          b.BranchID,
		FromBranchID:      b.FromBranchID,
		ToBranchID:        b.ToBranchID,
		FromLocation:      b.FromLocation,
		ToLocation:        b.ToLocation,
		SenderID:          b.SenderID,
		ReceiverID:        b.ReceiverID,
		BillingCustomerID: b.BillingCustomerID,
		PaymentType:       b.PaymentType,
		PickupDate:        b.PickupDate,
		Status:            b.Status,
		RateSource:        b.RateSource,
		ContractID:        b.ContractID,
		TotalAmount:       b.TotalAmount,
	}
	m.FromDomainOrgAggregateRoot(b.OrgAggregateRoot)
	for i := range b.Articles {
		m.Articles = append(m.Articles, *BookingArticleModelFromDomain(&b.Articles[i]))
	}
	return m
}

// BookingArticleModel is one priced line of a booking
type BookingArticleModel struct {
	ID               uuid.UUID          `gorm:"type:uuid;primaryKey"`
	BookingID        uuid.UUID          `gorm:"type:uuid;not null;index"`
	ArticleID        *uuid.UUID         `gorm:"type:uuid"`
	Description      string             `gorm:"type:varchar(200)"`
	Quantity         int                `gorm:"not null"`
	ActualWeight     decimal.Decimal    `gorm:"type:decimal(12,3);not null"`
	ChargedWeight    decimal.Decimal    `gorm:"type:decimal(12,3);not null"`
	RateType         rate.ChargeBasis   `gorm:"type:varchar(20);not null"`
	RateValue        decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	RateSource       booking.RateSource `gorm:"type:varchar(20);not null"`
	SlabID           *uuid.UUID         `gorm:"type:uuid"`
	FreightAmount    decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	LoadingCharge    decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	UnloadingCharge  decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	SurchargeAmount  decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	AdjustmentAmount decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	DiscountAmount   decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	TaxAmount        decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	DeclaredValue    decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	TotalAmount      decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	CreatedAt        time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BookingArticleModel) TableName() string {
	return "booking_articles"
}

// ToDomain converts the persistence model to a domain Article
func (m *BookingArticleModel) ToDomain() *booking.Article {
	return &booking.Article{
		ID:               m.ID,
		BookingID:        m.BookingID,
		ArticleID:        m.ArticleID,
		Description:      m.Description,
		Quantity:         m.Quantity,
		ActualWeight:     m.ActualWeight,
		ChargedWeight:    m.ChargedWeight,
		RateType:         m.RateType,
		RateValue:        m.RateValue,
		RateSource:       m.RateSource,
		SlabID:           m.SlabID,
		FreightAmount:    m.FreightAmount,
		LoadingCharge:    m.LoadingCharge,
		UnloadingCharge:  m.UnloadingCharge,
		SurchargeAmount:  m.SurchargeAmount,
		AdjustmentAmount: m.AdjustmentAmount,
		DiscountAmount:   m.DiscountAmount,
		TaxAmount:        m.TaxAmount,
		DeclaredValue:    m.DeclaredValue,
		TotalAmount:      m.TotalAmount,
		CreatedAt:        m.CreatedAt,
	}
}

// BookingArticleModelFromDomain creates a persistence model from a domain line
func BookingArticleModelFromDomain(a *booking.Article) *BookingArticleModel {
	return &BookingArticleModel{
		ID:               a.ID,
		BookingID:        a.BookingID,
		ArticleID:        a.ArticleID,
		Description:      a.Description,
		Quantity:         a.Quantity,
		ActualWeight:     a.ActualWeight,
		ChargedWeight:    a.ChargedWeight,
		RateType:         a.RateType,
		RateValue:        a.RateValue,
		RateSource:       a.RateSource,
		SlabID:           a.SlabID,
		FreightAmount:    a.FreightAmount,
		LoadingCharge:    a.LoadingCharge,
		UnloadingCharge:  a.UnloadingCharge,
		SurchargeAmount:  a.SurchargeAmount,
		AdjustmentAmount: a.AdjustmentAmount,
		DiscountAmount:   a.DiscountAmount,
		TaxAmount:        a.TaxAmount,
		DeclaredValue:    a.DeclaredValue,
		TotalAmount:      a.TotalAmount,
		CreatedAt:        a.CreatedAt,
	}
}

// BookingStatusHistoryModel is one applied status transition
type BookingStatusHistoryModel struct {
	ID              uuid.UUID               `gorm:"type:uuid;primaryKey"`
	BookingID       uuid.UUID               `gorm:"type:uuid;not null;index"`
	OrgID           uuid.UUID               `gorm:"type:uuid;not null"`
	FromStatus      booking.Status          `gorm:"type:varchar(20);not null"`
	ToStatus        booking.Status          `gorm:"type:varchar(20);not null"`
	WorkflowContext booking.WorkflowContext `gorm:"type:varchar(20);not null"`
	ChangedBy       uuid.UUID               `gorm:"type:uuid;not null"`
	ChangedAt       time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BookingStatusHistoryModel) TableName() string {
	return "booking_status_history"
}

// ToDomain converts the persistence model to a domain StatusChange
func (m *BookingStatusHistoryModel) ToDomain() booking.StatusChange {
	return booking.StatusChange{
		ID:              m.ID,
		BookingID:       m.BookingID,
		OrgID:           m.OrgID,
		FromStatus:      m.FromStatus,
		ToStatus:        m.ToStatus,
		WorkflowContext: m.WorkflowContext,
		ChangedBy:       m.ChangedBy,
		ChangedAt:       m.ChangedAt,
	}
}

// BookingStatusHistoryModelFromDomain creates a history row
func BookingStatusHistoryModelFromDomain(c booking.StatusChange) *BookingStatusHistoryModel {
	return &BookingStatusHistoryModel{
		ID:              c.ID,
		BookingID:       c.BookingID,
		OrgID:           c.OrgID,
		FromStatus:      c.FromStatus,
		ToStatus:        c.ToStatus,
		WorkflowContext: c.WorkflowContext,
		ChangedBy:       c.ChangedBy,
		ChangedAt:       c.ChangedAt,
	}
}

// LRSequenceModel is the per-org, per-prefix LR counter
type LRSequenceModel struct {
	OrgID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Prefix    string    `gorm:"type:varchar(16);primaryKey"`
	LastValue int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LRSequenceModel) TableName() string {
	return "lr_sequences"
}
