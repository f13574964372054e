package models

import (
	"time"

	"github.com/freightcore/backend/internal/domain/rate"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateContractModel is the persistence model for a customer rate contract
type RateContractModel struct {
	OrgAggregateModel
	CustomerID             uuid.UUID           `gorm:"type:uuid;not null;index"`
	ContractNumber         string              `gorm:"type:varchar(50);not null"`
	ValidFrom              time.Time           `gorm:"type:date;not null"`
	ValidUntil             time.Time           `gorm:"type:date;not null"`
	PaymentTerms           string              `gorm:"type:varchar(100)"`
	CreditLimit            decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	BaseDiscountPercentage decimal.Decimal     `gorm:"type:decimal(5,2);not null"`
	Status                 rate.ContractStatus `gorm:"type:varchar(20);not null;index"`

	Slabs []RateSlabModel `gorm:"foreignKey:ContractID;references:ID"`
}

// TableName returns the table name for GORM
func (RateContractModel) TableName() string {
	return "rate_contracts"
}

// ToDomain converts the persistence model to a domain RateContract
func (m *RateContractModel) ToDomain() *rate.RateContract {
	c := &rate.RateContract{
		CustomerID:             m.CustomerID,
		ContractNumber:         m.ContractNumber,
		ValidFrom:              m.ValidFrom.UTC(),
		ValidUntil:             m.ValidUntil.UTC(),
		PaymentTerms:           m.PaymentTerms,
		CreditLimit:            m.CreditLimit,
		BaseDiscountPercentage: m.BaseDiscountPercentage,
		Status:                 m.Status,
		Slabs:                  make([]rate.RateSlab, 0, len(m.Slabs)),
	}
	m.PopulateOrgAggregateRoot(&c.OrgAggregateRoot)
	for i := range m.Slabs {
		c.Slabs = append(c.Slabs, m.Slabs[i].ToDomain())
	}
	return c
}

// RateContractModelFromDomain creates a persistence model, slabs included
func RateContractModelFromDomain(c *rate.RateContract) *RateContractModel {
	m := &RateContractModel{
		CustomerID:             c.CustomerID,
		ContractNumber:         c.ContractNumber,
		ValidFrom:              c.ValidFrom,
		ValidUntil:             c.ValidUntil,
		PaymentTerms:           c.PaymentTerms,
		CreditLimit:            c.CreditLimit,
		BaseDiscountPercentage: c.BaseDiscountPercentage,
		Status:                 c.Status,
	}
	m.FromDomainOrgAggregateRoot(c.OrgAggregateRoot)
	for i := range c.Slabs {
		m.Slabs = append(m.Slabs, RateSlabModelFromDomain(c.Slabs[i]))
	}
	return m
}

// RateSlabModel is one route/weight band of a contract
type RateSlabModel struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey"`
	ContractID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	FromLocation    string           `gorm:"type:varchar(100);not null"`
	ToLocation      string           `gorm:"type:varchar(100);not null"`
	ArticleID       *uuid.UUID       `gorm:"type:uuid"`
	ArticleCategory string           `gorm:"type:varchar(50)"`
	WeightFrom      decimal.Decimal  `gorm:"type:decimal(12,3);not null"`
	WeightTo        decimal.Decimal  `gorm:"type:decimal(12,3);not null"`
	ChargeBasis     rate.ChargeBasis `gorm:"type:varchar(20);not null"`
	RatePerKg       decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	RatePerUnit     decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	FixedAmount     decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	MinimumCharge   decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	IsActive        bool             `gorm:"not null"`
	CreatedAt       time.Time        `gorm:"not null"`
	UpdatedAt       time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RateSlabModel) TableName() string {
	return "rate_slabs"
}

// ToDomain converts the persistence model to a domain RateSlab
func (m *RateSlabModel) ToDomain() rate.RateSlab {
	return rate.RateSlab{
		ID:              m.ID,
		ContractID:      m.ContractID,
		FromLocation:    m.FromLocation,
		ToLocation:      m.ToLocation,
		ArticleID:       m.ArticleID,
		ArticleCategory: m.ArticleCategory,
		WeightFrom:      m.WeightFrom,
		WeightTo:        m.WeightTo,
		ChargeBasis:     m.ChargeBasis,
		RatePerKg:       m.RatePerKg,
		RatePerUnit:     m.RatePerUnit,
		FixedAmount:     m.FixedAmount,
		MinimumCharge:   m.MinimumCharge,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// RateSlabModelFromDomain creates a persistence model from a domain slab
func RateSlabModelFromDomain(s rate.RateSlab) RateSlabModel {
	return RateSlabModel{
		ID:              s.ID,
		ContractID:      s.ContractID,
		FromLocation:    s.FromLocation,
		ToLocation:      s.ToLocation,
		ArticleID:       s.ArticleID,
		ArticleCategory: s.ArticleCategory,
		WeightFrom:      s.WeightFrom,
		WeightTo:        s.WeightTo,
		ChargeBasis:     s.ChargeBasis,
		RatePerKg:       s.RatePerKg,
		RatePerUnit:     s.RatePerUnit,
		FixedAmount:     s.FixedAmount,
		MinimumCharge:   s.MinimumCharge,
		IsActive:        s.IsActive,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
