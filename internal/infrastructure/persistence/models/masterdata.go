package models

import (
	"github.com/freightcore/backend/internal/domain/masterdata"
	"github.com/freightcore/backend/internal/domain/rate"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrganizationModel is the persistence model for a tenant organization
type OrganizationModel struct {
	AggregateModel
	Name     string `gorm:"type:varchar(200);not null"`
	Code     string `gorm:"type:varchar(50);not null;uniqueIndex"`
	IsActive bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrganizationModel) TableName() string {
	return "organizations"
}

func (m *OrganizationModel) ToDomain() *masterdata.Organization {
	o := &masterdata.Organization{Name: m.Name, Code: m.Code, IsActive: m.IsActive}
	m.PopulateAggregateRoot(&o.BaseAggregateRoot)
	return o
}

func OrganizationModelFromDomain(o *masterdata.Organization) *OrganizationModel {
	m := &OrganizationModel{Name: o.Name, Code: o.Code, IsActive: o.IsActive}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	return m
}

// BranchModel is the persistence model for a branch office
type BranchModel struct {
	OrgAggregateModel
	Name     string `gorm:"type:varchar(200);not null"`
	Code     string `gorm:"type:varchar(50);not null"`
	City     string `gorm:"type:varchar(100)"`
	IsActive bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BranchModel) TableName() string {
	return "branches"
}

func (m *BranchModel) ToDomain() *masterdata.Branch {
	b := &masterdata.Branch{Name: m.Name, Code: m.Code, City: m.City, IsActive: m.IsActive}
	m.PopulateOrgAggregateRoot(&b.OrgAggregateRoot)
	return b
}

func BranchModelFromDomain(b *masterdata.Branch) *BranchModel {
	m := &BranchModel{Name: b.Name, Code: b.Code, City: b.City, IsActive: b.IsActive}
	m.FromDomainOrgAggregateRoot(b.OrgAggregateRoot)
	return m
}

// CustomerModel is the persistence model for a shipper or consignee
type CustomerModel struct {
	OrgAggregateModel
	BranchID *uuid.UUID `gorm:"type:uuid;index"`
	Name     string     `gorm:"type:varchar(200);not null"`
	Phone    string     `gorm:"type:varchar(20)"`
	GSTIN    string     `gorm:"column:gstin;type:varchar(20)"`
	Address  string     `gorm:"type:text"`
	IsActive bool       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

func (m *CustomerModel) ToDomain() *masterdata.Customer {
	c := &masterdata.Customer{
		BranchID: m.BranchID,
		Name:     m.Name,
		Phone:    m.Phone,
		GSTIN:    m.GSTIN,
		Address:  m.Address,
		IsActive: m.IsActive,
	}
	m.PopulateOrgAggregateRoot(&c.OrgAggregateRoot)
	return c
}

func CustomerModelFromDomain(c *masterdata.Customer) *CustomerModel {
	m := &CustomerModel{
		BranchID: c.BranchID,
		Name:     c.Name,
		Phone:    c.Phone,
		GSTIN:    c.GSTIN,
		Address:  c.Address,
		IsActive: c.IsActive,
	}
	m.FromDomainOrgAggregateRoot(c.OrgAggregateRoot)
	return m
}

// ArticleModel is the persistence model for an article master record
type ArticleModel struct {
	OrgAggregateModel
	BranchID                *uuid.UUID       `gorm:"type:uuid;index"`
	Name                    string           `gorm:"type:varchar(200);not null"`
	Category                string           `gorm:"type:varchar(50);index"`
	ChargeBasis             rate.ChargeBasis `gorm:"type:varchar(20);not null"`
	BaseRatePerKg           decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	BaseRatePerUnit         decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	MinimumCharge           decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	RequiresSpecialHandling bool             `gorm:"not null"`
	IsActive                bool             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ArticleModel) TableName() string {
	return "articles"
}

func (m *ArticleModel) ToDomain() *masterdata.Article {
	a := &masterdata.Article{
		BranchID:                m.BranchID,
		Name:                    m.Name,
		Category:                m.Category,
		ChargeBasis:             m.ChargeBasis,
		BaseRatePerKg:           m.BaseRatePerKg,
		BaseRatePerUnit:         m.BaseRatePerUnit,
		MinimumCharge:           m.MinimumCharge,
		RequiresSpecialHandling: m.RequiresSpecialHandling,
		IsActive:                m.IsActive,
	}
	m.PopulateOrgAggregateRoot(&a.OrgAggregateRoot)
	return a
}

func ArticleModelFromDomain(a *masterdata.Article) *ArticleModel {
	m := &ArticleModel{
		BranchID:                a.BranchID,
		Name:                    a.Name,
		Category:                a.Category,
		ChargeBasis:             a.ChargeBasis,
		BaseRatePerKg:           a.BaseRatePerKg,
		BaseRatePerUnit:         a.BaseRatePerUnit,
		MinimumCharge:           a.MinimumCharge,
		RequiresSpecialHandling: a.RequiresSpecialHandling,
		IsActive:                a.IsActive,
	}
	m.FromDomainOrgAggregateRoot(a.OrgAggregateRoot)
	return m
}
