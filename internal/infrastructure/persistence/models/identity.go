package models

import (
	"time"

	"github.com/freightcore/backend/internal/domain/identity"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/google/uuid"
)

// UserModel is the persistence model for the User aggregate. Super admins
// belong to no organization and store NULL org and branch ids.
type UserModel struct {
	AggregateModel
	OrgID          *uuid.UUID          `gorm:"type:uuid;index"`
	BranchID       *uuid.UUID          `gorm:"type:uuid;index"`
	Username       string              `gorm:"type:varchar(100);not null;uniqueIndex"`
	DisplayName    string              `gorm:"type:varchar(200)"`
	PasswordHash   string              `gorm:"type:varchar(255);not null"`
	Role           tenancy.Role        `gorm:"type:varchar(20);not null"`
	Status         identity.UserStatus `gorm:"type:varchar(20);not null"`
	LastLoginAt    *time.Time
	FailedAttempts int `gorm:"not null;default:0"`
	LockedUntil    *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	u := &identity.User{
		OrgID:          derefID(m.OrgID),
		BranchID:       derefID(m.BranchID),
		Username:       m.Username,
		DisplayName:    m.DisplayName,
		PasswordHash:   m.PasswordHash,
		Role:           m.Role,
		Status:         m.Status,
		LastLoginAt:    m.LastLoginAt,
		FailedAttempts: m.FailedAttempts,
		LockedUntil:    m.LockedUntil,
	}
	m.PopulateAggregateRoot(&u.BaseAggregateRoot)
	return u
}

// UserModelFromDomain creates a persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		OrgID:          optionalID(u.OrgID),
		BranchID:       optionalID(u.BranchID),
		Username:       u.Username,
		DisplayName:    u.DisplayName,
		PasswordHash:   u.PasswordHash,
		Role:           u.Role,
		Status:         u.Status,
		LastLoginAt:    u.LastLoginAt,
		FailedAttempts: u.FailedAttempts,
		LockedUntil:    u.LockedUntil,
	}
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	return m
}

func optionalID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func derefID(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}
