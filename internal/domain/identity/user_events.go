package identity

import (
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/google/uuid"
)

// Aggregate type constant for User
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserCreated     = "UserCreated"
	EventTypeUserRoleChanged = "UserRoleChanged"
)

// UserCreatedEvent is published when a user is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	UserID   uuid.UUID    `json:"user_id"`
	Username string       `json:"username"`
	BranchID uuid.UUID    `json:"branch_id"`
	Role     tenancy.Role `json:"role"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, user.ID, user.OrgID),
		UserID:          user.ID,
		Username:        user.Username,
		BranchID:        user.BranchID,
		Role:            user.Role,
	}
}

// UserRoleChangedEvent is published when a user's role changes
type UserRoleChangedEvent struct {
	shared.BaseDomainEvent
	UserID    uuid.UUID    `json:"user_id"`
	OldRole   tenancy.Role `json:"old_role"`
	NewRole   tenancy.Role `json:"new_role"`
	ChangedBy uuid.UUID    `json:"changed_by"`
}

// NewUserRoleChangedEvent creates a new UserRoleChangedEvent
func NewUserRoleChangedEvent(user *User, oldRole tenancy.Role, changedBy uuid.UUID) *UserRoleChangedEvent {
	return &UserRoleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRoleChanged, AggregateTypeUser, user.ID, user.OrgID),
		UserID:          user.ID,
		OldRole:         oldRole,
		NewRole:         user.Role,
		ChangedBy:       changedBy,
	}
}
