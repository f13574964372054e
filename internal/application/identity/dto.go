package identity

import (
	"time"

	"github.com/freightcore/backend/internal/domain/identity"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/google/uuid"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Username string
	Password string
	IP       string // Client IP for login tracking
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"`
	User        UserInfo  `json:"user"`
}

// UserInfo contains basic user information returned after login
type UserInfo struct {
	ID          uuid.UUID    `json:"id"`
	OrgID       uuid.UUID    `json:"org_id,omitempty"`
	BranchID    uuid.UUID    `json:"branch_id,omitempty"`
	Username    string       `json:"username"`
	DisplayName string       `json:"display_name,omitempty"`
	Role        tenancy.Role `json:"role"`
}

// CreateUserInput contains the input for creating a user
type CreateUserInput struct {
	OrgID       *uuid.UUID
	BranchID    uuid.UUID
	Username    string
	Password    string
	DisplayName string
	Role        tenancy.Role
}

// ChangeRoleInput contains the input for changing a user's role
type ChangeRoleInput struct {
	Role tenancy.Role
}

// UserListFilter narrows a user listing
type UserListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// UserResponse is a user without credentials
type UserResponse struct {
	ID          uuid.UUID    `json:"id"`
	OrgID       uuid.UUID    `json:"org_id,omitempty"`
	BranchID    uuid.UUID    `json:"branch_id,omitempty"`
	Username    string       `json:"username"`
	DisplayName string       `json:"display_name,omitempty"`
	Role        tenancy.Role `json:"role"`
	Status      string       `json:"status"`
	LastLoginAt *time.Time   `json:"last_login_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ToUserInfo converts a user to the login view
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		OrgID:       u.OrgID,
		BranchID:    u.BranchID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        u.Role,
	}
}

// ToUserResponse converts a domain user
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		OrgID:       u.OrgID,
		BranchID:    u.BranchID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Status:      string(u.Status),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
