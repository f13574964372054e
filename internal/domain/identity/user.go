package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusLocked      UserStatus = "locked"      // Locked after repeated failed logins
	UserStatusDeactivated UserStatus = "deactivated" // Manually deactivated
)

// PasswordCost is the bcrypt cost used for new hashes
var PasswordCost = bcrypt.DefaultCost

var usernamePattern = regexp.MustCompile(`^[a-z0-9_\-.]+$`)

// User is an operator of the platform, homed in one branch of one organization.
// A super_admin may have no organization.
type User struct {
	shared.BaseAggregateRoot
	OrgID          uuid.UUID
	BranchID       uuid.UUID
	Username       string
	DisplayName    string
	PasswordHash   string
	Role           tenancy.Role
	Status         UserStatus
	LastLoginAt    *time.Time
	FailedAttempts int
	LockedUntil    *time.Time
}

// NewUser creates an active user with a hashed password
func NewUser(orgID, branchID uuid.UUID, username, password string, role tenancy.Role) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewValidationError("unknown role " + role.String())
	}
	if role != tenancy.RoleSuperAdmin && (orgID == uuid.Nil || branchID == uuid.Nil) {
		return nil, shared.NewValidationError("org_id and branch_id are required for " + role.String())
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrgID:             orgID,
		BranchID:          branchID,
		Username:          username,
		PasswordHash:      hash,
		Role:              role,
		Status:            UserStatusActive,
	}
	user.AddDomainEvent(NewUserCreatedEvent(user))
	return user, nil
}

// Principal returns the authorization identity of the user
func (u *User) Principal() tenancy.Principal {
	return tenancy.Principal{
		UserID:   u.ID,
		OrgID:    u.OrgID,
		BranchID: u.BranchID,
		Role:     u.Role,
	}
}

// Scope returns the tenancy footprint of the user row
func (u *User) Scope() tenancy.ResourceScope {
	return tenancy.BranchScope(tenancy.ResourceUser, u.OrgID, u.BranchID)
}

// SetDisplayName sets the name shown in the UI
func (u *User) SetDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) > 100 {
		return shared.NewValidationError("display name cannot exceed 100 characters")
	}
	u.DisplayName = name
	u.Touch()
	return nil
}

// ChangeRole sets a new role. Whether the caller may do so is decided by
// the tenancy guard before this is called.
func (u *User) ChangeRole(role tenancy.Role, changedBy uuid.UUID) error {
	if !role.IsValid() {
		return shared.NewValidationError("unknown role " + role.String())
	}
	if role == u.Role {
		return nil
	}
	old := u.Role
	u.Role = role
	u.Touch()
	u.AddDomainEvent(NewUserRoleChangedEvent(u, old, changedBy))
	return nil
}

// SetPassword replaces the password hash
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.Touch()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// RecordLoginSuccess resets the failure counter
func (u *User) RecordLoginSuccess(at time.Time) {
	u.LastLoginAt = &at
	u.FailedAttempts = 0
	if u.Status == UserStatusLocked {
		u.Status = UserStatusActive
		u.LockedUntil = nil
	}
	u.Touch()
}

// RecordLoginFailure counts a failed attempt and locks the account once
// maxAttempts is reached. Returns true if the account was locked.
func (u *User) RecordLoginFailure(maxAttempts int, lockFor time.Duration, at time.Time) bool {
	u.FailedAttempts++
	u.Touch()
	if maxAttempts > 0 && u.FailedAttempts >= maxAttempts {
		until := at.Add(lockFor)
		u.Status = UserStatusLocked
		u.LockedUntil = &until
		return true
	}
	return false
}

// Deactivate disables the account
func (u *User) Deactivate() error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError(shared.CodeInvalidState, "user is already deactivated")
	}
	u.Status = UserStatusDeactivated
	u.Touch()
	return nil
}

// IsLocked returns true while a lock is in force
func (u *User) IsLocked(now time.Time) bool {
	if u.Status != UserStatusLocked {
		return false
	}
	return u.LockedUntil == nil || now.Before(*u.LockedUntil)
}

// CanLogin returns true if the account may authenticate
func (u *User) CanLogin(now time.Time) bool {
	return u.Status != UserStatusDeactivated && !u.IsLocked(now)
}

func validateUsername(username string) error {
	if len(username) < 3 {
		return shared.NewValidationError("username must be at least 3 characters")
	}
	if len(username) > 100 {
		return shared.NewValidationError("username cannot exceed 100 characters")
	}
	if !usernamePattern.MatchString(username) {
		return shared.NewValidationError("username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewValidationError("password must be at least 8 characters")
	}
	// bcrypt ignores input past 72 bytes
	if len(password) > 72 {
		return shared.NewValidationError("password cannot exceed 72 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
