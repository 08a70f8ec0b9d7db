// Package auth provides users, login and token rotation.
package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"registrar/internal/core/apperror"
	appctx "registrar/internal/core/context"
	"registrar/internal/core/entity"
	"registrar/internal/core/id"
)

const (
	UserEntity         = "user"
	RefreshTokenEntity = "refresh_token"
)

// User is a login account. Users are audited and soft-deleted.
type User struct {
	entity.BaseEntity
	entity.AuditFields
	entity.SoftDeleteFields

	Email               string     `db:"email" json:"email"`
	PasswordHash        string     `db:"password_hash" json:"-"`
	FirstName           string     `db:"first_name" json:"firstName,omitempty"`
	LastName            string     `db:"last_name" json:"lastName,omitempty"`
	Role                string     `db:"role" json:"role"`
	IsActive            bool       `db:"is_active" json:"isActive"`
	LastLoginAt         *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	FailedLoginAttempts int        `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time `db:"locked_until" json:"-"`
}

// NewUser creates an active user.
func NewUser(email, passwordHash, role string) *User {
	return &User{
		BaseEntity:   entity.NewBaseEntity(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
	}
}

// EntityName implements entity.Persistable.
func (*User) EntityName() string { return UserEntity }

// Validate implements entity.Validatable.
func (u *User) Validate(_ context.Context) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return apperror.NewValidation("invalid email").WithDetail("field", "email")
	}
	if !ValidRole(u.Role) {
		return apperror.NewValidation("invalid role").WithDetail("field", "role").WithDetail("value", u.Role)
	}
	return nil
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case appctx.RoleAdmin, appctx.RoleProfessor, appctx.RoleStudent:
		return true
	}
	return false
}

// IsLocked returns true while a lockout is in effect.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// CanLogin checks if user can login.
func (u *User) CanLogin(now time.Time) error {
	if !u.IsActive {
		return apperror.NewForbidden("account is disabled")
	}
	if u.IsLocked(now) {
		return apperror.NewForbidden("account is temporarily locked")
	}
	return nil
}

// RecordFailedLogin increments the counter and locks after maxAttempts.
func (u *User) RecordFailedLogin(now time.Time, maxAttempts int, lockDuration time.Duration) {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxAttempts {
		until := now.Add(lockDuration)
		u.LockedUntil = &until
	}
}

// RecordSuccessfulLogin resets the failure counter.
func (u *User) RecordSuccessfulLogin(now time.Time) {
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.LastLoginAt = &now
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == appctx.RoleAdmin
}

// RefreshToken is an opaque refresh token, stored hashed. It carries no
// audit or soft-delete fields, so rotation removes the row.
type RefreshToken struct {
	entity.BaseEntity

	UserID    id.ID     `db:"user_id"`
	TokenHash string    `db:"token_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	IssuedAt  time.Time `db:"issued_at"`
	UserAgent string    `db:"user_agent"`
	IPAddress string    `db:"ip_address"`
}

// EntityName implements entity.Persistable.
func (*RefreshToken) EntityName() string { return RefreshTokenEntity }

// Validate implements entity.Validatable.
func (t *RefreshToken) Validate(_ context.Context) error {
	if t.TokenHash == "" {
		return apperror.NewValidation("token hash is required")
	}
	return nil
}

// IsValid checks expiry.
func (t *RefreshToken) IsValid(now time.Time) bool {
	return now.Before(t.ExpiresAt)
}

// TokenPair contains access and refresh tokens.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	TokenType    string    `json:"tokenType"`
}

// Credentials for login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ClientInfo describes the caller of login/refresh.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// RegisterRequest creates a user.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      string `json:"role"`
}
