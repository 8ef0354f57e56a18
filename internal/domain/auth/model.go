// Package auth provides login, access tokens and grant administration.
package auth

import (
	"context"
	"time"

	"healthops/internal/core/apperror"
	"healthops/internal/core/id"
	"healthops/internal/core/security"
	"healthops/internal/core/types"
)

// User is an account that signs in and acts as a Caller.
type User struct {
	UserID       string              `db:"userId" json:"userId"`
	Email        string              `db:"email" json:"email"`
	DisplayName  string              `db:"displayName" json:"displayName"`
	PasswordHash string              `db:"passwordHash" json:"-"`
	TenantType   security.TenantType `db:"tenantType" json:"tenantType"`
	IsActive     types.Flag          `db:"isActive" json:"isActive"`
	CreatedAt    time.Time           `db:"createdAt" json:"createdAt"`
}

// NewUser creates an active user.
func NewUser(email, displayName, passwordHash string, tenantType security.TenantType) *User {
	return &User{
		UserID:       id.NewPubID(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		TenantType:   tenantType,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
}

// CanLogin checks if user can login.
func (u *User) CanLogin() error {
	if !u.IsActive.Bool() {
		return apperror.NewForbidden("account is disabled")
	}
	return nil
}

// Grant gives UserID one role on an owning client or payer.
type Grant struct {
	UserID     string        `db:"userId" json:"userId"`
	OwnerPubID string        `db:"ownerPubId" json:"ownerPubId"`
	Role       security.Role `db:"role" json:"role"`
	CreatedAt  time.Time     `db:"createdAt" json:"createdAt"`
	CreatedBy  string        `db:"createdBy" json:"createdBy"`
}

// Credentials for login.
type Credentials struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenPair is returned by a successful login.
type TokenPair struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	TokenType   string    `json:"tokenType"`
}

// GrantRequest names a grant to add or remove.
type GrantRequest struct {
	UserID     string `json:"userId" binding:"required"`
	OwnerPubID string `json:"ownerPubId" binding:"required"`
	Role       string `json:"role" binding:"required"`
}

// UserRepository defines user storage operations.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// GrantRepository defines grant storage operations.
type GrantRepository interface {
	// Add inserts a grant; adding an existing grant is a no-op.
	Add(ctx context.Context, g Grant) error
	Remove(ctx context.Context, userID, ownerPubID string, role security.Role) error
	// Load returns every grant held by userID.
	Load(ctx context.Context, userID string) (security.Grants, error)
}
