package dto

import (
	"time"

	"healthops/internal/core/security"
	"healthops/internal/domain/auth"
)

// --- Request DTOs ---

// LoginRequest for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts to domain credentials.
func (r *LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{
		Email:    r.Email,
		Password: r.Password,
	}
}

// GrantRequest adds or removes one role for a user on an owner.
type GrantRequest struct {
	UserID     string `json:"userId" binding:"required"`
	OwnerPubID string `json:"ownerPubId" binding:"required,uuid"`
	Role       string `json:"role" binding:"required"`
}

// ToAuthRequest converts to domain request.
func (r *GrantRequest) ToAuthRequest() auth.GrantRequest {
	return auth.GrantRequest{
		UserID:     r.UserID,
		OwnerPubID: r.OwnerPubID,
		Role:       r.Role,
	}
}

// --- Response DTOs ---

// TokenResponse represents token response.
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	TokenType   string    `json:"tokenType"`
}

// FromTokenPair creates response from domain token pair.
func FromTokenPair(tp *auth.TokenPair) *TokenResponse {
	return &TokenResponse{
		AccessToken: tp.AccessToken,
		ExpiresAt:   tp.ExpiresAt,
		TokenType:   tp.TokenType,
	}
}

// CallerResponse describes the authenticated caller.
type CallerResponse struct {
	UserID     string                     `json:"userId"`
	TenantType security.TenantType        `json:"tenantType"`
	Grants     map[string][]security.Role `json:"grants"`
}

// FromCaller creates response from a caller.
func FromCaller(c security.Caller) *CallerResponse {
	grants := make(map[string][]security.Role, len(c.Grants))
	for owner, roles := range c.Grants {
		grants[owner] = roles.Sorted()
	}
	return &CallerResponse{
		UserID:     c.UserID,
		TenantType: c.TenantType,
		Grants:     grants,
	}
}
