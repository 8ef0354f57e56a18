package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"healthops/internal/core/apperror"
	"healthops/internal/core/security"
	"healthops/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	PasswordMinLength int
	BcryptCost        int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		PasswordMinLength: 8,
		BcryptCost:        bcrypt.DefaultCost,
	}
}

// OwnerRoles are granted to the creator of a new owning entity.
var OwnerRoles = []security.Role{security.RoleView, security.RoleAdd, security.RoleEdit, security.RoleAdmin}

// Service provides login, token verification and grant administration.
type Service struct {
	userRepo   UserRepository
	grantRepo  GrantRepository
	jwtService *JWTService
	config     ServiceConfig
}

// NewService creates a new auth service.
func NewService(
	userRepo UserRepository,
	grantRepo GrantRepository,
	jwtService *JWTService,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:   userRepo,
		grantRepo:  grantRepo,
		jwtService: jwtService,
		config:     config,
	}
}

// CreateUser hashes password and stores a new user.
func (s *Service) CreateUser(ctx context.Context, email, displayName, password string, tenantType security.TenantType) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperror.NewValidationFields(map[string]string{"email": "is required"})
	}
	if len(password) < s.config.PasswordMinLength {
		return nil, apperror.NewValidationFields(map[string]string{
			"password": fmt.Sprintf("must be at least %d characters", s.config.PasswordMinLength),
		})
	}
	switch tenantType {
	case security.TenantVendor, security.TenantClient, security.TenantPayer:
	default:
		return nil, apperror.NewValidationFields(map[string]string{"tenantType": "must be one of: vendor, client, payer"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(email, displayName, string(hash), tenantType)
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login checks credentials and issues an access token.
func (s *Service) Login(ctx context.Context, creds Credentials) (*TokenPair, error) {
	invalid := apperror.NewUnauthorized("invalid email or password")

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(creds.Email)))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, invalid
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		logger.Info(ctx, "login rejected", "user_id", user.UserID)
		return nil, invalid
	}
	if err := user.CanLogin(); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: token, ExpiresAt: expiresAt, TokenType: "Bearer"}, nil
}

// Authenticate verifies a token and builds the Caller with its current grants.
func (s *Service) Authenticate(ctx context.Context, token string) (security.Caller, error) {
	ident, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return security.Caller{}, apperror.NewUnauthorized("invalid or expired token")
	}

	user, err := s.userRepo.GetByID(ctx, ident.UserID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return security.Caller{}, apperror.NewUnauthorized("invalid or expired token")
		}
		return security.Caller{}, fmt.Errorf("get user: %w", err)
	}
	if err := user.CanLogin(); err != nil {
		return security.Caller{}, err
	}

	grants, err := s.grantRepo.Load(ctx, user.UserID)
	if err != nil {
		return security.Caller{}, fmt.Errorf("load grants: %w", err)
	}
	return security.Caller{UserID: user.UserID, TenantType: user.TenantType, Grants: grants}, nil
}

// Grant adds a role for a user on an owner. The caller needs admin on that owner.
func (s *Service) Grant(ctx context.Context, caller security.Caller, req GrantRequest) error {
	role, err := s.checkGrantRequest(ctx, caller, req)
	if err != nil {
		return err
	}
	return s.grantRepo.Add(ctx, Grant{
		UserID:     req.UserID,
		OwnerPubID: req.OwnerPubID,
		Role:       role,
		CreatedAt:  time.Now().UTC(),
		CreatedBy:  caller.UserID,
	})
}

// Revoke removes a role for a user on an owner. The caller needs admin on that owner.
func (s *Service) Revoke(ctx context.Context, caller security.Caller, req GrantRequest) error {
	role, err := s.checkGrantRequest(ctx, caller, req)
	if err != nil {
		return err
	}
	return s.grantRepo.Remove(ctx, req.UserID, req.OwnerPubID, role)
}

// GrantOwnerRoles gives userID every role on a newly created owner.
// It joins the transaction in ctx.
func (s *Service) GrantOwnerRoles(ctx context.Context, userID, ownerPubID string) error {
	now := time.Now().UTC()
	for _, role := range OwnerRoles {
		if err := s.grantRepo.Add(ctx, Grant{
			UserID:     userID,
			OwnerPubID: ownerPubID,
			Role:       role,
			CreatedAt:  now,
			CreatedBy:  userID,
		}); err != nil {
			return fmt.Errorf("grant %s: %w", role, err)
		}
	}
	return nil
}

func (s *Service) checkGrantRequest(ctx context.Context, caller security.Caller, req GrantRequest) (security.Role, error) {
	role, err := security.ParseRole(req.Role)
	if err != nil {
		return "", apperror.NewValidationFields(map[string]string{"role": "must be one of: view, add, edit, admin"})
	}
	if err := security.Authorize(caller, req.OwnerPubID, security.RoleAdmin); err != nil {
		return "", err
	}
	if _, err := s.userRepo.GetByID(ctx, req.UserID); err != nil {
		if apperror.IsNotFound(err) {
			return "", apperror.NewValidationFields(map[string]string{"userId": "refers to a user that does not exist"})
		}
		return "", err
	}
	return role, nil
}
