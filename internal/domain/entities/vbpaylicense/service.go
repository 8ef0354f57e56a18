package vbpaylicense

import (
	"context"
	"fmt"

	"healthops/internal/core/numerator"
	"healthops/internal/core/security"
	"healthops/internal/domain"
)

// Repository defines the interface for VBPayLicense persistence.
type Repository = domain.AuditedRepository[*VBPayLicense]

// NumberPrefix starts every license number.
const NumberPrefix = "LIC"

// Service provides business logic for licenses.
// Every license operation needs admin on the client.
type Service struct {
	*domain.AuditedService[*VBPayLicense]
	numerator numerator.Generator
}

// Policy returns the role requirements for licenses.
func Policy() domain.Policy {
	return domain.Policy{
		InsertRole:     security.RoleAdmin,
		UpdateRole:     security.RoleAdmin,
		ActivationRole: security.RoleAdmin,
	}
}

// NewService creates a new VBPayLicense service.
func NewService(deps domain.ServiceDeps, repo Repository, numGen numerator.Generator) *Service {
	s := &Service{
		AuditedService: domain.NewServiceFromDeps[*VBPayLicense](deps, repo, EntityName, Policy()),
		numerator:      numGen,
	}
	s.Hooks().OnBeforeInsert(s.assignNumber)
	return s
}

// assignNumber runs inside the insert transaction so a rollback frees the number.
func (s *Service) assignNumber(ctx context.Context, l *VBPayLicense) error {
	num, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix), l.CreatedAt)
	if err != nil {
		return fmt.Errorf("assign license number: %w", err)
	}
	l.LicenseNumber = num
	return nil
}
