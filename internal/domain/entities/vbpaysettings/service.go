package vbpaysettings

import (
	"healthops/internal/core/security"
	"healthops/internal/domain"
)

// Repository defines the interface for VBPayGlobalSettings persistence.
type Repository = domain.AuditedRepository[*VBPayGlobalSettings]

// Service provides business logic for VBPay settings.
type Service struct {
	*domain.AuditedService[*VBPayGlobalSettings]
}

// NewService creates a new VBPayGlobalSettings service. Every operation needs admin.
func NewService(deps domain.ServiceDeps, repo Repository) *Service {
	p := domain.Policy{
		InsertRole:     security.RoleAdmin,
		UpdateRole:     security.RoleAdmin,
		ActivationRole: security.RoleAdmin,
	}
	return &Service{
		AuditedService: domain.NewServiceFromDeps[*VBPayGlobalSettings](deps, repo, EntityName, p),
	}
}
