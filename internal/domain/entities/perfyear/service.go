package perfyear

import (
	"healthops/internal/domain"
)

// Repository defines the interface for PhysPerfYearConfig persistence.
type Repository = domain.AuditedRepository[*PhysPerfYearConfig]

// Service provides business logic for performance-year configs.
type Service struct {
	*domain.AuditedService[*PhysPerfYearConfig]
}

// NewService creates a new PhysPerfYearConfig service.
func NewService(deps domain.ServiceDeps, repo Repository) *Service {
	return &Service{
		AuditedService: domain.NewServiceFromDeps[*PhysPerfYearConfig](deps, repo, EntityName, domain.DefaultPolicy()),
	}
}
