package healthplan

import (
	"healthops/internal/domain"
)

// Repository defines the interface for HealthPlan persistence.
type Repository = domain.AuditedRepository[*HealthPlan]

// Service provides business logic for health plans.
type Service struct {
	*domain.AuditedService[*HealthPlan]
}

// NewService creates a new HealthPlan service.
func NewService(deps domain.ServiceDeps, repo Repository) *Service {
	return &Service{
		AuditedService: domain.NewServiceFromDeps[*HealthPlan](deps, repo, EntityName, domain.DefaultPolicy()),
	}
}
