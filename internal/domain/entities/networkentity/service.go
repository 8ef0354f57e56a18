package networkentity

import (
	"healthops/internal/domain"
)

// Repository defines the interface for NetworkEntity persistence.
type Repository = domain.AuditedRepository[*NetworkEntity]

// Service provides business logic for network entities.
type Service struct {
	*domain.AuditedService[*NetworkEntity]
}

// NewService creates a new NetworkEntity service.
func NewService(deps domain.ServiceDeps, repo Repository) *Service {
	return &Service{
		AuditedService: domain.NewServiceFromDeps[*NetworkEntity](deps, repo, EntityName, domain.DefaultPolicy()),
	}
}
