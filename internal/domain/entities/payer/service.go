package payer

import (
	"healthops/internal/domain"
)

// Repository defines the interface for Payer persistence.
type Repository = domain.AuditedRepository[*Payer]

// Service provides business logic for payers.
// Inserting needs add on the client; the creator then administers the payer.
type Service struct {
	*domain.AuditedService[*Payer]
}

// NewService creates a new Payer service. granter may be nil.
func NewService(deps domain.ServiceDeps, repo Repository, granter domain.OwnerGranter) *Service {
	s := &Service{
		AuditedService: domain.NewServiceFromDeps[*Payer](deps, repo, EntityName, domain.DefaultPolicy()),
	}
	if granter != nil {
		s.Hooks().OnBeforeInsert(domain.GrantCreator[*Payer](granter))
	}
	return s
}
