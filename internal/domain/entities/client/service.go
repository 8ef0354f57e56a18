package client

import (
	"healthops/internal/domain"
)

// Repository defines the interface for Client persistence.
type Repository = domain.AuditedRepository[*Client]

// Service provides business logic for clients.
// Only vendor users create clients; edits need a grant on the client itself.
type Service struct {
	*domain.AuditedService[*Client]
}

// Policy returns the role requirements for clients.
func Policy() domain.Policy {
	p := domain.DefaultPolicy()
	p.VendorInsert = true
	p.SelfOwned = true
	return p
}

// NewService creates a new Client service. The creator of a client gets
// every role on it; granter may be nil.
func NewService(deps domain.ServiceDeps, repo Repository, granter domain.OwnerGranter) *Service {
	s := &Service{
		AuditedService: domain.NewServiceFromDeps[*Client](deps, repo, EntityName, Policy()),
	}
	if granter != nil {
		s.Hooks().OnBeforeInsert(domain.GrantCreator[*Client](granter))
	}
	return s
}
