package networkphysician

import (
	"context"

	"healthops/internal/core/apperror"
	"healthops/internal/domain"
	"healthops/internal/domain/entities/networkentity"
)

// Repository defines the interface for NetworkPhysician persistence.
type Repository = domain.AuditedRepository[*NetworkPhysician]

// Service provides business logic for network physicians.
type Service struct {
	*domain.AuditedService[*NetworkPhysician]
	entities networkentity.Repository
}

// NewService creates a new NetworkPhysician service.
// The network entity repository checks that a linked group belongs to the same payer.
func NewService(deps domain.ServiceDeps, repo Repository, entities networkentity.Repository) *Service {
	s := &Service{
		AuditedService: domain.NewServiceFromDeps[*NetworkPhysician](deps, repo, EntityName, domain.DefaultPolicy()),
		entities:       entities,
	}
	s.Hooks().OnBeforeInsert(s.checkNetworkEntity)
	s.Hooks().OnBeforeUpdate(s.checkNetworkEntity)
	return s
}

func (s *Service) checkNetworkEntity(ctx context.Context, p *NetworkPhysician) error {
	if p.NetworkEntityPubID == nil || s.entities == nil {
		return nil
	}
	ne, err := s.entities.Get(ctx, *p.NetworkEntityPubID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewValidationFields(map[string]string{
				"networkEntityPubId": "refers to a record that does not exist",
			})
		}
		return err
	}
	if ne.PayerPubID != p.PayerPubID {
		return apperror.NewValidationFields(map[string]string{
			"networkEntityPubId": "must belong to the same payer",
		})
	}
	if !ne.IsActive.Bool() {
		return apperror.NewValidationFields(map[string]string{
			"networkEntityPubId": "refers to an inactive record",
		})
	}
	return nil
}
