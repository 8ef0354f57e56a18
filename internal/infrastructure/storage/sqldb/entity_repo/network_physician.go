package entity_repo

import (
	"healthops/internal/domain/entities/networkphysician"
	"healthops/internal/infrastructure/storage/sqldb"
)

// NetworkPhysicianRepo implements networkphysician.Repository.
type NetworkPhysicianRepo struct {
	*BaseAuditedRepo[*networkphysician.NetworkPhysician]
}

// NewNetworkPhysicianRepo creates a new networkphysician repository.
func NewNetworkPhysicianRepo(txm *sqldb.TxManager) *NetworkPhysicianRepo {
	return &NetworkPhysicianRepo{
		BaseAuditedRepo: NewBaseAuditedRepo(txm, Config[*networkphysician.NetworkPhysician]{
			Table:         "networkPhysician",
			EntityName:    networkphysician.EntityName,
			OwnerColumn:   "payerPubId",
			UniqueColumns: []string{"npi"},
			SearchColumns: []string{"lastName", "firstName", "npi"},
			DefaultOrder:  "lastName",
			NewFn:         networkphysician.New,
		}),
	}
}

var _ networkphysician.Repository = (*NetworkPhysicianRepo)(nil)
