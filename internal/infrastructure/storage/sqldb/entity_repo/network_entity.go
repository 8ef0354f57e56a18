package entity_repo

import (
	"healthops/internal/domain/entities/networkentity"
	"healthops/internal/infrastructure/storage/sqldb"
)

// NetworkEntityRepo implements networkentity.Repository.
type NetworkEntityRepo struct {
	*BaseAuditedRepo[*networkentity.NetworkEntity]
}

// NewNetworkEntityRepo creates a new networkentity repository.
func NewNetworkEntityRepo(txm *sqldb.TxManager) *NetworkEntityRepo {
	return &NetworkEntityRepo{
		BaseAuditedRepo: NewBaseAuditedRepo(txm, Config[*networkentity.NetworkEntity]{
			Table:         "networkEntity",
			EntityName:    networkentity.EntityName,
			OwnerColumn:   "payerPubId",
			UniqueColumns: []string{"entityName", "tin"},
			SearchColumns: []string{"entityName", "tin", "npi"},
			DefaultOrder:  "entityName",
			NewFn:         networkentity.New,
		}),
	}
}

var _ networkentity.Repository = (*NetworkEntityRepo)(nil)
