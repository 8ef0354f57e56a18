package entity_repo

import (
	"healthops/internal/domain/entities/client"
	"healthops/internal/infrastructure/storage/sqldb"
)

// ClientRepo implements client.Repository.
type ClientRepo struct {
	*BaseAuditedRepo[*client.Client]
}

// NewClientRepo creates a new client repository.
func NewClientRepo(txm *sqldb.TxManager) *ClientRepo {
	return &ClientRepo{
		BaseAuditedRepo: NewBaseAuditedRepo(txm, Config[*client.Client]{
			Table:         "client",
			EntityName:    client.EntityName,
			UniqueColumns: []string{"clientName", "clientCode"},
			SearchColumns: []string{"clientName", "clientCode"},
			DefaultOrder:  "clientName",
			NewFn:         client.New,
		}),
	}
}

var _ client.Repository = (*ClientRepo)(nil)
