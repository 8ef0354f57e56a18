package entity_repo

import (
	"healthops/internal/domain/entities/payer"
	"healthops/internal/infrastructure/storage/sqldb"
)

// PayerRepo implements payer.Repository.
type PayerRepo struct {
	*BaseAuditedRepo[*payer.Payer]
}

// NewPayerRepo creates a new payer repository.
func NewPayerRepo(txm *sqldb.TxManager) *PayerRepo {
	return &PayerRepo{
		BaseAuditedRepo: NewBaseAuditedRepo(txm, Config[*payer.Payer]{
			Table:         "payer",
			EntityName:    payer.EntityName,
			OwnerColumn:   "clientPubId",
			UniqueColumns: []string{"payerName", "payerCode", "taxId"},
			SearchColumns: []string{"payerName", "payerCode"},
			DefaultOrder:  "payerName",
			NewFn:         payer.New,
		}),
	}
}

var _ payer.Repository = (*PayerRepo)(nil)
