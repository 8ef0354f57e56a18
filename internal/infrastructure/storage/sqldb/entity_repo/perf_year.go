package entity_repo

import (
	"healthops/internal/domain/entities/perfyear"
	"healthops/internal/infrastructure/storage/sqldb"
)

// PhysPerfYearConfigRepo implements perfyear.Repository.
type PhysPerfYearConfigRepo struct {
	*BaseAuditedRepo[*perfyear.PhysPerfYearConfig]
}

// NewPhysPerfYearConfigRepo creates a new perfyear repository.
func NewPhysPerfYearConfigRepo(txm *sqldb.TxManager) *PhysPerfYearConfigRepo {
	return &PhysPerfYearConfigRepo{
		BaseAuditedRepo: NewBaseAuditedRepo(txm, Config[*perfyear.PhysPerfYearConfig]{
			Table:         "physPerfYearConfig",
			EntityName:    perfyear.EntityName,
			OwnerColumn:   "payerPubId",
			UniqueColumns: []string{"perfYear"},
			DefaultOrder:  "-perfYear",
			NewFn:         perfyear.New,
		}),
	}
}

var _ perfyear.Repository = (*PhysPerfYearConfigRepo)(nil)
