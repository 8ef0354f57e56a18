package entity_repo

import (
	"healthops/internal/domain/entities/healthplan"
	"healthops/internal/infrastructure/storage/sqldb"
)

// HealthPlanRepo implements healthplan.Repository.
type HealthPlanRepo struct {
	*BaseAuditedRepo[*healthplan.HealthPlan]
}

// NewHealthPlanRepo creates a new healthplan repository.
func NewHealthPlanRepo(txm *sqldb.TxManager) *HealthPlanRepo {
	return &HealthPlanRepo{
		BaseAuditedRepo: NewBaseAuditedRepo(txm, Config[*healthplan.HealthPlan]{
			Table:         "healthPlan",
			EntityName:    healthplan.EntityName,
			OwnerColumn:   "payerPubId",
			UniqueColumns: []string{"planName", "planCode"},
			SearchColumns: []string{"planName", "planCode"},
			DefaultOrder:  "planName",
			NewFn:         healthplan.New,
		}),
	}
}

var _ healthplan.Repository = (*HealthPlanRepo)(nil)
