package entity_repo

import (
	"healthops/internal/domain/entities/vbpaysettings"
	"healthops/internal/infrastructure/storage/sqldb"
)

// VBPayGlobalSettingsRepo implements vbpaysettings.Repository.
type VBPayGlobalSettingsRepo struct {
	*BaseAuditedRepo[*vbpaysettings.VBPayGlobalSettings]
}

// NewVBPayGlobalSettingsRepo creates a new vbpaysettings repository.
func NewVBPayGlobalSettingsRepo(txm *sqldb.TxManager) *VBPayGlobalSettingsRepo {
	return &VBPayGlobalSettingsRepo{
		BaseAuditedRepo: NewBaseAuditedRepo(txm, Config[*vbpaysettings.VBPayGlobalSettings]{
			Table:         "vbpayGlobalSettings",
			EntityName:    vbpaysettings.EntityName,
			OwnerColumn:   "clientPubId",
			UniqueColumns: []string{"clientPubId"},
			DefaultOrder:  "createdAt",
			NewFn:         vbpaysettings.New,
		}),
	}
}

var _ vbpaysettings.Repository = (*VBPayGlobalSettingsRepo)(nil)
