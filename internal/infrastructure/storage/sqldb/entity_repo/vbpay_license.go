package entity_repo

import (
	"healthops/internal/domain/entities/vbpaylicense"
	"healthops/internal/infrastructure/storage/sqldb"
)

// VBPayLicenseRepo implements vbpaylicense.Repository.
type VBPayLicenseRepo struct {
	*BaseAuditedRepo[*vbpaylicense.VBPayLicense]
}

// NewVBPayLicenseRepo creates a new vbpaylicense repository.
func NewVBPayLicenseRepo(txm *sqldb.TxManager) *VBPayLicenseRepo {
	return &VBPayLicenseRepo{
		BaseAuditedRepo: NewBaseAuditedRepo(txm, Config[*vbpaylicense.VBPayLicense]{
			Table:         "vbpayLicense",
			EntityName:    vbpaylicense.EntityName,
			OwnerColumn:   "clientPubId",
			UniqueColumns: []string{"licenseNumber"},
			SearchColumns: []string{"licenseNumber"},
			DefaultOrder:  "-validFrom",
			NewFn:         vbpaylicense.New,
		}),
	}
}

var _ vbpaylicense.Repository = (*VBPayLicenseRepo)(nil)
