// Package app wires repositories and services for the binaries.
package app

import (
	"time"

	"healthops/internal/domain"
	"healthops/internal/domain/auth"
	"healthops/internal/domain/entities/client"
	"healthops/internal/domain/entities/healthplan"
	"healthops/internal/domain/entities/networkentity"
	"healthops/internal/domain/entities/networkphysician"
	"healthops/internal/domain/entities/payer"
	"healthops/internal/domain/entities/perfyear"
	"healthops/internal/domain/entities/vbpaylicense"
	"healthops/internal/domain/entities/vbpaysettings"
	"healthops/internal/infrastructure/archive"
	"healthops/internal/infrastructure/numerator"
	"healthops/internal/infrastructure/storage/sqldb"
	"healthops/internal/infrastructure/storage/sqldb/auth_repo"
	"healthops/internal/infrastructure/storage/sqldb/entity_repo"
	"healthops/internal/metadata"
)

// Repos holds one repository per table.
type Repos struct {
	Users  *auth_repo.UserRepo
	Grants *auth_repo.GrantRepo

	Clients           *entity_repo.ClientRepo
	Payers            *entity_repo.PayerRepo
	NetworkEntities   *entity_repo.NetworkEntityRepo
	NetworkPhysicians *entity_repo.NetworkPhysicianRepo
	HealthPlans       *entity_repo.HealthPlanRepo
	PerfYears         *entity_repo.PhysPerfYearConfigRepo
	Licenses          *entity_repo.VBPayLicenseRepo
	Settings          *entity_repo.VBPayGlobalSettingsRepo
}

// NewRepos creates every repository over txm.
func NewRepos(txm *sqldb.TxManager) Repos {
	return Repos{
		Users:             auth_repo.NewUserRepo(txm),
		Grants:            auth_repo.NewGrantRepo(txm),
		Clients:           entity_repo.NewClientRepo(txm),
		Payers:            entity_repo.NewPayerRepo(txm),
		NetworkEntities:   entity_repo.NewNetworkEntityRepo(txm),
		NetworkPhysicians: entity_repo.NewNetworkPhysicianRepo(txm),
		HealthPlans:       entity_repo.NewHealthPlanRepo(txm),
		PerfYears:         entity_repo.NewPhysPerfYearConfigRepo(txm),
		Licenses:          entity_repo.NewVBPayLicenseRepo(txm),
		Settings:          entity_repo.NewVBPayGlobalSettingsRepo(txm),
	}
}

// HistorySources returns an archive source per history table.
func (r Repos) HistorySources() []archive.Source {
	return []archive.Source{
		archive.NewSource[*client.Client](r.Clients),
		archive.NewSource[*payer.Payer](r.Payers),
		archive.NewSource[*networkentity.NetworkEntity](r.NetworkEntities),
		archive.NewSource[*networkphysician.NetworkPhysician](r.NetworkPhysicians),
		archive.NewSource[*healthplan.HealthPlan](r.HealthPlans),
		archive.NewSource[*perfyear.PhysPerfYearConfig](r.PerfYears),
		archive.NewSource[*vbpaylicense.VBPayLicense](r.Licenses),
		archive.NewSource[*vbpaysettings.VBPayGlobalSettings](r.Settings),
	}
}

// URL segments under /api/v1.
const (
	PathClients           = "clients"
	PathPayers            = "payers"
	PathNetworkEntities   = "network-entities"
	PathNetworkPhysicians = "network-physicians"
	PathHealthPlans       = "health-plans"
	PathPerfYears         = "perf-year-configs"
	PathLicenses          = "vbpay-licenses"
	PathSettings          = "vbpay-settings"
)

// Metadata describes every entity for form generation.
func (r Repos) Metadata() *metadata.Registry {
	reg := metadata.NewRegistry()
	register := func(entity any, name, path, label string, shape metadata.Shape) {
		def := metadata.Describe(entity, name, path, shape)
		def.Label = label
		reg.Register(def)
	}

	register(client.New(), client.EntityName, PathClients, "Clients", r.Clients)
	register(payer.New(), payer.EntityName, PathPayers, "Payers", r.Payers)
	register(networkentity.New(), networkentity.EntityName, PathNetworkEntities, "Network entities", r.NetworkEntities)
	register(networkphysician.New(), networkphysician.EntityName, PathNetworkPhysicians, "Network physicians", r.NetworkPhysicians)
	register(healthplan.New(), healthplan.EntityName, PathHealthPlans, "Health plans", r.HealthPlans)
	register(perfyear.New(), perfyear.EntityName, PathPerfYears, "Performance year configs", r.PerfYears)
	register(vbpaylicense.New(), vbpaylicense.EntityName, PathLicenses, "VBPay licenses", r.Licenses)
	register(vbpaysettings.New(), vbpaysettings.EntityName, PathSettings, "VBPay settings", r.Settings)
	return reg
}

// AuthOptions configures tokens and password hashing.
type AuthOptions struct {
	JWTSecret  string
	AccessTTL  time.Duration
	BcryptCost int
}

// Services holds one service per entity plus authentication.
type Services struct {
	Auth *auth.Service

	Clients           *client.Service
	Payers            *payer.Service
	NetworkEntities   *networkentity.Service
	NetworkPhysicians *networkphysician.Service
	HealthPlans       *healthplan.Service
	PerfYears         *perfyear.Service
	Licenses          *vbpaylicense.Service
	Settings          *vbpaysettings.Service
}

// NewServices builds the services. deps.TxManager defaults to txm.
func NewServices(txm *sqldb.TxManager, repos Repos, deps domain.ServiceDeps, opts AuthOptions) *Services {
	if deps.TxManager == nil {
		deps.TxManager = txm
	}

	jwtCfg := auth.DefaultJWTConfig(opts.JWTSecret)
	if opts.AccessTTL > 0 {
		jwtCfg.AccessTokenTTL = opts.AccessTTL
	}
	authCfg := auth.DefaultServiceConfig()
	if opts.BcryptCost > 0 {
		authCfg.BcryptCost = opts.BcryptCost
	}
	authService := auth.NewService(repos.Users, repos.Grants, auth.NewJWTService(jwtCfg), authCfg)

	return &Services{
		Auth:              authService,
		Clients:           client.NewService(deps, repos.Clients, authService),
		Payers:            payer.NewService(deps, repos.Payers, authService),
		NetworkEntities:   networkentity.NewService(deps, repos.NetworkEntities),
		NetworkPhysicians: networkphysician.NewService(deps, repos.NetworkPhysicians, repos.NetworkEntities),
		HealthPlans:       healthplan.NewService(deps, repos.HealthPlans),
		PerfYears:         perfyear.NewService(deps, repos.PerfYears),
		Licenses:          vbpaylicense.NewService(deps, repos.Licenses, numerator.New(txm)),
		Settings:          vbpaysettings.NewService(deps, repos.Settings),
	}
}
