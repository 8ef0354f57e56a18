// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"healthops/internal/app"
	"healthops/internal/config"
	"healthops/internal/core/apperror"
	"healthops/internal/core/security"
	"healthops/internal/core/types"
	"healthops/internal/domain"
	"healthops/internal/domain/auth"
	"healthops/internal/domain/entities/client"
	"healthops/internal/domain/entities/healthplan"
	"healthops/internal/domain/entities/payer"
	"healthops/internal/infrastructure/storage/sqldb"
	"healthops/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
		Service:     "healthops-seed",
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(os.Getenv("HEALTHOPS_CONFIG"))
	if err != nil {
		log.Fatalw("failed to load config", "error", err)
	}

	ctx := logger.WithLogger(context.Background(), log)

	db, err := sqldb.Open(ctx, sqldb.DefaultPoolConfig(cfg.Database.Driver, cfg.Database.DSN))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := sqldb.MigrateUp(ctx, db); err != nil {
		log.Fatalw("failed to apply migrations", "error", err)
	}
	log.Info("connected to database")

	txm := sqldb.NewTxManager(db)
	repos := app.NewRepos(txm)
	services := app.NewServices(txm, repos, domain.ServiceDeps{}, app.AuthOptions{
		JWTSecret:  cfg.Auth.JWTSecret,
		BcryptCost: cfg.Auth.BcryptCost,
	})

	adminEmail := getEnv("ADMIN_EMAIL", "admin@healthops.local")
	adminPassword := getEnv("ADMIN_PASSWORD", "Admin123!")

	if err := seedAdminUser(ctx, services.Auth, repos, adminEmail, adminPassword, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, services, adminEmail, adminPassword, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, authService *auth.Service, repos app.Repos, email, password string, log *logger.Logger) error {
	existing, err := repos.Users.GetByEmail(ctx, email)
	if err == nil {
		log.Infow("admin user already exists", "email", email, "user_id", existing.UserID)
		return nil
	}
	if !apperror.IsNotFound(err) {
		return fmt.Errorf("check admin exists: %w", err)
	}

	user, err := authService.CreateUser(ctx, email, "Platform Admin", password, security.TenantVendor)
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	log.Infow("admin user created",
		"email", email,
		"user_id", user.UserID,
	)
	return nil
}

// caller signs in as the admin and returns the caller with its current grants.
func caller(ctx context.Context, authService *auth.Service, email, password string) (security.Caller, error) {
	tokens, err := authService.Login(ctx, auth.Credentials{Email: email, Password: password})
	if err != nil {
		return security.Caller{}, fmt.Errorf("login: %w", err)
	}
	return authService.Authenticate(ctx, tokens.AccessToken)
}

func seedDemoData(ctx context.Context, services *app.Services, email, password string, log *logger.Logger) error {
	log.Info("seeding demo data...")

	admin, err := caller(ctx, services.Auth, email, password)
	if err != nil {
		return err
	}

	// 1. Client (root owner)
	acme, err := services.Clients.Insert(ctx, admin, domain.MutationRequest[*client.Client]{
		FormData: &client.Client{
			ClientName: "Acme Health Partners",
			ClientCode: "ACME",
			Timezone:   "America/New_York",
		},
		RevalidationTarget: "/clients",
	})
	if apperror.IsDuplicate(err) {
		log.Info("demo data already present, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	log.Infow("client created", "pub_id", acme.PubID, "name", acme.ClientName)

	// The creator grants were added with the client; reload them.
	admin, err = caller(ctx, services.Auth, email, password)
	if err != nil {
		return err
	}

	// 2. Payers
	payers := []struct {
		name  string
		code  string
		ptype payer.PayerType
	}{
		{"Blue Ridge Commercial", "BRC", payer.TypeCommercial},
		{"Silver Years Medicare", "SYM", payer.TypeMedicare},
	}

	created := make([]*payer.Payer, 0, len(payers))
	for _, p := range payers {
		row, err := services.Payers.Insert(ctx, admin, domain.MutationRequest[*payer.Payer]{
			FormData: &payer.Payer{
				PayerName: p.name,
				PayerCode: p.code,
				PayerType: p.ptype,
			},
			OwnerPubID: acme.PubID,
		})
		if err != nil {
			return fmt.Errorf("insert payer %s: %w", p.code, err)
		}
		created = append(created, row)
		log.Infow("payer created", "pub_id", row.PubID, "code", row.PayerCode)
	}

	// Each payer's creator grants came with it as well.
	admin, err = caller(ctx, services.Auth, email, password)
	if err != nil {
		return err
	}

	// 3. One plan per payer
	effective := types.NewDate(time.Date(time.Now().Year(), time.January, 1, 0, 0, 0, 0, time.UTC))
	for _, p := range created {
		lob := healthplan.LOBCommercial
		if p.PayerType == payer.TypeMedicare {
			lob = healthplan.LOBMedicareAdvantage
		}
		plan, err := services.HealthPlans.Insert(ctx, admin, domain.MutationRequest[*healthplan.HealthPlan]{
			FormData: &healthplan.HealthPlan{
				PlanName:       p.PayerName + " Standard",
				PlanCode:       p.PayerCode + "-STD",
				LineOfBusiness: lob,
				EffectiveDate:  effective,
			},
			OwnerPubID: p.PubID,
		})
		if err != nil {
			return fmt.Errorf("insert plan for %s: %w", p.PayerCode, err)
		}
		log.Infow("health plan created", "pub_id", plan.PubID, "code", plan.PlanCode)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
