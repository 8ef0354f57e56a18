package vbpaylicense_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthops/internal/core/apperror"
	"healthops/internal/core/entity"
	corenumerator "healthops/internal/core/numerator"
	"healthops/internal/core/security"
	"healthops/internal/core/types"
	"healthops/internal/domain"
	"healthops/internal/domain/entities/client"
	"healthops/internal/domain/entities/vbpaylicense"
	"healthops/internal/infrastructure/numerator"
	"healthops/internal/infrastructure/storage/sqldb/entity_repo"
	"healthops/internal/infrastructure/storage/sqldb/sqldbtest"
)

func setup(t *testing.T) (*vbpaylicense.Service, string) {
	t.Helper()
	txm := sqldbtest.TxManager(t)

	c := &client.Client{ClientName: "Acme", ClientCode: "ACME01", Timezone: "UTC"}
	c.Stamp("u1", entity.NowUTC())
	require.NoError(t, entity_repo.NewClientRepo(txm).Insert(context.Background(), c))

	svc := vbpaylicense.NewService(domain.ServiceDeps{TxManager: txm}, entity_repo.NewVBPayLicenseRepo(txm), numerator.New(txm))
	return svc, c.PubID
}

func license(clientID string) *vbpaylicense.VBPayLicense {
	return &vbpaylicense.VBPayLicense{
		ClientPubID: clientID,
		ProductTier: "professional",
		SeatCount:   25,
		ValidFrom:   types.MustDate("2026-01-01"),
		ValidUntil:  types.MustDate("2026-12-31"),
	}
}

func caller(owner string, role security.Role) security.Caller {
	c := security.NewCaller("u2", security.TenantClient)
	c.Grants.Add(owner, role)
	return c
}

func TestInsert_IssuesSequentialNumbers(t *testing.T) {
	ctx := context.Background()
	svc, clientID := setup(t)
	admin := caller(clientID, security.RoleAdmin)

	first, err := svc.Insert(ctx, admin, domain.MutationRequest[*vbpaylicense.VBPayLicense]{FormData: license(clientID)})
	require.NoError(t, err)
	year := first.CreatedAt.Year()
	assert.Equal(t, fmt.Sprintf("LIC-%d-00001", year), first.LicenseNumber)

	second, err := svc.Insert(ctx, admin, domain.MutationRequest[*vbpaylicense.VBPayLicense]{FormData: license(clientID)})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("LIC-%d-00002", year), second.LicenseNumber)

	// The number survives an update whose payload tries to change it.
	payload := license(clientID)
	payload.LicenseNumber = "LIC-FORGED"
	payload.SeatCount = 40
	updated, err := svc.Update(ctx, admin, domain.MutationRequest[*vbpaylicense.VBPayLicense]{PubID: first.PubID, FormData: payload})
	require.NoError(t, err)
	assert.Equal(t, first.LicenseNumber, updated.LicenseNumber)
	assert.Equal(t, 40, updated.SeatCount)
}

func TestInsert_RequiresAdmin(t *testing.T) {
	ctx := context.Background()
	svc, clientID := setup(t)

	_, err := svc.Insert(ctx, caller(clientID, security.RoleAdd), domain.MutationRequest[*vbpaylicense.VBPayLicense]{FormData: license(clientID)})
	require.True(t, apperror.IsForbidden(err), "got %v", err)

	// The refused insert did not consume a number.
	created, err := svc.Insert(ctx, caller(clientID, security.RoleAdmin), domain.MutationRequest[*vbpaylicense.VBPayLicense]{FormData: license(clientID)})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("LIC-%d-00001", created.CreatedAt.Year()), created.LicenseNumber)
}

func TestValidate_PeriodOrder(t *testing.T) {
	l := license("0192f0c6-0000-7000-8000-000000000001")
	l.ValidUntil = l.ValidFrom

	res := apperror.Surface(l.Validate(context.Background()))
	require.NotNil(t, res)
	assert.Equal(t, map[string]string{"validUntil": "must be after validFrom"}, res.ValidationErrors)
}

func TestInsert_NumberFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	txm := sqldbtest.TxManager(t)

	c := &client.Client{ClientName: "Acme", ClientCode: "ACME01", Timezone: "UTC"}
	c.Stamp("u1", entity.NowUTC())
	require.NoError(t, entity_repo.NewClientRepo(txm).Insert(ctx, c))

	gen := &corenumerator.MockGenerator{}
	repo := entity_repo.NewVBPayLicenseRepo(txm)
	svc := vbpaylicense.NewService(domain.ServiceDeps{TxManager: txm}, repo, gen)
	admin := caller(c.PubID, security.RoleAdmin)

	created, err := svc.Insert(ctx, admin, domain.MutationRequest[*vbpaylicense.VBPayLicense]{FormData: license(c.PubID)})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("LIC-%d-00001", created.CreatedAt.Year()), created.LicenseNumber)

	gen.GetNextNumberFunc = func(context.Context, corenumerator.Config, time.Time) (string, error) {
		return "", errors.New("sequence unavailable")
	}
	_, err = svc.Insert(ctx, admin, domain.MutationRequest[*vbpaylicense.VBPayLicense]{FormData: license(c.PubID)})
	require.Error(t, err)

	f := domain.DefaultListFilter()
	f.OwnerPubID = c.PubID
	res, err := repo.List(ctx, f)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.TotalCount)
}
