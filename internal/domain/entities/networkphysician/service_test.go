package networkphysician_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthops/internal/core/apperror"
	"healthops/internal/core/entity"
	"healthops/internal/core/security"
	"healthops/internal/domain"
	"healthops/internal/domain/entities/client"
	"healthops/internal/domain/entities/networkentity"
	"healthops/internal/domain/entities/networkphysician"
	"healthops/internal/domain/entities/payer"
	"healthops/internal/infrastructure/storage/sqldb/entity_repo"
	"healthops/internal/infrastructure/storage/sqldb/sqldbtest"
)

type fixture struct {
	svc      *networkphysician.Service
	entities *entity_repo.NetworkEntityRepo
	payers   *entity_repo.PayerRepo
	clientID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	txm := sqldbtest.TxManager(t)

	c := &client.Client{ClientName: "Acme", ClientCode: "ACME01", Timezone: "UTC"}
	c.Stamp("u1", entity.NowUTC())
	require.NoError(t, entity_repo.NewClientRepo(txm).Insert(context.Background(), c))

	entities := entity_repo.NewNetworkEntityRepo(txm)
	return &fixture{
		svc:      networkphysician.NewService(domain.ServiceDeps{TxManager: txm}, entity_repo.NewNetworkPhysicianRepo(txm), entities),
		entities: entities,
		payers:   entity_repo.NewPayerRepo(txm),
		clientID: c.PubID,
	}
}

func (f *fixture) payer(t *testing.T, code string) string {
	t.Helper()
	p := &payer.Payer{ClientPubID: f.clientID, PayerName: "Payer " + code, PayerCode: code, PayerType: payer.TypeCommercial}
	p.Stamp("u1", entity.NowUTC())
	require.NoError(t, f.payers.Insert(context.Background(), p))
	return p.PubID
}

func (f *fixture) group(t *testing.T, payerID, name, tin string) *networkentity.NetworkEntity {
	t.Helper()
	ne := &networkentity.NetworkEntity{PayerPubID: payerID, EntityName: name, EntityType: networkentity.TypeGroup, TIN: tin}
	ne.Stamp("u1", entity.NowUTC())
	require.NoError(t, f.entities.Insert(context.Background(), ne))
	return ne
}

func physician(payerID string, groupID *string) *networkphysician.NetworkPhysician {
	return &networkphysician.NetworkPhysician{
		PayerPubID:         payerID,
		NetworkEntityPubID: groupID,
		FirstName:          "Ada",
		LastName:           "Moss",
		NPI:                "1234567893",
	}
}

func editor(owners ...string) security.Caller {
	c := security.NewCaller("u2", security.TenantPayer)
	for _, o := range owners {
		c.Grants.Add(o, security.RoleAdd)
		c.Grants.Add(o, security.RoleEdit)
	}
	return c
}

func TestInsert_LinkedGroupMustShareThePayer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p1 := f.payer(t, "P1")
	p2 := f.payer(t, "P2")
	own := f.group(t, p1, "North Group", "12-3456789")
	foreign := f.group(t, p2, "South Group", "98-7654321")

	_, err := f.svc.Insert(ctx, editor(p1), domain.MutationRequest[*networkphysician.NetworkPhysician]{
		FormData: physician(p1, &foreign.PubID),
	})
	res := apperror.Surface(err)
	require.NotNil(t, res)
	assert.Equal(t, "must belong to the same payer", res.ValidationErrors["networkEntityPubId"])

	missing := "0192f0c6-0000-7000-8000-00000000dead"
	_, err = f.svc.Insert(ctx, editor(p1), domain.MutationRequest[*networkphysician.NetworkPhysician]{
		FormData: physician(p1, &missing),
	})
	res = apperror.Surface(err)
	require.NotNil(t, res)
	assert.Equal(t, "refers to a record that does not exist", res.ValidationErrors["networkEntityPubId"])

	created, err := f.svc.Insert(ctx, editor(p1), domain.MutationRequest[*networkphysician.NetworkPhysician]{
		FormData: physician(p1, &own.PubID),
	})
	require.NoError(t, err)
	assert.Equal(t, own.PubID, *created.NetworkEntityPubID)
}

func TestUpdate_RejectsInactiveGroup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p1 := f.payer(t, "P1")
	active := f.group(t, p1, "North Group", "12-3456789")
	retired := f.group(t, p1, "Old Group", "98-7654321")
	retired.IsActive = false
	require.NoError(t, f.entities.Update(ctx, retired))

	created, err := f.svc.Insert(ctx, editor(p1), domain.MutationRequest[*networkphysician.NetworkPhysician]{
		FormData: physician(p1, &active.PubID),
	})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, editor(p1), domain.MutationRequest[*networkphysician.NetworkPhysician]{
		PubID:    created.PubID,
		FormData: physician(p1, &retired.PubID),
	})
	res := apperror.Surface(err)
	require.NotNil(t, res)
	assert.Equal(t, "refers to an inactive record", res.ValidationErrors["networkEntityPubId"])

	hist, err := f.svc.History(ctx, editor(p1), created.PubID)
	require.NoError(t, err)
	assert.Empty(t, hist, "a rejected update leaves no history")
}

func TestInsert_NPIUniquePerPayer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p1 := f.payer(t, "P1")
	p2 := f.payer(t, "P2")

	_, err := f.svc.Insert(ctx, editor(p1), domain.MutationRequest[*networkphysician.NetworkPhysician]{FormData: physician(p1, nil)})
	require.NoError(t, err)

	_, err = f.svc.Insert(ctx, editor(p1), domain.MutationRequest[*networkphysician.NetworkPhysician]{FormData: physician(p1, nil)})
	assert.True(t, apperror.IsDuplicate(err), "got %v", err)

	_, err = f.svc.Insert(ctx, editor(p2), domain.MutationRequest[*networkphysician.NetworkPhysician]{FormData: physician(p2, nil)})
	assert.NoError(t, err, "another payer may contract the same physician")
}
