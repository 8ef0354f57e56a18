package sqldb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthops/internal/core/entity"
	"healthops/internal/core/types"
)

type mockRecord struct {
	entity.Audited
	OwnerPubID string  `db:"payerPubId" json:"payerPubId"`
	Name       string  `db:"name" json:"name"`
	Note       *string `db:"note" json:"note"`
	Ignored    string  `db:"-"`
	Untagged   string
}

func TestExtractDBColumns_EmbeddedFirst(t *testing.T) {
	cols := ExtractDBColumns[mockRecord]()

	assert.Equal(t, []string{
		"pubId", "createdAt", "createdBy", "updatedAt", "updatedBy", "isActive",
		"payerPubId", "name", "note",
	}, cols)
}

func TestStructToMap_AuditedFields(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	rec := mockRecord{Name: "Acme", OwnerPubID: "p1"}
	rec.Stamp("U1", now)

	m := StructToMap(&rec)

	assert.Equal(t, rec.PubID, m["pubId"])
	assert.Equal(t, types.Flag(true), m["isActive"])
	assert.Equal(t, now, m["createdAt"])
	assert.Equal(t, "U1", m["updatedBy"])
	assert.Equal(t, "Acme", m["name"])
	assert.Equal(t, (*string)(nil), m["note"])
	assert.NotContains(t, m, "Ignored")
	assert.NotContains(t, m, "Untagged")
}

func TestFieldPointers(t *testing.T) {
	var rec mockRecord
	ptrs, err := FieldPointers(&rec, []string{"name", "pubId", "isActive"})
	require.NoError(t, err)
	require.Len(t, ptrs, 3)

	*(ptrs[0].(*string)) = "Acme"
	*(ptrs[1].(*string)) = "abc"
	*(ptrs[2].(*types.Flag)) = true

	assert.Equal(t, "Acme", rec.Name)
	assert.Equal(t, "abc", rec.PubID)
	assert.True(t, rec.IsActive.Bool())

	_, err = FieldPointers(&rec, []string{"missing"})
	assert.Error(t, err)

	_, err = FieldPointers(rec, []string{"name"})
	assert.Error(t, err)
}
