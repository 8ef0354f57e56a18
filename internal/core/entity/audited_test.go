package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"healthops/internal/core/id"
)

func TestAudited_StampSetsBothPairs(t *testing.T) {
	now := NowUTC()
	var a Audited
	a.Stamp("U1", now)

	assert.True(t, id.IsPubID(a.PubID))
	assert.True(t, a.IsActive.Bool())
	assert.Equal(t, a.CreatedAt, a.UpdatedAt)
	assert.Equal(t, "U1", a.CreatedBy)
	assert.Equal(t, "U1", a.UpdatedBy)
}

func TestAudited_TouchKeepsCreation(t *testing.T) {
	created := NowUTC().Add(-time.Hour)
	var a Audited
	a.Stamp("U1", created)
	a.Touch("U2", NowUTC())

	assert.Equal(t, created, a.CreatedAt)
	assert.Equal(t, "U1", a.CreatedBy)
	assert.Equal(t, "U2", a.UpdatedBy)
	assert.True(t, a.UpdatedAt.After(a.CreatedAt))
}

func TestNowUTC_MicrosecondPrecision(t *testing.T) {
	now := NowUTC()
	assert.Equal(t, 0, now.Nanosecond()%1000)
	assert.Equal(t, time.UTC, now.Location())
}
