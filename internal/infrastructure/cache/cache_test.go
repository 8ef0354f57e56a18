package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthops/internal/domain"
)

func TestRecordCache_EvictsOnlyTheTaggedRecord(t *testing.T) {
	c := NewRecordCache(16, time.Minute)
	a := domain.RecordTag("payer", "a")
	b := domain.RecordTag("payer", "b")
	require.True(t, c.Add(a.String(), "A", c.Generation()))
	require.True(t, c.Add(b.String(), "B", c.Generation()))

	require.NoError(t, c.Invalidate(context.Background(), a))
	require.NoError(t, c.Invalidate(context.Background(), domain.PathKey("/payers/b")))

	_, ok := c.Get(a.String())
	assert.False(t, ok)
	v, ok := c.Get(b.String())
	assert.True(t, ok)
	assert.Equal(t, "B", v)
}

func TestRecordCache_Expires(t *testing.T) {
	c := NewRecordCache(16, 10*time.Millisecond)
	c.Add("tag:client:x", 1, c.Generation())

	assert.Eventually(t, func() bool {
		_, ok := c.Get("tag:client:x")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestRecordCache_RefusesFillAfterInvalidation(t *testing.T) {
	c := NewRecordCache(16, time.Minute)
	tag := domain.RecordTag("payer", "a")

	// A reader captured the generation, then an update committed and evicted.
	gen := c.Generation()
	require.NoError(t, c.Invalidate(context.Background(), tag))

	assert.False(t, c.Add(tag.String(), "stale", gen))
	_, ok := c.Get(tag.String())
	assert.False(t, ok)

	// Path keys leave the generation alone.
	gen = c.Generation()
	require.NoError(t, c.Invalidate(context.Background(), domain.PathKey("/payers")))
	assert.True(t, c.Add(tag.String(), "fresh", gen))
	v, ok := c.Get(tag.String())
	assert.True(t, ok)
	assert.Equal(t, "fresh", v)
}

type recorded struct {
	sink, kind string
	failed     bool
}

type recorderFunc func(sink, kind string, err error)

func (f recorderFunc) ObserveInvalidation(sink, kind string, err error) { f(sink, kind, err) }

func TestFanout_DeliversToEverySink(t *testing.T) {
	var got []recorded
	rec := recorderFunc(func(sink, kind string, err error) {
		got = append(got, recorded{sink, kind, err != nil})
	})

	var delivered []string
	ok := domain.InvalidatorFunc(func(_ context.Context, k domain.CacheKey) error {
		delivered = append(delivered, k.String())
		return nil
	})
	broken := domain.InvalidatorFunc(func(context.Context, domain.CacheKey) error {
		return errors.New("connection refused")
	})

	f := NewFanout(rec, Sink{"webhook", broken}, Sink{"lru", ok})
	err := f.Invalidate(context.Background(), domain.PathKey("/clients"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook: connection refused")
	assert.Equal(t, []string{"path:/clients"}, delivered, "a failing sink does not stop the next one")
	assert.Equal(t, []recorded{{"webhook", "path", true}, {"lru", "path", false}}, got)

	assert.NoError(t, f.Invalidate(context.Background(), domain.CacheKey{}))
}

func TestWebhook_PostsPaths(t *testing.T) {
	var bodies []revalidateBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "s3cret", r.Header.Get(SecretHeader))
		var b revalidateBody
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&b))
		bodies = append(bodies, b)
		if b.Value == "/broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx := context.Background()
	w := NewWebhook(WebhookConfig{URL: srv.URL, Secret: "s3cret"})

	require.NoError(t, w.Invalidate(ctx, domain.PathKey("/payers/1")))
	require.NoError(t, w.Invalidate(ctx, domain.TagKey("payer:1")))
	assert.Error(t, w.Invalidate(ctx, domain.PathKey("/broken")))

	assert.Equal(t, []revalidateBody{{"path", "/payers/1"}, {"path", "/broken"}}, bodies, "tags are not forwarded by default")

	bodies = nil
	tags := NewWebhook(WebhookConfig{URL: srv.URL, Secret: "s3cret", IncludeTags: true})
	require.NoError(t, tags.Invalidate(ctx, domain.TagKey("payer:1")))
	assert.Equal(t, []revalidateBody{{"tag", "payer:1"}}, bodies)
}

type execRecorder struct {
	sql  string
	args []any
}

func (e *execRecorder) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	e.sql, e.args = sql, args
	return pgconn.NewCommandTag("SELECT 1"), nil
}

func TestBroadcaster_NotifiesEncodedKey(t *testing.T) {
	db := &execRecorder{}
	b := NewBroadcaster(db, "")

	require.NoError(t, b.Invalidate(context.Background(), domain.RecordTag("client", "abc")))
	assert.Equal(t, "SELECT pg_notify($1, $2)", db.sql)
	assert.Equal(t, []any{DefaultChannel, "tag:client:abc"}, db.args)
}

func TestListener_AppliesPayloadToSinks(t *testing.T) {
	records := NewRecordCache(16, time.Minute)
	records.Add("tag:client:abc", "cached", records.Generation())

	panicky := domain.InvalidatorFunc(func(context.Context, domain.CacheKey) error { panic("boom") })
	l := NewListener(nil, "", panicky, records)
	l.ctx = context.Background()

	l.handle("tag:client:abc")
	l.handle("path:no-slash")

	_, ok := records.Get("tag:client:abc")
	assert.False(t, ok, "a panicking sink does not block the others")
}
