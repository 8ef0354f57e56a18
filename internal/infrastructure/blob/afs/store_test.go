package afs

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthops/internal/core/blob"
)

func stores(t *testing.T) map[string]*Store {
	fsStore, err := NewFS(t.TempDir())
	require.NoError(t, err)
	return map[string]*Store{"memory": NewMemory(), "fs": fsStore}
}

func TestStore_RoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			info, err := s.Put(ctx, "history/client/0001.ndjson.zst", strings.NewReader("payload"), blob.PutOptions{
				ContentType: "application/zstd",
				Metadata:    map[string]string{"rows": "3"},
			})
			require.NoError(t, err)
			assert.Equal(t, int64(7), info.Size)

			got, rc, err := s.Get(ctx, "history/client/0001.ndjson.zst")
			require.NoError(t, err)
			body, err := io.ReadAll(rc)
			require.NoError(t, rc.Close())
			require.NoError(t, err)
			assert.Equal(t, "payload", string(body))
			assert.Equal(t, "application/zstd", got.ContentType)
			assert.Equal(t, "3", got.Metadata["rows"])

			_, err = s.Put(ctx, "history/client/0001.ndjson.zst", strings.NewReader("again"), blob.PutOptions{})
			assert.True(t, errors.Is(err, blob.ErrExists))
		})
	}
}

func TestStore_ListAndDelete(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, k := range []string{"history/payer/b", "history/payer/a", "history/client/a"} {
				_, err := s.Put(ctx, k, strings.NewReader(k), blob.PutOptions{})
				require.NoError(t, err)
			}

			infos, err := s.List(ctx, "history/payer/")
			require.NoError(t, err)
			require.Len(t, infos, 2)
			assert.Equal(t, "history/payer/a", infos[0].Key)
			assert.Equal(t, "history/payer/b", infos[1].Key)

			deleted, err := s.Delete(ctx, "history/payer/a")
			require.NoError(t, err)
			assert.True(t, deleted)
			deleted, err = s.Delete(ctx, "history/payer/a")
			require.NoError(t, err)
			assert.False(t, deleted)

			_, err = s.Head(ctx, "history/payer/a")
			assert.True(t, errors.Is(err, blob.ErrNotFound))
		})
	}
}

func TestStore_RejectsEscapingKeys(t *testing.T) {
	s := NewMemory()
	for _, k := range []string{"", "/etc/passwd", "../up", "a/../../b"} {
		_, err := s.Put(context.Background(), k, strings.NewReader("x"), blob.PutOptions{})
		assert.Error(t, err, k)
	}
}
