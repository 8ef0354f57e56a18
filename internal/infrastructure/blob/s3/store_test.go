package s3

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthops/internal/core/blob"
)

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}

func TestKeys_ApplyPrefix(t *testing.T) {
	s := NewWithClient(nil, "archive", "/healthops/")

	assert.Equal(t, "healthops/history/client/1.zst", s.objectKey("history/client/1.zst"))
	assert.Equal(t, "history/client/1.zst", s.blobKey("healthops/history/client/1.zst"))

	bare := NewWithClient(nil, "archive", "")
	assert.Equal(t, "history/client/1.zst", bare.objectKey("history/client/1.zst"))
}

func TestMapErr(t *testing.T) {
	err := mapErr("k", fmt.Errorf("operation error S3: HeadObject: %w", &types.NotFound{}))
	require.True(t, errors.Is(err, blob.ErrNotFound))

	other := errors.New("access denied")
	assert.Equal(t, other, mapErr("k", other))
}
