package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDuplicate_NamesEveryField(t *testing.T) {
	err := NewDuplicate("client", []string{"clientName", "clientCode"})

	assert.Equal(t, CodeDuplicate, err.Code)
	assert.Equal(t, http.StatusConflict, err.HTTPStatus)
	assert.Equal(t, []string{"clientCode", "clientName"}, err.Details["fields"])
	assert.Contains(t, err.Message, "clientCode")
	assert.Contains(t, err.Message, "clientName")
}

func TestHelpers_UnwrapChain(t *testing.T) {
	wrapped := fmt.Errorf("update client: %w", NewNotFound("client", "abc"))

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsDuplicate(wrapped))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(wrapped))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("boom")))
}

func TestSurface(t *testing.T) {
	t.Run("validation errors become a field map", func(t *testing.T) {
		res := Surface(NewValidationFields(map[string]string{"clientName": "is required"}))
		require.NotNil(t, res)
		assert.Equal(t, map[string]string{"clientName": "is required"}, res.ValidationErrors)
		assert.Empty(t, res.ServerError)
	})

	t.Run("forbidden keeps its message", func(t *testing.T) {
		res := Surface(NewForbidden("You do not have permission to edit this record"))
		assert.Equal(t, "You do not have permission to edit this record", res.ServerError)
		assert.Equal(t, CodeForbidden, res.Code)
	})

	t.Run("raw driver errors are hidden", func(t *testing.T) {
		res := Surface(fmt.Errorf("insert client: %w", errors.New(`pq: relation "client" does not exist`)))
		assert.Equal(t, genericServerError, res.ServerError)
		assert.NotContains(t, res.ServerError, "relation")
	})

	t.Run("internal errors are hidden", func(t *testing.T) {
		res := Surface(NewInternal(errors.New("SQLSTATE 23505")))
		assert.Equal(t, genericServerError, res.ServerError)
	})

	t.Run("deadline is reported as a timeout", func(t *testing.T) {
		res := Surface(fmt.Errorf("update payer: %w", context.DeadlineExceeded))
		assert.Equal(t, genericServerError, res.ServerError)
		assert.Equal(t, CodeTimeout, res.Code)
	})

	t.Run("nil error", func(t *testing.T) {
		assert.Nil(t, Surface(nil))
	})
}
