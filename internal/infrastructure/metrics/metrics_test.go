package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestObserveMutation(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveMutation("client", "insert", "ok", 20*time.Millisecond)
	m.ObserveMutation("client", "insert", "ok", 30*time.Millisecond)
	m.ObserveMutation("client", "update", "forbidden", time.Millisecond)

	assert.Equal(t, 2.0, counterValue(t, m.mutationsTotal.WithLabelValues("client", "insert", "ok")))
	assert.Equal(t, 1.0, counterValue(t, m.mutationsTotal.WithLabelValues("client", "update", "forbidden")))
}

func TestObserveInvalidation(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveInvalidation("lru", "tag", nil)
	m.ObserveInvalidation("webhook", "path", errors.New("timeout"))

	assert.Equal(t, 1.0, counterValue(t, m.invalidationsTotal.WithLabelValues("lru", "tag", "ok")))
	assert.Equal(t, 1.0, counterValue(t, m.invalidationsTotal.WithLabelValues("webhook", "path", "error")))
}

func TestGinMiddleware_LabelsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/payers/:pubId", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/payers/"+id, nil))
		require.Equal(t, http.StatusNoContent, w.Code)
	}
	assert.Equal(t, 2.0, counterValue(t, m.httpRequestsTotal.WithLabelValues("GET", "/payers/:pubId", "204")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "healthops_http_requests_total")
}
