package observability

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/store-brands", "GET", 200, 12*time.Millisecond)
	m.RecordRequest("/store-brands", "GET", 200, 3*time.Millisecond)
	m.RecordError("/auth/token", "POST", "UNAUTHORIZED")
	m.RecordAuthEvent("login", "failure")
	m.RecordCacheLookup("products", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/store-brands", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorsTotal.WithLabelValues("POST", "/auth/token", "UNAUTHORIZED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authEvents.WithLabelValues("login", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("products", "hit")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordAuthEvent("login", "success")
		m.RecordCacheLookup("products", false)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.RecordAuthEvent("register", "success")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `auth_events_total{operation="register",outcome="success"} 1`)
}
