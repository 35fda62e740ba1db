package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := New()

	m.ObserveRequest("GET", "/api/v1/organizations", 200, 15*time.Millisecond)
	m.ObserveRequest("GET", "/api/v1/organizations", 200, 5*time.Millisecond)
	m.ObserveRequest("GET", "", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/organizations", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestCounters(t *testing.T) {
	m := New()

	m.TableAction("kick", "applied")
	m.TableAction("kick", "stale")
	m.LoginAttempt("failure")
	m.RateLimited()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.tableActions.WithLabelValues("kick", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tableActions.WithLabelValues("kick", "stale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loginAttempts.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimitedHits))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200, time.Second)
		m.TableAction("accept", "applied")
		m.LoginAttempt("success")
		m.RateLimited()
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.LoginAttempt("success")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `orghub_login_attempts_total{outcome="success"} 1`)
}
