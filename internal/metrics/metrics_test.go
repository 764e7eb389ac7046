package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthAttemptCounter(t *testing.T) {
	m := New()
	m.AuthAttempt("signin", "buyer", "ok")
	m.AuthAttempt("signin", "buyer", "ok")
	m.AuthAttempt("signin", "seller", "invalid_password")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthAttempts.WithLabelValues("signin", "buyer", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthAttempts.WithLabelValues("signin", "seller", "invalid_password")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.Requests.WithLabelValues("GET", "/api/properties", "200").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "realestate_http_requests_total")
}
