package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/lead-pipeline/internal/auth"
)

func TestRequireUserRejectsMissingIdentity(t *testing.T) {
	called := false
	h := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/leads", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "UNAUTHENTICATED", body["error"])
}

func TestRequireUserPropagatesIdentity(t *testing.T) {
	var got string
	h := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.UserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/leads", nil)
	req.Header.Set(UserIDHeader, " user-42 ")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-42", got)
}

// TestMetricsUsesRoutePattern - lead ids must not become label values
func TestMetricsUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/leads/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/leads/{id}", "418"))

	req := httptest.NewRequest(http.MethodGet, "/leads/abc-123", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/leads/{id}", "418"))
	assert.Equal(t, before+1, after)
}
