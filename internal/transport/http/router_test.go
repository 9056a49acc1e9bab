package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecdash/internal/config"
	"ecdash/internal/infrastructure"
)

func newTestRouter(svc DashboardService) http.Handler {
	cfg := config.Default()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewRouter(cfg, svc, infrastructure.NewMetrics(), "test", logger)
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(&fakeService{ds: testDataset()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_Metrics(t *testing.T) {
	router := newTestRouter(&fakeService{ds: testDataset()})

	// A request through the chain so the counters have something to report.
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/schools", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ecdash_http_requests_total")
}

func TestRouter_APIMounted(t *testing.T) {
	router := newTestRouter(&fakeService{ds: testDataset()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/overview", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "total_individuals")
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(&fakeService{ds: testDataset()})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
