package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chatonline-world/backend/internal/testutil"
	"chatonline-world/backend/pkg/config"
	"chatonline-world/backend/pkg/di"
	"chatonline-world/backend/pkg/logger"
	"chatonline-world/backend/pkg/observability"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticGeocoder struct{}

func (staticGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	return "Kyoto, Japan", nil
}

type staticGenerator struct{}

func (staticGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "Temples and tea houses.", nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Env = "test"
	cfg.Messages.TTL = time.Hour
	cfg.Messages.ProfanityFile = "does-not-exist.txt"
	cfg.Cache.Type = "memory"
	cfg.Cache.TTL = time.Hour
	cfg.Cache.MaxSize = 10
	cfg.Cache.PurgeWindow = time.Minute
	cfg.Security.RateLimitPerMinute = 10
	cfg.AI.ResponseLength = 20
	return cfg
}

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tel, err := observability.Setup("router-test", nil)
	require.NoError(t, err)

	container, err := di.New(testConfig(), testutil.NewTestDB(t), logger.Discard(), di.Overrides{
		Geocoder:  staticGeocoder{},
		Generator: staticGenerator{},
		Metrics:   tel.Metrics,
	})
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	r := New(container)
	require.NoError(t, r.AddOpenAPIValidation("../../api/openapi.yaml"))
	require.NoError(t, r.SetupRoutes(tel.Handler))
	return r
}

func serve(r *Router, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)
	return w
}

func TestHealthRoute(t *testing.T) {
	r := newTestRouter(t)
	r.Container.Health.Refresh(context.Background())

	w := serve(r, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"database"`)
	assert.Contains(t, w.Body.String(), "memory, 0 entries")
}

func TestRoutesAndMetrics(t *testing.T) {
	r := newTestRouter(t)

	w := serve(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(logger.RequestIDHeader))

	w = serve(r, http.MethodPost, "/api/messages", `{"message":"hello","lat":35.0,"lng":135.7}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = serve(r, http.MethodGet, "/api/ai/location-summary?lat=35.0&lng=135.7", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Temples and tea houses.")

	w = serve(r, http.MethodGet, "/api/summaries", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Kyoto, Japan")

	w = serve(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "messages_created_total 1")
	assert.Contains(t, w.Body.String(), "summaries_generated_total 1")
}

func TestOpenAPIValidationAndDocs(t *testing.T) {
	r := newTestRouter(t)

	w := serve(r, http.MethodGet, "/api/ai/location-summary?lat=abc&lng=1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_REQUEST")

	w = serve(r, http.MethodGet, "/api/docs/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/ai/location-summary")
}

func TestOpenAPIValidationMissingDocument(t *testing.T) {
	r := newTestRouter(t)
	assert.Error(t, r.AddOpenAPIValidation("missing.yaml"))
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/messages", nil)
	req.Header.Set("Origin", "https://example.org")
	w := httptest.NewRecorder()
	r.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://example.org", w.Header().Get("Access-Control-Allow-Origin"))
}
