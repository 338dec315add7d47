package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/aga-grading-api/config"
	"github.com/kendall-kelly/aga-grading-api/logger"
	"github.com/kendall-kelly/aga-grading-api/metrics"
	"github.com/kendall-kelly/aga-grading-api/tests/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRouter wires the full application against an in-memory database
// with local artifact storage and auth disabled
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		DatabaseURL:        ":memory:",
		Port:               "8080",
		GoEnv:              "test",
		LogLevel:           "error",
		CertSecret:         "router-secret",
		PublicBaseURL:      "http://localhost:8080",
		ArtifactDir:        t.TempDir(),
		RenderTimeout:      5 * time.Second,
		CORSAllowedOrigins: []string{"*"},
	}
	config.SetConfig(cfg)

	db := testutil.NewTestDB(t)
	config.SetDB(db)

	m := metrics.New(prometheus.NewRegistry())
	require.NoError(t, initServices(cfg, db, logger.Discard(), m))

	router, err := setupRouter(cfg, m)
	require.NoError(t, err)
	return router
}

// TestHealthEndpointIntegration tests the /api/v1/health endpoint with full routing
func TestHealthEndpointIntegration(t *testing.T) {
	router := newTestRouter(t)

	// Create a test request
	req, _ := http.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()

	// Serve the request
	router.ServeHTTP(w, req)

	// Assert status code
	assert.Equal(t, http.StatusOK, w.Code, "Expected status 200 OK")

	// Parse and verify response
	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err, "Response should be valid JSON")
	assert.Equal(t, true, response["success"])
	assert.Equal(t, "AGA Grading API is running", response["message"])
}

// TestHealthEndpointMethod tests that only GET method is allowed
func TestHealthEndpointMethod(t *testing.T) {
	router := newTestRouter(t)

	for _, method := range []string{"POST", "PUT", "DELETE"} {
		req, _ := http.NewRequest(method, "/api/v1/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code, "%s should not be allowed", method)
	}
}

// TestAPIV1Prefix tests that the endpoint requires /api/v1 prefix
func TestAPIV1Prefix(t *testing.T) {
	router := newTestRouter(t)

	// Test without /api/v1 prefix (should fail)
	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code, "Endpoint should require /api/v1 prefix")

	// Test with correct prefix (should succeed)
	req, _ = http.NewRequest("GET", "/api/v1/health", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "Endpoint should work with /api/v1 prefix")
}

// TestHealthEndpointHeaders tests that proper headers are set
func TestHealthEndpointHeaders(t *testing.T) {
	router := newTestRouter(t)

	req, _ := http.NewRequest("GET", "/api/v1/health", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Verify Content-Type header
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestDatabaseStatusIntegration(t *testing.T) {
	router := newTestRouter(t)

	req, _ := http.NewRequest("GET", "/api/v1/database/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "sqlite", response["dialect"])
	assert.Contains(t, response["tables"], "orders")
	assert.Contains(t, response["tables"], "population_counts")
}

func TestIssueAndVerifyIntegration(t *testing.T) {
	router := newTestRouter(t)

	req, _ := http.NewRequest("POST", "/api/v1/orders", bytes.NewBufferString(`{"item_title":"Rookie Card #1","grade":"Mint 9"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data struct {
			CertificateCode   string `json:"certificate_code"`
			VerificationToken string `json:"verification_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	for _, path := range []string{
		"/c/" + created.Data.CertificateCode + "/" + created.Data.VerificationToken,
		"/api/v1/certificates/" + created.Data.CertificateCode + "/" + created.Data.VerificationToken,
		"/artifacts/certs/" + created.Data.CertificateCode + ".pdf",
	} {
		req, _ = http.NewRequest("GET", path, nil)
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestMetricsEndpointIntegration(t *testing.T) {
	router := newTestRouter(t)

	req, _ := http.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}

func TestCORSConfig(t *testing.T) {
	open := corsConfig(&config.Config{CORSAllowedOrigins: []string{"*"}})
	assert.True(t, open.AllowAllOrigins)

	restricted := corsConfig(&config.Config{CORSAllowedOrigins: []string{"https://aga.example.com"}})
	assert.False(t, restricted.AllowAllOrigins)
	assert.Equal(t, []string{"https://aga.example.com"}, restricted.AllowOrigins)
}
