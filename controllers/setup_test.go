package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/aga-grading-api/config"
	"github.com/kendall-kelly/aga-grading-api/grading"
	"github.com/kendall-kelly/aga-grading-api/models"
	"github.com/kendall-kelly/aga-grading-api/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testBaseURL = "http://aga.test"

var mockGrade = grading.Result{
	Grade: grading.GradeMint9,
	Subgrades: grading.Subgrades{
		grading.Centering: 9, grading.Corners: 9.5, grading.Edges: 8.5, grading.Surface: 8.8,
	},
	Overall: 9.0,
}

type testEnv struct {
	db     *gorm.DB
	certs  *services.CertificateService
	images *services.MockImageService
	router *gin.Engine
}

// setupControllerTest wires every service on an in-memory database with the
// mock image service and registers the API routes
func setupControllerTest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "Failed to connect to test database")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, models.Migrate(db))
	config.SetDB(db)

	artifactDir := t.TempDir()
	config.SetConfig(&config.Config{
		GoEnv:         "test",
		CertSecret:    "test-secret",
		PublicBaseURL: testBaseURL,
		ArtifactDir:   artifactDir,
		RenderTimeout: 10 * time.Second,
	})

	images := services.NewMockImageService(mockGrade)
	images.SetAsMockForTesting()

	certs := services.NewCertificateService("test-secret")
	orders := services.InitOrderStore(db)
	population := services.InitPopulationService(db)
	services.InitRegistryService(db, orders)
	services.InitIssuanceService(services.IssuanceDeps{
		Images:       images,
		Certificates: certs,
		Orders:       orders,
		Population:   population,
		Renderer: services.NewCertificateArtifactRenderer(
			services.NewLocalArtifactStore(artifactDir, testBaseURL), 10*time.Second, nil, nil),
		BaseURL: testBaseURL,
	})

	router := gin.New()
	v1 := router.Group("/api/v1")
	v1.POST("/grade", GradeImage)
	v1.POST("/orders", CreateOrder)
	v1.GET("/orders/recent", GetRecentOrders)
	v1.GET("/lookup", LookupCertificate)
	v1.GET("/certificates/:code/:token", VerifyCertificate)
	v1.GET("/population", GetPopulation)
	v1.POST("/registry", CreateRegistryEntry)
	v1.GET("/registry", ListRegistry)
	v1.GET("/stats", GetStats)
	router.GET("/c/:code/:token", VerifyCertificate)
	router.GET("/artifacts/:kind/:filename", GetArtifact)

	return &testEnv{db: db, certs: certs, images: images, router: router}
}

func (e *testEnv) do(req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func (e *testEnv) postJSON(path string, payload interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	raw, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

func (e *testEnv) get(path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// issue creates a certificate through the API and returns its data object
func (e *testEnv) issue(t *testing.T, payload map[string]interface{}) map[string]interface{} {
	t.Helper()
	w, body := e.postJSON("/api/v1/orders", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return body["data"].(map[string]interface{})
}

// multipartRequest builds a multipart POST with form fields and an optional image file
func multipartRequest(t *testing.T, path string, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func errorCode(body map[string]interface{}) string {
	errObj, ok := body["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errObj["code"].(string)
	return code
}
