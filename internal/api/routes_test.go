package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantify-ai/quantify-go/internal/config"
	"github.com/quantify-ai/quantify-go/internal/dataset"
)

func testRouter() (*gin.Engine, *dataset.MemoryProvider) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cfg := &config.Config{
		Analysis:   config.AnalysisConfig{MaxShapiroN: 5000},
		Simulation: config.SimulationConfig{Workers: 2, BatchSize: 512},
	}
	registry := dataset.NewMemoryProvider()
	SetupRoutes(router, registry, cfg, logger)
	return router, registry
}

func TestHealthRoute(t *testing.T) {
	router, _ := testRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/analysis/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestIDPassthrough(t *testing.T) {
	router, _ := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analysis/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "fixed-id", w.Header().Get("X-Request-ID"))
}

func TestRegisterThenAnalyzeFlow(t *testing.T) {
	router, _ := testRouter()

	register := map[string]any{
		"id":     "metrics",
		"name":   "metrics",
		"fields": []string{"latency"},
		"rows": []map[string]any{
			{"latency": 12.1}, {"latency": 14.2}, {"latency": 11.8},
			{"latency": 13.5}, {"latency": 12.9}, {"latency": 15.0},
		},
	}
	payload, err := json.Marshal(register)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	statistical := map[string]any{"dataset_id": "metrics", "field": "latency"}
	payload, err = json.Marshal(statistical)
	require.NoError(t, err)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/analysis/statistical", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 6, body["sample_size"])
}

func TestUnknownRoute(t *testing.T) {
	router, _ := testRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
