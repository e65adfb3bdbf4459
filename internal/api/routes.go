// Package api assembles the HTTP surface: route registration and the
// middleware shared by every endpoint.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/quantify-ai/quantify-go/internal/api/handlers"
	"github.com/quantify-ai/quantify-go/internal/config"
	"github.com/quantify-ai/quantify-go/internal/dataset"
	"github.com/quantify-ai/quantify-go/internal/logging"
	"github.com/quantify-ai/quantify-go/internal/montecarlo"
)

const version = "1.0.0"

// SetupRoutes mounts every endpoint on the router. The registry doubles as
// the dataset provider for the analysis endpoints.
func SetupRoutes(router *gin.Engine, registry *dataset.MemoryProvider, cfg *config.Config, logger *logrus.Logger) {
	router.Use(requestID(), requestLogger(logger))

	engine := montecarlo.NewEngine(
		cfg.Simulation.Workers,
		cfg.Simulation.BatchSize,
		logging.WithComponent(logger, "montecarlo"),
	)

	analysisHandler := handlers.NewAnalysisHandler(registry, cfg, logging.WithComponent(logger, "analysis"))
	correlationHandler := handlers.NewCorrelationHandler(registry, logging.WithComponent(logger, "correlation"))
	monteCarloHandler := handlers.NewMonteCarloHandler(engine, logging.WithComponent(logger, "montecarlo"))
	datasetHandler := handlers.NewDatasetHandler(registry, logging.WithComponent(logger, "datasets"))
	healthHandler := handlers.NewHealthHandler(version)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/datasets", datasetHandler.Register)

		analysis := v1.Group("/analysis")
		{
			analysis.GET("/health", healthHandler.HealthCheck)
			analysis.POST("/aggregate", datasetHandler.Aggregate)
			analysis.POST("/statistical", analysisHandler.Statistical)
			analysis.POST("/distribution", analysisHandler.Distribution)
			analysis.POST("/regression", analysisHandler.Regression)
			analysis.POST("/correlation", correlationHandler.Correlate)
			analysis.POST("/multi-correlation", correlationHandler.MultiCorrelate)
			analysis.POST("/correlation-explore", correlationHandler.Explore)
			analysis.POST("/montecarlo", monteCarloHandler.Simulate)
			analysis.POST("/montecarlo/pi", monteCarloHandler.Pi)
			analysis.POST("/montecarlo/integral", monteCarloHandler.Integral)
			analysis.POST("/montecarlo/queue", monteCarloHandler.Queue)
		}
	}
}

// requestID tags every request with an identifier for log correlation.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		}).Info("Request completed")
	}
}
