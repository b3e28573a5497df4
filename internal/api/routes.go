package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, handler *Handler, registry *prometheus.Registry) {
	// Health, readiness and metrics
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)
	if registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")

	// Feed configuration endpoints
	feeds := v1.Group("/feeds")
	feeds.GET("", handler.ListFeeds)              // GET /api/v1/feeds
	feeds.POST("", handler.CreateFeed)            // POST /api/v1/feeds
	feeds.GET("/:id", handler.GetFeed)            // GET /api/v1/feeds/:id
	feeds.PUT("/:id", handler.UpdateFeed)         // PUT /api/v1/feeds/:id
	feeds.DELETE("/:id", handler.DeleteFeed)      // DELETE /api/v1/feeds/:id
	feeds.GET("/:id/items", handler.GetFeedItems) // GET /api/v1/feeds/:id/items

	// Natural language parsing
	v1.POST("/parse", handler.ParseAlgorithm) // POST /api/v1/parse

	// Scoring debug endpoints
	score := v1.Group("/score")
	score.POST("/keywords", handler.ScoreKeywords) // POST /api/v1/score/keywords
	score.POST("/time", handler.ScoreTime)         // POST /api/v1/score/time
}
