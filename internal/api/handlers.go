// Package api exposes the curator's HTTP surface: feed configuration
// CRUD, natural-language parsing, feed assembly, and the scoring
// debug endpoints the dashboard uses.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/curator/internal/domain"
	"github.com/jonesrussell/north-cloud/curator/internal/logger"
	"github.com/jonesrussell/north-cloud/curator/internal/metrics"
	"github.com/jonesrussell/north-cloud/curator/internal/parser"
	"github.com/jonesrussell/north-cloud/curator/internal/scoring"
	"github.com/jonesrussell/north-cloud/curator/internal/store"
)

// FeedRunner executes one feed assembly pass.
type FeedRunner interface {
	Run(ctx context.Context, cfg domain.FeedConfig, userDID string) ([]domain.FeedItem, error)
}

// ReadyChecker reports whether a downstream dependency is reachable.
type ReadyChecker func(ctx context.Context) error

// Handler handles HTTP requests for the curator API.
type Handler struct {
	configs store.ConfigStore
	parser  *parser.Parser
	scorer  *scoring.KeywordScorer
	runner  FeedRunner
	userDID string
	ready   []ReadyChecker
	metrics *metrics.Metrics
	logger  logger.Logger
}

// NewHandler creates a new API handler. The metrics argument may be
// nil.
func NewHandler(
	configs store.ConfigStore,
	p *parser.Parser,
	runner FeedRunner,
	userDID string,
	m *metrics.Metrics,
	log logger.Logger,
	ready ...ReadyChecker,
) *Handler {
	return &Handler{
		configs: configs,
		parser:  p,
		scorer:  scoring.NewKeywordScorer(log),
		runner:  runner,
		userDID: userDID,
		ready:   ready,
		metrics: m,
		logger:  log,
	}
}

// ListFeeds handles GET /api/v1/feeds.
func (h *Handler) ListFeeds(c *gin.Context) {
	feeds, err := h.configs.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list feeds", logger.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list feeds"})
		return
	}
	if feeds == nil {
		feeds = []domain.FeedConfig{}
	}
	c.JSON(http.StatusOK, FeedsListResponse{Feeds: feeds, Total: len(feeds)})
}

// CreateFeed handles POST /api/v1/feeds.
func (h *Handler) CreateFeed(c *gin.Context) {
	var req FeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	cfg := req.toConfig()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.configs.Create(c.Request.Context(), &cfg); err != nil {
		h.logger.Error("failed to create feed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to create feed"})
		return
	}

	h.logger.Info("feed created",
		logger.String("feed_id", cfg.ID),
		logger.String("name", cfg.Name))

	c.JSON(http.StatusCreated, cfg)
}

// GetFeed handles GET /api/v1/feeds/:id.
func (h *Handler) GetFeed(c *gin.Context) {
	cfg, err := h.configs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// UpdateFeed handles PUT /api/v1/feeds/:id.
func (h *Handler) UpdateFeed(c *gin.Context) {
	var req FeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	cfg := req.toConfig()
	cfg.ID = c.Param("id")
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.configs.Update(c.Request.Context(), &cfg); err != nil {
		h.respondStoreError(c, err)
		return
	}

	h.logger.Info("feed updated", logger.String("feed_id", cfg.ID))
	c.JSON(http.StatusOK, cfg)
}

// DeleteFeed handles DELETE /api/v1/feeds/:id.
func (h *Handler) DeleteFeed(c *gin.Context) {
	id := c.Param("id")
	if err := h.configs.Delete(c.Request.Context(), id); err != nil {
		h.respondStoreError(c, err)
		return
	}

	h.logger.Info("feed deleted", logger.String("feed_id", id))
	c.Status(http.StatusNoContent)
}

// GetFeedItems handles GET /api/v1/feeds/:id/items. It runs the full
// assembly pipeline for the stored configuration.
func (h *Handler) GetFeedItems(c *gin.Context) {
	id := c.Param("id")

	cfg, err := h.configs.Get(c.Request.Context(), id)
	if err != nil {
		h.respondStoreError(c, err)
		return
	}

	items, err := h.runner.Run(c.Request.Context(), *cfg, h.userDID)
	if err != nil {
		if errors.Is(err, domain.ErrSourceFetch) {
			h.logger.Error("feed run aborted, source unavailable",
				logger.String("feed_id", id),
				logger.Error(err))
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: "content source unavailable"})
			return
		}
		h.logger.Error("feed run failed",
			logger.String("feed_id", id),
			logger.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "feed run failed"})
		return
	}

	if items == nil {
		items = []domain.FeedItem{}
	}
	c.JSON(http.StatusOK, FeedItemsResponse{FeedID: id, Items: items, Total: len(items)})
}

// ParseAlgorithm handles POST /api/v1/parse. It turns a natural
// language feed description into a structured configuration without
// persisting it.
func (h *Handler) ParseAlgorithm(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	result := h.parser.Parse(req.Text)
	if result.ParseErr != "" {
		h.logger.Warn("description parse failed",
			logger.String("error", result.ParseErr))
		if h.metrics != nil {
			h.metrics.ParseErrorsTotal.Inc()
		}
	}
	c.JSON(http.StatusOK, ParseResponse{
		Config:     result.Config,
		Matched:    result.Matched,
		ParseError: result.ParseErr,
	})
}

// ScoreKeywords handles POST /api/v1/score/keywords. Dashboard debug
// endpoint exposing the raw match diagnostics.
func (h *Handler) ScoreKeywords(c *gin.Context) {
	var req KeywordScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	match := h.scorer.Match(req.Text, req.Keywords)
	c.JSON(http.StatusOK, KeywordScoreResponse{
		Matched: match.Matched(),
		Match:   match,
	})
}

// ScoreTime handles POST /api/v1/score/time.
func (h *Handler) ScoreTime(c *gin.Context) {
	var req TimeScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var tr *domain.TimeRange
	if req.TimeRange != nil {
		tr = &domain.TimeRange{Start: req.TimeRange.Start, End: req.TimeRange.End}
	}

	score := scoring.ScoreTime(req.IndexedAt, tr, time.Now())
	c.JSON(http.StatusOK, TimeScoreResponse{Score: score})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// ReadyCheck handles GET /ready. It probes every registered dependency.
func (h *Handler) ReadyCheck(c *gin.Context) {
	for _, check := range h.ready {
		if err := check(c.Request.Context()); err != nil {
			h.logger.Warn("readiness check failed", logger.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *Handler) respondStoreError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrConfigNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "feed not found"})
		return
	}
	h.logger.Error("feed store operation failed", logger.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
