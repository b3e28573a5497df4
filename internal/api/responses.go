package api

import (
	"time"

	"github.com/jonesrussell/north-cloud/curator/internal/domain"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FeedRequest carries the editable fields of a feed configuration for
// create and update.
type FeedRequest struct {
	Name             string                 `json:"name" binding:"required"`
	Description      string                 `json:"description"`
	AuthorFilters    []string               `json:"author_filters"`
	Keywords         []string               `json:"keywords"`
	KeywordThreshold *float64               `json:"keyword_threshold"`
	Thresholds       *ThresholdsRequest     `json:"interaction_thresholds"`
	TimeRange        *TimeRangeRequest      `json:"time_range"`
	ContentTypes     []string               `json:"content_types"`
}

// ThresholdsRequest mirrors domain.InteractionThresholds on the wire.
type ThresholdsRequest struct {
	MinLikes   int `json:"min_likes"`
	MinReposts int `json:"min_reposts"`
	MinReplies int `json:"min_replies"`
}

// TimeRangeRequest mirrors domain.TimeRange on the wire.
type TimeRangeRequest struct {
	Start time.Time `json:"start" binding:"required"`
	End   time.Time `json:"end"   binding:"required"`
}

// toConfig converts the request into a domain config, applying the
// default keyword threshold when none is given.
func (r *FeedRequest) toConfig() domain.FeedConfig {
	cfg := domain.FeedConfig{
		Name:             r.Name,
		Description:      r.Description,
		AuthorFilters:    r.AuthorFilters,
		Keywords:         r.Keywords,
		KeywordThreshold: domain.DefaultKeywordThreshold,
		ContentTypes:     r.ContentTypes,
	}
	if r.KeywordThreshold != nil {
		cfg.KeywordThreshold = *r.KeywordThreshold
	}
	if r.Thresholds != nil {
		cfg.Thresholds = domain.InteractionThresholds{
			MinLikes:   r.Thresholds.MinLikes,
			MinReposts: r.Thresholds.MinReposts,
			MinReplies: r.Thresholds.MinReplies,
		}
	}
	if r.TimeRange != nil {
		cfg.TimeRange = &domain.TimeRange{Start: r.TimeRange.Start, End: r.TimeRange.End}
	}
	return cfg
}

// FeedsListResponse is the payload for listing feed configurations.
type FeedsListResponse struct {
	Feeds []domain.FeedConfig `json:"feeds"`
	Total int                 `json:"total"`
}

// FeedItemsResponse is the payload for one feed run.
type FeedItemsResponse struct {
	FeedID string            `json:"feed_id"`
	Items  []domain.FeedItem `json:"items"`
	Total  int               `json:"total"`
}

// ParseRequest carries a natural-language feed description.
type ParseRequest struct {
	Text string `json:"text" binding:"required"`
}

// ParseResponse is the structured result of parsing a description.
type ParseResponse struct {
	Config     domain.FeedConfig `json:"config"`
	Matched    bool              `json:"matched"`
	ParseError string            `json:"parse_error,omitempty"`
}

// KeywordScoreRequest asks for keyword match diagnostics on one text.
type KeywordScoreRequest struct {
	Text     string   `json:"text"     binding:"required"`
	Keywords []string `json:"keywords" binding:"required,min=1"`
}

// KeywordScoreResponse wraps the match diagnostics with an overall
// matched verdict.
type KeywordScoreResponse struct {
	Matched bool                 `json:"matched"`
	Match   *domain.KeywordMatch `json:"match"`
}

// TimeScoreRequest asks for the time relevance of one instant.
type TimeScoreRequest struct {
	IndexedAt time.Time         `json:"indexed_at" binding:"required"`
	TimeRange *TimeRangeRequest `json:"time_range"`
}

// TimeScoreResponse carries the computed time score.
type TimeScoreResponse struct {
	Score float64 `json:"score"`
}
