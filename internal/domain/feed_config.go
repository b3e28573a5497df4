package domain

import (
	"fmt"
	"strings"
	"time"
)

// Default and boundary values for feed configurations.
const (
	DefaultKeywordThreshold = 5.0
	MaxKeywordThreshold     = 100.0
)

// Content type constants for the ContentTypes filter.
const (
	ContentTypeText  = "text"
	ContentTypeImage = "image"
	ContentTypeLink  = "link"
)

// Author scope tokens recognized in AuthorFilters.
const (
	AuthorScopeFollowing = "following"
	AuthorScopeMutuals   = "mutuals"
)

// InteractionThresholds holds minimum engagement counts an item must
// reach to stay in the feed. MinReplies is stored and editable but the
// pipeline does not currently enforce it.
type InteractionThresholds struct {
	MinLikes   int `db:"min_likes"   json:"min_likes"`
	MinReposts int `db:"min_reposts" json:"min_reposts"`
	MinReplies int `db:"min_replies" json:"min_replies"`
}

// TimeRange bounds the window of interest for time-relevance scoring.
// Both instants are absolute; serialized as ISO-8601.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FeedConfig is the structured filter/ranking settings for one custom
// feed. It is immutable input to a single pipeline run; edits happen
// through the settings API and are persisted keyed by feed ID.
type FeedConfig struct {
	ID            string                `db:"id"             json:"id"`
	Name          string                `db:"name"           json:"name"`
	Description   string                `db:"description"    json:"description,omitempty"`
	AuthorFilters []string              `db:"author_filters" json:"author_filters,omitempty"`
	Keywords      []string              `db:"keywords"       json:"keywords,omitempty"`
	// KeywordThreshold is the minimum keyword match percentage (0-100).
	KeywordThreshold float64               `db:"keyword_threshold" json:"keyword_threshold"`
	Thresholds       InteractionThresholds `json:"interaction_thresholds"`
	TimeRange        *TimeRange            `json:"time_range,omitempty"`
	ContentTypes     []string              `db:"content_types" json:"content_types,omitempty"`
	CreatedAt        time.Time             `db:"created_at"    json:"created_at"`
	UpdatedAt        time.Time             `db:"updated_at"    json:"updated_at"`
}

// Normalize de-duplicates keywords case-insensitively (first seen wins,
// order preserved) and clamps the keyword threshold into [0,100].
func (c *FeedConfig) Normalize() {
	c.Keywords = dedupeLower(c.Keywords)
	if c.KeywordThreshold < 0 {
		c.KeywordThreshold = 0
	}
	if c.KeywordThreshold > MaxKeywordThreshold {
		c.KeywordThreshold = MaxKeywordThreshold
	}
}

// Validate checks the parts of a config the settings surface must not
// persist when malformed.
func (c *FeedConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if c.KeywordThreshold < 0 || c.KeywordThreshold > MaxKeywordThreshold {
		return fmt.Errorf("%w: keyword threshold %.1f outside [0,100]", ErrInvalidConfig, c.KeywordThreshold)
	}
	if c.TimeRange != nil && !c.TimeRange.End.After(c.TimeRange.Start) {
		return fmt.Errorf("%w: time range end must be after start", ErrInvalidConfig)
	}
	for _, ct := range c.ContentTypes {
		switch ct {
		case ContentTypeText, ContentTypeImage, ContentTypeLink:
		default:
			return fmt.Errorf("%w: unknown content type %q", ErrInvalidConfig, ct)
		}
	}
	return nil
}

// HasKeywords reports whether the keyword filter is active. An empty
// keyword list means "no constraint": every item passes.
func (c *FeedConfig) HasKeywords() bool {
	return len(c.Keywords) > 0
}

func dedupeLower(in []string) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, kw := range in {
		kw = normalizeKeyword(kw)
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

func normalizeKeyword(kw string) string {
	return strings.ToLower(strings.TrimSpace(kw))
}
