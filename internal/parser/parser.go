// Package parser turns free-text feed descriptions into structured
// feed configurations using an ordered table of pattern rules plus a
// topical vocabulary automaton.
package parser

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"github.com/jonesrussell/north-cloud/curator/internal/domain"
	"github.com/jonesrussell/north-cloud/curator/internal/logger"
)

// Result is the outcome of parsing one description. A parse failure is
// non-fatal: ParseErr carries the message and Config is left empty
// rather than partially populated.
type Result struct {
	Config   domain.FeedConfig `json:"config"`
	Matched  bool              `json:"matched"`
	ParseErr string            `json:"parse_error,omitempty"`
}

// Parser extracts filter settings from natural-language feed
// descriptions.
type Parser struct {
	topics *ahocorasick.Matcher
	logger logger.Logger
}

// New creates a parser with the built-in vocabulary.
func New(log logger.Logger) *Parser {
	return &Parser{
		topics: ahocorasick.NewStringMatcher(topicVocabulary),
		logger: log,
	}
}

// Parse runs the rule table over the description. Any panic inside an
// extractor is recovered and surfaced as a parse error with an empty
// config.
func (p *Parser) Parse(text string) (result Result) {
	now := time.Now()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("description parse failed",
				logger.String("description", text),
				logger.Any("panic", r))
			result = Result{ParseErr: fmt.Sprintf("could not understand description: %v", r)}
		}
	}()

	ext := newExtraction()
	for _, r := range ruleTable {
		matches := r.pattern.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			continue
		}
		r.extract(ext, matches, now)
	}
	p.detectStandaloneTopics(text, ext)

	cfg := domain.FeedConfig{
		Description:      text,
		Keywords:         ext.keywords,
		AuthorFilters:    ext.authorScopes,
		KeywordThreshold: domain.DefaultKeywordThreshold,
		Thresholds: domain.InteractionThresholds{
			MinLikes:   ext.thresholds[fieldMinLikes],
			MinReposts: ext.thresholds[fieldMinReposts],
			MinReplies: ext.thresholds[fieldMinReplies],
		},
	}
	if ext.windowStart != nil {
		cfg.TimeRange = &domain.TimeRange{Start: *ext.windowStart, End: now}
	}

	p.logger.Debug("description parsed",
		logger.Strings("keywords", cfg.Keywords),
		logger.Int("min_likes", cfg.Thresholds.MinLikes),
		logger.Int("min_reposts", cfg.Thresholds.MinReposts),
		logger.Bool("has_window", cfg.TimeRange != nil))

	return Result{Config: cfg, Matched: ext.matched}
}

// detectStandaloneTopics adds vocabulary topics that appear as whole
// words anywhere in the description, without needing a connector. The
// automaton finds candidates in one pass; hits are confirmed against
// the token set because it matches substrings.
func (p *Parser) detectStandaloneTopics(text string, ext *extraction) {
	normalized := normalizeWords(text)
	hits := p.topics.Match([]byte(normalized))
	if len(hits) == 0 {
		return
	}

	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(normalized) {
		tokens[tok] = struct{}{}
	}

	for _, hit := range hits {
		if hit >= len(topicVocabulary) {
			continue
		}
		topic := topicVocabulary[hit]
		if _, whole := tokens[topic]; whole {
			ext.addKeyword(topic)
		}
	}
}

// normalizeWords lowercases and replaces non-alphanumeric runes with
// spaces, preserving word boundaries.
func normalizeWords(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
