package scoring

import (
	"sort"
	"strings"

	"github.com/jonesrussell/north-cloud/curator/internal/domain"
	"github.com/jonesrussell/north-cloud/curator/internal/logger"
)

// Strategy scoring constants. Cheap strategies run first; the fuzzy
// fallback is the last resort because it walks the whole token list.
const (
	exactScore         = 1.0
	leadSentenceBoost  = 1.2
	partialScore       = 0.8
	fuzzyScale         = 0.7
	fuzzyMinSimilarity = 0.6
	fuzzyMinLength     = 3
	maxPercentage      = 100.0
)

// KeywordScorer computes keyword relevance for item text.
type KeywordScorer struct {
	logger logger.Logger
}

// NewKeywordScorer creates a keyword scorer.
func NewKeywordScorer(log logger.Logger) *KeywordScorer {
	return &KeywordScorer{logger: log}
}

// Match evaluates every keyword against the text independently and
// aggregates the per-keyword scores into a 0-100 percentage. Each
// keyword is resolved by the first strategy that succeeds: exact
// substring, phrase proximity, stemmed partial, fuzzy fallback.
func (s *KeywordScorer) Match(text string, keywords []string) *domain.KeywordMatch {
	result := &domain.KeywordMatch{
		MatchedWords: make([]string, 0, len(keywords)),
		Matches:      make([]domain.WordMatch, 0, len(keywords)),
	}
	if len(keywords) == 0 {
		return result
	}

	lowerText := strings.ToLower(text)
	tokens := tokenize(text)
	sentenceEnd := firstSentenceEnd(text)

	var total float64
	for _, keyword := range keywords {
		kw := strings.ToLower(strings.TrimSpace(keyword))
		if kw == "" {
			continue
		}

		match, ok := s.matchKeyword(kw, lowerText, tokens, sentenceEnd)
		if !ok {
			continue
		}
		total += match.Score
		result.MatchedWords = append(result.MatchedWords, kw)
		result.Matches = append(result.Matches, match)
	}

	result.Percentage = total / float64(len(keywords)) * maxPercentage
	if result.Percentage > maxPercentage {
		result.Percentage = maxPercentage
	}

	sort.SliceStable(result.Matches, func(i, j int) bool {
		return result.Matches[i].Score > result.Matches[j].Score
	})

	return result
}

// matchKeyword runs the strategy chain for a single keyword.
func (s *KeywordScorer) matchKeyword(kw, lowerText string, tokens []string, sentenceEnd int) (domain.WordMatch, bool) {
	if pos := strings.Index(lowerText, kw); pos >= 0 {
		score := exactScore
		if pos < sentenceEnd {
			score *= leadSentenceBoost
		}
		return domain.WordMatch{Word: kw, Score: score, Type: domain.MatchTypeExact, Position: pos}, true
	}

	if parts := strings.Fields(kw); len(parts) > 1 {
		if score, ok := phraseProximity(parts, tokens); ok {
			return domain.WordMatch{Word: kw, Score: score, Type: domain.MatchTypePhrase, Position: -1}, true
		}
	}

	if stemMatches(kw, tokens) {
		return domain.WordMatch{Word: kw, Score: partialScore, Type: domain.MatchTypePartial, Position: -1}, true
	}

	if sim := bestSimilarity(kw, tokens); sim > fuzzyMinSimilarity {
		return domain.WordMatch{Word: kw, Score: sim * fuzzyScale, Type: domain.MatchTypeFuzzy, Position: -1}, true
	}

	return domain.WordMatch{}, false
}

// phraseProximity scores a multi-word keyword whose constituents all
// appear somewhere in the text. Only the first occurrence of each
// constituent counts and order is irrelevant; the score shrinks with
// the total token-index distance between consecutive constituents.
func phraseProximity(parts, tokens []string) (float64, bool) {
	positions := make([]int, len(parts))
	for i, part := range parts {
		pos := -1
		for idx, tok := range tokens {
			if tok == part {
				pos = idx
				break
			}
		}
		if pos < 0 {
			return 0, false
		}
		positions[i] = pos
	}

	gapSum := 0
	for i := 1; i < len(positions); i++ {
		gap := positions[i] - positions[i-1]
		if gap < 0 {
			gap = -gap
		}
		gapSum += gap
	}
	return 1.0 / float64(1+gapSum), true
}

// stemMatches reports whether the stemmed keyword equals any stemmed
// text token.
func stemMatches(kw string, tokens []string) bool {
	target := stem(kw)
	for _, tok := range tokens {
		if stem(tok) == target {
			return true
		}
	}
	return false
}
