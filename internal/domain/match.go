package domain

// Match type constants, in strategy-priority order.
const (
	MatchTypeExact   = "exact"
	MatchTypePhrase  = "phrase"
	MatchTypePartial = "partial"
	MatchTypeFuzzy   = "fuzzy"
)

// WordMatch records how a single keyword matched the text.
type WordMatch struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
	Type  string  `json:"type"`
	// Position is the byte offset of the match in the text, or -1 when
	// the strategy has no meaningful position (partial, fuzzy).
	Position int `json:"position"`
}

// KeywordMatch is the aggregate keyword relevance result for one item.
type KeywordMatch struct {
	// Percentage is the aggregate relevance, capped to [0,100].
	Percentage float64 `json:"percentage"`
	// MatchedWords lists keywords that matched by any strategy.
	MatchedWords []string `json:"matched_words"`
	// Matches holds per-keyword diagnostics, sorted by score descending.
	Matches []WordMatch `json:"matches"`
}

// Matched reports whether any keyword matched at all.
func (m *KeywordMatch) Matched() bool {
	return len(m.MatchedWords) > 0
}
