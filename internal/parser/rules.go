package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// extraction accumulates what the rule table pulled out of one
// description before it is folded into a FeedConfig.
type extraction struct {
	thresholds map[string]int
	// windowStart is the last computed candidate start instant. Earlier
	// time phrases are parsed and then discarded: only the final
	// phrase's window survives.
	windowStart  *time.Time
	keywords     []string
	keywordSeen  map[string]struct{}
	authorScopes []string
	scopeSeen    map[string]struct{}
	matched      bool
}

func newExtraction() *extraction {
	return &extraction{
		thresholds:  make(map[string]int),
		keywordSeen: make(map[string]struct{}),
		scopeSeen:   make(map[string]struct{}),
	}
}

func (e *extraction) addKeyword(kw string) {
	kw = strings.ToLower(strings.TrimSpace(kw))
	if kw == "" {
		return
	}
	if _, dup := e.keywordSeen[kw]; dup {
		return
	}
	e.keywordSeen[kw] = struct{}{}
	e.keywords = append(e.keywords, kw)
	e.matched = true
}

func (e *extraction) addScope(scope string) {
	if _, dup := e.scopeSeen[scope]; dup {
		return
	}
	e.scopeSeen[scope] = struct{}{}
	e.authorScopes = append(e.authorScopes, scope)
	e.matched = true
}

// rule pairs a compiled pattern with the extractor that interprets its
// matches. Rules run in table order against the whole description.
type rule struct {
	name    string
	pattern *regexp.Regexp
	extract func(e *extraction, matches [][]string, now time.Time)
}

const thousandSuffix = 1000

// ruleTable is the ordered grammar. Interaction phrases run before
// time phrases so "20 likes" is consumed as an interaction even though
// a bare "20" could prefix a unit abbreviation.
var ruleTable = []rule{
	{
		name: "interaction",
		pattern: regexp.MustCompile(
			`(?i)\b(?:more than|at least|over|with|min(?:imum)?)?\s*(\d+)\s*([kK])?\s+(like[sd]?|reposts?|share[sd]?|repl(?:y|ies)|comments?)\b`),
		extract: extractInteractions,
	},
	{
		name: "time-window",
		pattern: regexp.MustCompile(
			`(?i)\b(\d+)\s*(hours?|hrs?|h|days?|d|weeks?|wks?|w|months?|mo|m)\b\s*(ago)?`),
		extract: extractTimeWindow,
	},
	{
		name: "topic-connector",
		pattern: regexp.MustCompile(
			`(?i)\b(?:about|regarding|discussing|containing|mentioning|on)\s+([a-z0-9'-]+(?:\s+[a-z0-9'-]+){0,2})`),
		extract: extractConnectorTopics,
	},
	{
		name:    "author-scope",
		pattern: regexp.MustCompile(`(?i)\b(follow(?:s|ing|ers?)?|mutuals?)\b`),
		extract: extractAuthorScopes,
	},
}

// extractInteractions overwrites the named threshold for every phrase
// in order, so when two phrases reference the same metric the last one
// parsed wins.
func extractInteractions(e *extraction, matches [][]string, _ time.Time) {
	for _, m := range matches {
		value, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if m[2] != "" {
			value *= thousandSuffix
		}
		noun := strings.ToLower(m[3])
		field, ok := interactionNouns[noun]
		if !ok {
			continue
		}
		e.thresholds[field] = value
		e.matched = true
	}
}

// extractTimeWindow recomputes the candidate window start per phrase;
// only the last phrase's start is kept.
func extractTimeWindow(e *extraction, matches [][]string, now time.Time) {
	for _, m := range matches {
		magnitude, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		unit, ok := timeUnits[strings.ToLower(m[2])]
		if !ok {
			continue
		}
		start := now.Add(-time.Duration(magnitude) * unit)
		e.windowStart = &start
		e.matched = true
	}
}

// extractConnectorTopics collects up to three tokens following a
// connector word, skipping articles and vocabulary that belongs to
// other rules.
func extractConnectorTopics(e *extraction, matches [][]string, _ time.Time) {
	for _, m := range matches {
		tokens := strings.Fields(strings.ToLower(m[1]))
		for _, tok := range tokens {
			if _, stop := stopwords[tok]; stop {
				continue
			}
			if _, isNoun := interactionNouns[tok]; isNoun {
				break
			}
			if _, isUnit := timeUnits[tok]; isUnit {
				break
			}
			if _, isDigit := digitToken(tok); isDigit {
				break
			}
			e.addKeyword(tok)
		}
	}
}

func extractAuthorScopes(e *extraction, matches [][]string, _ time.Time) {
	for _, m := range matches {
		if scope, ok := socialTerms[strings.ToLower(m[1])]; ok {
			e.addScope(scope)
		}
	}
}

func digitToken(tok string) (int, bool) {
	n, err := strconv.Atoi(tok)
	return n, err == nil
}
