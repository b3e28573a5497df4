package parser

import "time"

// Threshold field identifiers used by the interaction vocabulary.
const (
	fieldMinLikes   = "min_likes"
	fieldMinReposts = "min_reposts"
	fieldMinReplies = "min_replies"
)

// interactionNouns maps every recognized engagement noun and synonym
// to the threshold field it controls. Shares count as reposts and
// comments count as replies, matching how the engagement dashboard
// labels those counts.
var interactionNouns = map[string]string{
	"like":     fieldMinLikes,
	"likes":    fieldMinLikes,
	"liked":    fieldMinLikes,
	"repost":   fieldMinReposts,
	"reposts":  fieldMinReposts,
	"share":    fieldMinReposts,
	"shares":   fieldMinReposts,
	"shared":   fieldMinReposts,
	"reply":    fieldMinReplies,
	"replies":  fieldMinReplies,
	"comment":  fieldMinReplies,
	"comments": fieldMinReplies,
}

// timeUnits maps time-unit words and abbreviations to durations.
// Months are approximated at thirty days.
var timeUnits = map[string]time.Duration{
	"hour":   time.Hour,
	"hours":  time.Hour,
	"hr":     time.Hour,
	"hrs":    time.Hour,
	"h":      time.Hour,
	"day":    24 * time.Hour,
	"days":   24 * time.Hour,
	"d":      24 * time.Hour,
	"week":   7 * 24 * time.Hour,
	"weeks":  7 * 24 * time.Hour,
	"wk":     7 * 24 * time.Hour,
	"wks":    7 * 24 * time.Hour,
	"w":      7 * 24 * time.Hour,
	"month":  30 * 24 * time.Hour,
	"months": 30 * 24 * time.Hour,
	"mo":     30 * 24 * time.Hour,
	"m":      30 * 24 * time.Hour,
}

// socialTerms maps social-graph words to author scope tokens.
var socialTerms = map[string]string{
	"follow":    "following",
	"follows":   "following",
	"following": "following",
	"follower":  "following",
	"followers": "following",
	"mutual":    "mutuals",
	"mutuals":   "mutuals",
}

// topicVocabulary lists standalone topical terms detected without a
// connector phrase. Matched with the Aho-Corasick automaton and then
// verified against word boundaries.
var topicVocabulary = []string{
	"space", "science", "technology", "tech", "programming", "ai",
	"politics", "economics", "finance", "crypto", "climate",
	"sports", "basketball", "football", "hockey", "soccer",
	"music", "art", "photography", "movies", "books", "gaming",
	"food", "cooking", "travel", "fitness", "health",
	"cats", "dogs", "nature", "astronomy", "history",
}

// stopwords are skipped when collecting topic tokens after a
// connector word.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "my": {}, "your": {}, "their": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "some": {},
	"any": {}, "all": {}, "of": {}, "and": {}, "or": {}, "in": {},
	"with": {}, "from": {}, "last": {}, "past": {},
	"more": {}, "than": {}, "over": {}, "posts": {},
}
