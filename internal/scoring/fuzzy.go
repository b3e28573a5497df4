package scoring

import (
	levenshtein "github.com/agnivade/levenshtein"
)

// bestSimilarity returns the highest edit-distance similarity between
// the keyword and any single text token. Similarity is
// 1 - distance/len(longer); tokens and keywords shorter than three
// characters are skipped so trivial matches cannot clear the
// acceptance threshold.
func bestSimilarity(kw string, tokens []string) float64 {
	if len(kw) < fuzzyMinLength {
		return 0
	}

	var best float64
	for _, tok := range tokens {
		if len(tok) < fuzzyMinLength {
			continue
		}
		if sim := similarity(kw, tok); sim > best {
			best = sim
		}
	}
	return best
}

func similarity(a, b string) float64 {
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	if longer == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longer)
}
