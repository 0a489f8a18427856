package sentiment

import "strings"

// Headline lexicon for deterministic per-item classification. Scores come
// only from word hits, so identical text always scores identically.
var (
	positiveTerms = []string{
		"beat", "beats", "upgrade", "upgraded", "growth", "record",
		"strong", "raises", "raised", "exceeds", "profit rise",
		"ahead of expectations", "buyback", "dividend increase",
		"contract win", "approval", "expands", "outperform",
	}
	negativeTerms = []string{
		"miss", "misses", "downgrade", "downgraded", "profit warning",
		"loss", "losses", "weak", "cuts", "cut", "below expectations",
		"investigation", "probe", "suspension", "suspended", "recall",
		"lawsuit", "fine", "writedown", "impairment", "resigns",
	}
)

// scoreText returns a sentiment score in [-1,1] from lexicon hits. Text with
// no hits is neutral.
func scoreText(text string) float64 {
	lower := strings.ToLower(text)

	var pos, neg int
	for _, term := range positiveTerms {
		pos += strings.Count(lower, term)
	}
	for _, term := range negativeTerms {
		neg += strings.Count(lower, term)
	}

	total := pos + neg
	if total == 0 {
		return 0
	}
	return float64(pos-neg) / float64(total)
}
