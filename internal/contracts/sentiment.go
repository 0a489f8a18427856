package contracts

import "time"

// DocType classifies a news/document item. Higher-impact categories carry a
// larger weight multiplier in the aggregate.
type DocType string

const (
	DocRoutineNews          DocType = "routine_news"
	DocEarnings             DocType = "earnings"
	DocRegulatoryDisclosure DocType = "regulatory_disclosure"
)

// NewsItem is one fetched document in canonical form.
type NewsItem struct {
	Symbol      string    `json:"symbol"`
	Headline    string    `json:"headline"`
	Type        DocType   `json:"type"`
	PublishedAt time.Time `json:"published_at"`
}

// SentimentResult is the weighted sentiment aggregate for one instrument.
// Zero documents yield a neutral score with zero weight; a score is never
// synthesized without input.
type SentimentResult struct {
	Symbol           string    `json:"symbol"`
	Score            float64   `json:"score"` // [-1,1]
	DocCount         int       `json:"doc_count"`
	DominantType     DocType   `json:"dominant_type,omitempty"`
	WeightMultiplier float64   `json:"weight_multiplier"` // applied for the dominant type, [1.0,3.0]
	TotalWeight      float64   `json:"total_weight"`
	LatestRegulatory time.Time `json:"latest_regulatory,omitempty"`
}

// HasRegulatoryWithin reports whether a regulatory disclosure was seen within
// the lookback ending at now. Consumed by the opportunity scorer's penalty and
// by the sector contagion pass.
func (r SentimentResult) HasRegulatoryWithin(now time.Time, lookback time.Duration) bool {
	if r.LatestRegulatory.IsZero() {
		return false
	}
	return now.Sub(r.LatestRegulatory) <= lookback
}
