package contracts

import "time"

// BiasLabel is the coarse market-regime classification.
type BiasLabel string

const (
	BiasRiskOn  BiasLabel = "risk_on"
	BiasNeutral BiasLabel = "neutral"
	BiasRiskOff BiasLabel = "risk_off"
)

// MarketBias is the cycle-wide market-regime signal derived from benchmark
// indices. Computed once per cycle and broadcast to the ensemble and the
// opportunity scorer.
type MarketBias struct {
	Score      float64   `json:"score"` // [0,100]; >50 leans risk-on
	Label      BiasLabel `json:"label"`
	Indices    []string  `json:"indices"`
	ComputedAt time.Time `json:"computed_at"`
}

// Bullish reports whether the regime favors long exposure.
func (m MarketBias) Bullish() bool {
	return m.Label == BiasRiskOn
}
