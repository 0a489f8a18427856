package contracts

import "time"

// InstrumentOutcome bundles everything the pipeline produced for one
// instrument, or the reason it was skipped. Skipped instruments still appear
// in the final report so omissions are auditable.
type InstrumentOutcome struct {
	Symbol      string             `json:"symbol"`
	Sector      string             `json:"sector"`
	Skipped     bool               `json:"skipped"`
	SkipReason  string             `json:"skip_reason,omitempty"`
	Validation  *ValidationResult  `json:"validation,omitempty"`
	Sentiment   *SentimentResult   `json:"sentiment,omitempty"`
	Prediction  *PredictionResult  `json:"prediction,omitempty"`
	Opportunity *OpportunityScore  `json:"opportunity,omitempty"`
	Betas       []BetaRecord       `json:"betas,omitempty"`
}

// Scored reports whether the instrument made it through scoring.
func (o InstrumentOutcome) Scored() bool {
	return !o.Skipped && o.Opportunity != nil
}

// CycleReport is the per-cycle envelope consumed by the CSV/JSON writers, the
// optional history store, and the artifact API.
type CycleReport struct {
	CycleID     string              `json:"cycle_id"`
	StartedAt   time.Time           `json:"started_at"`
	FinishedAt  time.Time           `json:"finished_at"`
	MarketBias  MarketBias          `json:"market_bias"`
	Outcomes    []InstrumentOutcome `json:"outcomes"`
	FactorView  *FactorView         `json:"factor_view,omitempty"`
	Universe    int                 `json:"universe_size"`
	Scored      int                 `json:"scored"`
	SkippedSize int                 `json:"skipped"`
}
