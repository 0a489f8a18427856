package contracts

// FailureReason identifies which validation gate rejected an instrument.
type FailureReason string

const (
	FailureNone                FailureReason = ""
	FailurePriceOutOfRange     FailureReason = "price_out_of_range"
	FailureInsufficientVolume  FailureReason = "insufficient_volume"
	FailureInsufficientHistory FailureReason = "insufficient_history"
)

// SubScores are the technical score components, each in [0,20].
type SubScores struct {
	Liquidity  float64 `json:"liquidity"`
	Momentum   float64 `json:"momentum"`
	RSI        float64 `json:"rsi"`
	Volatility float64 `json:"volatility"`
	Sector     float64 `json:"sector"`
}

// Sum returns the raw technical score in [0,100].
func (s SubScores) Sum() float64 {
	return s.Liquidity + s.Momentum + s.RSI + s.Volatility + s.Sector
}

// ValidationResult is the outcome of the gate checks and technical scoring
// for one instrument. Failed instruments carry zero sub-scores.
type ValidationResult struct {
	Symbol    string        `json:"symbol"`
	Sector    string        `json:"sector"`
	Passed    bool          `json:"passed"`
	Reason    FailureReason `json:"reason,omitempty"`
	SubScores SubScores     `json:"sub_scores"`
	RawScore  float64       `json:"raw_score"` // Sum() of sub-scores, [0,100]
}
