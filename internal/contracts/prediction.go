package contracts

// Direction is the ensemble's directional label.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionHold Direction = "HOLD"
	DirectionSell Direction = "SELL"
)

// Contributions are the per-model sub-signals, each already scaled to [0,100].
type Contributions struct {
	SequenceModel float64 `json:"sequence_model"`
	Trend         float64 `json:"trend"`
	Technical     float64 `json:"technical"`
	Sentiment     float64 `json:"sentiment"`
}

// EnsembleWeights are the fixed mixing weights. They must sum to 1.
type EnsembleWeights struct {
	SequenceModel float64 `json:"sequence_model"`
	Trend         float64 `json:"trend"`
	Technical     float64 `json:"technical"`
	Sentiment     float64 `json:"sentiment"`
}

// Sum returns the total weight.
func (w EnsembleWeights) Sum() float64 {
	return w.SequenceModel + w.Trend + w.Technical + w.Sentiment
}

// DefaultEnsembleWeights returns the 45/25/15/15 split.
func DefaultEnsembleWeights() EnsembleWeights {
	return EnsembleWeights{
		SequenceModel: 0.45,
		Trend:         0.25,
		Technical:     0.15,
		Sentiment:     0.15,
	}
}

// PredictionResult is the ensemble output for one instrument.
// Invariant: Confidence equals the weight-weighted sum of Contributions.
type PredictionResult struct {
	Symbol        string          `json:"symbol"`
	Direction     Direction       `json:"direction"`
	Confidence    float64         `json:"confidence"` // [0,100]
	Contributions Contributions   `json:"contributions"`
	Weights       EnsembleWeights `json:"weights"`
	ModelFallback bool            `json:"model_fallback"` // sequence model had no weights; trend substituted
}

// WeightedSum recomputes the confidence from contributions and weights.
func (p PredictionResult) WeightedSum() float64 {
	return p.Contributions.SequenceModel*p.Weights.SequenceModel +
		p.Contributions.Trend*p.Weights.Trend +
		p.Contributions.Technical*p.Weights.Technical +
		p.Contributions.Sentiment*p.Weights.Sentiment
}
