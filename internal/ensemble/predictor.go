package ensemble

import (
	"math"

	"github.com/quantoak/nightscan/internal/contracts"
	"github.com/quantoak/nightscan/internal/scanner"
	"github.com/quantoak/nightscan/internal/universe"
	"github.com/quantoak/nightscan/pkg/logger"
)

// Predictor combines the sequence-model forecast, the moving-average trend,
// the technical raw score, and the sentiment score into one directional
// prediction with confidence. The mixing weights are fixed per cycle.
type Predictor struct {
	store  *ModelStore
	cfg    universe.Ensemble
	logger *logger.Logger
}

// New creates an ensemble predictor over a model store.
func New(store *ModelStore, cfg universe.Ensemble, log *logger.Logger) *Predictor {
	return &Predictor{
		store:  store,
		cfg:    cfg,
		logger: log,
	}
}

// Predict produces the ensemble result for one instrument. When the store
// has no trained weights for the symbol, the sequence slot falls back to the
// trend signal: its weight is redistributed onto trend, never silently
// dropped, and the fallback is recorded on the result.
func (p *Predictor) Predict(
	symbol string,
	history contracts.Series,
	technicalRaw float64,
	sentiment contracts.SentimentResult,
	bias contracts.MarketBias,
) contracts.PredictionResult {
	weights := contracts.EnsembleWeights{
		SequenceModel: p.cfg.SequenceModelPct / 100,
		Trend:         p.cfg.TrendPct / 100,
		Technical:     p.cfg.TechnicalPct / 100,
		Sentiment:     p.cfg.SentimentPct / 100,
	}

	trend := trendScore(history, bias)
	contributions := contracts.Contributions{
		Trend:     trend,
		Technical: clamp(technicalRaw, 0, 100),
		Sentiment: (sentiment.Score + 1) / 2 * 100,
	}

	fallback := false
	model, ok, err := p.store.Load(symbol)
	if err != nil {
		p.logger.WithError(err).WithField("symbol", symbol).Warn("Model artifact unreadable, using trend fallback")
	}
	if ok && err == nil {
		contributions.SequenceModel = sequenceScore(model, history)
	} else {
		// Redistribute the sequence weight onto trend.
		fallback = true
		contributions.SequenceModel = trend
		weights.Trend += weights.SequenceModel
		weights.SequenceModel = 0
	}

	result := contracts.PredictionResult{
		Symbol:        symbol,
		Contributions: contributions,
		Weights:       weights,
		ModelFallback: fallback,
	}
	result.Confidence = result.WeightedSum()
	result.Direction = p.direction(result.Confidence)

	p.logger.WithFields(map[string]interface{}{
		"symbol":     symbol,
		"confidence": result.Confidence,
		"direction":  string(result.Direction),
		"fallback":   fallback,
	}).Debug("Ensemble prediction")

	return result
}

// direction is a pure function of confidence and the configured thresholds.
func (p *Predictor) direction(confidence float64) contracts.Direction {
	switch {
	case confidence > p.cfg.BuyThreshold:
		return contracts.DirectionBuy
	case confidence < p.cfg.SellThreshold:
		return contracts.DirectionSell
	default:
		return contracts.DirectionHold
	}
}

// trendScore maps the moving-average posture onto [0,100], shaded slightly
// toward the cycle's market bias.
func trendScore(history contracts.Series, bias contracts.MarketBias) float64 {
	tech := scanner.ComputeTechnicals(history)
	last := history.LastClose()

	aboveMA20 := tech.MA20 > 0 && last > tech.MA20
	aboveMA50 := tech.MA50 > 0 && last > tech.MA50

	var base float64
	switch {
	case aboveMA20 && aboveMA50:
		base = 80
	case aboveMA20 || aboveMA50:
		base = 60
	default:
		base = 30
	}

	return clamp(0.9*base+0.1*bias.Score, 0, 100)
}

// sequenceScore applies the trained linear coefficients to the most recent
// daily returns, newest first, and squashes onto [0,100].
func sequenceScore(model *ModelWeights, history contracts.Series) float64 {
	returns := history.DailyReturns()

	x := model.Intercept
	for i, coef := range model.Coefficients {
		idx := len(returns) - 1 - i
		if idx < 0 {
			break
		}
		x += coef * returns[idx]
	}

	return 50 + math.Tanh(x)*50
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
