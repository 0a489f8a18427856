package opportunity

import (
	"time"

	"github.com/quantoak/nightscan/internal/contracts"
	"github.com/quantoak/nightscan/internal/universe"
	"github.com/quantoak/nightscan/pkg/logger"
)

// Base component weights. They sum to 1 so the base score stays in [0,100].
const (
	weightConfidence    = 0.40
	weightTechnical     = 0.25
	weightBiasAlignment = 0.15
	weightLiquidity     = 0.10
	weightStability     = 0.10
)

// Scorer computes per-instrument opportunity scores. Score is pass 1 and
// order-independent across instruments; ApplySectorRisk is the single
// intentional second pass that reads all pass-1 results.
type Scorer struct {
	cfg    universe.Scoring
	logger *logger.Logger

	now func() time.Time
}

// New creates an opportunity scorer with the configured adjustments.
func New(cfg universe.Scoring, log *logger.Logger) *Scorer {
	return &Scorer{
		cfg:    cfg,
		logger: log,
		now:    time.Now,
	}
}

// Score computes the base opportunity score for one instrument and applies
// the per-instrument adjustments. It never reads other instruments' results.
func (s *Scorer) Score(
	validation contracts.ValidationResult,
	prediction contracts.PredictionResult,
	sentiment contracts.SentimentResult,
	bias contracts.MarketBias,
) contracts.OpportunityScore {
	base := contracts.BaseComponents{
		Confidence:    prediction.Confidence,
		Technical:     validation.RawScore,
		BiasAlignment: alignmentScore(prediction.Direction, bias),
		Liquidity:     validation.SubScores.Liquidity * 5,  // [0,20] -> [0,100]
		Stability:     validation.SubScores.Volatility * 5, // inverse volatility sub-score
	}

	score := base.Confidence*weightConfidence +
		base.Technical*weightTechnical +
		base.BiasAlignment*weightBiasAlignment +
		base.Liquidity*weightLiquidity +
		base.Stability*weightStability

	result := contracts.OpportunityScore{
		Symbol:     validation.Symbol,
		Sector:     validation.Sector,
		Base:       base,
		SectorRisk: contracts.SectorRiskNormal,
	}

	if sentiment.HasRegulatoryWithin(s.now(), s.lookback()) {
		delta := -score * s.cfg.RegulatoryPenalty
		score += delta
		result.Regulatory = true
		result.Adjustments = append(result.Adjustments, contracts.Adjustment{
			Reason: contracts.ReasonRegulatoryPenalty,
			Delta:  delta,
		})
		s.logger.WithFields(map[string]interface{}{
			"symbol": validation.Symbol,
			"delta":  delta,
		}).Debug("Regulatory penalty applied")
	}

	result.Score = clamp(score, 0, 100)
	return result
}

// ApplySectorRisk is the contagion pass: when at least the configured number
// of instruments in one sector carry the regulatory penalty, every instrument
// in that sector is downgraded and flagged HIGH. Runs single-threaded after
// all pass-1 scores are known.
func (s *Scorer) ApplySectorRisk(scores []contracts.OpportunityScore) []contracts.OpportunityScore {
	flagged := make(map[string]int)
	for _, score := range scores {
		if score.Regulatory {
			flagged[score.Sector]++
		}
	}

	out := make([]contracts.OpportunityScore, len(scores))
	for i, score := range scores {
		if flagged[score.Sector] < s.cfg.SectorRiskMinFlagged {
			out[i] = score
			continue
		}

		delta := -score.Score * s.cfg.SectorRiskPenalty
		score.Score = clamp(score.Score+delta, 0, 100)
		score.SectorRisk = contracts.SectorRiskHigh
		score.Adjustments = append(score.Adjustments, contracts.Adjustment{
			Reason: contracts.ReasonSectorRisk,
			Delta:  delta,
		})
		out[i] = score

		s.logger.WithFields(map[string]interface{}{
			"symbol": score.Symbol,
			"sector": score.Sector,
			"delta":  delta,
		}).Debug("Sector risk downgrade applied")
	}

	return out
}

func (s *Scorer) lookback() time.Duration {
	return time.Duration(s.cfg.RegulatoryLookbackHours) * time.Hour
}

// alignmentScore rewards predictions that agree with the market regime.
func alignmentScore(direction contracts.Direction, bias contracts.MarketBias) float64 {
	switch direction {
	case contracts.DirectionBuy:
		return bias.Score
	case contracts.DirectionSell:
		return 100 - bias.Score
	default:
		return 50
	}
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
