package scanner

import (
	"github.com/quantoak/nightscan/internal/contracts"
	"github.com/quantoak/nightscan/internal/universe"
	"github.com/quantoak/nightscan/pkg/logger"
)

// Scanner applies the validation gates and computes the technical sub-scores.
// It is stateless given its inputs: identical history always yields the same
// result.
type Scanner struct {
	cfg    *universe.Config
	logger *logger.Logger
}

// New creates a scanner bound to the loaded universe configuration.
func New(cfg *universe.Config, log *logger.Logger) *Scanner {
	return &Scanner{
		cfg:    cfg,
		logger: log,
	}
}

// ValidateAndScore runs the gates in order, short-circuiting on the first
// failure, then scores instruments that passed. Failed instruments carry
// zero sub-scores.
func (s *Scanner) ValidateAndScore(symbol, sector string, history contracts.Series) contracts.ValidationResult {
	result := contracts.ValidationResult{
		Symbol: symbol,
		Sector: sector,
	}

	screening := s.cfg.Screening
	avgVolume := history.AvgVolume(screening.VolumeWindow)

	if reason := s.checkGates(history, avgVolume); reason != contracts.FailureNone {
		result.Reason = reason
		s.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"reason": string(reason),
		}).Debug("Instrument rejected by validation gate")
		return result
	}

	tech := ComputeTechnicals(history)
	result.Passed = true
	result.SubScores = contracts.SubScores{
		Liquidity:  liquidityScore(avgVolume),
		Momentum:   momentumScore(history.LastClose(), tech),
		RSI:        rsiScore(tech.RSI14),
		Volatility: volatilityScore(tech.Volatility),
		Sector:     s.sectorScore(sector),
	}
	result.RawScore = result.SubScores.Sum()

	s.logger.WithFields(map[string]interface{}{
		"symbol":    symbol,
		"raw_score": result.RawScore,
	}).Debug("Instrument scored")

	return result
}

// checkGates returns the first failing gate's reason, or FailureNone.
func (s *Scanner) checkGates(history contracts.Series, avgVolume float64) contracts.FailureReason {
	screening := s.cfg.Screening

	lastClose := history.LastClose()
	if lastClose < screening.MinPrice || lastClose > screening.MaxPrice {
		return contracts.FailurePriceOutOfRange
	}

	if avgVolume < screening.MinAvgVolume {
		return contracts.FailureInsufficientVolume
	}

	if history.Len() < screening.MinObservations || history.SpanDays() < screening.MinSpanDays {
		return contracts.FailureInsufficientHistory
	}

	return contracts.FailureNone
}

// liquidityScore tiers on the trailing average daily volume.
func liquidityScore(avgVolume float64) float64 {
	switch {
	case avgVolume > 1_000_000:
		return 20
	case avgVolume > 500_000:
		return 15
	case avgVolume > 200_000:
		return 10
	default:
		return 5
	}
}

// momentumScore tiers on where the last close sits relative to the 20-day
// and 50-day moving averages. A zero moving average means the series was too
// short for that window and counts as "below".
func momentumScore(lastClose float64, tech contracts.Technicals) float64 {
	aboveMA20 := tech.MA20 > 0 && lastClose > tech.MA20
	aboveMA50 := tech.MA50 > 0 && lastClose > tech.MA50

	switch {
	case aboveMA20 && aboveMA50:
		return 20
	case aboveMA20 || aboveMA50:
		return 12
	default:
		return 4
	}
}

// rsiScore rewards the neutral band; extremes in either direction score low.
func rsiScore(rsi float64) float64 {
	switch {
	case rsi >= 40 && rsi <= 60:
		return 20
	case rsi >= 30 && rsi <= 70:
		return 12
	default:
		return 4
	}
}

// volatilityScore inverse-tiers on the stddev of daily returns.
func volatilityScore(vol float64) float64 {
	switch {
	case vol == 0:
		return 5 // no return data, treat as unknown rather than calm
	case vol < 0.01:
		return 20
	case vol < 0.02:
		return 15
	case vol < 0.03:
		return 10
	default:
		return 5
	}
}

// sectorScore is a base score scaled by the configured sector multiplier,
// clamped to the sub-score range.
func (s *Scanner) sectorScore(sector string) float64 {
	score := 10.0 * s.cfg.SectorWeight(sector)
	if score > 20 {
		return 20
	}
	if score < 0 {
		return 0
	}
	return score
}
