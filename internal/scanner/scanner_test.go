package scanner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantoak/nightscan/internal/contracts"
	"github.com/quantoak/nightscan/internal/universe"
	"github.com/quantoak/nightscan/pkg/logger"
)

// flatSeries builds n daily bars at a constant close and volume.
func flatSeries(symbol string, n int, close float64, volume int64) contracts.Series {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	bars := make([]contracts.Bar, n)
	for i := range bars {
		bars[i] = contracts.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   close,
			High:   close,
			Low:    close,
			Close:  close,
			Volume: volume,
		}
	}
	return contracts.Series{Symbol: symbol, Bars: bars}
}

// trendingSeries builds n daily bars with a small constant daily gain.
func trendingSeries(symbol string, n int, start float64, dailyGain float64, volume int64) contracts.Series {
	first := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	bars := make([]contracts.Bar, n)
	price := start
	for i := range bars {
		bars[i] = contracts.Bar{
			Date:   first.AddDate(0, 0, i),
			Close:  price,
			Volume: volume,
		}
		price += dailyGain
	}
	return contracts.Series{Symbol: symbol, Bars: bars}
}

func newTestScanner() *Scanner {
	return New(universe.Default(), logger.Nop())
}

func TestValidateAndScore_PriceGate(t *testing.T) {
	s := newTestScanner()

	result := s.ValidateAndScore("PNY.L", "energy", flatSeries("PNY.L", 60, 0.20, 2_000_000))
	assert.False(t, result.Passed)
	assert.Equal(t, contracts.FailurePriceOutOfRange, result.Reason)
	assert.Zero(t, result.RawScore)
	assert.Zero(t, result.SubScores.Sum())

	result = s.ValidateAndScore("BIG.L", "energy", flatSeries("BIG.L", 60, 750.0, 2_000_000))
	assert.False(t, result.Passed)
	assert.Equal(t, contracts.FailurePriceOutOfRange, result.Reason)
}

func TestValidateAndScore_VolumeGate(t *testing.T) {
	s := newTestScanner()

	result := s.ValidateAndScore("THN.L", "energy", flatSeries("THN.L", 60, 10.0, 50_000))
	assert.False(t, result.Passed)
	assert.Equal(t, contracts.FailureInsufficientVolume, result.Reason)
}

func TestValidateAndScore_HistoryGate(t *testing.T) {
	s := newTestScanner()

	// Enough volume and price but only 10 observations.
	result := s.ValidateAndScore("NEW.L", "energy", flatSeries("NEW.L", 10, 10.0, 2_000_000))
	assert.False(t, result.Passed)
	assert.Equal(t, contracts.FailureInsufficientHistory, result.Reason)
}

func TestValidateAndScore_GateOrderShortCircuits(t *testing.T) {
	s := newTestScanner()

	// Fails every gate; the price gate must be the one reported.
	result := s.ValidateAndScore("ALL.L", "energy", flatSeries("ALL.L", 5, 0.10, 100))
	assert.Equal(t, contracts.FailurePriceOutOfRange, result.Reason)
}

func TestValidateAndScore_PassedInvariants(t *testing.T) {
	s := newTestScanner()

	result := s.ValidateAndScore("VOD.L", "telecoms", trendingSeries("VOD.L", 60, 10.0, 0.05, 2_000_000))
	require.True(t, result.Passed)
	assert.Equal(t, contracts.FailureNone, result.Reason)

	for name, sub := range map[string]float64{
		"liquidity":  result.SubScores.Liquidity,
		"momentum":   result.SubScores.Momentum,
		"rsi":        result.SubScores.RSI,
		"volatility": result.SubScores.Volatility,
		"sector":     result.SubScores.Sector,
	} {
		assert.GreaterOrEqual(t, sub, 0.0, name)
		assert.LessOrEqual(t, sub, 20.0, name)
	}

	assert.InDelta(t, result.SubScores.Sum(), result.RawScore, 1e-9)
	assert.GreaterOrEqual(t, result.RawScore, 0.0)
	assert.LessOrEqual(t, result.RawScore, 100.0)
}

func TestValidateAndScore_Deterministic(t *testing.T) {
	s := newTestScanner()
	history := trendingSeries("VOD.L", 60, 10.0, 0.05, 800_000)

	first := s.ValidateAndScore("VOD.L", "telecoms", history)
	second := s.ValidateAndScore("VOD.L", "telecoms", history)
	assert.Equal(t, first, second)
}

func TestLiquidityScoreTiers(t *testing.T) {
	tests := []struct {
		avgVolume float64
		want      float64
	}{
		{2_000_000, 20},
		{700_000, 15},
		{300_000, 10},
		{150_000, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, liquidityScore(tt.avgVolume), "avg volume %.0f", tt.avgVolume)
	}
}

func TestMomentumScoreTiers(t *testing.T) {
	tech := contracts.Technicals{MA20: 10, MA50: 12}

	assert.Equal(t, 20.0, momentumScore(13, tech))
	assert.Equal(t, 12.0, momentumScore(11, tech)) // above MA20 only
	assert.Equal(t, 4.0, momentumScore(9, tech))

	// A series too short for MA50 never counts as above it.
	short := contracts.Technicals{MA20: 10, MA50: 0}
	assert.Equal(t, 12.0, momentumScore(11, short))
}

func TestRSIScoreBands(t *testing.T) {
	assert.Equal(t, 20.0, rsiScore(50))
	assert.Equal(t, 12.0, rsiScore(35))
	assert.Equal(t, 12.0, rsiScore(65))
	assert.Equal(t, 4.0, rsiScore(20))
	assert.Equal(t, 4.0, rsiScore(85))
}

func TestVolatilityScoreTiers(t *testing.T) {
	assert.Equal(t, 20.0, volatilityScore(0.005))
	assert.Equal(t, 15.0, volatilityScore(0.015))
	assert.Equal(t, 10.0, volatilityScore(0.025))
	assert.Equal(t, 5.0, volatilityScore(0.08))
	assert.Equal(t, 5.0, volatilityScore(0))
}

func TestSectorScoreClamped(t *testing.T) {
	cfg := universe.Default()
	cfg.Sectors = []universe.Sector{
		{Name: "heavy", Weight: 2.5, Symbols: []string{"A.L"}},
		{Name: "normal", Weight: 1.0, Symbols: []string{"B.L"}},
	}
	s := New(cfg, logger.Nop())

	assert.Equal(t, 20.0, s.sectorScore("heavy")) // 25 clamped to 20
	assert.Equal(t, 10.0, s.sectorScore("normal"))
	assert.Equal(t, 10.0, s.sectorScore("unknown")) // default weight 1.0
}

func TestComputeTechnicals(t *testing.T) {
	history := flatSeries("FLT.L", 60, 10.0, 500_000)
	tech := ComputeTechnicals(history)

	assert.InDelta(t, 10.0, tech.MA20, 1e-9)
	assert.InDelta(t, 10.0, tech.MA50, 1e-9)
	assert.InDelta(t, 50.0, tech.RSI14, 1e-9) // no movement, neutral
	assert.InDelta(t, 0.0, tech.Volatility, 1e-9)
}

func TestRelativeStrengthBounds(t *testing.T) {
	// Monotonic gains push RSI to 100.
	up := trendingSeries("UP.L", 30, 10.0, 0.1, 1)
	assert.InDelta(t, 100.0, ComputeTechnicals(up).RSI14, 1e-9)

	// Monotonic losses push RSI to 0.
	down := trendingSeries("DN.L", 30, 10.0, -0.1, 1)
	assert.InDelta(t, 0.0, ComputeTechnicals(down).RSI14, 1e-9)
}

func TestMovingAverageShortSeries(t *testing.T) {
	assert.Equal(t, 0.0, movingAverage([]float64{1, 2, 3}, 20))
}
