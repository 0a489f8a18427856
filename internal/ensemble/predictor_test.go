package ensemble

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantoak/nightscan/internal/contracts"
	"github.com/quantoak/nightscan/internal/universe"
	"github.com/quantoak/nightscan/pkg/logger"
)

func trendingSeries(symbol string, n int, start, dailyGain float64) contracts.Series {
	first := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	bars := make([]contracts.Bar, n)
	price := start
	for i := range bars {
		bars[i] = contracts.Bar{Date: first.AddDate(0, 0, i), Close: price, Volume: 1_000_000}
		price += dailyGain
	}
	return contracts.Series{Symbol: symbol, Bars: bars}
}

func writeModel(t *testing.T, dir string, weights ModelWeights) {
	t.Helper()
	data, err := json.Marshal(weights)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, weights.Symbol+".json"), data, 0o644))
}

func neutralBias() contracts.MarketBias {
	return contracts.MarketBias{Score: 50, Label: contracts.BiasNeutral}
}

func TestPredict_FallbackWhenNoArtifact(t *testing.T) {
	p := New(NewStore(t.TempDir(), logger.Nop()), universe.Default().Ensemble, logger.Nop())
	history := trendingSeries("VOD.L", 60, 10, 0.05)

	result := p.Predict("VOD.L", history, 70, contracts.SentimentResult{}, neutralBias())

	assert.True(t, result.ModelFallback)
	assert.Zero(t, result.Weights.SequenceModel)
	assert.InDelta(t, 0.70, result.Weights.Trend, 1e-9, "sequence weight redistributed onto trend")
	assert.InDelta(t, 1.0, result.Weights.Sum(), 1e-9)
	assert.Equal(t, result.Contributions.Trend, result.Contributions.SequenceModel)
}

func TestPredict_UsesArtifactWhenPresent(t *testing.T) {
	dir := t.TempDir()
	writeModel(t, dir, ModelWeights{
		Symbol:       "VOD.L",
		Coefficients: []float64{5, 3, 1},
		Intercept:    0.1,
		TrainedAt:    time.Now(),
	})
	p := New(NewStore(dir, logger.Nop()), universe.Default().Ensemble, logger.Nop())

	result := p.Predict("VOD.L", trendingSeries("VOD.L", 60, 10, 0.05), 70, contracts.SentimentResult{}, neutralBias())

	assert.False(t, result.ModelFallback)
	assert.InDelta(t, 0.45, result.Weights.SequenceModel, 1e-9)
	assert.InDelta(t, 0.25, result.Weights.Trend, 1e-9)
}

func TestPredict_ConfidenceInvariant(t *testing.T) {
	p := New(NewStore(t.TempDir(), logger.Nop()), universe.Default().Ensemble, logger.Nop())

	for _, sentiment := range []float64{-1, -0.3, 0, 0.6, 1} {
		result := p.Predict("VOD.L", trendingSeries("VOD.L", 60, 10, 0.05), 55,
			contracts.SentimentResult{Score: sentiment}, neutralBias())

		assert.InDelta(t, result.WeightedSum(), result.Confidence, 1e-9)
		assert.GreaterOrEqual(t, result.Confidence, 0.0)
		assert.LessOrEqual(t, result.Confidence, 100.0)
	}
}

func TestPredict_DirectionThresholds(t *testing.T) {
	cfg := universe.Default().Ensemble
	p := New(NewStore(t.TempDir(), logger.Nop()), cfg, logger.Nop())

	assert.Equal(t, contracts.DirectionBuy, p.direction(75))
	assert.Equal(t, contracts.DirectionHold, p.direction(60))
	assert.Equal(t, contracts.DirectionHold, p.direction(50))
	assert.Equal(t, contracts.DirectionHold, p.direction(40))
	assert.Equal(t, contracts.DirectionSell, p.direction(25))
}

func TestPredict_Deterministic(t *testing.T) {
	p := New(NewStore(t.TempDir(), logger.Nop()), universe.Default().Ensemble, logger.Nop())
	history := trendingSeries("VOD.L", 60, 10, 0.05)
	sentiment := contracts.SentimentResult{Score: 0.4}

	first := p.Predict("VOD.L", history, 65, sentiment, neutralBias())
	second := p.Predict("VOD.L", history, 65, sentiment, neutralBias())
	assert.Equal(t, first, second)
}

func TestTrendScorePosture(t *testing.T) {
	bias := neutralBias()

	up := trendingSeries("UP.L", 60, 10, 0.05)
	down := trendingSeries("DN.L", 60, 20, -0.05)
	assert.Greater(t, trendScore(up, bias), trendScore(down, bias))

	// Risk-on bias nudges the same posture upward.
	riskOn := contracts.MarketBias{Score: 90, Label: contracts.BiasRiskOn}
	assert.Greater(t, trendScore(up, riskOn), trendScore(up, bias))
}

func TestStoreLoad(t *testing.T) {
	dir := t.TempDir()

	// Missing artifact is not an error.
	_, ok, err := NewStore(dir, logger.Nop()).Load("NOPE.L")
	require.NoError(t, err)
	assert.False(t, ok)

	writeModel(t, dir, ModelWeights{Symbol: "VOD.L", Coefficients: []float64{1.5}, Intercept: 0.2})
	weights, ok, err := NewStore(dir, logger.Nop()).Load("VOD.L")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float64{1.5}, weights.Coefficients)

	// Corrupt artifact is an error.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "BAD.L.json"), []byte("{"), 0o644))
	_, _, err = NewStore(dir, logger.Nop()).Load("BAD.L")
	assert.Error(t, err)
}

func TestSequenceScoreBounds(t *testing.T) {
	model := &ModelWeights{Coefficients: []float64{100, 100}, Intercept: 5}
	score := sequenceScore(model, trendingSeries("X.L", 60, 10, 0.5))
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
	assert.Greater(t, score, 50.0)
}
