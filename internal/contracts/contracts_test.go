package contracts

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubScores_Sum(t *testing.T) {
	scores := SubScores{
		Liquidity:  20,
		Momentum:   15,
		RSI:        10,
		Volatility: 12,
		Sector:     8,
	}

	assert.InDelta(t, 65.0, scores.Sum(), 1e-9)
}

func TestPredictionResult_WeightedSum(t *testing.T) {
	p := PredictionResult{
		Contributions: Contributions{
			SequenceModel: 80,
			Trend:         60,
			Technical:     50,
			Sentiment:     70,
		},
		Weights: DefaultEnsembleWeights(),
	}

	expected := 80*0.45 + 60*0.25 + 50*0.15 + 70*0.15
	assert.InDelta(t, expected, p.WeightedSum(), 1e-9)
}

func TestDefaultEnsembleWeights_SumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, DefaultEnsembleWeights().Sum(), 1e-9)
}

func TestSeries_DailyReturns(t *testing.T) {
	s := Series{
		Symbol: "VOD.L",
		Bars: []Bar{
			{Close: 100},
			{Close: 110},
			{Close: 99},
		},
	}

	returns := s.DailyReturns()
	assert.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-9)
	assert.InDelta(t, -0.10, returns[1], 1e-9)
}

func TestSeries_AvgVolume(t *testing.T) {
	s := Series{
		Bars: []Bar{
			{Volume: 100},
			{Volume: 200},
			{Volume: 300},
		},
	}

	assert.InDelta(t, 250, s.AvgVolume(2), 1e-9)
	assert.InDelta(t, 200, s.AvgVolume(10), 1e-9, "window longer than series uses whole series")
}

func TestSentimentResult_HasRegulatoryWithin(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	r := SentimentResult{LatestRegulatory: now.Add(-24 * time.Hour)}
	assert.True(t, r.HasRegulatoryWithin(now, 48*time.Hour))
	assert.False(t, r.HasRegulatoryWithin(now, 12*time.Hour))

	empty := SentimentResult{}
	assert.False(t, empty.HasRegulatoryWithin(now, 48*time.Hour))
}

func TestBetaRecord_Valid(t *testing.T) {
	assert.True(t, BetaRecord{Beta: 1.2}.Valid())
	assert.False(t, BetaRecord{Beta: math.NaN()}.Valid())
}
