package report

import (
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantoak/nightscan/internal/contracts"
	"github.com/quantoak/nightscan/pkg/logger"
)

func sampleReport() *contracts.CycleReport {
	finished := time.Date(2026, 6, 16, 4, 30, 0, 0, time.UTC)
	return &contracts.CycleReport{
		CycleID:    "20260616-0430",
		StartedAt:  finished.Add(-10 * time.Minute),
		FinishedAt: finished,
		MarketBias: contracts.MarketBias{Score: 62, Label: contracts.BiasRiskOn},
		Outcomes: []contracts.InstrumentOutcome{
			{
				Symbol: "AAA.L",
				Sector: "mining",
				Validation: &contracts.ValidationResult{
					Symbol: "AAA.L", Sector: "mining", Passed: true,
					SubScores: contracts.SubScores{Liquidity: 15, Momentum: 12, RSI: 20, Volatility: 15, Sector: 10},
					RawScore:  72,
				},
				Sentiment:  &contracts.SentimentResult{Symbol: "AAA.L", Score: 0.3, TotalWeight: 4.25},
				Prediction: &contracts.PredictionResult{Symbol: "AAA.L", Direction: contracts.DirectionBuy, Confidence: 68},
				Opportunity: &contracts.OpportunityScore{
					Symbol: "AAA.L", Sector: "mining", Score: 71.5,
					SectorRisk: contracts.SectorRiskNormal,
				},
				Betas: []contracts.BetaRecord{
					{Symbol: "AAA.L", Factor: "ftse100", Beta: 1.3, Observations: 60, LookbackDays: 90},
					{Symbol: "AAA.L", Factor: "commodities", Beta: math.NaN(), Observations: 12, LookbackDays: 90},
				},
			},
			{
				Symbol: "BBB.L", Sector: "mining",
				Validation: &contracts.ValidationResult{Symbol: "BBB.L", Passed: true, RawScore: 50,
					SubScores: contracts.SubScores{Liquidity: 10, Momentum: 12, RSI: 12, Volatility: 10, Sector: 6}},
				Sentiment:   &contracts.SentimentResult{Symbol: "BBB.L"},
				Prediction:  &contracts.PredictionResult{Symbol: "BBB.L", Direction: contracts.DirectionHold, Confidence: 52},
				Opportunity: &contracts.OpportunityScore{Symbol: "BBB.L", Sector: "mining", Score: 90.0, SectorRisk: contracts.SectorRiskNormal},
			},
			{Symbol: "PNY.L", Sector: "mining", Skipped: true, SkipReason: "price_out_of_range"},
		},
		Universe:    3,
		Scored:      2,
		SkippedSize: 1,
	}
}

func TestWriteCSV(t *testing.T) {
	w, err := NewWriter(t.TempDir(), logger.Nop())
	require.NoError(t, err)

	path, err := w.WriteCSV(sampleReport(), []string{"ftse100", "commodities"})
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4) // header + 2 scored + 1 skipped

	header := rows[0]
	assert.Equal(t, "symbol", header[0])
	assert.Contains(t, header, "beta_ftse100")
	assert.Contains(t, header, "beta_commodities")
	assert.Contains(t, header, "sector_risk")
	assert.Contains(t, header, "timestamp")

	// Every row has the header's width.
	for _, row := range rows[1:] {
		assert.Len(t, row, len(header))
	}

	// Ranked by score descending: BBB.L (90) before AAA.L (71.5).
	assert.Equal(t, "BBB.L", rows[1][0])
	assert.Equal(t, "AAA.L", rows[2][0])

	// Skipped instrument appears last, with its reason.
	assert.Equal(t, "PNY.L", rows[3][0])
	assert.Equal(t, "skipped", rows[3][2])
	assert.Equal(t, "price_out_of_range", rows[3][3])

	// The invalid beta is written as NaN, not dropped.
	aaa := rows[2]
	assert.Equal(t, "1.3000", aaa[14])
	assert.Equal(t, "NaN", aaa[15])
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, logger.Nop())
	require.NoError(t, err)

	path, err := w.WriteJSON(sampleReport())
	require.NoError(t, err)

	// Both the cycle file and latest.json exist and parse.
	for _, p := range []string{path, w.LatestPath()} {
		data, err := os.ReadFile(p)
		require.NoError(t, err)

		var decoded contracts.CycleReport
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "20260616-0430", decoded.CycleID)
		assert.Len(t, decoded.Outcomes, 3)
	}
}

func TestWriteJSON_NaNBetaSerializes(t *testing.T) {
	w, err := NewWriter(t.TempDir(), logger.Nop())
	require.NoError(t, err)

	// The NaN commodities beta must round-trip as null, not fail marshalling.
	path, err := w.WriteJSON(sampleReport())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded contracts.CycleReport
	require.NoError(t, json.Unmarshal(data, &decoded))

	betas := decoded.Outcomes[0].Betas
	require.Len(t, betas, 2)
	assert.False(t, math.IsNaN(betas[0].Beta))
	assert.True(t, math.IsNaN(betas[1].Beta))
}

func TestRankedOutcomes_StableForTies(t *testing.T) {
	outcomes := []contracts.InstrumentOutcome{
		{Symbol: "A.L", Opportunity: &contracts.OpportunityScore{Score: 50}},
		{Symbol: "B.L", Opportunity: &contracts.OpportunityScore{Score: 50}},
	}
	ranked := rankedOutcomes(outcomes)
	assert.Equal(t, "A.L", ranked[0].Symbol)
	assert.Equal(t, "B.L", ranked[1].Symbol)
}
