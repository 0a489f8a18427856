package factorview

import (
	"sort"

	"github.com/quantoak/nightscan/internal/contracts"
)

// BuildView aggregates a cycle's scored outcomes into the per-instrument
// table, per-sector summaries, and the overall summary. Pure reshaping: no
// network, no randomness; identical inputs always produce identical output.
func BuildView(outcomes []contracts.InstrumentOutcome) contracts.FactorView {
	view := contracts.FactorView{}

	sectorRows := make(map[string][]contracts.InstrumentRow)
	for _, outcome := range outcomes {
		if !outcome.Scored() {
			continue
		}
		row := buildRow(outcome)
		view.Rows = append(view.Rows, row)
		sectorRows[row.Sector] = append(sectorRows[row.Sector], row)
	}

	sectors := make([]string, 0, len(sectorRows))
	for sector := range sectorRows {
		sectors = append(sectors, sector)
	}
	sort.Strings(sectors)

	for _, sector := range sectors {
		view.Sectors = append(view.Sectors, summarizeSector(sector, sectorRows[sector]))
	}
	view.Overall = summarizeOverall(view.Rows)

	return view
}

func buildRow(outcome contracts.InstrumentOutcome) contracts.InstrumentRow {
	row := contracts.InstrumentRow{
		Symbol:     outcome.Symbol,
		Sector:     outcome.Sector,
		Score:      outcome.Opportunity.Score,
		SectorRisk: outcome.Opportunity.SectorRisk,
		Regulatory: outcome.Opportunity.Regulatory,
		Betas:      make(map[string]float64),
	}
	if outcome.Validation != nil {
		row.SubScores = outcome.Validation.SubScores
	}
	if outcome.Prediction != nil {
		row.Direction = outcome.Prediction.Direction
		row.Confidence = outcome.Prediction.Confidence
	}
	if outcome.Sentiment != nil {
		row.Sentiment = outcome.Sentiment.Score
	}
	for _, beta := range outcome.Betas {
		if beta.Valid() {
			row.Betas[beta.Factor] = beta.Beta
		}
	}
	return row
}

func summarizeSector(sector string, rows []contracts.InstrumentRow) contracts.SectorSummary {
	summary := contracts.SectorSummary{
		Sector: sector,
		Count:  len(rows),
	}

	var betaSum float64
	var betaCount int
	for _, row := range rows {
		summary.AvgScore += row.Score
		summary.AvgConfidence += row.Confidence
		if row.Direction == contracts.DirectionBuy {
			summary.BuyCount++
		}
		if row.SectorRisk == contracts.SectorRiskHigh {
			summary.RiskFlagged++
		}
		for _, beta := range row.Betas {
			betaSum += beta
			betaCount++
		}
	}

	n := float64(len(rows))
	summary.AvgScore /= n
	summary.AvgConfidence /= n
	if betaCount > 0 {
		summary.AvgBeta = betaSum / float64(betaCount)
	}

	return summary
}

func summarizeOverall(rows []contracts.InstrumentRow) contracts.OverallSummary {
	summary := contracts.OverallSummary{Instruments: len(rows)}
	if len(rows) == 0 {
		return summary
	}

	var betaSum float64
	var betaCount int
	for _, row := range rows {
		summary.AvgScore += row.Score
		summary.AvgConfidence += row.Confidence
		switch row.Direction {
		case contracts.DirectionBuy:
			summary.BuyCount++
		case contracts.DirectionSell:
			summary.SellCount++
		default:
			summary.HoldCount++
		}
		for _, beta := range row.Betas {
			betaSum += beta
			betaCount++
		}
	}

	n := float64(len(rows))
	summary.AvgScore /= n
	summary.AvgConfidence /= n
	if betaCount > 0 {
		summary.AvgBeta = betaSum / float64(betaCount)
	}

	return summary
}
