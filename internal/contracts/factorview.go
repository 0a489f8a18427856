package contracts

// InstrumentRow is one line of the per-instrument attribution table.
type InstrumentRow struct {
	Symbol     string             `json:"symbol"`
	Sector     string             `json:"sector"`
	Score      float64            `json:"score"`
	Direction  Direction          `json:"direction"`
	Confidence float64            `json:"confidence"`
	SubScores  SubScores          `json:"sub_scores"`
	Sentiment  float64            `json:"sentiment"`
	Betas      map[string]float64 `json:"betas"` // factor name -> beta (NaN omitted)
	SectorRisk SectorRiskLevel    `json:"sector_risk"`
	Regulatory bool               `json:"regulatory"`
}

// SectorSummary aggregates one sector.
type SectorSummary struct {
	Sector        string  `json:"sector"`
	Count         int     `json:"count"`
	AvgScore      float64 `json:"avg_score"`
	AvgConfidence float64 `json:"avg_confidence"`
	AvgBeta       float64 `json:"avg_beta"`
	BuyCount      int     `json:"buy_count"`
	RiskFlagged   int     `json:"risk_flagged"`
}

// OverallSummary is the portfolio-level aggregate.
type OverallSummary struct {
	Instruments   int     `json:"instruments"`
	AvgScore      float64 `json:"avg_score"`
	AvgConfidence float64 `json:"avg_confidence"`
	AvgBeta       float64 `json:"avg_beta"`
	BuyCount      int     `json:"buy_count"`
	HoldCount     int     `json:"hold_count"`
	SellCount     int     `json:"sell_count"`
}

// FactorView is the deterministic aggregation of a cycle's results, shaped
// for reporting and export. Pure function of its inputs.
type FactorView struct {
	Rows    []InstrumentRow `json:"rows"`
	Sectors []SectorSummary `json:"sectors"`
	Overall OverallSummary  `json:"overall"`
}
