package contracts

// ReasonCode tags a score adjustment so the final report can explain it.
type ReasonCode string

const (
	ReasonRegulatoryPenalty ReasonCode = "regulatory_penalty"
	ReasonSectorRisk        ReasonCode = "sector_risk_downgrade"
	ReasonBiasAlignment     ReasonCode = "bias_alignment_bonus"
)

// SectorRiskLevel flags sector-wide contagion.
type SectorRiskLevel string

const (
	SectorRiskNormal SectorRiskLevel = "NORMAL"
	SectorRiskHigh   SectorRiskLevel = "HIGH"
)

// Adjustment is one applied bonus or penalty.
type Adjustment struct {
	Reason ReasonCode `json:"reason"`
	Delta  float64    `json:"delta"` // signed change to the score
}

// BaseComponents are the weighted inputs to the base opportunity score,
// each already scaled to [0,100] before weighting.
type BaseComponents struct {
	Confidence    float64 `json:"confidence"`
	Technical     float64 `json:"technical"`
	BiasAlignment float64 `json:"bias_alignment"`
	Liquidity     float64 `json:"liquidity"`
	Stability     float64 `json:"stability"` // inverse volatility
}

// OpportunityScore is the final ranked output for one instrument.
type OpportunityScore struct {
	Symbol      string          `json:"symbol"`
	Sector      string          `json:"sector"`
	Score       float64         `json:"score"` // [0,100] after clamping
	Base        BaseComponents  `json:"base"`
	Adjustments []Adjustment    `json:"adjustments,omitempty"`
	Regulatory  bool            `json:"regulatory"` // regulatory penalty applied
	SectorRisk  SectorRiskLevel `json:"sector_risk"`
}

// HasAdjustment reports whether an adjustment with the given reason was applied.
func (o OpportunityScore) HasAdjustment(reason ReasonCode) bool {
	for _, a := range o.Adjustments {
		if a.Reason == reason {
			return true
		}
	}
	return false
}
