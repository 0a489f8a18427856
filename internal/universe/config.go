package universe

// Config is the full universe + strategy configuration, loaded once at
// orchestrator start and never hot-reloaded mid-cycle.
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Sectors   []Sector  `yaml:"sectors" json:"sectors"`
	Screening Screening `yaml:"screening" json:"screening"`
	Ensemble  Ensemble  `yaml:"ensemble" json:"ensemble"`
	Scoring   Scoring   `yaml:"scoring" json:"scoring"`
	Regime    Regime    `yaml:"regime" json:"regime"`
	Beta      Beta      `yaml:"beta" json:"beta"`
}

// Meta identifies the strategy file.
type Meta struct {
	StrategyID  string `yaml:"strategy_id" json:"strategy_id"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
}

// Sector maps a sector name to its symbols and weight multiplier.
type Sector struct {
	Name    string   `yaml:"name" json:"name"`
	Weight  float64  `yaml:"weight" json:"weight"` // sector score multiplier
	Symbols []string `yaml:"symbols" json:"symbols"`
}

// Screening holds the validation gate thresholds.
type Screening struct {
	MinPrice        float64 `yaml:"min_price" json:"min_price"`
	MaxPrice        float64 `yaml:"max_price" json:"max_price"`
	MinAvgVolume    float64 `yaml:"min_avg_volume" json:"min_avg_volume"`
	MinObservations int     `yaml:"min_observations" json:"min_observations"`
	MinSpanDays     int     `yaml:"min_span_days" json:"min_span_days"`
	VolumeWindow    int     `yaml:"volume_window" json:"volume_window"`
}

// Ensemble holds mixing weights (percent) and direction thresholds.
type Ensemble struct {
	SequenceModelPct float64 `yaml:"sequence_model_pct" json:"sequence_model_pct"`
	TrendPct         float64 `yaml:"trend_pct" json:"trend_pct"`
	TechnicalPct     float64 `yaml:"technical_pct" json:"technical_pct"`
	SentimentPct     float64 `yaml:"sentiment_pct" json:"sentiment_pct"`
	BuyThreshold     float64 `yaml:"buy_threshold" json:"buy_threshold"`
	SellThreshold    float64 `yaml:"sell_threshold" json:"sell_threshold"`
}

// Scoring holds the opportunity scorer's adjustment parameters. The exact
// thresholds are deliberately configuration, not constants.
type Scoring struct {
	RegulatoryPenalty       float64 `yaml:"regulatory_penalty" json:"regulatory_penalty"` // fraction, e.g. 0.35
	RegulatoryLookbackHours int     `yaml:"regulatory_lookback_hours" json:"regulatory_lookback_hours"`
	SectorRiskMinFlagged    int     `yaml:"sector_risk_min_flagged" json:"sector_risk_min_flagged"`
	SectorRiskPenalty       float64 `yaml:"sector_risk_penalty" json:"sector_risk_penalty"` // fraction
}

// Regime lists the benchmark indices for the market-bias monitor.
type Regime struct {
	Indices []string `yaml:"indices" json:"indices"`
}

// Beta holds the macro regression parameters and factor list.
type Beta struct {
	LookbackDays    int      `yaml:"lookback_days" json:"lookback_days"`
	MinObservations int      `yaml:"min_observations" json:"min_observations"`
	Factors         []Factor `yaml:"factors" json:"factors"`
}

// Factor is one benchmark regression factor.
type Factor struct {
	Name   string `yaml:"name" json:"name"`
	Symbol string `yaml:"symbol" json:"symbol"`
}

// Symbols returns every instrument symbol in the universe, in file order.
func (c *Config) Symbols() []string {
	var out []string
	for _, s := range c.Sectors {
		out = append(out, s.Symbols...)
	}
	return out
}

// SectorOf returns the sector name for a symbol, or "" when unknown.
func (c *Config) SectorOf(symbol string) string {
	for _, s := range c.Sectors {
		for _, sym := range s.Symbols {
			if sym == symbol {
				return s.Name
			}
		}
	}
	return ""
}

// SectorWeight returns the configured multiplier for a sector, defaulting to 1.
func (c *Config) SectorWeight(sector string) float64 {
	for _, s := range c.Sectors {
		if s.Name == sector {
			return s.Weight
		}
	}
	return 1.0
}

// Default returns the documented default configuration. The defaults mirror
// the shipped config/universe.yaml and are not assumed to be tuned.
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "uk_overnight_v1",
			Version:    "1",
		},
		Screening: Screening{
			MinPrice:        0.50,
			MaxPrice:        500.00,
			MinAvgVolume:    100_000,
			MinObservations: 20,
			MinSpanDays:     28,
			VolumeWindow:    20,
		},
		Ensemble: Ensemble{
			SequenceModelPct: 45,
			TrendPct:         25,
			TechnicalPct:     15,
			SentimentPct:     15,
			BuyThreshold:     60,
			SellThreshold:    40,
		},
		Scoring: Scoring{
			RegulatoryPenalty:       0.35,
			RegulatoryLookbackHours: 48,
			SectorRiskMinFlagged:    2,
			SectorRiskPenalty:       0.15,
		},
		Regime: Regime{
			Indices: []string{"^FTSE", "^FTMC"},
		},
		Beta: Beta{
			LookbackDays:    90,
			MinObservations: 40,
			Factors: []Factor{
				{Name: "ftse100", Symbol: "^FTSE"},
				{Name: "commodities", Symbol: "CMDY.L"},
			},
		},
	}
}
