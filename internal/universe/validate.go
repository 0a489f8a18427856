package universe

import (
	"fmt"
	"math"
)

// ValidationError is a configuration constraint violation. The pipeline does
// not start with an invalid strategy file.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints on a loaded Config.
func Validate(cfg *Config) error {
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	if len(cfg.Sectors) == 0 {
		return ValidationError{"sectors", "at least one sector required"}
	}

	seen := make(map[string]string)
	for i, s := range cfg.Sectors {
		field := fmt.Sprintf("sectors[%d]", i)
		if s.Name == "" {
			return ValidationError{field + ".name", "required"}
		}
		if s.Weight <= 0 || s.Weight > 3.0 {
			return ValidationError{field + ".weight", "must be in (0, 3.0]"}
		}
		if len(s.Symbols) == 0 {
			return ValidationError{field + ".symbols", "at least one symbol required"}
		}
		for _, sym := range s.Symbols {
			if prev, dup := seen[sym]; dup {
				return ValidationError{field + ".symbols", fmt.Sprintf("symbol %s already in sector %s", sym, prev)}
			}
			seen[sym] = s.Name
		}
	}

	if cfg.Screening.MinPrice <= 0 || cfg.Screening.MaxPrice <= cfg.Screening.MinPrice {
		return ValidationError{"screening", "require 0 < min_price < max_price"}
	}
	if cfg.Screening.MinAvgVolume <= 0 {
		return ValidationError{"screening.min_avg_volume", "must be > 0"}
	}
	if cfg.Screening.MinObservations < 2 {
		return ValidationError{"screening.min_observations", "must be >= 2"}
	}

	weightSum := cfg.Ensemble.SequenceModelPct + cfg.Ensemble.TrendPct +
		cfg.Ensemble.TechnicalPct + cfg.Ensemble.SentimentPct
	if math.Abs(weightSum-100) > 0.01 {
		return ValidationError{"ensemble", fmt.Sprintf("weights must sum to 100, got %.2f", weightSum)}
	}
	if cfg.Ensemble.SellThreshold >= cfg.Ensemble.BuyThreshold {
		return ValidationError{"ensemble", "sell_threshold must be below buy_threshold"}
	}

	if cfg.Scoring.RegulatoryPenalty < 0 || cfg.Scoring.RegulatoryPenalty > 1 {
		return ValidationError{"scoring.regulatory_penalty", "must be in [0,1]"}
	}
	if cfg.Scoring.SectorRiskMinFlagged < 1 {
		return ValidationError{"scoring.sector_risk_min_flagged", "must be >= 1"}
	}

	if len(cfg.Regime.Indices) == 0 {
		return ValidationError{"regime.indices", "at least one benchmark index required"}
	}

	if cfg.Beta.MinObservations < 2 {
		return ValidationError{"beta.min_observations", "must be >= 2"}
	}
	if cfg.Beta.LookbackDays < cfg.Beta.MinObservations {
		return ValidationError{"beta.lookback_days", "must cover min_observations"}
	}

	return nil
}
