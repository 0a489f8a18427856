package contracts

import (
	"encoding/json"
	"math"
)

// BetaRecord is the OLS regression slope of an instrument's daily returns
// against one benchmark factor. Beta is NaN when the aligned observation
// count fell below the configured minimum.
type BetaRecord struct {
	Symbol       string  `json:"symbol"`
	Factor       string  `json:"factor"`
	Beta         float64 `json:"beta"`
	Observations int     `json:"observations"`
	LookbackDays int     `json:"lookback_days"`
}

// Valid reports whether the beta was estimated from enough observations.
func (b BetaRecord) Valid() bool {
	return !math.IsNaN(b.Beta)
}

type betaRecordJSON struct {
	Symbol       string   `json:"symbol"`
	Factor       string   `json:"factor"`
	Beta         *float64 `json:"beta"`
	Observations int      `json:"observations"`
	LookbackDays int      `json:"lookback_days"`
}

// MarshalJSON encodes a NaN beta as null; encoding/json rejects NaN floats
// and the report artifacts must always serialize.
func (b BetaRecord) MarshalJSON() ([]byte, error) {
	out := betaRecordJSON{
		Symbol:       b.Symbol,
		Factor:       b.Factor,
		Observations: b.Observations,
		LookbackDays: b.LookbackDays,
	}
	if b.Valid() {
		out.Beta = &b.Beta
	}
	return json.Marshal(out)
}

// UnmarshalJSON maps a null beta back to NaN.
func (b *BetaRecord) UnmarshalJSON(data []byte) error {
	var in betaRecordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	b.Symbol = in.Symbol
	b.Factor = in.Factor
	b.Observations = in.Observations
	b.LookbackDays = in.LookbackDays
	if in.Beta != nil {
		b.Beta = *in.Beta
	} else {
		b.Beta = math.NaN()
	}
	return nil
}
