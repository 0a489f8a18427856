package contracts

import "time"

// Bar is one canonical daily OHLCV observation. Both providers are normalized
// to this schema before anything downstream sees the data.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Series is a canonical price history, newest bar last.
type Series struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// Len returns the number of bars.
func (s Series) Len() int {
	return len(s.Bars)
}

// LastClose returns the most recent close, or 0 for an empty series.
func (s Series) LastClose() float64 {
	if len(s.Bars) == 0 {
		return 0
	}
	return s.Bars[len(s.Bars)-1].Close
}

// SpanDays returns the calendar span covered by the series.
func (s Series) SpanDays() int {
	if len(s.Bars) < 2 {
		return 0
	}
	first := s.Bars[0].Date
	last := s.Bars[len(s.Bars)-1].Date
	return int(last.Sub(first).Hours() / 24)
}

// Closes returns the close column, oldest first.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// DailyReturns returns simple day-over-day returns, oldest first. The result
// has Len()-1 entries; bars with a zero prior close are skipped.
func (s Series) DailyReturns() []float64 {
	if len(s.Bars) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(s.Bars)-1)
	for i := 1; i < len(s.Bars); i++ {
		prev := s.Bars[i-1].Close
		if prev == 0 {
			continue
		}
		returns = append(returns, (s.Bars[i].Close-prev)/prev)
	}
	return returns
}

// AvgVolume returns the trailing average daily volume over the last n bars
// (or the whole series when shorter).
func (s Series) AvgVolume(n int) float64 {
	if len(s.Bars) == 0 {
		return 0
	}
	if n > len(s.Bars) {
		n = len(s.Bars)
	}
	var sum int64
	for _, b := range s.Bars[len(s.Bars)-n:] {
		sum += b.Volume
	}
	return float64(sum) / float64(n)
}

// Technicals holds indicator values computed once per instrument per cycle.
type Technicals struct {
	MA20       float64 `json:"ma20"`
	MA50       float64 `json:"ma50"`
	RSI14      float64 `json:"rsi14"`
	Volatility float64 `json:"volatility"` // stddev of daily returns
}

// InstrumentRecord is the per-cycle snapshot of one instrument. Immutable once
// computed; discarded after the cycle unless cached.
type InstrumentRecord struct {
	Symbol     string     `json:"symbol"`
	Sector     string     `json:"sector"`
	History    Series     `json:"history"`
	AvgVolume  float64    `json:"avg_volume"`
	Technicals Technicals `json:"technicals"`
	Provider   string     `json:"provider"` // which provider served the history
	FetchedAt  time.Time  `json:"fetched_at"`
}
