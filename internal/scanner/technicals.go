package scanner

import (
	"math"

	"github.com/quantoak/nightscan/internal/contracts"
)

// ComputeTechnicals derives the indicator snapshot for a price history.
// Indicators that need more bars than the series has are reported as zero.
func ComputeTechnicals(history contracts.Series) contracts.Technicals {
	closes := history.Closes()
	return contracts.Technicals{
		MA20:       movingAverage(closes, 20),
		MA50:       movingAverage(closes, 50),
		RSI14:      relativeStrength(closes, 14),
		Volatility: stddev(history.DailyReturns()),
	}
}

// movingAverage returns the simple moving average of the last n closes,
// or 0 when the series is shorter than n.
func movingAverage(closes []float64, n int) float64 {
	if len(closes) < n || n == 0 {
		return 0
	}
	var sum float64
	for _, c := range closes[len(closes)-n:] {
		sum += c
	}
	return sum / float64(n)
}

// relativeStrength returns the n-period RSI using average gains and losses
// over the last n transitions. 0 when there is not enough history.
func relativeStrength(closes []float64, n int) float64 {
	if len(closes) < n+1 {
		return 0
	}

	var gains, losses float64
	window := closes[len(closes)-n-1:]
	for i := 1; i < len(window); i++ {
		delta := window[i] - window[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}

	if losses == 0 {
		if gains == 0 {
			return 50
		}
		return 100
	}

	rs := (gains / float64(n)) / (losses / float64(n))
	return 100 - 100/(1+rs)
}

// stddev returns the population standard deviation of a return series.
func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))

	return math.Sqrt(variance)
}
