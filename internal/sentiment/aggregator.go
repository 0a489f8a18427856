package sentiment

import (
	"context"
	"fmt"
	"time"

	"github.com/quantoak/nightscan/internal/contracts"
	"github.com/quantoak/nightscan/pkg/logger"
)

// NewsFeed supplies recent document items for a symbol.
type NewsFeed interface {
	FetchAnnouncements(ctx context.Context, symbol string, lookback time.Duration) ([]contracts.NewsItem, error)
}

// Aggregator computes the document-weighted sentiment for one instrument.
// Weight multipliers by document type:
//
//	routine news           1.0x
//	earnings/trading update 2.25x
//	regulatory disclosure  3.0x
type Aggregator struct {
	feed   NewsFeed
	logger *logger.Logger
}

// New creates a sentiment aggregator over a news feed.
func New(feed NewsFeed, log *logger.Logger) *Aggregator {
	return &Aggregator{
		feed:   feed,
		logger: log,
	}
}

// weightFor returns the multiplier for a document type.
func weightFor(t contracts.DocType) float64 {
	switch t {
	case contracts.DocRegulatoryDisclosure:
		return 3.0
	case contracts.DocEarnings:
		return 2.25
	default:
		return 1.0
	}
}

// ScoreSentiment fetches recent items and aggregates their per-item scores
// as a weight-weighted average. Zero items produce a neutral result with
// zero weight, never a synthesized score.
func (a *Aggregator) ScoreSentiment(ctx context.Context, symbol string, lookback time.Duration) (contracts.SentimentResult, error) {
	result := contracts.SentimentResult{Symbol: symbol}

	items, err := a.feed.FetchAnnouncements(ctx, symbol, lookback)
	if err != nil {
		return result, fmt.Errorf("fetch announcements for %s: %w", symbol, err)
	}
	if len(items) == 0 {
		return result, nil
	}

	var weightedSum, totalWeight float64
	typeWeights := make(map[contracts.DocType]float64)
	var latestRegulatory time.Time

	for _, item := range items {
		weight := weightFor(item.Type)
		weightedSum += scoreText(item.Headline) * weight
		totalWeight += weight
		typeWeights[item.Type] += weight

		if item.Type == contracts.DocRegulatoryDisclosure && item.PublishedAt.After(latestRegulatory) {
			latestRegulatory = item.PublishedAt
		}
	}

	dominant := dominantType(typeWeights)

	result.Score = weightedSum / totalWeight
	result.DocCount = len(items)
	result.DominantType = dominant
	result.WeightMultiplier = weightFor(dominant)
	result.TotalWeight = totalWeight
	result.LatestRegulatory = latestRegulatory

	a.logger.WithFields(map[string]interface{}{
		"symbol":    symbol,
		"doc_count": result.DocCount,
		"score":     result.Score,
		"dominant":  string(dominant),
	}).Debug("Aggregated sentiment")

	return result, nil
}

// dominantType picks the type carrying the most aggregate weight. Ties break
// toward the higher-impact category.
func dominantType(typeWeights map[contracts.DocType]float64) contracts.DocType {
	order := []contracts.DocType{
		contracts.DocRegulatoryDisclosure,
		contracts.DocEarnings,
		contracts.DocRoutineNews,
	}

	var best contracts.DocType
	bestWeight := 0.0
	for _, t := range order {
		if w, ok := typeWeights[t]; ok && w > bestWeight {
			best = t
			bestWeight = w
		}
	}
	return best
}
