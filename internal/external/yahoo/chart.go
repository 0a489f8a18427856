package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quantoak/nightscan/internal/contracts"
)

// chartResponse mirrors the relevant slice of the v8 chart payload.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDaily fetches daily bars for a symbol covering the last windowDays.
// All Yahoo chart API calls go through this function.
func (c *Client) FetchDaily(ctx context.Context, symbol string, windowDays int) (contracts.Series, error) {
	rangeParam := rangeForWindow(windowDays)
	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d&events=div%%2Csplit",
		c.baseURL, symbol, rangeParam)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return contracts.Series{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return contracts.Series{}, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return contracts.Series{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return contracts.Series{}, fmt.Errorf("read response body: %w", err)
	}

	series, err := parseChart(symbol, body)
	if err != nil {
		return contracts.Series{}, err
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"bars":   series.Len(),
	}).Debug("Fetched daily bars from yahoo")

	return series, nil
}

// parseChart converts the chart payload into a canonical series, dropping
// bars with missing closes (suspended days appear as nulls).
func parseChart(symbol string, body []byte) (contracts.Series, error) {
	var payload chartResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return contracts.Series{}, fmt.Errorf("decode chart response: %w", err)
	}

	if payload.Chart.Error != nil {
		return contracts.Series{}, fmt.Errorf("chart API error: %s - %s",
			payload.Chart.Error.Code, payload.Chart.Error.Description)
	}

	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return contracts.Series{}, fmt.Errorf("empty chart result for %s", symbol)
	}

	result := payload.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	series := contracts.Series{Symbol: symbol}
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}

		bar := contracts.Bar{
			Date:  time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Close: *quote.Close[i],
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			bar.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			bar.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			bar.Low = *quote.Low[i]
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
		}

		series.Bars = append(series.Bars, bar)
	}

	if len(series.Bars) == 0 {
		return contracts.Series{}, fmt.Errorf("no usable bars for %s", symbol)
	}

	return series, nil
}

// rangeForWindow maps a day window onto the chart API's range buckets.
func rangeForWindow(windowDays int) string {
	switch {
	case windowDays <= 30:
		return "1mo"
	case windowDays <= 90:
		return "3mo"
	case windowDays <= 180:
		return "6mo"
	case windowDays <= 365:
		return "1y"
	default:
		return "2y"
	}
}
