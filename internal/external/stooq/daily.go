package stooq

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/quantoak/nightscan/internal/contracts"
)

// FetchDaily fetches daily bars for a symbol. Stooq serves full history as
// CSV; the result is trimmed to the requested window before returning.
func (c *Client) FetchDaily(ctx context.Context, symbol string, windowDays int) (contracts.Series, error) {
	from := time.Now().UTC().AddDate(0, 0, -windowDays)

	fullURL := fmt.Sprintf("%s/q/d/l/?s=%s&d1=%s&d2=%s&i=d",
		c.baseURL, symbol,
		from.Format("20060102"),
		time.Now().UTC().Format("20060102"),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return contracts.Series{}, fmt.Errorf("create request: %w", err)
	}

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

	series, err := parseDailyCSV(symbol, string(body))
	if err != nil {
		return contracts.Series{}, err
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"bars":   series.Len(),
	}).Debug("Fetched daily bars from stooq")

	return series, nil
}

// parseDailyCSV parses the Date,Open,High,Low,Close,Volume layout. Stooq
// answers "No data" (no header) for unknown symbols.
func parseDailyCSV(symbol, body string) (contracts.Series, error) {
	body = strings.TrimSpace(body)
	if body == "" || strings.HasPrefix(strings.ToLower(body), "no data") {
		return contracts.Series{}, fmt.Errorf("no data for %s", symbol)
	}

	reader := csv.NewReader(strings.NewReader(body))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return contracts.Series{}, fmt.Errorf("parse CSV: %w", err)
	}
	if len(records) < 2 {
		return contracts.Series{}, fmt.Errorf("no data rows for %s", symbol)
	}

	series := contracts.Series{Symbol: symbol}
	for _, rec := range records[1:] { // skip header
		if len(rec) < 5 {
			continue
		}

		date, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			continue
		}

		open, _ := strconv.ParseFloat(rec[1], 64)
		high, _ := strconv.ParseFloat(rec[2], 64)
		low, _ := strconv.ParseFloat(rec[3], 64)
		closePrice, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			continue
		}

		var volume int64
		if len(rec) > 5 {
			volume, _ = strconv.ParseInt(rec[5], 10, 64)
		}

		series.Bars = append(series.Bars, contracts.Bar{
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closePrice,
			Volume: volume,
		})
	}

	if len(series.Bars) == 0 {
		return contracts.Series{}, fmt.Errorf("no usable bars for %s", symbol)
	}

	return series, nil
}
