package newswire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/quantoak/nightscan/internal/contracts"
)

// FetchAnnouncements fetches recent announcements for a symbol and normalizes
// them to canonical news items. Items older than the lookback are dropped.
func (c *Client) FetchAnnouncements(ctx context.Context, symbol string, lookback time.Duration) ([]contracts.NewsItem, error) {
	fullURL := fmt.Sprintf("%s/company/%s/announcements", c.baseURL, strings.TrimSuffix(symbol, ".L"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	items, err := parseAnnouncements(symbol, resp.Body, time.Now().UTC().Add(-lookback))
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"items":  len(items),
	}).Debug("Fetched announcements")

	return items, nil
}

// parseAnnouncements extracts announcement rows from the listing HTML.
// Expected row shape: td.date, td.category, td.headline.
func parseAnnouncements(symbol string, body io.Reader, since time.Time) ([]contracts.NewsItem, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse announcements HTML: %w", err)
	}

	var items []contracts.NewsItem
	doc.Find("table.announcements tr.announcement").Each(func(_ int, row *goquery.Selection) {
		dateText := strings.TrimSpace(row.Find("td.date").Text())
		category := strings.TrimSpace(row.Find("td.category").Text())
		headline := strings.TrimSpace(row.Find("td.headline").Text())

		if headline == "" {
			return
		}

		publishedAt, err := parseAnnouncementTime(dateText)
		if err != nil {
			return
		}
		if publishedAt.Before(since) {
			return
		}

		items = append(items, contracts.NewsItem{
			Symbol:      symbol,
			Headline:    headline,
			Type:        mapCategory(category, headline),
			PublishedAt: publishedAt,
		})
	})

	return items, nil
}

// parseAnnouncementTime accepts the listing's two date layouts.
func parseAnnouncementTime(text string) (time.Time, error) {
	layouts := []string{
		"02 Jan 2006 15:04",
		"02 Jan 2006",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, text); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized announcement date: %q", text)
}

// mapCategory normalizes the feed's category tag to the canonical document
// type. Regulatory filings outrank earnings notices, which outrank routine
// coverage.
func mapCategory(category, headline string) contracts.DocType {
	cat := strings.ToLower(category)
	head := strings.ToLower(headline)

	switch {
	case strings.Contains(cat, "regulatory"), strings.Contains(cat, "rns"):
		return contracts.DocRegulatoryDisclosure
	case strings.Contains(cat, "results"), strings.Contains(cat, "earnings"):
		return contracts.DocEarnings
	}

	switch {
	case strings.Contains(head, "profit warning"),
		strings.Contains(head, "investigation"),
		strings.Contains(head, "suspension"):
		return contracts.DocRegulatoryDisclosure
	case strings.Contains(head, "results"),
		strings.Contains(head, "trading update"),
		strings.Contains(head, "interim report"):
		return contracts.DocEarnings
	default:
		return contracts.DocRoutineNews
	}
}
