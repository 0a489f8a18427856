package newswire

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantoak/nightscan/internal/contracts"
)

const listingFixture = `
<html><body>
<table class="announcements">
  <tr class="announcement">
    <td class="date">28 Aug 2026 07:00</td>
    <td class="category">RNS Regulatory</td>
    <td class="headline"><a href="#">Holding(s) in Company</a></td>
  </tr>
  <tr class="announcement">
    <td class="date">27 Aug 2026 09:30</td>
    <td class="category">Company News</td>
    <td class="headline"><a href="#">Trading Update ahead of H2</a></td>
  </tr>
  <tr class="announcement">
    <td class="date">01 Jan 2020</td>
    <td class="category">Company News</td>
    <td class="headline"><a href="#">Old announcement</a></td>
  </tr>
  <tr class="announcement">
    <td class="date">26 Aug 2026 12:00</td>
    <td class="category">Company News</td>
    <td class="headline"><a href="#">New store openings planned</a></td>
  </tr>
</table>
</body></html>`

func TestParseAnnouncements(t *testing.T) {
	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	items, err := parseAnnouncements("TSCO.L", strings.NewReader(listingFixture), since)
	require.NoError(t, err)

	require.Len(t, items, 3, "items before the lookback must be dropped")
	assert.Equal(t, contracts.DocRegulatoryDisclosure, items[0].Type)
	assert.Equal(t, contracts.DocEarnings, items[1].Type)
	assert.Equal(t, contracts.DocRoutineNews, items[2].Type)
	assert.Equal(t, "TSCO.L", items[0].Symbol)
	assert.Equal(t, time.Date(2026, 8, 28, 7, 0, 0, 0, time.UTC), items[0].PublishedAt)
}

func TestParseAnnouncements_EmptyPage(t *testing.T) {
	items, err := parseAnnouncements("TSCO.L", strings.NewReader("<html><body></body></html>"), time.Time{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMapCategory(t *testing.T) {
	tests := []struct {
		name     string
		category string
		headline string
		want     contracts.DocType
	}{
		{"regulatory tag", "RNS Regulatory", "Holding(s) in Company", contracts.DocRegulatoryDisclosure},
		{"results tag", "Results", "Full Year Results", contracts.DocEarnings},
		{"profit warning headline", "Company News", "Profit warning issued", contracts.DocRegulatoryDisclosure},
		{"trading update headline", "Company News", "Q3 Trading Update", contracts.DocEarnings},
		{"routine", "Company News", "New partnership announced", contracts.DocRoutineNews},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapCategory(tt.category, tt.headline))
		})
	}
}
