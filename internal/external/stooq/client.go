package stooq

import (
	"github.com/quantoak/nightscan/pkg/httputil"
	"github.com/quantoak/nightscan/pkg/logger"
)

// Client handles communication with the Stooq CSV download endpoint, the
// secondary market-data provider used when Yahoo fails.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Stooq client.
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
	}
}

// Name identifies the provider in cache entries and reports.
func (c *Client) Name() string {
	return "stooq"
}
