package yahoo

import (
	"github.com/quantoak/nightscan/pkg/httputil"
	"github.com/quantoak/nightscan/pkg/logger"
)

// Client handles communication with the Yahoo Finance chart API, the primary
// market-data provider.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Yahoo Finance client.
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
	}
}

// Name identifies the provider in cache entries and reports.
func (c *Client) Name() string {
	return "yahoo"
}
