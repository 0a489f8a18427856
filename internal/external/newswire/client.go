package newswire

import (
	"github.com/quantoak/nightscan/pkg/httputil"
	"github.com/quantoak/nightscan/pkg/logger"
)

// Client fetches company announcements and news from the newswire listing
// pages. All news/disclosure HTTP calls go through this client.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new newswire client.
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
	}
}
