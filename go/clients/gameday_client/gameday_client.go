package gameday_client

import (
	"time"

	"github.com/mcdev12/gameday/go/clients"
)

// Client is the one-shot snapshot fetcher for the prediction API
type Client struct {
	*clients.BaseClient
	predictPath string
}

// Option configures a Client
type Option func(*Client)

// WithPredictPath selects the submission endpoint. The API accepts both
// /games/predict and /predictions.
func WithPredictPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.predictPath = path
		}
	}
}

// WithTimeout overrides the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.SetTimeout(timeout)
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := &Client{
		BaseClient:  clients.NewBaseClient(baseURL),
		predictPath: PredictEndpoint,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}
