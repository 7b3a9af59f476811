package goldapi

import (
	"net/http"
)

const (
	// Name identifies the provider in logs and errors.
	Name    = "GoldAPI"
	baseURL = "https://www.goldapi.io"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=goldapi_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the GoldAPI spot price endpoint.
type Client struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient is the HTTP client.
	httpClient HTTPClient
	// header contains headers sent with each request, including the access token.
	header http.Header
}

// Option is a configuration option for the GoldAPI client.
type Option func(*Client)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// New creates a new GoldAPI client. The key is sent as x-access-token.
func New(key string, options ...Option) *Client {
	var client = &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	if key != "" {
		client.header.Set("x-access-token", key)
	}
	for _, option := range options {
		option(client)
	}
	return client
}

func (c *Client) Name() string { return Name }
