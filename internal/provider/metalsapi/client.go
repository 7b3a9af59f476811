package metalsapi

import (
	"net/http"
	"net/url"
)

const (
	// Name identifies the provider in logs and errors.
	Name    = "Metals-API"
	baseURL = "https://metals-api.com"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=metalsapi_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the Metals-API latest rates endpoint.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	header     http.Header
	// query carries access_key plus the fixed base/symbols parameters.
	query url.Values
}

// Option is a configuration option for the Metals-API client.
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

// New creates a new Metals-API client.
func New(key string, options ...Option) *Client {
	var client = &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
	}
	if key != "" {
		// https://metals-api.com/documentation authenticates with a query parameter.
		client.query.Set("access_key", key)
	}
	client.query.Set("base", "USD")
	client.query.Set("symbols", "XAU")
	for _, option := range options {
		option(client)
	}
	return client
}

func (c *Client) Name() string { return Name }
