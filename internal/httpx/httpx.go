package httpx

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// Client is a small wrapper around http.Client with sane defaults.
// It satisfies the HTTPClient interfaces of the upstream packages.
type Client struct {
	HTTP      *http.Client
	UserAgent string
}

// Options tune the transport.
type Options struct {
	Timeout time.Duration
	// InsecureSkipVerify disables TLS certificate checks. Dev only.
	InsecureSkipVerify bool
}

func New(opts Options) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
	}
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // dev toggle
	}
	return &Client{
		HTTP:      &http.Client{Timeout: opts.Timeout, Transport: transport},
		UserAgent: "goldcatalog/1.0",
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	return c.HTTP.Do(req)
}
