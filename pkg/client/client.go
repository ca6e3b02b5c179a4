// Package client is a small Go client for the verifier's HTTP API.
package client

import (
	"net/http"
	"strings"
	"time"
)

type Client struct {
	addr       string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a client for the verifier at addr (e.g. "https://verifier.example").
func New(addr string, opts ...Option) *Client {
	c := &Client{
		addr:       strings.TrimSuffix(addr, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) endpoint(path string) string {
	return c.addr + path
}
