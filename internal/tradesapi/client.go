package tradesapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=tradesapi_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TradesAPIClient is a client for the market-data backend's trades endpoints.
type TradesAPIClient struct {
	// baseURL is the backend URL without a trailing slash.
	baseURL string
	// httpClient is the HTTP httpClient.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
}

// TradesAPIClientOption is a configuration option for the trades API client.
type TradesAPIClientOption func(*TradesAPIClient)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) TradesAPIClientOption {
	return func(c *TradesAPIClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) TradesAPIClientOption {
	return func(c *TradesAPIClient) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) TradesAPIClientOption {
	return func(c *TradesAPIClient) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewTradesAPIClient creates a new trades API client for the backend at baseURL.
func NewTradesAPIClient(baseURL string, options ...TradesAPIClientOption) (*TradesAPIClient, error) {
	var tradesAPIClient = &TradesAPIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	for _, option := range options {
		option(tradesAPIClient)
	}
	if tradesAPIClient.baseURL == "" {
		return nil, fmt.Errorf("tradesapi: empty base URL")
	}
	u, err := url.Parse(tradesAPIClient.baseURL)
	if err != nil {
		return nil, fmt.Errorf("tradesapi: parsing base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("tradesapi: unsupported base URL scheme %q", u.Scheme)
	}
	return tradesAPIClient, nil
}

// BaseURL returns the backend URL requests are sent to.
func (c *TradesAPIClient) BaseURL() string { return c.baseURL }
