package iex

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"tickerbot/internal/httpx"
	"tickerbot/internal/logger"
)

const baseURL = "https://cloud.iexapis.com/stable"

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=iex_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the IEX Cloud API.
type Client struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient is the HTTP client.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query contains additional query parameters to be sent with each request.
	query url.Values
	log   *zap.SugaredLogger
}

// Option is a configuration option for the IEX client.
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

func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a new IEX Cloud client. The token is sent as the token query
// parameter on every request.
func New(token string, options ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
		log:        logger.Nop(),
	}
	if token != "" {
		c.query.Set("token", token)
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *Client) Name() string { return "iex" }

func (c *Client) endpoint(path string, extra url.Values) string {
	q := url.Values{}
	for k, vs := range c.query {
		q[k] = append([]string(nil), vs...)
	}
	for k, vs := range extra {
		q[k] = append(q[k], vs...)
	}
	return fmt.Sprintf("%s%s?%s", c.baseURL, path, q.Encode())
}

func (c *Client) get(ctx context.Context, path string, extra url.Values, out any) error {
	c.log.Debugw("iex request", "path", path)
	if err := httpx.GetJSON(ctx, c.httpClient, c.endpoint(path, extra), c.header, out); err != nil {
		return fmt.Errorf("iex %s: %w", path, err)
	}
	return nil
}
