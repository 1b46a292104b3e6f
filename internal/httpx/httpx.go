package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	apperrors "tickerbot/internal/errors"
)

// DefaultTimeout bounds every outbound call when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Doer is the minimal HTTP client used by the backends.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a small wrapper around http.Client with sane defaults.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	Headers   map[string]string
}

func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          50,
		MaxIdleConnsPerHost:   10,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   3 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &Client{HTTP: &http.Client{Timeout: timeout, Transport: transport}, UserAgent: "tickerbot/1.0"}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, v := range c.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	return c.HTTP.Do(req)
}

// Get performs a GET and returns the body of a 200 response. Transport
// failures, timeouts and non-200 statuses are all ErrDataSourceUnavailable.
func Get(ctx context.Context, c Doer, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	res, err := c.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDataSourceUnavailable, fmt.Errorf("performing request: %w", err))
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, apperrors.Wrap(apperrors.ErrDataSourceUnavailable, fmt.Errorf("GET %s -> %d: %s", req.URL.Path, res.StatusCode, string(b)))
	}

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDataSourceUnavailable, fmt.Errorf("reading body: %w", err))
	}
	return b, nil
}

// GetJSON performs Get and decodes the body into out.
func GetJSON(ctx context.Context, c Doer, url string, header http.Header, out any) error {
	b, err := Get(ctx, c, url, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return apperrors.Wrap(apperrors.ErrDataSourceUnavailable, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}
