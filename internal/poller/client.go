package poller

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxResponseBodySize caps how much of a response body is kept.
const maxResponseBodySize = 1 << 20

const (
	defaultMaxIdleConns        = 16
	defaultMaxIdleConnsPerHost = 4
	defaultMaxConnsPerHost     = 4
	defaultIdleConnTimeout     = 60 * time.Second
)

// DefaultUserAgent identifies probe requests in upstream logs.
const DefaultUserAgent = "legado-probe/1.0"

// Response is the outcome of one [Client.Fetch].
type Response struct {
	// Body holds at most the first megabyte of the response.
	Body []byte
	// StatusCode is zero when no response arrived.
	StatusCode int
	Latency    time.Duration
	// Error is set when the request could not be made or read. A completed
	// request with an error status leaves it nil.
	Error error
}

// Client makes probe requests over a small pooled transport. Timeouts are
// applied per request.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a [Client] with keep-alives enabled.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
		userAgent: DefaultUserAgent,
	}
}

// Fetch sends one request and never returns a Go error: failures are
// reported in [Response.Error]. An empty method means GET.
func (c *Client) Fetch(ctx context.Context, method, url string, headers map[string]string, timeout time.Duration) Response {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if method == "" {
		method = http.MethodGet
	}

	start := time.Now()
	fail := func(status int, err error) Response {
		return Response{StatusCode: status, Latency: time.Since(start), Error: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return fail(0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, fmt.Errorf("request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return fail(resp.StatusCode, fmt.Errorf("failed to read response body: %w", err))
	}

	return Response{
		Body:       body,
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}
}

// Close drops idle pooled connections. The client stays usable.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
