package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/artpar/querybench/internal/core"
)

// Client sends panel requests over HTTP.
type Client struct {
	httpClient *http.Client
	config     Config
}

// Config holds HTTP client configuration.
type Config struct {
	// Timeout bounds a whole round trip. Zero means no timeout.
	Timeout        time.Duration
	FollowRedirect bool
}

// Option is a function that configures the Client.
type Option func(*Client)

// NewClient creates a new HTTP client with the given options.
// Unlike most clients it applies no timeout unless asked to.
func NewClient(opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{},
		config: Config{
			FollowRedirect: true,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.config.Timeout = timeout
		c.httpClient.Timeout = timeout
	}
}

// WithTransport sets a custom HTTP transport.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = transport
	}
}

// WithNoRedirects disables automatic redirect following.
func WithNoRedirects() Option {
	return func(c *Client) {
		c.config.FollowRedirect = false
		c.httpClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
}

// Config returns the client configuration.
func (c *Client) Config() Config {
	return c.config
}

// Send executes an HTTP request and returns the fully read response.
// Any status code is a successful send; only transport errors are returned.
func (c *Client) Send(ctx context.Context, req *core.Request) (*core.Response, error) {
	startTime := time.Now()

	httpReq, err := c.toHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	endTime := time.Now()

	return c.fromHTTPResponse(httpResp, bodyBytes, startTime, endTime), nil
}

func (c *Client) toHTTPRequest(ctx context.Context, req *core.Request) (*http.Request, error) {
	var bodyReader io.Reader
	if !req.Body().IsEmpty() {
		bodyReader = req.Body().Reader()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method().String(), req.URL(), bodyReader)
	if err != nil {
		return nil, err
	}

	for _, key := range req.Headers().Keys() {
		for _, value := range req.Headers().GetAll(key) {
			httpReq.Header.Add(key, value)
		}
	}

	return httpReq, nil
}

func (c *Client) fromHTTPResponse(httpResp *http.Response, bodyBytes []byte, startTime, endTime time.Time) *core.Response {
	status := core.NewStatus(httpResp.StatusCode)

	headers := core.NewHeaders()
	for key, values := range httpResp.Header {
		for _, value := range values {
			headers.Add(key, value)
		}
	}

	var body core.Body
	if len(bodyBytes) > 0 {
		body = core.NewRawBody(bodyBytes, httpResp.Header.Get("Content-Type"))
	} else {
		body = core.NewEmptyBody()
	}

	timing := core.TimingInfo{
		StartTime: startTime,
		EndTime:   endTime,
		Total:     endTime.Sub(startTime),
	}

	return core.NewResponse(status).
		WithHeaders(headers).
		WithBody(body).
		WithTiming(timing)
}
