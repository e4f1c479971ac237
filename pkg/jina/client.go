// Package jina is a client for the Jina reader, which renders a URL on the
// reader's side and returns its text content.
package jina

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/schools-cli/internal/resilience"
)

const (
	// DefaultBaseURL is the public reader endpoint.
	DefaultBaseURL = "https://r.jina.ai"

	defaultTimeout = 60 * time.Second
	maxErrorBody   = 512

	// Requests per minute the reader allows without and with a key.
	anonymousRPM = 20
	keyedRPM     = 200
)

// Client reads pages through the reader service.
type Client interface {
	Read(ctx context.Context, targetURL string) (*ReadResponse, error)
}

// ReadResponse is the reader's JSON envelope.
type ReadResponse struct {
	Code int      `json:"code"`
	Data ReadData `json:"data"`
}

// ReadData is the rendered page.
type ReadData struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the reader endpoint.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRetry overrides the retry policy for transient failures.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

// WithRateLimit overrides the client-side request limit. A nil limiter
// disables it.
func WithRateLimit(l *rate.Limiter) Option {
	return func(c *httpClient) {
		c.limiter = l
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
	limiter *rate.Limiter
}

// NewClient creates a reader client. The API key is optional; without one
// requests are held to the service's anonymous rate.
func NewClient(apiKey string, opts ...Option) Client {
	rpm := anonymousRPM
	if apiKey != "" {
		rpm = keyedRPM
	}
	c := &httpClient{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 5),
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		retry: resilience.RetryConfig{
			MaxAttempts: 3,
			Backoff:     time.Second,
			OnRetry:     resilience.RetryLogger("jina", "read"),
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Read(ctx context.Context, targetURL string) (*ReadResponse, error) {
	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*ReadResponse, error) {
		return c.read(ctx, targetURL)
	})
}

func (c *httpClient) read(ctx context.Context, targetURL string) (*ReadResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "jina: rate limit")
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "jina: create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Return-Format", "text")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "jina: send request"), 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "jina: read response")
	}

	if resp.StatusCode != http.StatusOK {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		statusErr := eris.Errorf("jina: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}

	var result ReadResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "jina: unmarshal response")
	}
	return &result, nil
}
