package scrape

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const (
	// DefaultTimeout bounds one page fetch.
	DefaultTimeout = 20 * time.Second
	// DefaultUserAgent identifies the crawler to school sites.
	DefaultUserAgent = "Mozilla/5.0 (compatible; SchoolsBot/1.0)"
	// DefaultMaxBodyBytes caps how much of a page is read.
	DefaultMaxBodyBytes = 4 << 20
)

// LocalOptions configures a LocalScraper.
type LocalOptions struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
}

// LocalScraper fetches HTML via net/http with a single GET and no retries.
type LocalScraper struct {
	client *http.Client
	opts   LocalOptions
}

// NewLocalScraper creates a LocalScraper, filling unset options with defaults.
func NewLocalScraper(opts LocalOptions) *LocalScraper {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &LocalScraper{
		opts: opts,
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

func (l *LocalScraper) Name() string { return "local_http" }

// Scrape fetches targetURL and returns its visible text. Network errors,
// non-2xx statuses and anti-bot interstitials return a *SkipError.
func (l *LocalScraper) Scrape(ctx context.Context, targetURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, &SkipError{URL: targetURL, Reason: "invalid request", Err: err}
	}
	req.Header.Set("User-Agent", l.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &SkipError{URL: targetURL, Reason: "fetch failed", Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.opts.MaxBodyBytes))
	if err != nil {
		return nil, &SkipError{URL: targetURL, StatusCode: resp.StatusCode, Reason: "read body", Err: err}
	}

	if blocked, kind := DetectBlock(resp, body); blocked {
		return nil, &SkipError{URL: targetURL, StatusCode: resp.StatusCode, Reason: "blocked by " + string(kind)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &SkipError{URL: targetURL, StatusCode: resp.StatusCode, Reason: "unexpected status"}
	}

	title, text, err := CleanHTML(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: clean %s", targetURL)
	}

	return &Page{
		URL:        targetURL,
		Title:      title,
		Text:       text,
		StatusCode: resp.StatusCode,
	}, nil
}
