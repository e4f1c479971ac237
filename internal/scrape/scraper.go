// Package scrape fetches a source page and reduces it to plain text for the
// extraction prompt.
package scrape

import (
	"context"
	"errors"
	"fmt"
)

// ErrSkip marks a source that could not be fetched for this run. Callers
// leave any stored record for the source untouched.
var ErrSkip = errors.New("scrape: skip source")

// SkipError describes why a source was skipped. It matches ErrSkip.
type SkipError struct {
	URL        string
	StatusCode int
	Reason     string
	Err        error
}

func (e *SkipError) Error() string {
	msg := fmt.Sprintf("scrape: skip %s: %s", e.URL, e.Reason)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SkipError) Is(target error) bool { return target == ErrSkip }

func (e *SkipError) Unwrap() error { return e.Err }

// Page is a fetched and cleaned source page.
type Page struct {
	URL        string
	Title      string
	Text       string
	StatusCode int
}

// Scraper fetches a single URL and returns its cleaned text.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Page, error)
	Name() string
}
