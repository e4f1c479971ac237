package scrape

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Chain tries scrapers in order and returns the first page fetched.
type Chain struct {
	scrapers []Scraper
}

// NewChain creates a Chain. At least one scraper is expected.
func NewChain(scrapers ...Scraper) *Chain {
	return &Chain{scrapers: scrapers}
}

func (c *Chain) Name() string { return "chain" }

// Scrape returns the first successful result. When every scraper fails the
// last error is returned; cancellation stops the chain immediately.
func (c *Chain) Scrape(ctx context.Context, targetURL string) (*Page, error) {
	var lastErr error
	for _, s := range c.scrapers {
		page, err := s.Scrape(ctx, targetURL)
		if err == nil {
			return page, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		zap.L().Debug("scrape: scraper failed, trying next",
			zap.String("scraper", s.Name()),
			zap.String("url", targetURL),
			zap.Error(err),
		)
		lastErr = err
	}
	if lastErr == nil {
		lastErr = &SkipError{URL: targetURL, Reason: "no scraper configured"}
	}
	if !errors.Is(lastErr, ErrSkip) {
		lastErr = &SkipError{URL: targetURL, Reason: "all scrapers failed", Err: lastErr}
	}
	return nil, lastErr
}
