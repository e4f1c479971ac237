package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/schools-cli/internal/llm"
	"github.com/sells-group/schools-cli/internal/scrape"
	"github.com/sells-group/schools-cli/internal/store"
	anthropicpkg "github.com/sells-group/schools-cli/pkg/anthropic"
	"github.com/sells-group/schools-cli/pkg/jina"
	"github.com/sells-group/schools-cli/pkg/openwebui"
)

// initStore opens and migrates the configured store. Callers should defer
// st.Close().
func initStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, store.Options{
		Driver:      cfg.Store.Driver,
		DatabaseURL: cfg.Store.DatabaseURL,
		CSVPath:     cfg.Store.CSVPath,
	})
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	return st, nil
}

// initGenerator builds the model client for the configured provider.
func initGenerator() (*llm.Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var provider llm.Provider
	switch cfg.Model.Provider {
	case llm.ProviderAnthropic:
		provider = llm.NewAnthropicProvider(anthropicpkg.NewClient(cfg.Anthropic.Key))
	case llm.ProviderOpenWebUI:
		opts := []openwebui.Option{openwebui.WithURL(cfg.Model.BaseURL)}
		provider = llm.NewOpenWebUIProvider(openwebui.NewClient(cfg.Model.APIKey, opts...))
	default:
		return nil, llm.ValidProvider(cfg.Model.Provider)
	}

	return llm.NewGenerator(provider, llm.Options{
		Model:        cfg.Model.Name,
		SystemPrompt: cfg.Model.SystemPrompt,
		MaxTokens:    cfg.Model.MaxTokens,
		Temperature:  cfg.Model.Temperature,
		MaxAttempts:  cfg.Model.MaxAttempts,
		Backoff:      time.Duration(cfg.Model.RetryBackoffMs) * time.Millisecond,
		Timeout:      time.Duration(cfg.Model.TimeoutSecs) * time.Second,
	}), nil
}

// initScraper builds the page fetcher. With reader_fallback set, pages the
// direct fetch cannot get are retried through the Jina reader.
func initScraper() scrape.Scraper {
	local := scrape.NewLocalScraper(scrape.LocalOptions{
		Timeout:      time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		UserAgent:    cfg.Fetch.UserAgent,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
	})
	if !cfg.Fetch.ReaderFallback {
		return local
	}
	reader := jina.NewClient(cfg.Fetch.ReaderKey, jina.WithBaseURL(cfg.Fetch.ReaderURL))
	return scrape.NewChain(local, scrape.NewReaderScraper(reader))
}
