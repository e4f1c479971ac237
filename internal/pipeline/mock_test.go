package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/schools-cli/internal/scrape"
)

// --- Scraper Mock ---

type mockScraper struct {
	mock.Mock
}

func (m *mockScraper) Scrape(ctx context.Context, url string) (*scrape.Page, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scrape.Page), args.Error(1)
}

func (m *mockScraper) Name() string { return "mock" }

// --- Generator Mock ---

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}
