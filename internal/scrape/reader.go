package scrape

import (
	"context"
	"strings"

	"github.com/sells-group/schools-cli/pkg/jina"
)

// minReaderText is the shortest reader result treated as a real page.
const minReaderText = 100

// readerChallengeSignatures appear in short reader results that rendered an
// anti-bot page instead of the school page.
var readerChallengeSignatures = []string{
	"checking your browser",
	"enable javascript",
	"please enable cookies",
	"access denied",
	"403 forbidden",
	"just a moment",
	"attention required",
}

// ReaderScraper fetches pages through the Jina reader. It is used after the
// direct fetch is refused, since the reader renders pages on its own side.
type ReaderScraper struct {
	client jina.Client
}

// NewReaderScraper wraps a reader client as a Scraper.
func NewReaderScraper(client jina.Client) *ReaderScraper {
	return &ReaderScraper{client: client}
}

func (r *ReaderScraper) Name() string { return "jina_reader" }

// Scrape reads targetURL through the reader. Failures and unusable results
// return a *SkipError.
func (r *ReaderScraper) Scrape(ctx context.Context, targetURL string) (*Page, error) {
	resp, err := r.client.Read(ctx, targetURL)
	if err != nil {
		return nil, &SkipError{URL: targetURL, Reason: "reader failed", Err: err}
	}
	if resp.Code != 0 && resp.Code != 200 {
		return nil, &SkipError{URL: targetURL, StatusCode: resp.Code, Reason: "reader status"}
	}

	text := collapse(resp.Data.Content)
	if reason := unusableReaderText(text); reason != "" {
		return nil, &SkipError{URL: targetURL, Reason: reason}
	}

	return &Page{
		URL:        targetURL,
		Title:      collapse(resp.Data.Title),
		Text:       text,
		StatusCode: 200,
	}, nil
}

func unusableReaderText(text string) string {
	if len(text) < minReaderText {
		return "reader returned too little text"
	}
	if len(text) >= 1000 {
		return ""
	}
	lower := strings.ToLower(text)
	for _, sig := range readerChallengeSignatures {
		if strings.Contains(lower, sig) {
			return "reader returned a challenge page"
		}
	}
	return ""
}
