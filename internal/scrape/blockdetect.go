package scrape

import (
	"net/http"
	"strings"
)

// BlockType describes the kind of anti-bot response detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockChallenge  BlockType = "challenge"
)

// challengeBodyLimit bounds the body size treated as a possible interstitial.
// Real school pages are larger and may mention captchas in forms.
const challengeBodyLimit = 16 * 1024

// DetectBlock checks a response for an anti-bot interstitial instead of
// the requested page.
func DetectBlock(resp *http.Response, body []byte) (bool, BlockType) {
	if resp == nil {
		return false, BlockNone
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("cf-ray") != "" ||
			resp.Header.Get("cf-mitigated") != "" ||
			strings.EqualFold(resp.Header.Get("server"), "cloudflare") {
			return true, BlockCloudflare
		}
	}

	if resp.Header.Get("cf-mitigated") == "challenge" {
		return true, BlockChallenge
	}

	if len(body) > challengeBodyLimit {
		return false, BlockNone
	}

	lower := strings.ToLower(string(body))
	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "cf-browser-verification") ||
		strings.Contains(lower, "just a moment...") && strings.Contains(lower, "cloudflare") {
		return true, BlockChallenge
	}

	return false, BlockNone
}
