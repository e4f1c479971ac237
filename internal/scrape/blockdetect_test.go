package scrape

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectBlock(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header http.Header
		body   string
		want   BlockType
	}{
		{"cloudflare 403", 403, http.Header{"Cf-Ray": {"abc"}}, "", BlockCloudflare},
		{"cloudflare 503 server", 503, http.Header{"Server": {"cloudflare"}}, "", BlockCloudflare},
		{"mitigated challenge", 200, http.Header{"Cf-Mitigated": {"challenge"}}, "", BlockChallenge},
		{"browser check page", 200, http.Header{}, "<html>Checking your browser before accessing</html>", BlockChallenge},
		{"just a moment", 200, http.Header{}, "<title>Just a moment...</title> cloudflare", BlockChallenge},
		{"plain 403", 403, http.Header{}, "forbidden", BlockNone},
		{"clean page", 200, http.Header{}, "<html><body>Summer school</body></html>", BlockNone},
		{"captcha on form", 200, http.Header{}, "<form>protected by reCAPTCHA</form>", BlockNone},
		{
			"large page mentioning challenge",
			200, http.Header{},
			"checking your browser " + strings.Repeat("x", challengeBodyLimit),
			BlockNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.status, Header: tt.header}
			blocked, kind := DetectBlock(resp, []byte(tt.body))
			assert.Equal(t, tt.want != BlockNone, blocked)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestDetectBlock_NilResponse(t *testing.T) {
	blocked, kind := DetectBlock(nil, nil)
	assert.False(t, blocked)
	assert.Equal(t, BlockNone, kind)
}
