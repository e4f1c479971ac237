// Package anthropic sends single-prompt completions to the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/schools-cli/internal/resilience"
)

// StopMaxTokens is the stop reason reported when a reply was cut off.
const StopMaxTokens = "max_tokens"

// Client completes one prompt.
type Client interface {
	Complete(ctx context.Context, req Request) (*Reply, error)
}

// Request is one prompt with its sampling settings.
type Request struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int64
	Temperature float64
}

// Reply is the text of a completion plus its accounting.
type Reply struct {
	Text         string
	StopReason   string
	InputTokens  int64
	OutputTokens int64
}

type sdkClient struct {
	client sdk.Client
}

// NewClient creates an SDK-backed client. Extra options (base URL, HTTP
// client, retries) are passed to the SDK.
func NewClient(apiKey string, opts ...option.RequestOption) Client {
	all := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &sdkClient{client: sdk.NewClient(all...)}
}

func (c *sdkClient) Complete(ctx context.Context, req Request) (*Reply, error) {
	params := sdk.MessageNewParams{
		Model:       sdk.Model(req.Model),
		MaxTokens:   req.MaxTokens,
		Temperature: sdk.Float(req.Temperature),
		Messages:    []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt))},
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		wrapped := eris.Wrap(err, "anthropic: create message")
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) && resilience.IsTransientHTTPStatus(apiErr.StatusCode) {
			return nil, resilience.NewTransientError(wrapped, apiErr.StatusCode)
		}
		return nil, wrapped
	}

	reply := toReply(msg)
	zap.L().Debug("anthropic: completion",
		zap.String("model", req.Model),
		zap.String("stop_reason", reply.StopReason),
		zap.Int64("input_tokens", reply.InputTokens),
		zap.Int64("output_tokens", reply.OutputTokens),
	)
	if reply.StopReason == StopMaxTokens {
		zap.L().Warn("anthropic: reply truncated by max_tokens", zap.Int64("max_tokens", req.MaxTokens))
	}
	return reply, nil
}

// toReply keeps text blocks only; thinking and tool blocks are dropped.
func toReply(msg *sdk.Message) *Reply {
	var sb strings.Builder
	for _, b := range msg.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return &Reply{
		Text:         sb.String(),
		StopReason:   string(msg.StopReason),
		InputTokens:  msg.Usage.InputTokens,
		OutputTokens: msg.Usage.OutputTokens,
	}
}
