package llm

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/schools-cli/pkg/anthropic"
	"github.com/sells-group/schools-cli/pkg/openwebui"
)

// Provider names accepted by configuration.
const (
	ProviderOpenWebUI = "openwebui"
	ProviderAnthropic = "anthropic"
)

// defaultAnthropicMaxTokens is used when a request has no limit; the
// Messages API requires one.
const defaultAnthropicMaxTokens = 1024

// OpenWebUIProvider sends requests to an OpenAI-compatible chat endpoint.
type OpenWebUIProvider struct {
	client openwebui.Client
}

// NewOpenWebUIProvider wraps a chat-completion client.
func NewOpenWebUIProvider(c openwebui.Client) *OpenWebUIProvider {
	return &OpenWebUIProvider{client: c}
}

func (p *OpenWebUIProvider) Name() string { return ProviderOpenWebUI }

// Complete builds an optional system message plus one user message.
func (p *OpenWebUIProvider) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := p.client.ChatCompletion(ctx, openwebui.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    chatMessages(req),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Content(), nil
}

func chatMessages(req Request) []openwebui.Message {
	msgs := make([]openwebui.Message, 0, 2)
	if req.System != "" {
		msgs = append(msgs, openwebui.Message{Role: "system", Content: req.System})
	}
	return append(msgs, openwebui.Message{Role: "user", Content: req.Prompt})
}

// AnthropicProvider sends requests to the Anthropic Messages API.
type AnthropicProvider struct {
	client anthropic.Client
}

// NewAnthropicProvider wraps an Anthropic client.
func NewAnthropicProvider(c anthropic.Client) *AnthropicProvider {
	return &AnthropicProvider{client: c}
}

func (p *AnthropicProvider) Name() string { return ProviderAnthropic }

// Complete sends the prompt as a single user message.
func (p *AnthropicProvider) Complete(ctx context.Context, req Request) (string, error) {
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	reply, err := p.client.Complete(ctx, anthropic.Request{
		Model:       req.Model,
		System:      req.System,
		Prompt:      req.Prompt,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", err
	}
	return reply.Text, nil
}

// ValidProvider reports whether name is a supported provider.
func ValidProvider(name string) error {
	switch name {
	case ProviderOpenWebUI, ProviderAnthropic:
		return nil
	default:
		return eris.Errorf("llm: unsupported provider %q", name)
	}
}
