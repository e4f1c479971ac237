// Package llm turns a prompt into model text. It hides the provider behind a
// single Generate call, bounds retries, and reports exhausted retries as a
// typed error instead of a magic string.
package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/schools-cli/internal/resilience"
)

// FailureText is the legacy reply text for a prompt whose attempts were
// exhausted. It is only used for logging and compatibility output.
const FailureText = "Error generating response"

// ErrGenerationFailed is wrapped by every GenerationError.
var ErrGenerationFailed = errors.New("llm: generation failed")

// GenerationError reports that all attempts for a prompt failed.
type GenerationError struct {
	Model    string
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("llm: %s failed after %d attempts: %v", e.Model, e.Attempts, e.Err)
}

// Unwrap exposes both the sentinel and the last provider error.
func (e *GenerationError) Unwrap() []error {
	return []error{ErrGenerationFailed, e.Err}
}

// Request is a provider-neutral completion request.
type Request struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Provider performs one completion attempt.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// Options configures a Generator.
type Options struct {
	Model        string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
	MaxAttempts  int
	Backoff      time.Duration
	Timeout      time.Duration
}

// Generator sends prompts to a Provider with bounded retries.
type Generator struct {
	provider Provider
	opts     Options
}

// NewGenerator creates a Generator. Zero MaxAttempts means 3.
func NewGenerator(p Provider, opts Options) *Generator {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	return &Generator{provider: p, opts: opts}
}

// SetSystemPrompt replaces the system message sent with every prompt.
func (g *Generator) SetSystemPrompt(s string) {
	g.opts.SystemPrompt = s
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	return g.opts.Model
}

// Generate returns the model reply for prompt. Any attempt error is retried
// without delay unless Backoff is set. After the last attempt a
// *GenerationError is returned.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	req := Request{
		Model:       g.opts.Model,
		System:      g.opts.SystemPrompt,
		Prompt:      prompt,
		MaxTokens:   g.opts.MaxTokens,
		Temperature: g.opts.Temperature,
	}

	attempts := 0
	text, err := resilience.DoVal(ctx, resilience.RetryConfig{
		MaxAttempts: g.opts.MaxAttempts,
		Backoff:     g.opts.Backoff,
		ShouldRetry: resilience.AlwaysRetry,
		OnRetry:     resilience.RetryLogger(g.provider.Name(), "generate"),
	}, func(ctx context.Context) (string, error) {
		attempts++
		callCtx := ctx
		if g.opts.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
			defer cancel()
		}
		return g.provider.Complete(callCtx, req)
	})
	if err != nil {
		genErr := &GenerationError{Model: g.opts.Model, Attempts: attempts, Err: err}
		zap.L().Warn("llm: generation failed",
			zap.String("provider", g.provider.Name()),
			zap.String("model", g.opts.Model),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		return "", genErr
	}

	if ShowsReasoning(g.opts.Model) {
		text = StripReasoning(text)
	}
	return strings.TrimSpace(text), nil
}

// Result is the outcome of one prompt in a batch.
type Result struct {
	Text string
	Err  error
}

// GenerateAll runs prompts one after another and returns a result per
// prompt. It stops early only when ctx is done; remaining prompts get the
// context error.
func (g *Generator) GenerateAll(ctx context.Context, prompts []string) []Result {
	out := make([]Result, len(prompts))
	for i, p := range prompts {
		if err := ctx.Err(); err != nil {
			out[i] = Result{Err: eris.Wrap(err, "llm: batch cancelled")}
			continue
		}
		text, err := g.Generate(ctx, p)
		out[i] = Result{Text: text, Err: err}
	}
	return out
}

var (
	reasoningFamilies = []string{"deepseek", "qwq", "-r1"}
	thinkRe           = regexp.MustCompile(`(?s)<think>.*?</think>`)
)

// ShowsReasoning reports whether the model family emits <think> spans.
func ShowsReasoning(model string) bool {
	m := strings.ToLower(model)
	for _, f := range reasoningFamilies {
		if strings.Contains(m, f) {
			return true
		}
	}
	return false
}

// StripReasoning removes every <think>...</think> span.
func StripReasoning(text string) string {
	return thinkRe.ReplaceAllString(text, "")
}
