package advisor

import (
	"context"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Defaults for the Claude advisor.
const (
	DefaultModel     = "claude-haiku-4-5-20251001"
	DefaultMaxTokens = 512
	DefaultTimeout   = 10 * time.Second
)

const systemPrompt = `You are OpportunityScout, a helpful and practical assistant for gig workers in India.
Do NOT invent math. Use only the provided context.

Return ONLY valid JSON with keys:
{"bestTime": "...", "bestArea": "...", "expectedBoost": number, "advice": "...", "action": "...", "why": "...", "confidence": "Low|Medium|High"}

- "bestArea" must be the specific area name from "top_hotspot.area", not the city name.
- Keep advice short.`

// ClaudeConfig holds configuration for the Claude advisor.
type ClaudeConfig struct {
	APIKey    string
	Model     string
	MaxTokens int64

	// BaseURL overrides the API endpoint (optional).
	BaseURL string

	// Timeout bounds a single request.
	Timeout time.Duration

	Logger zerolog.Logger
}

// ClaudeAdvisor implements Advisor with the Anthropic Messages API.
type ClaudeAdvisor struct {
	client     sdk.Client
	configured bool
	model      string
	maxTokens  int64
	logger     zerolog.Logger
}

// NewClaudeAdvisor creates a Claude-backed advisor. An empty API key yields an
// advisor that always returns ErrNotConfigured.
func NewClaudeAdvisor(cfg ClaudeConfig) *ClaudeAdvisor {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &ClaudeAdvisor{
		client:     sdk.NewClient(opts...),
		configured: cfg.APIKey != "",
		model:      model,
		maxTokens:  maxTokens,
		logger:     cfg.Logger,
	}
}

// Advise sends the context blob and returns the concatenated text blocks.
func (a *ClaudeAdvisor) Advise(ctx context.Context, contextBlob string) (string, error) {
	if !a.configured {
		return "", ErrNotConfigured
	}

	start := time.Now()
	msg, err := a.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(a.model),
		MaxTokens: a.maxTokens,
		System:    []sdk.TextBlockParam{{Text: systemPrompt}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock("Context: " + contextBlob)),
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "advisor: create message")
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}

	a.logger.Debug().
		Str("model", a.model).
		Int64("input_tokens", msg.Usage.InputTokens).
		Int64("output_tokens", msg.Usage.OutputTokens).
		Dur("duration", time.Since(start)).
		Msg("advisor responded")

	return b.String(), nil
}
