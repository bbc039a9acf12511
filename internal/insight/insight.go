package insight

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/salescast/salescast/internal/config"
	"github.com/salescast/salescast/internal/models"
	openai "github.com/sashabaranov/go-openai"
	"log/slog"
)

// Placeholder messages substituted when no real insight can be produced.
// They are answers, not errors: the forecast response stays a 200.
const (
	PlaceholderUnconfigured  = "AI insight unavailable: set OPENAI_API_KEY in the server environment to enable forecast summaries."
	PlaceholderBadCredential = "AI insight unavailable: the configured OpenAI API key was rejected. Check OPENAI_API_KEY."
	PlaceholderQuota         = "AI insight unavailable: the OpenAI account has exhausted its quota or billing is not set up."
	PlaceholderFailure       = "AI insight unavailable: the text generation service could not be reached."
)

const systemPrompt = "You are a retail AI analyst."

// Annotator produces a short business summary for a forecast. Annotate never
// fails the request: every failure is downgraded to placeholder text.
type Annotator interface {
	Annotate(ctx context.Context, points []models.ForecastPoint, question string) string
	Configured() bool
}

// New returns an OpenAI-backed annotator when an API key is configured, and
// an unconfigured stub that always answers with the configuration
// placeholder otherwise. The stub never makes a network call.
func New(cfg config.InsightConfig, logger *slog.Logger) Annotator {
	if cfg.APIKey == "" {
		return unconfigured{}
	}
	return NewWithClient(openai.NewClient(cfg.APIKey), cfg.Model, logger)
}

// NewWithClient builds a configured annotator around an existing client.
func NewWithClient(client *openai.Client, model string, logger *slog.Logger) Annotator {
	return &openAIAnnotator{client: client, model: model, logger: logger}
}

type unconfigured struct{}

func (unconfigured) Annotate(context.Context, []models.ForecastPoint, string) string {
	return PlaceholderUnconfigured
}

func (unconfigured) Configured() bool { return false }

type openAIAnnotator struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

func (a *openAIAnnotator) Configured() bool { return true }

func (a *openAIAnnotator) Annotate(ctx context.Context, points []models.ForecastPoint, question string) string {
	payload, err := json.Marshal(points)
	if err != nil {
		a.logger.Error("failed to serialize forecast for insight", "error", err)
		return PlaceholderFailure
	}

	prompt := "Analyze this sales forecast data and give business insights:\n" + string(payload)
	if question != "" {
		prompt = question + "\n\n" + prompt
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		a.logger.Warn("insight generation failed", "model", a.model, "error", err)
		return classify(err)
	}
	if len(resp.Choices) == 0 {
		a.logger.Warn("insight generation returned no choices", "model", a.model)
		return PlaceholderFailure
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content)
}

// classify buckets an OpenAI failure into invalid credential, exhausted
// quota, or other, and returns the matching placeholder.
func classify(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized:
			return PlaceholderBadCredential
		case http.StatusTooManyRequests:
			return PlaceholderQuota
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "invalid_api_key") || strings.Contains(msg, "401"):
		return PlaceholderBadCredential
	case strings.Contains(msg, "insufficient_quota") || strings.Contains(msg, "429"):
		return PlaceholderQuota
	default:
		return PlaceholderFailure
	}
}
