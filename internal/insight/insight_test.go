package insight

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/salescast/salescast/internal/config"
	"github.com/salescast/salescast/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewWithoutKeyReturnsUnconfigured(t *testing.T) {
	a := New(config.InsightConfig{Model: "gpt-4o-mini"}, testLogger())
	if a.Configured() {
		t.Error("expected annotator without API key to be unconfigured")
	}
	got := a.Annotate(context.Background(), nil, "")
	if got != PlaceholderUnconfigured {
		t.Errorf("expected unconfigured placeholder, got %q", got)
	}
}

func TestNewWithKeyIsConfigured(t *testing.T) {
	a := New(config.InsightConfig{APIKey: "sk-test", Model: "gpt-4o-mini"}, testLogger())
	if !a.Configured() {
		t.Error("expected annotator with API key to report configured")
	}
}

// fakeOpenAI serves canned chat completion responses so Annotate can be
// exercised without real credentials.
func fakeOpenAI(t *testing.T, handler http.HandlerFunc) *openai.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = srv.URL + "/v1"
	return openai.NewClientWithConfig(cfg)
}

func TestAnnotateReturnsCompletionText(t *testing.T) {
	client := fakeOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Sales are trending up.  "}}]}`))
	})
	a := NewWithClient(client, "gpt-4o-mini", testLogger())

	got := a.Annotate(context.Background(), []models.ForecastPoint{{DS: "2025-01-03", YHat: 30}}, "")
	if got != "Sales are trending up." {
		t.Errorf("unexpected insight: %q", got)
	}
}

func TestAnnotateClassifiesAPIFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{
			name:   "invalid key",
			status: http.StatusUnauthorized,
			body:   `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`,
			want:   PlaceholderBadCredential,
		},
		{
			name:   "exhausted quota",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`,
			want:   PlaceholderQuota,
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"error":{"message":"The server had an error","type":"server_error"}}`,
			want:   PlaceholderFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := fakeOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			a := NewWithClient(client, "gpt-4o-mini", testLogger())

			got := a.Annotate(context.Background(), []models.ForecastPoint{{DS: "2025-01-03", YHat: 30}}, "")
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestAnnotateEmptyChoices(t *testing.T) {
	client := fakeOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	})
	a := NewWithClient(client, "gpt-4o-mini", testLogger())

	got := a.Annotate(context.Background(), nil, "")
	if got != PlaceholderFailure {
		t.Errorf("expected failure placeholder, got %q", got)
	}
}

func TestClassifyStringFallback(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errors.New("status 401: invalid_api_key"), PlaceholderBadCredential},
		{errors.New("status 429: insufficient_quota"), PlaceholderQuota},
		{errors.New("dial tcp: connection refused"), PlaceholderFailure},
	}
	for _, tt := range tests {
		if got := classify(tt.err); got != tt.want {
			t.Errorf("classify(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
