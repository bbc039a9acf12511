package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/salescast/salescast/internal/ingest"
	"log/slog"
)

// Supabase reads the sales table through the PostgREST endpoint exposed by a
// Supabase project.
type Supabase struct {
	baseURL    string
	apiKey     string
	table      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSupabase creates a client for the given project URL and service key.
func NewSupabase(baseURL, apiKey, table string, logger *slog.Logger) *Supabase {
	return &Supabase{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		table:   table,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// Fetch returns every row of the configured table.
func (s *Supabase) Fetch(ctx context.Context) ([]ingest.RawRecord, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?select=*", s.baseURL, url.PathEscape(s.table))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach sales store: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read store response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sales store returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var rows []ingest.RawRecord
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse store response: %w", err)
	}

	s.logger.Debug("fetched sales rows from store", "table", s.table, "count", len(rows))
	return rows, nil
}
