package store

import (
	"context"

	"github.com/salescast/salescast/internal/ingest"
)

// SalesSource fetches raw sales rows for forecasting. Implementations cover
// the Supabase REST gateway and a direct Postgres connection; the pipeline
// treats both as the same collaborator.
type SalesSource interface {
	Fetch(ctx context.Context) ([]ingest.RawRecord, error)
}
