package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"github.com/salescast/salescast/internal/ingest"
	"log/slog"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Postgres reads the sales table over a direct database connection, for
// self-hosted deployments that bypass the Supabase REST gateway.
type Postgres struct {
	db     *sql.DB
	table  string
	logger *slog.Logger
}

// NewPostgres wraps an open connection. The table name is validated once
// here because it is interpolated into the query text.
func NewPostgres(db *sql.DB, table string, logger *slog.Logger) (*Postgres, error) {
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid sales table name %q", table)
	}
	return &Postgres{db: db, table: table, logger: logger}, nil
}

// Fetch returns the date and quantity columns of every sales row.
func (p *Postgres) Fetch(ctx context.Context) ([]ingest.RawRecord, error) {
	query := fmt.Sprintf(`SELECT sale_date, quantity FROM %s`, p.table)

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales table: %w", err)
	}
	defer rows.Close()

	var records []ingest.RawRecord
	for rows.Next() {
		var saleDate time.Time
		var quantity float64
		if err := rows.Scan(&saleDate, &quantity); err != nil {
			return nil, fmt.Errorf("failed to scan sales row: %w", err)
		}
		records = append(records, ingest.RawRecord{
			"sale_date": saleDate.Format("2006-01-02"),
			"quantity":  quantity,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sales rows: %w", err)
	}

	p.logger.Debug("fetched sales rows from postgres", "table", p.table, "count", len(records))
	return records, nil
}
