package ingest

import (
	"fmt"
	"time"
)

// RawRecord is an untyped row as it arrives from a CSV file, a JSON array,
// an uploaded spreadsheet, or the remote sales store. There is no fixed
// schema; normalization decides whether the row is usable.
type RawRecord map[string]any

// NormalizedRecord is the two-field shape the aggregator consumes. SaleDate
// is truncated to the calendar day in UTC and Quantity is always a finite
// number.
type NormalizedRecord struct {
	SaleDate time.Time
	Quantity float64
}

// ValidationError reports malformed or insufficient client input. Handlers
// map it to a 400 response with the message as the reason.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
