package ingest

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Column names recognized by the normalizer.
const (
	ColSaleDate   = "sale_date"
	ColQuantity   = "quantity"
	ColTotalPrice = "total_price"
)

// DefaultUnitPrice is the assumed per-unit price when quantity has to be
// derived from total_price. It is a demo-data heuristic, not a real unit
// price lookup.
const DefaultUnitPrice = 30

// Normalizer reduces heterogeneous raw rows to (sale_date, quantity) records.
// When the quantity column is absent but total_price is present, quantity is
// derived by integer-dividing the price by UnitPrice.
type Normalizer struct {
	UnitPrice int
}

// NewNormalizer returns a normalizer with the given unit price, falling back
// to DefaultUnitPrice when the value is not positive.
func NewNormalizer(unitPrice int) Normalizer {
	if unitPrice < 1 {
		unitPrice = DefaultUnitPrice
	}
	return Normalizer{UnitPrice: unitPrice}
}

// Normalize validates column presence and coerces every row. It is a pure
// transformation: the input slice is not modified.
func (n Normalizer) Normalize(rows []RawRecord) ([]NormalizedRecord, error) {
	if len(rows) == 0 {
		return nil, ValidationError{Field: "body", Message: "no data rows"}
	}

	var hasDate, hasQuantity, hasPrice bool
	for _, row := range rows {
		if _, ok := row[ColSaleDate]; ok {
			hasDate = true
		}
		if _, ok := row[ColQuantity]; ok {
			hasQuantity = true
		}
		if _, ok := row[ColTotalPrice]; ok {
			hasPrice = true
		}
	}

	if !hasQuantity && !hasPrice {
		return nil, ValidationError{Field: ColQuantity, Message: "data must include a 'quantity' (or 'total_price') column"}
	}
	if !hasDate {
		return nil, ValidationError{Field: ColSaleDate, Message: "data must include a 'sale_date' column"}
	}

	records := make([]NormalizedRecord, 0, len(rows))
	for i, row := range rows {
		day, err := parseDay(row[ColSaleDate])
		if err != nil {
			return nil, ValidationError{Field: ColSaleDate, Message: fmt.Sprintf("row %d: %v", i+1, err)}
		}

		var qty float64
		if hasQuantity {
			qty, err = coerceNumber(row[ColQuantity])
			if err != nil {
				return nil, ValidationError{Field: ColQuantity, Message: fmt.Sprintf("row %d: %v", i+1, err)}
			}
		} else {
			price, err := coerceNumber(row[ColTotalPrice])
			if err != nil {
				return nil, ValidationError{Field: ColTotalPrice, Message: fmt.Sprintf("row %d: %v", i+1, err)}
			}
			qty = math.Floor(price / float64(n.UnitPrice))
		}

		records = append(records, NormalizedRecord{SaleDate: day, Quantity: qty})
	}
	return records, nil
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseDay accepts common date encodings and truncates to the UTC calendar day.
func parseDay(v any) (time.Time, error) {
	switch value := v.(type) {
	case time.Time:
		return truncateDay(value), nil
	case string:
		s := strings.TrimSpace(value)
		if s == "" {
			return time.Time{}, fmt.Errorf("empty sale_date")
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return truncateDay(t), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized sale_date %q", s)
	case nil:
		return time.Time{}, fmt.Errorf("missing sale_date")
	default:
		return time.Time{}, fmt.Errorf("unrecognized sale_date type %T", v)
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func coerceNumber(v any) (float64, error) {
	switch value := v.(type) {
	case float64:
		return value, nil
	case float32:
		return float64(value), nil
	case int:
		return float64(value), nil
	case int64:
		return float64(value), nil
	case json.Number:
		return value.Float64()
	case string:
		s := strings.TrimSpace(value)
		if s == "" {
			return 0, fmt.Errorf("empty numeric value")
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("non-numeric value %q", s)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("missing numeric value")
	default:
		return 0, fmt.Errorf("unrecognized numeric type %T", v)
	}
}
