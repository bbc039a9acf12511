package forecast

import (
	"sort"
	"time"

	"github.com/salescast/salescast/internal/ingest"
)

// SeriesPoint is one aggregated day of sales: DS is the calendar date, Y the
// summed quantity for that date.
type SeriesPoint struct {
	DS time.Time
	Y  float64
}

// Aggregate groups normalized records by calendar date, sums quantities, and
// sorts ascending by date. Grouping is order-independent, so identical input
// always yields an identical series.
func Aggregate(records []ingest.NormalizedRecord) ([]SeriesPoint, error) {
	sums := make(map[time.Time]float64, len(records))
	for _, r := range records {
		sums[r.SaleDate] += r.Quantity
	}

	if len(sums) < 2 {
		return nil, ingest.ValidationError{Field: ingest.ColSaleDate, Message: "need at least 2 distinct dates for forecasting"}
	}

	series := make([]SeriesPoint, 0, len(sums))
	for ds, y := range sums {
		series = append(series, SeriesPoint{DS: ds, Y: y})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].DS.Before(series[j].DS) })

	return series, nil
}
