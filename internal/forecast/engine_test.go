package forecast

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/salescast/salescast/internal/ingest"
)

func testEngine(primary func([]SeriesPoint, []time.Time) ([]float64, error)) *Engine {
	e := NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if primary != nil {
		e.primary = primary
	}
	return e
}

func failingPrimary([]SeriesPoint, []time.Time) ([]float64, error) {
	return nil, errors.New("model refused to fit")
}

func TestForecastFallbackLinearTrend(t *testing.T) {
	e := testEngine(failingPrimary)
	series := []SeriesPoint{
		{DS: day(2025, 1, 1), Y: 10},
		{DS: day(2025, 1, 2), Y: 20},
	}

	out := e.Forecast(series, 3)
	if out.Method != MethodTrend {
		t.Fatalf("expected trend method, got %q", out.Method)
	}
	if out.Reason == "" {
		t.Error("expected a fallback reason")
	}
	want := []struct {
		ds   string
		yhat float64
	}{
		{"2025-01-03", 30},
		{"2025-01-04", 40},
		{"2025-01-05", 50},
	}
	if len(out.Points) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(out.Points))
	}
	for i, w := range want {
		if out.Points[i].DS != w.ds || out.Points[i].YHat != w.yhat {
			t.Errorf("point %d = %+v, want {%s %v}", i, out.Points[i], w.ds, w.yhat)
		}
	}
}

func TestForecastFallbackClampsAtZero(t *testing.T) {
	e := testEngine(failingPrimary)
	series := []SeriesPoint{
		{DS: day(2025, 1, 1), Y: 20},
		{DS: day(2025, 1, 2), Y: 5},
	}

	out := e.Forecast(series, 4)
	// trend is -15/day: 5-15 clamps to 0 and stays there
	for i, p := range out.Points {
		if p.YHat < 0 {
			t.Errorf("point %d is negative: %v", i, p.YHat)
		}
	}
	if out.Points[0].YHat != 0 {
		t.Errorf("expected first point clamped to 0, got %v", out.Points[0].YHat)
	}
}

func TestForecastFallbackTrendWindow(t *testing.T) {
	e := testEngine(failingPrimary)
	// 10 days; the trend window covers only the last 7 steps
	series := make([]SeriesPoint, 10)
	for i := range series {
		series[i] = SeriesPoint{DS: day(2025, 1, 1+i), Y: float64(100 + 10*i)}
	}

	out := e.Forecast(series, 1)
	// last=190, 7 days earlier=120, trend=10
	if out.Points[0].YHat != 200 {
		t.Errorf("expected 200, got %v", out.Points[0].YHat)
	}
}

func TestForecastUsesModelWhenHealthy(t *testing.T) {
	e := testEngine(func(series []SeriesPoint, horizon []time.Time) ([]float64, error) {
		values := make([]float64, len(horizon))
		for i := range values {
			values[i] = 42.123
		}
		return values, nil
	})
	series := []SeriesPoint{
		{DS: day(2025, 1, 1), Y: 10},
		{DS: day(2025, 1, 2), Y: 20},
	}

	out := e.Forecast(series, 2)
	if out.Method != MethodModel {
		t.Fatalf("expected model method, got %q", out.Method)
	}
	if out.Reason != "" {
		t.Errorf("expected empty reason, got %q", out.Reason)
	}
	if out.Points[0].YHat != 42.12 {
		t.Errorf("expected rounded 42.12, got %v", out.Points[0].YHat)
	}
}

func TestForecastRejectsDegenerateModelOutput(t *testing.T) {
	tests := []struct {
		name    string
		primary func([]SeriesPoint, []time.Time) ([]float64, error)
	}{
		{
			name: "short output",
			primary: func(_ []SeriesPoint, horizon []time.Time) ([]float64, error) {
				return make([]float64, len(horizon)-1), nil
			},
		},
		{
			name: "NaN output",
			primary: func(_ []SeriesPoint, horizon []time.Time) ([]float64, error) {
				values := make([]float64, len(horizon))
				values[0] = math.NaN()
				return values, nil
			},
		},
		{
			name: "panic",
			primary: func([]SeriesPoint, []time.Time) ([]float64, error) {
				panic("index out of range")
			},
		},
	}

	series := []SeriesPoint{
		{DS: day(2025, 1, 1), Y: 10},
		{DS: day(2025, 1, 2), Y: 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := testEngine(tt.primary).Forecast(series, 3)
			if out.Method != MethodTrend {
				t.Errorf("expected trend fallback, got %q", out.Method)
			}
			if len(out.Points) != 3 {
				t.Errorf("expected 3 points, got %d", len(out.Points))
			}
		})
	}
}

func TestForecastDatesConsecutive(t *testing.T) {
	e := testEngine(failingPrimary)
	series := []SeriesPoint{
		{DS: day(2025, 2, 27), Y: 10},
		{DS: day(2025, 2, 28), Y: 20},
	}

	out := e.Forecast(series, 3)
	want := []string{"2025-03-01", "2025-03-02", "2025-03-03"}
	for i, p := range out.Points {
		if p.DS != want[i] {
			t.Errorf("point %d date = %s, want %s", i, p.DS, want[i])
		}
	}
}

func TestForecastEmptySeries(t *testing.T) {
	out := testEngine(nil).Forecast(nil, 7)
	if out.Method != MethodTrend {
		t.Errorf("expected trend method for empty series, got %q", out.Method)
	}
	if len(out.Points) != 0 {
		t.Errorf("expected no points for empty series, got %d", len(out.Points))
	}
	if out.Reason == "" {
		t.Error("expected a reason for the degraded outcome")
	}
}

func TestAggregateThenForecast(t *testing.T) {
	records := []ingest.NormalizedRecord{
		{SaleDate: day(2025, 1, 1), Quantity: 5},
		{SaleDate: day(2025, 1, 1), Quantity: 5},
		{SaleDate: day(2025, 1, 2), Quantity: 20},
	}

	series, err := Aggregate(records)
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}

	out := testEngine(failingPrimary).Forecast(series, 1)
	if out.Points[0].DS != "2025-01-03" || out.Points[0].YHat != 30 {
		t.Errorf("expected {2025-01-03 30}, got %+v", out.Points[0])
	}
}

func TestForecastIdempotent(t *testing.T) {
	e := testEngine(failingPrimary)
	series := []SeriesPoint{
		{DS: day(2025, 1, 1), Y: 3},
		{DS: day(2025, 1, 2), Y: 9},
		{DS: day(2025, 1, 3), Y: 6},
	}

	a := e.Forecast(series, 5)
	b := e.Forecast(series, 5)
	if len(a.Points) != len(b.Points) {
		t.Fatalf("length mismatch: %d vs %d", len(a.Points), len(b.Points))
	}
	for i := range a.Points {
		if a.Points[i] != b.Points[i] {
			t.Errorf("point %d differs: %+v vs %+v", i, a.Points[i], b.Points[i])
		}
	}
}
