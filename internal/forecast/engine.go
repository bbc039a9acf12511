package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/salescast/salescast/internal/models"
	"log/slog"
)

// Method identifies which forecasting path produced a result.
type Method string

const (
	// MethodModel marks a forecast produced by the statistical model.
	MethodModel Method = "model"
	// MethodTrend marks a forecast produced by the linear trend fallback.
	MethodTrend Method = "trend"
)

// Outcome is a produced forecast together with the path that generated it.
// Reason records why the fallback ran; it is logged but never surfaced to
// callers, who always receive a usable forecast.
type Outcome struct {
	Points []models.ForecastPoint
	Method Method
	Reason string
}

// Engine produces fixed-horizon forecasts from an aggregated series. The
// primary statistical model is attempted once per request; any error, panic,
// or non-finite prediction downgrades to the trend extrapolation. The caller
// cannot tell the paths apart from the result shape.
type Engine struct {
	logger  *slog.Logger
	primary func(series []SeriesPoint, horizon []time.Time) ([]float64, error)
}

// NewEngine returns an engine backed by the statistical model.
func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logger, primary: fitAndPredict}
}

// Forecast returns exactly periods points with strictly consecutive dates
// starting the day after the last observed date. It never fails; an empty
// series yields an empty outcome rather than a panic.
func (e *Engine) Forecast(series []SeriesPoint, periods int) Outcome {
	if len(series) == 0 {
		return Outcome{Points: []models.ForecastPoint{}, Method: MethodTrend, Reason: "empty series"}
	}

	horizon := futureDates(series[len(series)-1].DS, periods)

	values, err := e.tryPrimary(series, horizon)
	if err != nil {
		e.logger.Warn("primary model unavailable, using trend fallback",
			"error", err,
			"series_len", len(series),
			"periods", periods)
		return Outcome{
			Points: toPoints(horizon, trendExtrapolate(series, periods)),
			Method: MethodTrend,
			Reason: err.Error(),
		}
	}

	return Outcome{Points: toPoints(horizon, values), Method: MethodModel}
}

// tryPrimary runs the model, converting panics and degenerate output into
// errors so the fallback policy stays in one place.
func (e *Engine) tryPrimary(series []SeriesPoint, horizon []time.Time) (values []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			values = nil
			err = fmt.Errorf("model panic: %v", r)
		}
	}()

	values, err = e.primary(series, horizon)
	if err != nil {
		return nil, err
	}
	if len(values) != len(horizon) {
		return nil, fmt.Errorf("model returned %d predictions for %d dates", len(values), len(horizon))
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("model returned a non-finite prediction")
		}
	}
	return values, nil
}

func futureDates(last time.Time, periods int) []time.Time {
	dates := make([]time.Time, periods)
	for i := range dates {
		dates[i] = last.AddDate(0, 0, i+1)
	}
	return dates
}

func toPoints(dates []time.Time, values []float64) []models.ForecastPoint {
	points := make([]models.ForecastPoint, len(dates))
	for i, d := range dates {
		points[i] = models.ForecastPoint{
			DS:   d.Format("2006-01-02"),
			YHat: round2(values[i]),
		}
	}
	return points
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
