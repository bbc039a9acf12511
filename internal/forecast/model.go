package forecast

import (
	"fmt"
	"time"

	forecaster "github.com/aouyang1/go-forecaster"
)

// fitAndPredict fits an additive trend+seasonality model on the observed
// series and predicts a value for each future date. Default model options
// are used; no per-dataset tuning happens here.
func fitAndPredict(series []SeriesPoint, horizon []time.Time) ([]float64, error) {
	t := make([]time.Time, len(series))
	y := make([]float64, len(series))
	for i, p := range series {
		t[i] = p.DS
		y[i] = p.Y
	}

	f, err := forecaster.New(nil)
	if err != nil {
		return nil, fmt.Errorf("init model: %w", err)
	}
	if err := f.Fit(t, y); err != nil {
		return nil, fmt.Errorf("fit model: %w", err)
	}

	res, err := f.Predict(horizon)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if res == nil || len(res.Forecast) != len(horizon) {
		return nil, fmt.Errorf("model produced an incomplete prediction")
	}
	return res.Forecast, nil
}
