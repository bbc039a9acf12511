package forecast

// trendExtrapolate projects the series linearly: the slope is the average
// daily change over the last min(7, len-1) points, and each future value is
// last + slope*step, clamped at zero. This is not a statistical fit; it
// exists so a forecast is still returned when the model cannot run.
func trendExtrapolate(series []SeriesPoint, periods int) []float64 {
	last := series[len(series)-1].Y

	n := len(series) - 1
	if n > 7 {
		n = 7
	}

	trend := 0.0
	if n >= 1 {
		trend = (last - series[len(series)-1-n].Y) / float64(n)
	}

	values := make([]float64, periods)
	for i := 1; i <= periods; i++ {
		v := last + trend*float64(i)
		if v < 0 {
			v = 0
		}
		values[i-1] = v
	}
	return values
}
