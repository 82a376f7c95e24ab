package backtest

import "math"

// RollingMean is a simple moving average aligned to the input. Indices before
// the window fills are NaN. window < 1 is treated as 1.
func RollingMean(values []float64, window int) RollingSeries {
	window = atLeastOne(window)
	out := make(RollingSeries, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(window)
	}
	return out
}
