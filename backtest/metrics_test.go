package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalReturn(t *testing.T) {
	assert.Equal(t, 0.0, TotalReturn(nil))
	assert.InDelta(t, 0.25, TotalReturn([]float64{1, 0.9, 1.25}), eps)
}

func TestMaxDrawdown(t *testing.T) {
	cases := []struct {
		name   string
		equity []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"monotonic", []float64{1, 1.1, 1.2}, 0},
		{"two dips", []float64{1, 1.2, 0.9, 1.5, 1.2}, -0.25},
		{"zero peak", []float64{0, 0, 0}, 0},
		{"zero then negative", []float64{0, -1}, 0},
		{"negative equity", []float64{1, -0.5}, -1.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, MaxDrawdown(tc.equity), eps)
		})
	}
}

func TestWinRate(t *testing.T) {
	assert.Equal(t, 0.0, WinRate(nil))
	assert.Equal(t, 0.0, WinRate([]float64{0, 0}))
	assert.InDelta(t, 2.0/3.0, WinRate([]float64{0, 0.1, -0.2, 0.3, 0}), eps)
}

func TestTradesCount(t *testing.T) {
	assert.Equal(t, 0, TradesCount(nil))
	assert.Equal(t, 0, TradesCount([]float64{1}))
	assert.Equal(t, 3, TradesCount([]float64{0, 0, 1, 1, -1, 2, 2}))
}

func TestComputeMetricsScenario(t *testing.T) {
	res := Run(seriesOf(t, scenarioCloses...), shortParams())
	m := res.Metrics

	assert.Equal(t, 7, m.Days)
	assert.Equal(t, 4, m.EventCount)
	assert.Equal(t, res.Dates[0], m.StartDate)
	assert.Equal(t, res.Dates[6], m.EndDate)
	assert.InDelta(t, res.Equity[6], m.FinalEquity, eps)
	// non-zero strategy returns: -0.1, -0.222.., -0.1818.. => no wins
	assert.Equal(t, 0.0, m.WinRate)
	assert.InDelta(t, res.Equity[6]-1, m.MaxDrawdown, 1e-9)
}
