package terminalui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taiexbt/backtest"
	"taiexbt/model"
)

func runSample(t *testing.T) *backtest.Result {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	closes := []float64{100, 100, 100, 90, 110, 110, 130}
	pts := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		pts[i] = model.PricePoint{Date: start.AddDate(0, 0, i), Close: c}
	}
	s, err := model.NewSeries(pts)
	require.NoError(t, err)

	p := backtest.DefaultParams()
	p.MA10Period, p.MA20Period, p.MA60Period = 2, 2, 2
	return backtest.Run(s, p)
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	RenderSummary(&buf, "taiex.csv", runSample(t), Options{})

	out := buf.String()
	assert.Contains(t, out, "taiex.csv")
	assert.Contains(t, out, "2024-01-01 ~ 2024-01-07")
	assert.Contains(t, out, "交易次数  4")
	assert.Contains(t, out, "ABOVE_LONG")
	assert.Contains(t, out, "BELOW_LONG")
	assert.NotContains(t, out, "\033[")
}

func TestRenderSummaryLimitsEvents(t *testing.T) {
	var buf bytes.Buffer
	RenderSummary(&buf, "x", runSample(t), Options{MaxEvents: 1, Color: true})

	out := buf.String()
	assert.Contains(t, out, "省略 3 条")
	assert.Contains(t, out, "2024-01-07")
	assert.NotContains(t, out, "2024-01-04   ")
	assert.Contains(t, out, "\033[32m")
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderSummary(&buf, "empty.csv", backtest.Run(model.Series{}, backtest.DefaultParams()), Options{})
	assert.Contains(t, buf.String(), "无数据")
}
