package backtest

import "time"

type Metrics struct {
	TotalReturn float64   `json:"total_return"`
	MaxDrawdown float64   `json:"max_drawdown"`
	WinRate     float64   `json:"win_rate"`
	TradesCount int       `json:"trades_count"`
	FinalEquity float64   `json:"final_equity"`
	EventCount  int       `json:"event_count"`
	Days        int       `json:"days"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

// ComputeMetrics derives the summary statistics from a result's series.
func ComputeMetrics(res *Result) Metrics {
	m := Metrics{
		TotalReturn: TotalReturn(res.Equity),
		MaxDrawdown: MaxDrawdown(res.Equity),
		WinRate:     WinRate(res.StrategyReturn),
		TradesCount: TradesCount(res.Leverage),
		EventCount:  len(res.Events),
		Days:        res.Len(),
	}
	if n := len(res.Equity); n > 0 {
		m.FinalEquity = res.Equity[n-1]
	}
	if n := len(res.Dates); n > 0 {
		m.StartDate = res.Dates[0]
		m.EndDate = res.Dates[n-1]
	}
	return m
}

func TotalReturn(equity []float64) float64 {
	if len(equity) == 0 {
		return 0
	}
	return equity[len(equity)-1] - 1
}

// MaxDrawdown is the most negative equity/peak - 1 seen, or 0.
func MaxDrawdown(equity []float64) float64 {
	if len(equity) == 0 {
		return 0
	}
	peak := equity[0]
	worst := 0.0
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		dd := 0.0
		if peak != 0 {
			dd = e/peak - 1
		}
		if dd < worst {
			worst = dd
		}
	}
	return worst
}

// WinRate is the share of strictly positive returns among non-zero ones.
func WinRate(returns []float64) float64 {
	var nonZero, wins int
	for _, r := range returns {
		if r == 0 {
			continue
		}
		nonZero++
		if r > 0 {
			wins++
		}
	}
	if nonZero == 0 {
		return 0
	}
	return float64(wins) / float64(nonZero)
}

// TradesCount counts days whose leverage differs from the previous day,
// whether the change came from a signal or from clamping.
func TradesCount(leverage []float64) int {
	n := 0
	for t := 1; t < len(leverage); t++ {
		if leverage[t] != leverage[t-1] {
			n++
		}
	}
	return n
}
