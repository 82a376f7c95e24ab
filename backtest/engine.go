package backtest

import (
	"taiexbt/model"
)

// Run computes the moving-average leverage backtest over series. It is a pure
// function of its inputs and never fails; an empty series yields an empty
// result with zero metrics.
func Run(series model.Series, params Params) *Result {
	p := params.normalize()
	n := series.Len()
	closes := series.Closes()

	res := &Result{
		Params:         p,
		Dates:          series.Dates(),
		Close:          closes,
		MA10:           RollingMean(closes, p.MA10Period),
		MA20:           RollingMean(closes, p.MA20Period),
		MA60:           RollingMean(closes, p.MA60Period),
		Leverage:       make([]float64, n),
		Return:         make([]float64, n),
		StrategyReturn: make([]float64, n),
		Equity:         make([]float64, n),
		UpEvent:        make([]bool, n),
		DownEvent:      make([]bool, n),
		SeasonUp:       make([]bool, n),
		Events:         []Event{},
	}
	if n == 0 {
		res.Metrics = ComputeMetrics(res)
		return res
	}

	machine := newLeverageMachine(p)
	cost := p.TradeCost()

	for t := 0; t < n; t++ {
		// The first two days keep the initial leverage; transitions start at t=2.
		if t >= 2 {
			sig := detect(closes, res.MA10, res.MA20, res.MA60, t)
			res.UpEvent[t] = sig.up
			res.DownEvent[t] = sig.down
			res.SeasonUp[t] = sig.seasonUp

			if kind, fired := machine.step(sig); fired {
				res.Events = append(res.Events, Event{
					ActionDate: res.Dates[t],
					EventDate:  res.Dates[t-1],
					Index:      t,
					Kind:       kind,
					Regime:     sig.regime(),
					Leverage:   machine.current(),
				})
			}
		}
		res.Leverage[t] = machine.current()

		if t == 0 {
			res.Equity[0] = 1
			continue
		}
		r := closes[t]/closes[t-1] - 1
		s := r * res.Leverage[t]
		if res.Leverage[t] != res.Leverage[t-1] {
			s -= cost
		}
		res.Return[t] = r
		res.StrategyReturn[t] = s
		res.Equity[t] = res.Equity[t-1] * (1 + s)
	}

	res.Metrics = ComputeMetrics(res)
	return res
}
