package backtest

import "math"

// signal is what the detector sees at index t. It only looks at t-1
// (yesterday) and t-2 (the day before), never at t.
type signal struct {
	up       bool
	down     bool
	seasonUp bool
	// valid is false when any average needed at t-1 or t-2 is absent.
	valid bool
}

func (s signal) regime() Regime {
	if s.seasonUp {
		return RegimeAboveLong
	}
	return RegimeBelowLong
}

func detect(closes []float64, ma10, ma20, ma60 RollingSeries, t int) signal {
	if t < 2 || t >= len(closes) {
		return signal{}
	}
	c1, c2 := closes[t-1], closes[t-2]
	s1, s2 := ma10[t-1], ma10[t-2]
	m1, m2 := ma20[t-1], ma20[t-2]
	l1 := ma60[t-1]

	// NaN comparisons are false, so the flags stay false on absent averages.
	return signal{
		up:       c2 <= s2 && c2 <= m2 && c1 >= s1 && c1 >= m1,
		down:     c2 >= s2 && c2 >= m2 && c1 <= s1 && c1 <= m1,
		seasonUp: c1 >= l1,
		valid:    !anyNaN(s1, s2, m1, m2, l1),
	}
}

func anyNaN(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
