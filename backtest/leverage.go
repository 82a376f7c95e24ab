package backtest

import "math"

// leverageMachine carries one leverage level across days.
type leverageMachine struct {
	p     Params
	level float64
}

func newLeverageMachine(p Params) *leverageMachine {
	return &leverageMachine{p: p, level: p.InitialLeverage}
}

func (m *leverageMachine) current() float64 {
	return m.level
}

// target applies the transition table in priority order; UP is checked
// before DOWN so an exact-equality day resolves to the UP target.
func (m *leverageMachine) target(sig signal) (float64, EventKind, bool) {
	if !sig.valid {
		return 0, "", false
	}
	switch {
	case sig.up && sig.seasonUp:
		return m.p.X, EventUp, true
	case sig.down && sig.seasonUp:
		return m.p.Y, EventDown, true
	case sig.up && !sig.seasonUp:
		return m.p.A, EventUp, true
	case sig.down && !sig.seasonUp:
		return m.p.B, EventDown, true
	}
	return 0, "", false
}

// step advances one day and reports whether the transition table fired.
// The clamp runs on every step but never counts as a firing.
func (m *leverageMachine) step(sig signal) (EventKind, bool) {
	kind, fired := EventKind(""), false
	if v, k, ok := m.target(sig); ok {
		m.level = v
		kind, fired = k, true
	}
	m.level = clampLeverage(m.level, m.p)
	return kind, fired
}

func clampLeverage(v float64, p Params) float64 {
	limit, ok := p.leverageCap()
	if !ok || math.Abs(v) <= limit {
		return v
	}
	return math.Copysign(limit, v)
}
