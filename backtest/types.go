package backtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

type EventKind string

const (
	EventUp   EventKind = "UP"
	EventDown EventKind = "DOWN"
)

type Regime string

const (
	RegimeAboveLong Regime = "ABOVE_LONG"
	RegimeBelowLong Regime = "BELOW_LONG"
)

// Event records a leverage target chosen by the transition table. ActionDate is
// the day the new leverage applies, EventDate the day the crossover was confirmed.
type Event struct {
	ActionDate time.Time `json:"action_date"`
	EventDate  time.Time `json:"event_date"`
	Index      int       `json:"index"`
	Kind       EventKind `json:"kind"`
	Regime     Regime    `json:"regime"`
	Leverage   float64   `json:"leverage"`
}

// RollingSeries holds one value per input index; NaN marks positions where the
// window has not filled yet.
type RollingSeries []float64

// At reports the value at i and whether it is defined.
func (r RollingSeries) At(i int) (float64, bool) {
	if i < 0 || i >= len(r) || math.IsNaN(r[i]) {
		return 0, false
	}
	return r[i], true
}

func (r RollingSeries) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('[')
	for i, v := range r {
		if i > 0 {
			b.WriteByte(',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			b.WriteString("null")
			continue
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	b.WriteByte(']')
	return b.Bytes(), nil
}

func (r *RollingSeries) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(RollingSeries, len(raw))
	for i, v := range raw {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	*r = out
	return nil
}

// Result is the full output of one backtest run. Every series has the same
// length as the input.
type Result struct {
	Params Params      `json:"params"`
	Dates  []time.Time `json:"dates"`
	Close  []float64   `json:"close"`

	MA10 RollingSeries `json:"ma10"`
	MA20 RollingSeries `json:"ma20"`
	MA60 RollingSeries `json:"ma60"`

	Leverage       []float64 `json:"leverage"`
	Return         []float64 `json:"return"`
	StrategyReturn []float64 `json:"strategy_return"`
	Equity         []float64 `json:"equity"`

	// Signal flags evaluated on yesterday's prices.
	UpEvent   []bool `json:"up_event_yday"`
	DownEvent []bool `json:"down_event_yday"`
	SeasonUp  []bool `json:"season_up_yday"`

	Events  []Event `json:"events"`
	Metrics Metrics `json:"metrics"`
}

// CheckFinite reports ErrNonFiniteResult when the equity curve or a metric
// overflowed, which happens with very large leverage targets.
func (r *Result) CheckFinite() error {
	if r == nil {
		return nil
	}
	for i, v := range r.Equity {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: day %d", ErrNonFiniteResult, i)
		}
	}
	for _, v := range r.StrategyReturn {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNonFiniteResult
		}
	}
	m := r.Metrics
	for _, v := range []float64{m.TotalReturn, m.MaxDrawdown, m.WinRate, m.FinalEquity} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNonFiniteResult
		}
	}
	return nil
}

// Len is the number of trading days in the result.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Close)
}
