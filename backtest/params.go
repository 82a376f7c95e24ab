package backtest

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNegativeCost    = errors.New("fee_rate and slippage_rate must be >= 0")
	ErrInvalidLeverage = errors.New("max_leverage must be a positive number")
	ErrNonFiniteParam  = errors.New("parameters must be finite numbers")
	ErrNonFiniteResult = errors.New("equity is not a finite number")
)

// Params is the full, immutable parameter set of one run. X/Y apply when
// yesterday's close is at or above the long average, A/B when it is below.
type Params struct {
	MA10Period int `json:"ma10_period" yaml:"ma10_period"`
	MA20Period int `json:"ma20_period" yaml:"ma20_period"`
	MA60Period int `json:"ma60_period" yaml:"ma60_period"`

	X float64 `json:"x" yaml:"x"` // UP, above long average
	Y float64 `json:"y" yaml:"y"` // DOWN, above long average
	A float64 `json:"a" yaml:"a"` // UP, below long average
	B float64 `json:"b" yaml:"b"` // DOWN, below long average

	InitialLeverage float64 `json:"initial_leverage" yaml:"initial_leverage"`
	FeeRate         float64 `json:"fee_rate" yaml:"fee_rate"`
	SlippageRate    float64 `json:"slippage_rate" yaml:"slippage_rate"`

	// nil means unbounded.
	MaxLeverage *float64 `json:"max_leverage,omitempty" yaml:"max_leverage,omitempty"`
}

func DefaultParams() Params {
	return Params{
		MA10Period: 10,
		MA20Period: 20,
		MA60Period: 60,
		X:          1,
		Y:          -1,
		A:          1,
		B:          -1,
	}
}

// WithMaxLeverage returns a copy of p bounded by limit.
func (p Params) WithMaxLeverage(limit float64) Params {
	p.MaxLeverage = &limit
	return p
}

// TradeCost is charged once on every day the leverage changes.
func (p Params) TradeCost() float64 {
	return p.FeeRate + p.SlippageRate
}

// leverageCap returns the absolute bound and whether one applies.
func (p Params) leverageCap() (float64, bool) {
	if p.MaxLeverage == nil {
		return 0, false
	}
	c := math.Abs(*p.MaxLeverage)
	if c == 0 || math.IsNaN(c) {
		return 0, false
	}
	return c, true
}

// Clone returns a copy that shares no memory with p.
func (p Params) Clone() Params {
	if p.MaxLeverage != nil {
		v := *p.MaxLeverage
		p.MaxLeverage = &v
	}
	return p
}

// normalize coerces the periods to >= 1. It does not validate anything else.
func (p Params) normalize() Params {
	p = p.Clone()
	p.MA10Period = atLeastOne(p.MA10Period)
	p.MA20Period = atLeastOne(p.MA20Period)
	p.MA60Period = atLeastOne(p.MA60Period)
	return p
}

// Validate is used by the configuration layers (YAML, HTTP) before a run.
// The engine itself accepts any Params.
func (p Params) Validate() error {
	for _, v := range []float64{p.X, p.Y, p.A, p.B, p.InitialLeverage, p.FeeRate, p.SlippageRate} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNonFiniteParam
		}
	}
	if p.FeeRate < 0 || p.SlippageRate < 0 {
		return ErrNegativeCost
	}
	if p.MaxLeverage != nil {
		v := *p.MaxLeverage
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("%w: %v", ErrInvalidLeverage, v)
		}
	}
	return nil
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
