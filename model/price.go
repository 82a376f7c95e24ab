package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrNonPositiveClose 收盘价必须为有限正数
	ErrNonPositiveClose = errors.New("close must be a finite positive number")
	// ErrUnsortedDates 日期必须升序（允许重复）
	ErrUnsortedDates = errors.New("dates must be ascending")
	// ErrZeroDate 日期缺失
	ErrZeroDate = errors.New("date is required")
)

// PricePoint 单日收盘价
type PricePoint struct {
	Date  time.Time `json:"date"`  // 交易日期
	Close float64   `json:"close"` // 收盘价
}

// DateString 以 2006-01-02 格式返回日期
func (p PricePoint) DateString() string {
	return p.Date.Format("2006-01-02")
}

// Series 经过校验的日线收盘价序列，只能通过 NewSeries 构建。
type Series struct {
	points []PricePoint
}

// NewSeries 校验并复制输入：日期非零且不递减，收盘价为有限正数。
func NewSeries(points []PricePoint) (Series, error) {
	out := make([]PricePoint, len(points))
	for i, p := range points {
		if p.Date.IsZero() {
			return Series{}, fmt.Errorf("row %d: %w", i, ErrZeroDate)
		}
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) || p.Close <= 0 {
			return Series{}, fmt.Errorf("row %d (%s): %w", i, p.DateString(), ErrNonPositiveClose)
		}
		if i > 0 && p.Date.Before(points[i-1].Date) {
			return Series{}, fmt.Errorf("row %d (%s): %w", i, p.DateString(), ErrUnsortedDates)
		}
		out[i] = p
	}
	return Series{points: out}, nil
}

// Len 序列长度
func (s Series) Len() int {
	return len(s.points)
}

// At 返回第 i 个点
func (s Series) At(i int) PricePoint {
	return s.points[i]
}

// Points 返回副本，调用方修改不会影响序列
func (s Series) Points() []PricePoint {
	return append([]PricePoint(nil), s.points...)
}

// Closes 收盘价切片（副本）
func (s Series) Closes() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Close
	}
	return out
}

// Dates 日期切片（副本）
func (s Series) Dates() []time.Time {
	out := make([]time.Time, len(s.points))
	for i, p := range s.points {
		out[i] = p.Date
	}
	return out
}

// Head 返回前 n 个点（n<=0 或超出长度时返回全部）
func (s Series) Head(n int) []PricePoint {
	if n <= 0 || n >= len(s.points) {
		return s.Points()
	}
	return append([]PricePoint(nil), s.points[:n]...)
}
