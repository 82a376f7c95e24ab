package backtest

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
)

type SVGChartOptions struct {
	Width  int
	Height int
}

func (o SVGChartOptions) withDefaults() SVGChartOptions {
	if o.Width <= 0 {
		o.Width = 980
	}
	if o.Height <= 0 {
		o.Height = 520
	}
	return o
}

// RenderEquitySVG renders a 2-panel SVG: top = equity curve with event
// markers, bottom = leverage step line.
func RenderEquitySVG(title string, res *Result, opt SVGChartOptions) ([]byte, error) {
	opt = opt.withDefaults()
	if res.Len() < 2 {
		return nil, fmt.Errorf("not enough points: %d", res.Len())
	}

	minE, maxE := math.Inf(1), math.Inf(-1)
	for _, e := range res.Equity {
		minE = math.Min(minE, e)
		maxE = math.Max(maxE, e)
	}
	minL, maxL := 0.0, 0.0
	for _, l := range res.Leverage {
		minL = math.Min(minL, l)
		maxL = math.Max(maxL, l)
	}
	if math.IsInf(minE, 0) || math.IsInf(maxE, 0) || math.IsNaN(minE) || math.IsNaN(maxE) {
		return nil, fmt.Errorf("invalid equity range")
	}
	pad := (maxE - minE) * 0.05
	if pad <= 0 {
		pad = math.Max(math.Abs(minE)*0.02, 0.01)
	}
	minE -= pad
	maxE += pad
	if maxL == minL {
		maxL += 1
		minL -= 1
	}

	// Layout
	w := float64(opt.Width)
	h := float64(opt.Height)
	mLeft := 70.0
	mRight := 20.0
	mTop := 24.0
	mBottom := 40.0
	plotW := w - mLeft - mRight
	plotH := h - mTop - mBottom
	if plotW <= 10 || plotH <= 10 {
		return nil, fmt.Errorf("invalid chart size")
	}

	gap := 14.0
	eqH := plotH * 0.72
	levH := plotH - eqH - gap
	if levH < 60 {
		levH = 60
		eqH = plotH - levH - gap
	}
	eqTop := mTop
	levTop := eqTop + eqH + gap

	eqToY := func(e float64) float64 {
		r := (e - minE) / (maxE - minE)
		r = math.Max(0, math.Min(1, r))
		return eqTop + (1.0-r)*eqH
	}
	levToY := func(l float64) float64 {
		r := (l - minL) / (maxL - minL)
		r = math.Max(0, math.Min(1, r))
		return levTop + (1.0-r)*levH
	}

	n := res.Len()
	step := plotW / float64(n)
	xAt := func(i int) float64 {
		return mLeft + (float64(i)+0.5)*step
	}

	bg := "#0b1220"
	grid := "rgba(255,255,255,0.08)"
	line := "#38bdf8"
	up := "#ef4444"
	down := "#22c55e"
	levCol := "rgba(250,204,21,0.9)"
	txt := "rgba(255,255,255,0.85)"
	font := `font-family="ui-monospace, Menlo, Monaco, Consolas, monospace"`

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	buf.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="` + strconv.Itoa(opt.Width) + `" height="` + strconv.Itoa(opt.Height) + `" viewBox="0 0 ` + strconv.Itoa(opt.Width) + ` ` + strconv.Itoa(opt.Height) + `">` + "\n")
	buf.WriteString(`<rect x="0" y="0" width="100%" height="100%" fill="` + bg + `"/>` + "\n")

	// Header
	firstD := res.Dates[0].Format("2006-01-02")
	lastD := res.Dates[n-1].Format("2006-01-02")
	title = strings.TrimSpace(title)
	if title == "" {
		title = "EQUITY"
	}
	buf.WriteString(`<text x="` + fmtFloat(mLeft) + `" y="16" fill="` + txt + `" font-size="14" ` + font + `>` +
		html.EscapeString(title) + `  ` + html.EscapeString(firstD) + ` ~ ` + html.EscapeString(lastD) +
		`  ` + html.EscapeString(fmtPct(res.Metrics.TotalReturn)) + `</text>` + "\n")

	// Grid: equity lines (5)
	for k := 0; k <= 5; k++ {
		y := eqTop + (float64(k)/5.0)*eqH
		buf.WriteString(`<line x1="` + fmtFloat(mLeft) + `" y1="` + fmtFloat(y) + `" x2="` + fmtFloat(mLeft+plotW) + `" y2="` + fmtFloat(y) + `" stroke="` + grid + `" stroke-width="1"/>` + "\n")
		e := maxE - (float64(k)/5.0)*(maxE-minE)
		buf.WriteString(`<text x="6" y="` + fmtFloat(y+4) + `" fill="` + txt + `" font-size="12" ` + font + `>` +
			html.EscapeString(strconv.FormatFloat(e, 'f', 3, 64)) + `</text>` + "\n")
	}

	// Equity polyline
	var pts strings.Builder
	for i, e := range res.Equity {
		if i > 0 {
			pts.WriteByte(' ')
		}
		pts.WriteString(fmtFloat(xAt(i)) + "," + fmtFloat(eqToY(e)))
	}
	buf.WriteString(`<polyline fill="none" stroke="` + line + `" stroke-width="1.6" points="` + pts.String() + `"/>` + "\n")

	// Event markers
	for _, ev := range res.Events {
		if ev.Index < 0 || ev.Index >= n {
			continue
		}
		col := up
		if ev.Kind == EventDown {
			col = down
		}
		buf.WriteString(`<circle cx="` + fmtFloat(xAt(ev.Index)) + `" cy="` + fmtFloat(eqToY(res.Equity[ev.Index])) + `" r="3" fill="` + col + `"/>` + "\n")
	}

	// Leverage panel (step line)
	buf.WriteString(`<line x1="` + fmtFloat(mLeft) + `" y1="` + fmtFloat(levToY(0)) + `" x2="` + fmtFloat(mLeft+plotW) + `" y2="` + fmtFloat(levToY(0)) + `" stroke="` + grid + `" stroke-width="1"/>` + "\n")
	var lev strings.Builder
	for i, l := range res.Leverage {
		x0 := mLeft + float64(i)*step
		x1 := x0 + step
		y := fmtFloat(levToY(l))
		if i > 0 {
			lev.WriteByte(' ')
		}
		lev.WriteString(fmtFloat(x0) + "," + y + " " + fmtFloat(x1) + "," + y)
	}
	buf.WriteString(`<polyline fill="none" stroke="` + levCol + `" stroke-width="1.2" points="` + lev.String() + `"/>` + "\n")
	buf.WriteString(`<text x="6" y="` + fmtFloat(levTop+12) + `" fill="` + levCol + `" font-size="12" ` + font + `>LEVERAGE ` +
		html.EscapeString(strconv.FormatFloat(maxL, 'f', 2, 64)) + `</text>` + "\n")
	buf.WriteString(`<text x="6" y="` + fmtFloat(levTop+levH) + `" fill="` + levCol + `" font-size="12" ` + font + `>` +
		html.EscapeString(strconv.FormatFloat(minL, 'f', 2, 64)) + `</text>` + "\n")

	// Footer dates
	buf.WriteString(`<text x="` + fmtFloat(mLeft) + `" y="` + fmtFloat(mTop+plotH+mBottom-12) + `" fill="` + txt + `" font-size="12" ` + font + `>` +
		html.EscapeString(firstD) + `</text>` + "\n")
	buf.WriteString(`<text x="` + fmtFloat(mLeft+plotW-70) + `" y="` + fmtFloat(mTop+plotH+mBottom-12) + `" fill="` + txt + `" font-size="12" ` + font + `>` +
		html.EscapeString(lastD) + `</text>` + "\n")

	buf.WriteString(`</svg>` + "\n")
	return buf.Bytes(), nil
}

func fmtFloat(x float64) string {
	// stable compact formatting for SVG attributes
	return strconv.FormatFloat(x, 'f', 2, 64)
}

func fmtPct(x float64) string {
	return strconv.FormatFloat(x*100, 'f', 2, 64) + "%"
}
