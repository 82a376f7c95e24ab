package terminalui

import (
	"fmt"
	"io"
	"strings"

	"taiexbt/backtest"
)

const ruleWidth = 74

type Options struct {
	// Color enables ANSI colors (red up, green down).
	Color bool

	// MaxEvents limits the events table; <= 0 prints all of them.
	MaxEvents int
}

// RenderSummary prints the metrics block and the events table of one run.
func RenderSummary(w io.Writer, source string, res *backtest.Result, opt Options) {
	top := "╔" + strings.Repeat("═", ruleWidth) + "╗"
	mid := "╠" + strings.Repeat("═", ruleWidth) + "╣"
	thin := "╟" + strings.Repeat("─", ruleWidth) + "╢"
	bottom := "╚" + strings.Repeat("═", ruleWidth) + "╝"

	fmt.Fprintln(w, top)
	fmt.Fprintf(w, "  均线杠杆回测  %s\n", source)
	fmt.Fprintln(w, mid)

	if res == nil || res.Len() == 0 {
		fmt.Fprintln(w, "  无数据")
		fmt.Fprintln(w, bottom)
		return
	}

	m := res.Metrics
	p := res.Params
	fmt.Fprintf(w, "  区间: %s ~ %s  (%d 个交易日)\n",
		m.StartDate.Format("2006-01-02"), m.EndDate.Format("2006-01-02"), m.Days)
	fmt.Fprintf(w, "  均线: %d/%d/%d  X=%g Y=%g A=%g B=%g  初始杠杆=%g\n",
		p.MA10Period, p.MA20Period, p.MA60Period, p.X, p.Y, p.A, p.B, p.InitialLeverage)
	capText := "无"
	if p.MaxLeverage != nil {
		capText = fmt.Sprintf("%g", *p.MaxLeverage)
	}
	fmt.Fprintf(w, "  成本: 手续费=%g 滑价=%g  杠杆上限=%s\n", p.FeeRate, p.SlippageRate, capText)
	fmt.Fprintln(w, thin)

	fmt.Fprintf(w, "  总报酬    %s\n", colorize(opt.Color, m.TotalReturn, fmt.Sprintf("%+.2f%%", m.TotalReturn*100)))
	fmt.Fprintf(w, "  最大回撤  %.2f%%\n", m.MaxDrawdown*100)
	fmt.Fprintf(w, "  胜率      %.2f%%\n", m.WinRate*100)
	fmt.Fprintf(w, "  交易次数  %d\n", m.TradesCount)
	fmt.Fprintf(w, "  期末净值  %.4f\n", m.FinalEquity)
	fmt.Fprintf(w, "  事件数    %d\n", m.EventCount)

	fmt.Fprintln(w, mid)
	fmt.Fprintln(w, "  【事件】")
	fmt.Fprintln(w, "  执行日       确认日       事件  趋势         杠杆")
	fmt.Fprintln(w, thin)

	events := res.Events
	if opt.MaxEvents > 0 && len(events) > opt.MaxEvents {
		events = events[len(events)-opt.MaxEvents:]
		fmt.Fprintf(w, "  ... 省略 %d 条，仅显示最近 %d 条\n", len(res.Events)-len(events), len(events))
	}
	if len(events) == 0 {
		fmt.Fprintln(w, "  (无)")
	}
	for _, e := range events {
		fmt.Fprintf(w, "  %s   %s   %-4s  %-11s  %s\n",
			e.ActionDate.Format("2006-01-02"),
			e.EventDate.Format("2006-01-02"),
			string(e.Kind),
			string(e.Regime),
			colorize(opt.Color, e.Leverage, fmt.Sprintf("%+g", e.Leverage)),
		)
	}

	fmt.Fprintln(w, bottom)
}

func colorize(enabled bool, v float64, text string) string {
	if !enabled {
		return text
	}
	return colorByChange(v) + text + "\033[0m"
}

func colorByChange(change float64) string {
	if change > 0 {
		return "\033[31m"
	}
	if change < 0 {
		return "\033[32m"
	}
	return "\033[37m"
}
