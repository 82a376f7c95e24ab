package btctl

import (
	"bytes"
	"encoding/json"
	"html"
	"strings"

	"taiexbt/backtest"
)

type reportPayload struct {
	Source string           `json:"source"`
	Result *backtest.Result `json:"result"`
}

func writeReportHTML(path, source string, res *backtest.Result) error {
	raw, err := json.Marshal(reportPayload{Source: source, Result: res})
	if err != nil {
		return err
	}

	// 图表直接内联；数据不足时只输出表格
	svg, svgErr := backtest.RenderEquitySVG(source, res, backtest.SVGChartOptions{})

	var b bytes.Buffer
	b.WriteString("<!doctype html>\n")
	b.WriteString("<html lang=\"zh-TW\">\n<head>\n")
	b.WriteString("  <meta charset=\"utf-8\" />\n")
	b.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\" />\n")
	b.WriteString("  <title>均线杠杆回测报告 - " + html.EscapeString(source) + "</title>\n")
	b.WriteString("  <style>\n")
	b.WriteString(cssReport())
	b.WriteString("  </style>\n")
	b.WriteString("</head>\n<body>\n")

	b.WriteString("  <header class=\"hdr\">\n")
	b.WriteString("    <div class=\"title\">均线杠杆回测报告</div>\n")
	b.WriteString("    <div class=\"meta\" id=\"meta\"></div>\n")
	b.WriteString("  </header>\n")

	b.WriteString("  <main class=\"grid\">\n")
	b.WriteString("    <section class=\"card wide\">\n")
	b.WriteString("      <div class=\"card-hd\">绩效</div>\n")
	b.WriteString("      <div class=\"metrics\" id=\"metrics\"></div>\n")
	b.WriteString("    </section>\n")

	b.WriteString("    <section class=\"card wide\">\n")
	b.WriteString("      <div class=\"card-hd\">权益曲线</div>\n")
	if svgErr == nil {
		b.WriteString("      <div class=\"chart\">")
		b.Write(stripXMLHeader(svg))
		b.WriteString("</div>\n")
	} else {
		b.WriteString("      <div class=\"empty\">" + html.EscapeString(svgErr.Error()) + "</div>\n")
	}
	b.WriteString("    </section>\n")

	b.WriteString("    <section class=\"card\">\n")
	b.WriteString("      <div class=\"card-hd\">事件</div>\n")
	b.WriteString("      <div class=\"table-wrap\">\n")
	b.WriteString("        <table class=\"tbl\">\n")
	b.WriteString("          <thead><tr><th>执行日</th><th>确认日</th><th>事件</th><th>趋势</th><th>杠杆</th></tr></thead>\n")
	b.WriteString("          <tbody id=\"events\"></tbody>\n")
	b.WriteString("        </table>\n")
	b.WriteString("      </div>\n")
	b.WriteString("    </section>\n")

	b.WriteString("    <section class=\"card\">\n")
	b.WriteString("      <div class=\"card-hd\">前 20 行</div>\n")
	b.WriteString("      <div class=\"table-wrap\">\n")
	b.WriteString("        <table class=\"tbl\">\n")
	b.WriteString("          <thead><tr><th>日期</th><th>收盘</th><th>MA10</th><th>MA20</th><th>MA60</th><th>杠杆</th><th>策略报酬</th><th>净值</th></tr></thead>\n")
	b.WriteString("          <tbody id=\"preview\"></tbody>\n")
	b.WriteString("        </table>\n")
	b.WriteString("      </div>\n")
	b.WriteString("    </section>\n")
	b.WriteString("  </main>\n")

	b.WriteString("  <script type=\"application/json\" id=\"report-data\">")
	b.WriteString(strings.ReplaceAll(string(raw), "</", "<\\/"))
	b.WriteString("</script>\n")
	b.WriteString("  <script>\n")
	b.WriteString(jsReport())
	b.WriteString("  </script>\n")

	b.WriteString("</body>\n</html>\n")

	return writeOutput(path, b.Bytes())
}

func stripXMLHeader(svg []byte) []byte {
	if i := bytes.Index(svg, []byte("<svg")); i > 0 {
		return svg[i:]
	}
	return svg
}

func cssReport() string {
	return `
:root {
  --bg: #0b1220;
  --panel: rgba(255,255,255,0.06);
  --txt: rgba(255,255,255,0.88);
  --muted: rgba(255,255,255,0.62);
  --grid: rgba(255,255,255,0.10);
  --up: #ef4444;
  --down: #22c55e;
  --mono: ui-monospace, Menlo, Monaco, Consolas, "Liberation Mono", monospace;
  --sans: ui-sans-serif, system-ui, -apple-system, Segoe UI, Roboto, "Noto Sans", "Helvetica Neue", Arial;
}
* { box-sizing: border-box; }
body { margin:0; background: var(--bg); color: var(--txt); font-family: var(--sans); }
.hdr { padding: 18px 18px 10px 18px; border-bottom: 1px solid var(--grid); display:flex; align-items: baseline; gap: 12px; }
.title { font-size: 18px; font-weight: 700; }
.meta { font-family: var(--mono); color: var(--muted); font-size: 12px; }
.grid { padding: 14px 18px 20px 18px; display:grid; grid-template-columns: 1fr 1fr; gap: 14px; }
@media (max-width: 1050px) { .grid { grid-template-columns: 1fr; } }
.card { background: var(--panel); border: 1px solid var(--grid); border-radius: 14px; overflow: hidden; }
.card.wide { grid-column: 1 / -1; }
.card-hd { padding: 10px 12px; font-size: 13px; font-weight: 700; color: var(--muted); border-bottom: 1px solid var(--grid); }
.metrics { padding: 12px; display:grid; grid-template-columns: repeat(auto-fill, minmax(150px, 1fr)); gap: 10px; }
.metric { border: 1px solid var(--grid); border-radius: 10px; padding: 10px; }
.metric .k { color: var(--muted); font-size: 12px; }
.metric .v { font-family: var(--mono); font-size: 18px; margin-top: 4px; }
.chart svg { width: 100%; height: auto; display:block; }
.empty { padding: 14px 12px; color: var(--muted); font-family: var(--mono); font-size: 12px; }
.table-wrap { overflow:auto; max-height: 520px; }
.tbl { width: 100%; border-collapse: collapse; font-family: var(--mono); font-size: 12px; }
.tbl thead th { position: sticky; top: 0; background: rgba(10,16,30,0.92); border-bottom: 1px solid var(--grid); color: var(--muted); text-align: left; padding: 8px 10px; white-space: nowrap; }
.tbl tbody td { border-bottom: 1px solid rgba(255,255,255,0.06); padding: 7px 10px; white-space: nowrap; }
.up { color: var(--up); }
.down { color: var(--down); }
`
}

func jsReport() string {
	return `
function day(s) { return String(s || "").substring(0, 10); }
function num(x, d) {
  if (x === null || x === undefined) return "";
  const v = Number(x);
  if (!Number.isFinite(v)) return "";
  return v.toFixed(d);
}
function pct(x) { return num(Number(x) * 100, 2) + "%"; }
function cls(v) { return v > 0 ? "up" : (v < 0 ? "down" : ""); }
function td(tr, text, className) {
  const el = document.createElement("td");
  el.textContent = text;
  if (className) el.className = className;
  tr.appendChild(el);
}

const rep = JSON.parse(document.getElementById("report-data").textContent || "{}");
const res = rep.result || {};
const m = res.metrics || {};
const p = res.params || {};

document.getElementById("meta").textContent =
  (rep.source || "") + "  |  " + day(m.start_date) + " ~ " + day(m.end_date) + " (" + (m.days || 0) + " 天)" +
  "  |  MA " + p.ma10_period + "/" + p.ma20_period + "/" + p.ma60_period +
  "  X=" + p.x + " Y=" + p.y + " A=" + p.a + " B=" + p.b +
  (p.max_leverage ? "  上限=" + p.max_leverage : "");

const metrics = document.getElementById("metrics");
[
  ["总报酬", pct(m.total_return), cls(m.total_return)],
  ["最大回撤", pct(m.max_drawdown), ""],
  ["胜率", pct(m.win_rate), ""],
  ["交易次数", String(m.trades_count || 0), ""],
  ["期末净值", num(m.final_equity, 4), ""],
  ["事件数", String(m.event_count || 0), ""],
].forEach(function(row) {
  const box = document.createElement("div");
  box.className = "metric";
  const k = document.createElement("div"); k.className = "k"; k.textContent = row[0];
  const v = document.createElement("div"); v.className = "v " + row[2]; v.textContent = row[1];
  box.appendChild(k); box.appendChild(v);
  metrics.appendChild(box);
});

const events = document.getElementById("events");
(res.events || []).forEach(function(e) {
  const tr = document.createElement("tr");
  td(tr, day(e.action_date));
  td(tr, day(e.event_date));
  td(tr, e.kind, e.kind === "UP" ? "up" : "down");
  td(tr, e.regime);
  td(tr, String(e.leverage), cls(e.leverage));
  events.appendChild(tr);
});

const preview = document.getElementById("preview");
const dates = res.dates || [];
for (let i = 0; i < Math.min(20, dates.length); i++) {
  const tr = document.createElement("tr");
  td(tr, day(dates[i]));
  td(tr, num(res.close[i], 2));
  td(tr, num(res.ma10[i], 2));
  td(tr, num(res.ma20[i], 2));
  td(tr, num(res.ma60[i], 2));
  td(tr, String(res.leverage[i]), cls(res.leverage[i]));
  td(tr, pct(res.strategy_return[i]), cls(res.strategy_return[i]));
  td(tr, num(res.equity[i], 4));
  preview.appendChild(tr);
}
`
}
