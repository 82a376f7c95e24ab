package backtest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// ExportColumns is the header of the per-day export table.
var ExportColumns = []string{
	"date", "close", "ma10", "ma20", "ma60", "leverage",
	"strategy_return", "equity", "up_event_yday", "down_event_yday", "season_up_yday",
}

// WriteCSV writes one row per day. Absent averages are empty cells and the
// boolean flags are 1/0.
func WriteCSV(w io.Writer, res *Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < res.Len(); i++ {
		row := []string{
			res.Dates[i].Format("2006-01-02"),
			formatF(res.Close[i]),
			formatRolling(res.MA10, i),
			formatRolling(res.MA20, i),
			formatRolling(res.MA60, i),
			formatF(res.Leverage[i]),
			formatF(res.StrategyReturn[i]),
			formatF(res.Equity[i]),
			formatBool(res.UpEvent[i]),
			formatBool(res.DownEvent[i]),
			formatBool(res.SeasonUp[i]),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteResultJSON(w io.Writer, res *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func formatF(f float64) string {
	if f == 0 {
		// drop the sign of negative zero
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatRolling(r RollingSeries, i int) string {
	v, ok := r.At(i)
	if !ok {
		return ""
	}
	return formatF(v)
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
