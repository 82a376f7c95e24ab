package btctl

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"taiexbt/backtest"
	"taiexbt/config"
	"taiexbt/fetcher"
	"taiexbt/internal/terminalui"
)

// Overrides 命令行覆盖的策略参数，nil 表示沿用配置文件
type Overrides struct {
	MA10Period *int
	MA20Period *int
	MA60Period *int

	X *float64
	Y *float64
	A *float64
	B *float64

	InitialLeverage *float64
	FeeRate         *float64
	SlippageRate    *float64
	MaxLeverage     *float64
}

func (o Overrides) apply(p backtest.Params) backtest.Params {
	p = p.Clone()
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	setFloat := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	setInt(&p.MA10Period, o.MA10Period)
	setInt(&p.MA20Period, o.MA20Period)
	setInt(&p.MA60Period, o.MA60Period)
	setFloat(&p.X, o.X)
	setFloat(&p.Y, o.Y)
	setFloat(&p.A, o.A)
	setFloat(&p.B, o.B)
	setFloat(&p.InitialLeverage, o.InitialLeverage)
	setFloat(&p.FeeRate, o.FeeRate)
	setFloat(&p.SlippageRate, o.SlippageRate)
	if o.MaxLeverage != nil {
		p = p.WithMaxLeverage(*o.MaxLeverage)
	}
	return p
}

// RunOptions 单次回测参数
type RunOptions struct {
	// 服务配置 config.yaml；提供数据路径、编码、列名与 backtest.yaml 路径
	ConfigPath string

	// 以下字段非空时覆盖配置文件
	DataPath   string
	Encoding   string
	ParamsPath string
	Overrides  Overrides

	// 输出文件（为空则不输出）
	CSVOut  string
	JSONOut string
	SVGOut  string
	HTMLOut string

	// 终端摘要输出（默认 stdout）
	Stdout    io.Writer
	Color     bool
	MaxEvents int
}

// RunBacktest 加载收盘价与参数，执行回测，打印摘要并写出结果文件
func RunBacktest(opts RunOptions) (*backtest.Result, error) {
	cfg := config.GetConfig(opts.ConfigPath)
	dataPath := cfg.DataPath
	if opts.DataPath != "" {
		dataPath = opts.DataPath
	}
	encoding := cfg.DataEncoding
	if opts.Encoding != "" {
		encoding = opts.Encoding
	}
	paramsPath := cfg.BacktestConfig
	if opts.ParamsPath != "" {
		paramsPath = opts.ParamsPath
	}

	loaded, err := fetcher.LoadCSV(dataPath, fetcher.CSVOptions{
		Encoding:    encoding,
		DateColumn:  cfg.DateColumn,
		CloseColumn: cfg.CloseColumn,
	})
	if err != nil {
		return nil, fmt.Errorf("加载收盘价失败: %w", err)
	}
	if loaded.Skipped > 0 {
		log.Printf("[WARN] %s: 丢弃 %d/%d 行无法解析的数据\n", dataPath, loaded.Skipped, loaded.Rows)
	}

	params, found, err := backtest.LoadParamsOrDefault(paramsPath)
	if err != nil {
		return nil, fmt.Errorf("加载回测参数失败: %w", err)
	}
	if !found {
		log.Printf("[WARN] 未找到回测参数文件 %s，使用默认参数\n", paramsPath)
	}
	params = opts.Overrides.apply(params)
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("回测参数无效: %w", err)
	}

	res := backtest.Run(loaded.Series, params)
	if err := res.CheckFinite(); err != nil {
		return nil, fmt.Errorf("回测结果溢出，请降低杠杆: %w", err)
	}

	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	source := filepath.Base(dataPath)
	terminalui.RenderSummary(out, source, res, terminalui.Options{Color: opts.Color, MaxEvents: opts.MaxEvents})

	if err := writeResultFiles(opts, source, res); err != nil {
		return res, err
	}
	return res, nil
}

func writeResultFiles(opts RunOptions, source string, res *backtest.Result) error {
	if opts.CSVOut != "" {
		data, err := render(func(b *bytes.Buffer) error { return backtest.WriteCSV(b, res) })
		if err != nil {
			return fmt.Errorf("生成 CSV 失败: %w", err)
		}
		if err := writeOutput(opts.CSVOut, data); err != nil {
			return err
		}
		log.Printf("[INFO] CSV 已写入 %s\n", opts.CSVOut)
	}

	if opts.JSONOut != "" {
		data, err := render(func(b *bytes.Buffer) error { return backtest.WriteResultJSON(b, res) })
		if err != nil {
			return fmt.Errorf("生成 JSON 失败: %w", err)
		}
		if err := writeOutput(opts.JSONOut, data); err != nil {
			return err
		}
		log.Printf("[INFO] JSON 已写入 %s\n", opts.JSONOut)
	}

	if opts.SVGOut != "" {
		svg, err := backtest.RenderEquitySVG(source, res, backtest.SVGChartOptions{})
		if err != nil {
			// 数据不足两天时无法画图，不视为失败
			log.Printf("[WARN] 跳过权益曲线: %v\n", err)
		} else if err := writeOutput(opts.SVGOut, svg); err != nil {
			return err
		} else {
			log.Printf("[INFO] SVG 已写入 %s\n", opts.SVGOut)
		}
	}

	if opts.HTMLOut != "" {
		if err := writeReportHTML(opts.HTMLOut, source, res); err != nil {
			return fmt.Errorf("生成 HTML 报告失败: %w", err)
		}
		log.Printf("[INFO] HTML 报告已写入 %s\n", opts.HTMLOut)
	}
	return nil
}
