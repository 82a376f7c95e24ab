package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"taiexbt/internal/btctl"
	"taiexbt/internal/btd"
	"taiexbt/trading"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "启动 HTTP 服务与网页界面",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "port", Usage: "监听端口（覆盖配置文件）"},
		&cli.StringFlag{Name: "data", Usage: "收盘价 CSV 路径"},
		&cli.StringFlag{Name: "bt-config", Usage: "回测参数文件 backtest.yaml"},
	},
	Action: func(c *cli.Context) error {
		// Serve installs its own signal handling.
		return btd.Serve(btd.Options{
			ConfigPath: resolveConfigPath(),
			Port:       c.Int("port"),
			DataPath:   c.String("data"),
			ParamsPath: c.String("bt-config"),
		})
	},
}

var paramFlags = []cli.Flag{
	&cli.IntFlag{Name: "ma10", Usage: "短均线周期"},
	&cli.IntFlag{Name: "ma20", Usage: "中均线周期"},
	&cli.IntFlag{Name: "ma60", Usage: "长均线周期"},
	&cli.Float64Flag{Name: "x", Usage: "UP 且位于长均线之上时的杠杆"},
	&cli.Float64Flag{Name: "y", Usage: "DOWN 且位于长均线之上时的杠杆"},
	&cli.Float64Flag{Name: "a", Usage: "UP 且位于长均线之下时的杠杆"},
	&cli.Float64Flag{Name: "b", Usage: "DOWN 且位于长均线之下时的杠杆"},
	&cli.Float64Flag{Name: "initial-leverage", Usage: "前两日的杠杆"},
	&cli.Float64Flag{Name: "fee", Usage: "每次换杠杆的手续费率"},
	&cli.Float64Flag{Name: "slippage", Usage: "每次换杠杆的滑价率"},
	&cli.Float64Flag{Name: "max-leverage", Usage: "杠杆绝对值上限"},
}

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "执行一次回测并输出摘要（可选导出 CSV/JSON/SVG/HTML）",
	Flags: append([]cli.Flag{
		&cli.StringFlag{Name: "data", Usage: "收盘价 CSV 路径"},
		&cli.StringFlag{Name: "encoding", Usage: "CSV 编码: utf-8 / big5 / gbk"},
		&cli.StringFlag{Name: "bt-config", Usage: "回测参数文件 backtest.yaml"},
		&cli.StringFlag{Name: "csv-out", Usage: "逐日结果 CSV 输出路径"},
		&cli.StringFlag{Name: "json-out", Usage: "完整结果 JSON 输出路径"},
		&cli.StringFlag{Name: "svg-out", Usage: "权益曲线 SVG 输出路径"},
		&cli.StringFlag{Name: "html-out", Usage: "HTML 报告输出路径"},
		&cli.IntFlag{Name: "max-events", Value: 30, Usage: "终端最多显示的事件数（0 为全部）"},
		&cli.BoolFlag{Name: "color", Value: true, Usage: "终端彩色输出"},
		&cli.StringFlag{Name: "server", Usage: "改为调用已运行的 taiexbt serve（如 http://localhost:19528）"},
		&cli.DurationFlag{Name: "timeout", Value: 30 * time.Second, Usage: "远程请求超时"},
	}, paramFlags...),
	Action: func(c *cli.Context) error {
		if server := c.String("server"); server != "" {
			_, err := btctl.RunRemote(c.Context, btctl.RemoteOptions{
				ServerURL:  server,
				ParamsPath: c.String("bt-config"),
				Overrides:  overridesFrom(c),
				Timeout:    c.Duration("timeout"),
				Color:      c.Bool("color"),
				MaxEvents:  c.Int("max-events"),
			})
			return err
		}
		_, err := btctl.RunBacktest(btctl.RunOptions{
			ConfigPath: resolveConfigPath(),
			DataPath:   c.String("data"),
			Encoding:   c.String("encoding"),
			ParamsPath: c.String("bt-config"),
			Overrides:  overridesFrom(c),
			CSVOut:     c.String("csv-out"),
			JSONOut:    c.String("json-out"),
			SVGOut:     c.String("svg-out"),
			HTMLOut:    c.String("html-out"),
			Color:      c.Bool("color"),
			MaxEvents:  c.Int("max-events"),
		})
		return err
	},
}

var fetchCommand = &cli.Command{
	Name:  "fetch",
	Usage: "从证交所拉取加权指数收盘价并写出 CSV",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "start", Required: true, Usage: "起始日期 2006-01-02"},
		&cli.StringFlag{Name: "end", Usage: "结束日期 2006-01-02（默认今天）"},
		&cli.StringFlag{Name: "out", Value: "data/taiex.csv", Usage: "输出路径"},
		&cli.DurationFlag{Name: "sleep", Value: 3 * time.Second, Usage: "两次请求间隔"},
	},
	Action: func(c *cli.Context) error {
		start, err := parseDay(c.String("start"))
		if err != nil {
			return err
		}
		end := time.Now().In(trading.Location())
		if raw := c.String("end"); raw != "" {
			if end, err = parseDay(raw); err != nil {
				return err
			}
		}
		if end.Before(start) {
			return errors.New("end 不能早于 start")
		}
		_, err = btctl.Fetch(c.Context, btctl.FetchOptions{
			Start: start,
			End:   end,
			Out:   c.String("out"),
			Sleep: c.Duration("sleep"),
		})
		return err
	},
}

func parseDay(raw string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", raw, trading.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("日期格式错误 %q: %w", raw, err)
	}
	return t, nil
}

func overridesFrom(c *cli.Context) btctl.Overrides {
	var o btctl.Overrides
	intFlag := func(name string) *int {
		if !c.IsSet(name) {
			return nil
		}
		v := c.Int(name)
		return &v
	}
	floatFlag := func(name string) *float64 {
		if !c.IsSet(name) {
			return nil
		}
		v := c.Float64(name)
		return &v
	}
	o.MA10Period = intFlag("ma10")
	o.MA20Period = intFlag("ma20")
	o.MA60Period = intFlag("ma60")
	o.X = floatFlag("x")
	o.Y = floatFlag("y")
	o.A = floatFlag("a")
	o.B = floatFlag("b")
	o.InitialLeverage = floatFlag("initial-leverage")
	o.FeeRate = floatFlag("fee")
	o.SlippageRate = floatFlag("slippage")
	o.MaxLeverage = floatFlag("max-leverage")
	return o
}
