package btctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"taiexbt/backtest"
	"taiexbt/cache"
	"taiexbt/internal/terminalui"
)

// RemoteOptions 通过已运行的 taiexbt serve 执行回测
type RemoteOptions struct {
	ServerURL  string
	ParamsPath string
	Overrides  Overrides
	Timeout    time.Duration

	Stdout    io.Writer
	Color     bool
	MaxEvents int
}

// remoteParams 总是携带 max_leverage，null 让服务端不设上限
type remoteParams struct {
	backtest.Params
	MaxLeverage *float64 `json:"max_leverage"`
}

type runResponse struct {
	Code  int       `json:"code"`
	Data  cache.Run `json:"data"`
	Error string    `json:"error"`
}

// RunRemote 把参数 POST 到 /api/backtest，并在终端打印返回的结果
func RunRemote(ctx context.Context, opts RemoteOptions) (cache.Run, error) {
	params, _, err := backtest.LoadParamsOrDefault(opts.ParamsPath)
	if err != nil {
		return cache.Run{}, fmt.Errorf("加载回测参数失败: %w", err)
	}
	params = opts.Overrides.apply(params)

	body, err := json.Marshal(remoteParams{Params: params, MaxLeverage: params.MaxLeverage})
	if err != nil {
		return cache.Run{}, err
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	base := strings.TrimRight(opts.ServerURL, "/")
	var out runResponse
	if err := postJSON(ctx, client, base+"/api/backtest", body, &out); err != nil {
		return cache.Run{}, err
	}

	w := opts.Stdout
	if w == nil {
		w = os.Stdout
	}
	terminalui.RenderSummary(w, base, out.Data.Result, terminalui.Options{Color: opts.Color, MaxEvents: opts.MaxEvents})
	return out.Data, nil
}

func postJSON(ctx context.Context, client *http.Client, url string, body []byte, out *runResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: http %d: %w", url, resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s: http %d: %s", url, resp.StatusCode, out.Error)
	}
	if out.Code != 0 {
		return fmt.Errorf("%s: code %d", url, out.Code)
	}
	return nil
}
