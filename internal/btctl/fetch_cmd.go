package btctl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"taiexbt/fetcher"
)

// FetchOptions 从证交所拉取加权指数收盘价
type FetchOptions struct {
	Start time.Time
	End   time.Time
	Out   string

	// 两次请求之间的间隔，避免触发限流
	Sleep time.Duration

	// 测试用，为空时使用 fetcher.DefaultTWSEBaseURL
	BaseURL string
}

// Fetch 拉取 [Start, End] 的收盘价并写出 date,taiex_close CSV，返回写出的天数。
// ctx 取消时仍写出已拉取的部分。
func Fetch(ctx context.Context, opts FetchOptions) (int, error) {
	if opts.Out == "" {
		return 0, errors.New("未指定输出路径")
	}

	f := fetcher.NewTWSEFetcher().WithLogger(log.Default())
	if opts.BaseURL != "" {
		f = f.WithBaseURL(opts.BaseURL)
	}

	log.Printf("[FETCH] %s ~ %s\n", opts.Start.Format("2006-01-02"), opts.End.Format("2006-01-02"))
	points, fetchErr := f.FetchRange(ctx, opts.Start, opts.End, opts.Sleep)
	if fetchErr != nil && len(points) == 0 {
		return 0, fmt.Errorf("拉取失败: %w", fetchErr)
	}

	data, err := render(func(b *bytes.Buffer) error { return fetcher.WriteCSV(b, points) })
	if err != nil {
		return 0, err
	}
	if err := writeOutput(opts.Out, data); err != nil {
		return 0, err
	}
	log.Printf("[FETCH] 已写入 %d 天到 %s\n", len(points), opts.Out)

	if fetchErr != nil {
		return len(points), fmt.Errorf("拉取中断: %w", fetchErr)
	}
	return len(points), nil
}
