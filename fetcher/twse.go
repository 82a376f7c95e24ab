package fetcher

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"taiexbt/model"
	"taiexbt/trading"
)

// DefaultTWSEBaseURL 证交所每5秒指数统计接口，最后一行即当日收盘
const DefaultTWSEBaseURL = "https://www.twse.com.tw/indicesReport/MI_5MINS"

// 加权指数字段名
const taiexFieldName = "發行量加權股價指數"

// TWSEFetcher 台湾加权指数日收盘拉取器
type TWSEFetcher struct {
	client  *http.Client
	baseURL string
	logger  *log.Logger
}

// NewTWSEFetcher 创建拉取器
func NewTWSEFetcher() *TWSEFetcher {
	return &TWSEFetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: DefaultTWSEBaseURL,
		logger:  log.Default(),
	}
}

// WithBaseURL 替换接口地址（测试或代理）
func (f *TWSEFetcher) WithBaseURL(u string) *TWSEFetcher {
	f.baseURL = strings.TrimRight(strings.TrimSpace(u), "/")
	return f
}

// WithLogger 替换日志输出
func (f *TWSEFetcher) WithLogger(l *log.Logger) *TWSEFetcher {
	if l != nil {
		f.logger = l
	}
	return f
}

type twseResponse struct {
	Stat   string   `json:"stat"`
	Fields []string `json:"fields"`
	Data   [][]any  `json:"data"`
}

// FetchDayClose 获取指定日期收盘；休市或无数据时 ok=false
func (f *TWSEFetcher) FetchDayClose(ctx context.Context, day time.Time) (close float64, ok bool, err error) {
	q := url.Values{}
	q.Set("response", "json")
	q.Set("date", day.In(trading.Location()).Format("20060102"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, false, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; taiexbt/1.0)")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, false, err
	}
	return parseTWSEClose(body)
}

func parseTWSEClose(body []byte) (float64, bool, error) {
	var payload twseResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, false, fmt.Errorf("解析证交所响应失败: %w", err)
	}
	if payload.Stat != "OK" || len(payload.Data) == 0 {
		return 0, false, nil
	}

	last := payload.Data[len(payload.Data)-1]
	idx := -1
	for i, field := range payload.Fields {
		if strings.Contains(field, taiexFieldName) {
			idx = i
			break
		}
	}
	if idx < 0 {
		idx = 0
		if len(last) > 1 {
			idx = 1
		}
	}
	if idx >= len(last) {
		return 0, false, nil
	}

	v, ok := ParseClose(fmt.Sprint(last[idx]))
	return v, ok, nil
}

// FetchRange 逐日拉取 [start, end] 内的收盘价。单日失败只记录警告；ctx 取消时返回已拉取部分与错误。
func (f *TWSEFetcher) FetchRange(ctx context.Context, start, end time.Time, sleep time.Duration) ([]model.PricePoint, error) {
	days, err := trading.TradingDays(start, end)
	if err != nil {
		return nil, err
	}

	var out []model.PricePoint
	for i, day := range days {
		if i > 0 && sleep > 0 {
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			case <-time.After(sleep):
			}
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}

		c, ok, err := f.FetchDayClose(ctx, day)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			f.logger.Printf("[WARN] %s fetch failed: %v\n", day.Format("2006-01-02"), err)
			continue
		}
		if !ok {
			continue
		}
		out = append(out, model.PricePoint{Date: day, Close: c})
	}
	f.logger.Printf("[FETCH] %d/%d days with data\n", len(out), len(days))
	return out, nil
}

// WriteCSV 输出 date,taiex_close 两列，可直接被 LoadCSV 读取
func WriteCSV(w io.Writer, points []model.PricePoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "taiex_close"}); err != nil {
		return err
	}
	for _, p := range points {
		if err := cw.Write([]string{p.DateString(), strconv.FormatFloat(p.Close, 'f', -1, 64)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
