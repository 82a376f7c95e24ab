package fetcher

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"taiexbt/model"
	"taiexbt/trading"
)

var (
	ErrMissingColumn   = errors.New("required column not found")
	ErrEmptyCSV        = errors.New("csv has no header row")
	ErrUnknownEncoding = errors.New("unknown encoding")
)

// 默认列名别名（台湾证交所导出使用繁体中文表头）
var (
	dateAliases  = []string{"date", "交易日期", "日期"}
	closeAliases = []string{"close", "收盤", "收盘", "taiex_close", "收盤指數", "收盘指数"}
)

// 民国纪年日期，如 113/01/02
var rocDateRe = regexp.MustCompile(`^(\d{2,3})/(\d{1,2})/(\d{1,2})$`)

var dateLayouts = []string{"2006-01-02", "2006/01/02", "20060102", "2006-1-2", "2006/1/2"}

// CSVOptions CSV 读取选项
type CSVOptions struct {
	Encoding    string // utf-8（默认）/ big5 / gbk
	DateColumn  string // 为空时按别名自动识别
	CloseColumn string
}

// LoadResult 读取结果
type LoadResult struct {
	Series  model.Series
	Rows    int // 数据行数（不含表头）
	Skipped int // 日期或收盘价无法解析而丢弃的行数
}

// LoadCSV 从文件读取日线收盘价
func LoadCSV(path string, opt CSVOptions) (LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("打开数据文件失败: %w", err)
	}
	defer f.Close()
	return ParseCSV(f, opt)
}

// ParseCSV 解析 CSV：丢弃无效行，按日期升序排序后构建 model.Series
func ParseCSV(r io.Reader, opt CSVOptions) (LoadResult, error) {
	reader, err := decodeReader(r, opt.Encoding)
	if err != nil {
		return LoadResult{}, err
	}

	cr := csv.NewReader(reader)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return LoadResult{}, ErrEmptyCSV
	}
	if err != nil {
		return LoadResult{}, fmt.Errorf("读取表头失败: %w", err)
	}

	dateIdx := findColumn(header, opt.DateColumn, dateAliases)
	if dateIdx < 0 {
		return LoadResult{}, fmt.Errorf("%w: date (header=%v)", ErrMissingColumn, header)
	}
	closeIdx := findColumn(header, opt.CloseColumn, closeAliases)
	if closeIdx < 0 {
		return LoadResult{}, fmt.Errorf("%w: close (header=%v)", ErrMissingColumn, header)
	}

	var out LoadResult
	var points []model.PricePoint
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return LoadResult{}, fmt.Errorf("读取第 %d 行失败: %w", out.Rows+2, err)
		}
		out.Rows++
		if dateIdx >= len(rec) || closeIdx >= len(rec) {
			out.Skipped++
			continue
		}
		d, ok := ParseDate(rec[dateIdx])
		if !ok {
			out.Skipped++
			continue
		}
		c, ok := ParseClose(rec[closeIdx])
		if !ok {
			out.Skipped++
			continue
		}
		points = append(points, model.PricePoint{Date: d, Close: c})
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	out.Series, err = model.NewSeries(points)
	if err != nil {
		return LoadResult{}, err
	}
	return out, nil
}

// ParseDate 支持 ISO、斜线、紧凑格式以及民国纪年
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	if m := rocDateRe.FindStringSubmatch(s); len(m) == 4 {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		if mo < 1 || mo > 12 || d < 1 || d > 31 {
			return time.Time{}, false
		}
		t := trading.Date(y+1911, time.Month(mo), d)
		if t.Day() != d {
			return time.Time{}, false
		}
		return t, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, trading.Location()); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseClose 去掉千分位逗号，拒绝 NaN/Inf/非正数
func ParseClose(raw string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" || s == "--" || s == "---" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		// 去掉 Excel 导出的 BOM
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	case "big5", "cp950":
		return transform.NewReader(r, traditionalchinese.Big5.NewDecoder()), nil
	case "gbk", "gb2312":
		return transform.NewReader(r, simplifiedchinese.GBK.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, encoding)
	}
}

func findColumn(header []string, explicit string, aliases []string) int {
	names := aliases
	if strings.TrimSpace(explicit) != "" {
		names = []string{explicit}
	}
	for _, name := range names {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
				return i
			}
		}
	}
	return -1
}
