package trading

import (
	"fmt"
	"time"
)

// 台北时区（台湾证券交易所）
var tpe = time.FixedZone("CST", 8*3600)

// Location 返回交易所所在时区
func Location() *time.Location {
	return tpe
}

// Date 构造台北时区零点日期
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, tpe)
}

// IsTradingDay 判断指定日期是否为交易日（周一到周五；不含国定假日，假日由数据源返回空资料处理）
func IsTradingDay(t time.Time) bool {
	weekday := t.In(tpe).Weekday()
	return weekday != time.Saturday && weekday != time.Sunday
}

// TradingDays 返回 [start, end] 区间内的所有候选交易日（按日期升序）
func TradingDays(start, end time.Time) ([]time.Time, error) {
	s := truncateDay(start)
	e := truncateDay(end)
	if e.Before(s) {
		return nil, fmt.Errorf("end date %s is before start date %s", e.Format("2006-01-02"), s.Format("2006-01-02"))
	}

	var days []time.Time
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		if IsTradingDay(d) {
			days = append(days, d)
		}
	}
	return days, nil
}

func truncateDay(t time.Time) time.Time {
	t = t.In(tpe)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, tpe)
}
