package cache

import (
	"sync"
	"time"

	"github.com/gofrs/uuid"

	"taiexbt/backtest"
	"taiexbt/model"
)

// Run 一次回测结果（仅保留最近一次，用于导出）
type Run struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Result    *backtest.Result `json:"result"`
}

// Cache 保存已加载的价格序列与最近一次回测
type Cache struct {
	mu          sync.RWMutex
	series      model.Series
	source      string
	skipped     int
	lastUpdated time.Time
	last        *Run
}

// NewCache 创建缓存
func NewCache() *Cache {
	return &Cache{}
}

// SetSeries 替换价格序列，并清空旧的回测结果
func (c *Cache) SetSeries(s model.Series, source string, skipped int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.series = s
	c.source = source
	c.skipped = skipped
	c.lastUpdated = time.Now()
	c.last = nil
}

// Series 当前价格序列
func (c *Cache) Series() model.Series {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.series
}

// Source 数据来源与被丢弃行数
func (c *Cache) Source() (string, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.source, c.skipped
}

// LastUpdated 序列加载时间
func (c *Cache) LastUpdated() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUpdated
}

// Store 保存回测结果并分配 ID
func (c *Cache) Store(res *backtest.Result) Run {
	run := Run{
		ID:        newRunID(),
		CreatedAt: time.Now(),
		Result:    res,
	}
	c.mu.Lock()
	c.last = &run
	c.mu.Unlock()
	return run
}

// Last 最近一次回测
func (c *Cache) Last() (Run, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return Run{}, false
	}
	return *c.last, true
}

func newRunID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return time.Now().Format("20060102150405.000000000")
	}
	return id.String()
}
