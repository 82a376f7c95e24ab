package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taiexbt/backtest"
	"taiexbt/model"
)

func testSeries(t *testing.T) model.Series {
	t.Helper()
	s, err := model.NewSeries([]model.PricePoint{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 100},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Close: 101},
	})
	require.NoError(t, err)
	return s
}

func TestStoreAndLast(t *testing.T) {
	c := NewCache()
	_, ok := c.Last()
	assert.False(t, ok)

	s := testSeries(t)
	c.SetSeries(s, "taiex.csv", 3)
	src, skipped := c.Source()
	assert.Equal(t, "taiex.csv", src)
	assert.Equal(t, 3, skipped)
	assert.Equal(t, 2, c.Series().Len())
	assert.False(t, c.LastUpdated().IsZero())

	first := c.Store(backtest.Run(s, backtest.DefaultParams()))
	second := c.Store(backtest.Run(s, backtest.DefaultParams()))
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	last, ok := c.Last()
	require.True(t, ok)
	assert.Equal(t, second.ID, last.ID)
}

func TestSetSeriesDropsLastRun(t *testing.T) {
	c := NewCache()
	s := testSeries(t)
	c.SetSeries(s, "a.csv", 0)
	c.Store(backtest.Run(s, backtest.DefaultParams()))

	c.SetSeries(s, "b.csv", 0)
	_, ok := c.Last()
	assert.False(t, ok)
}

func TestConcurrentStore(t *testing.T) {
	c := NewCache()
	s := testSeries(t)
	c.SetSeries(s, "a.csv", 0)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Store(backtest.Run(c.Series(), backtest.DefaultParams()))
			_, _ = c.Last()
		}()
	}
	wg.Wait()

	_, ok := c.Last()
	assert.True(t, ok)
}
