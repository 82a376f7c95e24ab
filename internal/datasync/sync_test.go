package datasync

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taiexbt/cache"
	"taiexbt/fetcher"
)

func writeCSV(t *testing.T, path, body string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taiex.csv")
	mod := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	writeCSV(t, path, "date,close\n2024-01-02,100\nbad,1\n", mod)

	c := cache.NewCache()
	got, err := Load(path, c, fetcher.CSVOptions{})
	require.NoError(t, err)
	assert.True(t, got.Equal(mod))
	assert.Equal(t, 1, c.Series().Len())
	source, skipped := c.Source()
	assert.Equal(t, path, source)
	assert.Equal(t, 1, skipped)

	_, err = Load(filepath.Join(t.TempDir(), "none.csv"), c, fetcher.CSVOptions{})
	assert.Error(t, err)
}

func TestReloadIfChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taiex.csv")
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	writeCSV(t, path, "date,close\n2024-01-02,100\n", first)

	c := cache.NewCache()
	mod, err := Load(path, c, fetcher.CSVOptions{})
	require.NoError(t, err)

	_, reloaded, err := reloadIfChanged(path, mod, c, fetcher.CSVOptions{})
	require.NoError(t, err)
	assert.False(t, reloaded)

	second := first.Add(time.Hour)
	writeCSV(t, path, "date,close\n2024-01-02,100\n2024-01-03,101\n", second)
	next, reloaded, err := reloadIfChanged(path, mod, c, fetcher.CSVOptions{})
	require.NoError(t, err)
	assert.True(t, reloaded)
	assert.True(t, next.Equal(second))
	assert.Equal(t, 2, c.Series().Len())

	// A broken file keeps the previous series.
	writeCSV(t, path, "foo,bar\n1,2\n", second.Add(time.Hour))
	kept, reloaded, err := reloadIfChanged(path, next, c, fetcher.CSVOptions{})
	assert.ErrorIs(t, err, fetcher.ErrMissingColumn)
	assert.False(t, reloaded)
	assert.True(t, kept.Equal(next))
	assert.Equal(t, 2, c.Series().Len())
}

func TestRunDataSyncStops(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taiex.csv")
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	writeCSV(t, path, "date,close\n2024-01-02,100\n", first)

	c := cache.NewCache()
	mod, err := Load(path, c, fetcher.CSVOptions{})
	require.NoError(t, err)
	writeCSV(t, path, "date,close\n2024-01-02,100\n2024-01-03,101\n", first.Add(time.Hour))

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		RunDataSync(path, mod, c, stop, SyncOptions{
			Logger:   log.New(io.Discard, "", 0),
			Interval: 10 * time.Millisecond,
		})
		close(done)
	}()

	assert.Eventually(t, func() bool { return c.Series().Len() == 2 }, time.Second, 10*time.Millisecond)
	close(stop)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunDataSync did not stop")
	}
}

func TestRunDataSyncDisabled(t *testing.T) {
	done := make(chan struct{})
	go func() {
		RunDataSync("unused.csv", time.Time{}, cache.NewCache(), nil, SyncOptions{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("zero interval should return immediately")
	}
}
