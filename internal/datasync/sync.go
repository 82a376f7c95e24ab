package datasync

import (
	"fmt"
	"log"
	"os"
	"time"

	"taiexbt/cache"
	"taiexbt/fetcher"
)

type Logger interface {
	Printf(format string, v ...any)
}

type SyncOptions struct {
	Logger   Logger
	Quiet    bool
	Interval time.Duration
	CSV      fetcher.CSVOptions
}

// Load reads path into c and returns the file's modification time.
func Load(path string, c *cache.Cache, opt fetcher.CSVOptions) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("加载收盘价失败: %w", err)
	}
	loaded, err := fetcher.LoadCSV(path, opt)
	if err != nil {
		return time.Time{}, fmt.Errorf("加载收盘价失败: %w", err)
	}
	c.SetSeries(loaded.Series, path, loaded.Skipped)
	if loaded.Skipped > 0 {
		log.Printf("[WARN] %s: 丢弃 %d/%d 行无法解析的数据\n", path, loaded.Skipped, loaded.Rows)
	}
	return info.ModTime(), nil
}

// RunDataSync reloads path into c whenever its modification time moves past
// since. It blocks until stop is closed. A failed reload keeps the old series.
func RunDataSync(path string, since time.Time, c *cache.Cache, stop <-chan struct{}, opt SyncOptions) {
	logger := opt.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opt.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(opt.Interval)
	defer ticker.Stop()

	last := since
	for {
		select {
		case <-stop:
			if !opt.Quiet {
				logger.Printf("[sync] stop")
			}
			return

		case <-ticker.C:
			next, reloaded, err := reloadIfChanged(path, last, c, opt.CSV)
			if err != nil {
				logger.Printf("[sync] reload %s failed: %v", path, err)
				continue
			}
			last = next
			if reloaded && !opt.Quiet {
				logger.Printf("[sync] %s reloaded: %d days", path, c.Series().Len())
			}
		}
	}
}

func reloadIfChanged(path string, last time.Time, c *cache.Cache, opt fetcher.CSVOptions) (time.Time, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return last, false, err
	}
	if !info.ModTime().After(last) {
		return last, false, nil
	}
	mod, err := Load(path, c, opt)
	if err != nil {
		return last, false, err
	}
	return mod, true, nil
}
