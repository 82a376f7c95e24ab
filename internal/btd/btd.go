package btd

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taiexbt"
	"taiexbt/api"
	"taiexbt/backtest"
	"taiexbt/cache"
	"taiexbt/config"
	"taiexbt/fetcher"
	"taiexbt/internal/datasync"
)

// Options 服务启动参数，非零值覆盖配置文件
type Options struct {
	ConfigPath string
	Port       int
	DataPath   string
	ParamsPath string
}

// Daemon 已加载数据、尚未启动的服务
type Daemon struct {
	Server *api.Server
	Config *config.Config
	Cache  *cache.Cache

	loadedAt time.Time
}

// Setup 加载配置、收盘价与默认参数，返回未启动的服务
func Setup(opts Options) (*Daemon, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			configPath = "config.yaml"
		}
	}

	cfg := config.GetConfig(configPath)
	if opts.Port > 0 {
		cfg.Port = opts.Port
	}
	if opts.DataPath != "" {
		cfg.DataPath = opts.DataPath
	}
	if opts.ParamsPath != "" {
		cfg.BacktestConfig = opts.ParamsPath
	}

	dataCache := cache.NewCache()
	loadedAt, err := datasync.Load(cfg.DataPath, dataCache, csvOptions(cfg))
	if err != nil {
		return nil, err
	}
	log.Printf("[DATA] 已加载 %d 个交易日 (%s)\n", dataCache.Series().Len(), cfg.DataPath)

	defaults, found, err := backtest.LoadParamsOrDefault(cfg.BacktestConfig)
	if err != nil {
		return nil, fmt.Errorf("加载回测参数失败: %w", err)
	}
	if !found {
		log.Printf("[WARN] 未找到回测参数文件 %s，使用默认参数\n", cfg.BacktestConfig)
	}

	staticFS, err := taiexbt.GetStaticFS()
	if err != nil {
		log.Printf("[WARN] 无法加载前端资源: %v (仅API模式)\n", err)
	}

	var sfs fs.FS
	if err == nil {
		sfs = staticFS
	}

	return &Daemon{
		Server:   api.NewServer(dataCache, cfg.Port, defaults, sfs),
		Config:   cfg,
		Cache:    dataCache,
		loadedAt: loadedAt,
	}, nil
}

func csvOptions(cfg *config.Config) fetcher.CSVOptions {
	return fetcher.CSVOptions{
		Encoding:    cfg.DataEncoding,
		DateColumn:  cfg.DateColumn,
		CloseColumn: cfg.CloseColumn,
	}
}

// Serve 启动 HTTP 服务，收到 SIGINT/SIGTERM 后优雅退出
func Serve(opts Options) error {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	d, err := Setup(opts)
	if err != nil {
		return err
	}

	log.Println("=== 加权指数均线杠杆回测服务 (taiexbt) ===")

	stop := make(chan struct{})
	if d.Config.ReloadInterval > 0 {
		log.Printf("[DATA] 每 %v 检查一次 %s 是否更新\n", d.Config.ReloadInterval, d.Config.DataPath)
		go datasync.RunDataSync(d.Config.DataPath, d.loadedAt, d.Cache, stop, datasync.SyncOptions{
			Logger:   log.Default(),
			Interval: d.Config.ReloadInterval,
			CSV:      csvOptions(d.Config),
		})
	}

	errCh := make(chan error, 1)
	go func() {
		if err := d.Server.Start(); err != nil {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errCh:
		close(stop)
		log.Printf("[ERROR] HTTP服务启动失败: %v\n", err)
		return err
	case <-sigChan:
	}

	log.Println("正在关闭服务...")
	close(stop)
	if err := d.Server.Shutdown(); err != nil {
		return err
	}
	log.Println("服务已关闭")
	return nil
}
