package api

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taiexbt/backtest"
	"taiexbt/cache"
)

// Server HTTP服务器
type Server struct {
	engine   *gin.Engine
	server   *http.Server
	cache    *cache.Cache
	defaults backtest.Params
	staticFS fs.FS
}

// NewServer 创建服务器；defaults 为未指定字段时使用的策略参数
func NewServer(c *cache.Cache, port int, defaults backtest.Params, staticFS fs.FS) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(loggerMiddleware())

	s := &Server{
		engine:   engine,
		cache:    c,
		defaults: defaults.Clone(),
		staticFS: staticFS,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: engine,
		},
	}

	s.setupRoutes()
	return s
}

// Handler 返回底层 http.Handler（测试用）
func (s *Server) Handler() http.Handler {
	return s.engine
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	handler := NewHandler(s.cache, s.defaults)

	api := s.engine.Group("/api")
	{
		// 数据
		api.GET("/prices", handler.GetPrices)
		api.GET("/status", handler.GetStatus)

		// 回测
		api.GET("/params/default", handler.GetDefaultParams)
		api.POST("/backtest", handler.RunBacktest)
		api.GET("/backtest/last", handler.GetLastRun)

		// 导出
		api.GET("/export.csv", handler.ExportCSV)
		api.GET("/chart.svg", handler.ChartSVG)
	}

	// 健康检查
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 静态文件服务 (嵌入的前端)
	if s.staticFS != nil {
		s.engine.StaticFS("/static", http.FS(s.staticFS))
		s.engine.GET("/", func(c *gin.Context) {
			data, err := fs.ReadFile(s.staticFS, "index.html")
			if err != nil {
				c.String(http.StatusNotFound, "index.html not found")
				return
			}
			c.Data(http.StatusOK, "text/html; charset=utf-8", data)
		})
	}
}

// Start 启动服务器
func (s *Server) Start() error {
	log.Printf("[API] 服务启动在 http://localhost%s\n", s.server.Addr)
	log.Println("[API] 可用接口:")
	log.Println("  GET  /api/prices          - 价格序列预览")
	log.Println("  GET  /api/status          - 服务状态")
	log.Println("  GET  /api/params/default  - 默认策略参数")
	log.Println("  POST /api/backtest        - 执行回测")
	log.Println("  GET  /api/backtest/last   - 最近一次回测")
	log.Println("  GET  /api/export.csv      - 导出最近一次回测 CSV")
	log.Println("  GET  /api/chart.svg       - 权益曲线 SVG")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown 优雅关闭服务器
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// loggerMiddleware 日志中间件
func loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		log.Printf("[API] %s %s %d %v\n", c.Request.Method, path, status, latency)
	}
}

// corsMiddleware CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
