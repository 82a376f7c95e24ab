package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taiexbt/backtest"
	"taiexbt/cache"
)

const exportFilename = "backtest_results.csv"

// Handler API处理器
type Handler struct {
	cache    *cache.Cache
	defaults backtest.Params
}

// NewHandler 创建处理器
func NewHandler(c *cache.Cache, defaults backtest.Params) *Handler {
	return &Handler{cache: c, defaults: defaults}
}

// GetPrices 价格序列预览（默认前20行）
func (h *Handler) GetPrices(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "limit 必须为非负整数",
			})
			return
		}
		limit = n
	}

	series := h.cache.Series()
	source, skipped := h.cache.Source()

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"count":   series.Len(),
		"source":  source,
		"skipped": skipped,
		"data":    series.Head(limit),
	})
}

// GetStatus 获取服务状态
func (h *Handler) GetStatus(c *gin.Context) {
	series := h.cache.Series()
	data := gin.H{
		"days":         series.Len(),
		"last_updated": h.cache.LastUpdated(),
		"has_result":   false,
	}
	if series.Len() > 0 {
		data["first_date"] = series.At(0).DateString()
		data["last_date"] = series.At(series.Len() - 1).DateString()
	}
	if run, ok := h.cache.Last(); ok {
		data["has_result"] = true
		data["last_run_id"] = run.ID
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": data,
	})
}

// GetDefaultParams 默认策略参数
func (h *Handler) GetDefaultParams(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": h.defaults,
	})
}

// RunBacktest 执行回测；请求体中未出现的字段沿用默认参数，max_leverage 为 null 表示不设上限
func (h *Handler) RunBacktest(c *gin.Context) {
	params := h.defaults.Clone()

	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "读取请求失败: " + err.Error(),
		})
		return
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &params); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "参数格式错误: " + err.Error(),
			})
			return
		}
	}
	if err := params.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	res := backtest.Run(h.cache.Series(), params)
	if err := res.CheckFinite(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
		})
		return
	}
	run := h.cache.Store(res)

	c.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": run,
	})
}

// GetLastRun 最近一次回测结果
func (h *Handler) GetLastRun(c *gin.Context) {
	run, ok := h.cache.Last()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "尚无回测结果",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code": 0,
		"data": run,
	})
}

// ExportCSV 下载最近一次回测的逐日表格
func (h *Handler) ExportCSV(c *gin.Context) {
	run, ok := h.cache.Last()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "尚无回测结果",
		})
		return
	}

	var buf bytes.Buffer
	if err := backtest.WriteCSV(&buf, run.Result); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+exportFilename+`"`)
	c.Header("X-Run-ID", run.ID)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ChartSVG 最近一次回测的权益曲线
func (h *Handler) ChartSVG(c *gin.Context) {
	run, ok := h.cache.Last()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "尚无回测结果",
		})
		return
	}

	source, _ := h.cache.Source()
	svg, err := backtest.RenderEquitySVG(source, run.Result, backtest.SVGChartOptions{})
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.Data(http.StatusOK, "image/svg+xml", svg)
}
