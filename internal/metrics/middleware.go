package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// PrometheusMiddleware Prometheus 指标收集中间件
// skipPaths 中的路径（抓取端点、探针）不计入 API 指标
func PrometheusMiddleware(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		requestSize := c.Request.ContentLength

		c.Next()

		path := normalizePath(c)
		status := strconv.Itoa(c.Writer.Status())

		APIRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		APIRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())

		if requestSize > 0 {
			APIRequestSize.WithLabelValues(c.Request.Method, path).Observe(float64(requestSize))
		}
		if respSize := c.Writer.Size(); respSize >= 0 {
			APIResponseSize.WithLabelValues(c.Request.Method, path).Observe(float64(respSize))
		}
	}
}

// normalizePath 使用路由模板（/approval/:pipeline_id），避免按流水线 ID 产生高基数标签
func normalizePath(c *gin.Context) string {
	path := c.FullPath()
	if path == "" {
		path = "unmatched"
	}
	return path
}
