package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/GGital/terraform-opstella/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger 请求日志中间件，skipPaths 中的探针请求只在出错时记录
func RequestLogger(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		if _, ok := skip[c.Request.URL.Path]; ok && status < http.StatusInternalServerError {
			return
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if pipelineID := c.Param("pipeline_id"); pipelineID != "" {
			fields = append(fields, zap.String("pipeline_id", pipelineID))
		}

		log := logger.WithContext(c.Request.Context())
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("HTTP Request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("HTTP Request", fields...)
		default:
			log.Info("HTTP Request", fields...)
		}
	}
}

// CORS 跨域中间件
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowedOrigins := getEnvList("CORS_ALLOW_ORIGINS")
		origin := c.GetHeader("Origin")

		switch {
		case len(allowedOrigins) == 0:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && stringInSlice(origin, allowedOrigins):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		allowedHeaders := defaultIfEmpty(
			getEnvList("CORS_ALLOW_HEADERS"),
			[]string{
				"Content-Type", "Content-Length", "Accept", "Origin",
				"X-Request-ID", "X-Trace-ID",
			},
		)
		c.Writer.Header().Set("Access-Control-Allow-Headers", strings.Join(allowedHeaders, ", "))

		allowedMethods := defaultIfEmpty(
			getEnvList("CORS_ALLOW_METHODS"),
			[]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		)
		c.Writer.Header().Set("Access-Control-Allow-Methods", strings.Join(allowedMethods, ", "))
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, X-Trace-ID")
		c.Writer.Header().Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
