package middleware

import (
	"github.com/GGital/terraform-opstella/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Gin 上下文键
const (
	RequestIDKey = "request_id"
	TraceIDKey   = "trace_id"
)

// HTTP 头常量
const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

// RequestIDMiddleware 请求 ID 中间件
// 复用上游传入的 X-Request-ID / X-Trace-ID，缺失时生成；同时写入日志上下文
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		traceID := c.GetHeader(HeaderTraceID)
		if traceID == "" {
			traceID = requestID // 没有 Trace ID 时沿用 Request ID
		}

		c.Set(RequestIDKey, requestID)
		c.Set(TraceIDKey, traceID)

		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		ctx = logger.WithTraceID(ctx, traceID)
		c.Request = c.Request.WithContext(ctx)

		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderTraceID, traceID)

		c.Next()
	}
}

// GetRequestIDFromGin 从 Gin 上下文获取请求 ID
func GetRequestIDFromGin(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// GetTraceIDFromGin 从 Gin 上下文获取追踪 ID
func GetTraceIDFromGin(c *gin.Context) string {
	return c.GetString(TraceIDKey)
}
