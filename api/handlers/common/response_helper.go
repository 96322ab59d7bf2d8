package common

import (
	"errors"
	"net/http"

	"github.com/GGital/terraform-opstella/internal/approval"
	"github.com/GGital/terraform-opstella/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 固定的错误提示
const (
	DetailStoreUnavailable = "approval store unavailable"
	DetailInternalError    = "internal server error"
	DetailInvalidBody      = "invalid request body"
)

// ResponseError 返回错误响应
func ResponseError(c *gin.Context, status int, detail string) {
	c.JSON(status, ErrorResponse{Detail: detail})
}

// AbortWithError 中断并返回错误
func AbortWithError(c *gin.Context, status int, detail string) {
	ResponseError(c, status, detail)
	c.Abort()
}

// ResponseBadRequest 返回参数错误响应
func ResponseBadRequest(c *gin.Context, detail string) {
	if detail == "" {
		detail = DetailInvalidBody
	}
	ResponseError(c, http.StatusBadRequest, detail)
}

// StatusFor 将服务层错误映射为 HTTP 状态码和提示
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, approval.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, approval.ErrInvalidTransition):
		return http.StatusConflict, err.Error()
	case errors.Is(err, approval.ErrStore):
		return http.StatusInternalServerError, DetailStoreUnavailable
	default:
		return http.StatusInternalServerError, DetailInternalError
	}
}

// ResponseServiceError 按错误类型返回响应，5xx 记录错误日志
func ResponseServiceError(c *gin.Context, err error) {
	status, detail := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error("审批请求处理失败",
			zap.String("path", c.FullPath()),
			zap.String("pipeline_id", c.Param("pipeline_id")),
			zap.Error(err),
		)
	}
	ResponseError(c, status, detail)
}
