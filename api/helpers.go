package api

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	response "github.com/GGital/terraform-opstella/api/handlers/common"

	"github.com/gin-gonic/gin"
)

// ReadinessProbe 就绪检查依赖
type ReadinessProbe interface {
	Ping(ctx context.Context) error
	BackendName() string
}

// HealthCheck 健康检查
// @Summary 服务健康检查
// @Description 返回基础健康状态，可供监控探针使用
// @Tags System
// @Produce json
// @Success 200 {object} response.HealthResponse
// @Router /health [get]
func HealthCheck(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, response.HealthResponse{
			Status:  "healthy",
			Service: serviceName,
		})
	}
}

// ReadinessCheck 就绪检查
// @Summary 服务就绪检查
// @Description 检查审批存储后端是否可用
// @Tags System
// @Produce json
// @Success 200 {object} response.ReadinessResponse
// @Failure 503 {object} response.ReadinessResponse
// @Router /ready [get]
func ReadinessCheck(probe ReadinessProbe) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := probe.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, response.ReadinessResponse{
				Status:  "not_ready",
				Backend: probe.BackendName(),
				Reason:  "approval store unavailable",
			})
			return
		}

		c.JSON(http.StatusOK, response.ReadinessResponse{
			Status:  "ready",
			Backend: probe.BackendName(),
		})
	}
}

// --- 环境变量辅助函数 ---

// getEnvList 读取逗号分隔的环境变量列表
func getEnvList(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	var res []string
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			res = append(res, v)
		}
	}
	return res
}

// stringInSlice 判断字符串是否存在于切片中
func stringInSlice(target string, list []string) bool {
	for _, v := range list {
		if v == target {
			return true
		}
	}
	return false
}

// defaultIfEmpty 返回非空列表或默认值
func defaultIfEmpty(list []string, def []string) []string {
	if len(list) == 0 {
		return def
	}
	return list
}
