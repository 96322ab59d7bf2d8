package api

import (
	_ "github.com/GGital/terraform-opstella/api/docs"
	approvalHandlers "github.com/GGital/terraform-opstella/api/handlers/approvals"
	"github.com/GGital/terraform-opstella/internal/approval"
	"github.com/GGital/terraform-opstella/internal/config"
	"github.com/GGital/terraform-opstella/internal/metrics"
	middlewarepkg "github.com/GGital/terraform-opstella/internal/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers 所有 HTTP Handler
type Handlers struct {
	Approval *approvalHandlers.Handler
}

// SetupRouter 设置并返回 Gin 路由
func SetupRouter(svc *approval.Service, cfg *config.Config) *gin.Engine {
	router := gin.New()

	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	// 全局中间件
	router.Use(gin.Recovery())
	router.Use(middlewarepkg.RequestIDMiddleware())
	router.Use(RequestLogger("/health", "/ready", metricsPath))
	router.Use(CORS())
	if cfg.Metrics.Enabled {
		router.Use(metrics.PrometheusMiddleware("/health", "/ready", metricsPath))
	}

	serviceName := cfg.Server.ServiceName
	if serviceName == "" {
		serviceName = "Approval Service"
	}

	// 健康检查
	router.GET("/health", HealthCheck(serviceName))
	router.GET("/ready", ReadinessCheck(svc))

	// Prometheus 指标
	if cfg.Metrics.Enabled {
		router.GET(metricsPath, gin.WrapH(metrics.Handler()))
	}

	// Swagger 文档
	if cfg.Server.EnableSwagger {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handlers := &Handlers{
		Approval: approvalHandlers.NewHandler(svc),
	}
	RegisterRoutes(router, handlers)

	return router
}
