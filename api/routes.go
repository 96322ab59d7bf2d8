package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册所有 API 路由
//
// 审批接口挂在根路径下，流水线侧按固定路径调用，不做版本前缀。
func RegisterRoutes(router *gin.Engine, handlers *Handlers) {
	handlers.Approval.RegisterRoutes(router)
}
