package approvals

import (
	"context"
	"errors"
	"io"
	"net/http"

	response "github.com/GGital/terraform-opstella/api/handlers/common"
	"github.com/GGital/terraform-opstella/internal/approval"

	"github.com/gin-gonic/gin"
)

// Service 审批服务接口
type Service interface {
	Get(ctx context.Context, pipelineID string) (*approval.Response, error)
	Submit(ctx context.Context, pipelineID string, in approval.SubmitInput) (*approval.Response, error)
	Approve(ctx context.Context, pipelineID string) (*approval.Response, error)
	Reject(ctx context.Context, pipelineID string) (*approval.Response, error)
	List(ctx context.Context) (*approval.ListResult, error)
	Delete(ctx context.Context, pipelineID string) (*approval.DeleteResult, error)
}

// Handler 审批 Handler
type Handler struct {
	svc Service
}

// NewHandler 创建 Handler 实例
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// SubmitRequest 提交审批请求体（可省略）
//
// 请求体中的 pipeline_id 会被忽略，以路径参数为准。
type SubmitRequest struct {
	Description   *string `json:"description"`
	TerraformPlan *string `json:"terraform_plan"`
}

// GetStatus 查询审批状态
// @Summary 查询流水线审批状态
// @Description 未提交过的流水线返回 pending 默认视图（不落盘）
// @Tags Approval
// @Produce json
// @Param pipeline_id path string true "流水线 ID"
// @Success 200 {object} approval.Response
// @Failure 500 {object} response.ErrorResponse
// @Router /approval/{pipeline_id} [get]
func (h *Handler) GetStatus(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("pipeline_id"))
	if err != nil {
		response.ResponseServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Submit 提交审批请求
// @Summary 提交（或重新提交）审批请求
// @Tags Approval
// @Accept json
// @Produce json
// @Param pipeline_id path string true "流水线 ID"
// @Param request body SubmitRequest false "描述与 Terraform 计划"
// @Success 200 {object} approval.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /approval/{pipeline_id} [post]
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.ResponseBadRequest(c, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.svc.Submit(c.Request.Context(), c.Param("pipeline_id"), approval.SubmitInput{
		Description:   req.Description,
		TerraformPlan: req.TerraformPlan,
	})
	if err != nil {
		response.ResponseServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Approve 批准流水线
// @Summary 批准流水线
// @Tags Approval
// @Produce json
// @Param pipeline_id path string true "流水线 ID"
// @Success 200 {object} approval.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /approval/{pipeline_id}/approve [put]
func (h *Handler) Approve(c *gin.Context) {
	resp, err := h.svc.Approve(c.Request.Context(), c.Param("pipeline_id"))
	if err != nil {
		response.ResponseServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reject 拒绝流水线
// @Summary 拒绝流水线
// @Tags Approval
// @Produce json
// @Param pipeline_id path string true "流水线 ID"
// @Success 200 {object} approval.Response
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /approval/{pipeline_id}/reject [put]
func (h *Handler) Reject(c *gin.Context) {
	resp, err := h.svc.Reject(c.Request.Context(), c.Param("pipeline_id"))
	if err != nil {
		response.ResponseServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List 列出全部审批记录
// @Summary 列出全部审批记录
// @Tags Approval
// @Produce json
// @Success 200 {object} approval.ListResult
// @Failure 500 {object} response.ErrorResponse
// @Router /approvals [get]
func (h *Handler) List(c *gin.Context) {
	result, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.ResponseServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Delete 删除审批记录
// @Summary 删除审批记录
// @Tags Approval
// @Produce json
// @Param pipeline_id path string true "流水线 ID"
// @Success 200 {object} approval.DeleteResult
// @Failure 404 {object} response.ErrorResponse
// @Router /approval/{pipeline_id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	result, err := h.svc.Delete(c.Request.Context(), c.Param("pipeline_id"))
	if err != nil {
		response.ResponseServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RegisterRoutes 注册审批路由
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/approval/:pipeline_id", h.GetStatus)
	r.POST("/approval/:pipeline_id", h.Submit)
	r.PUT("/approval/:pipeline_id/approve", h.Approve)
	r.PUT("/approval/:pipeline_id/reject", h.Reject)
	r.DELETE("/approval/:pipeline_id", h.Delete)
	r.GET("/approvals", h.List)
}
