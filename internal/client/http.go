package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GGital/terraform-opstella/internal/approval"
)

// HealthStatus /health 响应
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// SubmitRequest 提交审批请求体
type SubmitRequest struct {
	Description   *string `json:"description,omitempty"`
	TerraformPlan *string `json:"terraform_plan,omitempty"`
}

// APIError 服务端返回的错误
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsNotFound 判断是否为 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// HTTPClient 审批服务 HTTP 客户端
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient 创建客户端，baseURL 例如 http://localhost:8000
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// BaseURL 服务地址
func (c *HTTPClient) BaseURL() string { return c.baseURL }

// Health 健康检查
func (c *HTTPClient) Health(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetStatus 查询审批状态
func (c *HTTPClient) GetStatus(ctx context.Context, pipelineID string) (*approval.Response, error) {
	var out approval.Response
	if err := c.doJSON(ctx, http.MethodGet, approvalPath(pipelineID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Submit 提交审批请求
func (c *HTTPClient) Submit(ctx context.Context, pipelineID string, req *SubmitRequest) (*approval.Response, error) {
	if req == nil {
		req = &SubmitRequest{}
	}
	var out approval.Response
	if err := c.doJSON(ctx, http.MethodPost, approvalPath(pipelineID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Approve 批准流水线
func (c *HTTPClient) Approve(ctx context.Context, pipelineID string) (*approval.Response, error) {
	var out approval.Response
	if err := c.doJSON(ctx, http.MethodPut, approvalPath(pipelineID)+"/approve", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reject 拒绝流水线
func (c *HTTPClient) Reject(ctx context.Context, pipelineID string) (*approval.Response, error) {
	var out approval.Response
	if err := c.doJSON(ctx, http.MethodPut, approvalPath(pipelineID)+"/reject", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List 列出全部审批记录
func (c *HTTPClient) List(ctx context.Context) (*approval.ListResult, error) {
	var out approval.ListResult
	if err := c.doJSON(ctx, http.MethodGet, "/approvals", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete 删除审批记录
func (c *HTTPClient) Delete(ctx context.Context, pipelineID string) (*approval.DeleteResult, error) {
	var out approval.DeleteResult
	if err := c.doJSON(ctx, http.MethodDelete, approvalPath(pipelineID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func approvalPath(pipelineID string) string {
	return "/approval/" + url.PathEscape(pipelineID)
}

// doJSON 发送请求并解码 JSON 响应；错误响应解析 {"detail": "..."}
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求体失败: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Detail != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Detail}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("解析响应失败: %w", err)
		}
	}
	return nil
}
