package common

// ErrorResponse 统一错误返回结构（{"detail": "..."}）。
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse 健康检查响应。
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// ReadinessResponse 就绪检查响应。
type ReadinessResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend,omitempty"`
	Reason  string `json:"reason,omitempty"`
}
