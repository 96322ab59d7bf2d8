package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// API 指标
var (
	// APIRequestsTotal API 请求总数
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opstella_approval_api_requests_total",
			Help: "API 请求总数",
		},
		[]string{"method", "path", "status"},
	)

	// APIRequestDuration API 请求延迟（秒）
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "opstella_approval_api_request_duration_seconds",
			Help:    "API 请求延迟分布",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// APIRequestSize API 请求体大小（字节）
	APIRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "opstella_approval_api_request_size_bytes",
			Help:    "API 请求体大小分布",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path"},
	)

	// APIResponseSize API 响应体大小（字节）
	APIResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "opstella_approval_api_response_size_bytes",
			Help:    "API 响应体大小分布",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path"},
	)
)

// 审批指标
var (
	// ApprovalDecisionsTotal 审批决策次数
	ApprovalDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opstella_approval_decisions_total",
			Help: "审批决策次数",
		},
		[]string{"status", "decision_type"},
	)

	// ApprovalSubmissionsTotal 审批请求提交次数（overwritten 表示覆盖已有记录）
	ApprovalSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opstella_approval_submissions_total",
			Help: "审批请求提交次数",
		},
		[]string{"overwritten"},
	)

	// ApprovalRecords 最近一次加载/保存时的记录数量
	ApprovalRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "opstella_approval_records",
			Help: "当前审批记录数量",
		},
	)
)

// 存储指标
var (
	// StoreOperationDuration 存储后端读写耗时（秒）
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "opstella_approval_store_operation_duration_seconds",
			Help:    "存储后端读写耗时分布",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"backend", "operation"}, // operation: load, save
	)
)

// Handler 返回 Prometheus 抓取端点
func Handler() http.Handler {
	return promhttp.Handler()
}
