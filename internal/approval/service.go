package approval

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GGital/terraform-opstella/internal/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Backend 审批快照持久化后端
type Backend interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
}

// Initializer 启动时初始化存储（例如写入空文档）
type Initializer interface {
	Init(ctx context.Context) error
}

// Pinger 就绪检查
type Pinger interface {
	Ping(ctx context.Context) error
}

// Namer 后端名称，用于指标标签
type Namer interface {
	Name() string
}

// Service 审批存储服务
//
// 每次请求都会重新加载完整快照，写操作在同一把锁内完成 load-mutate-save。
type Service struct {
	backend Backend
	logger  *zap.Logger
	tracer  trace.Tracer
	now     func() time.Time
	strict  bool

	mu sync.Mutex
}

// Option 自定义配置
type Option func(*Service)

// WithLogger 注入日志器
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock 注入时间源
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStrictTransitions 开启严格流转：只有 pending 记录可以被审批或拒绝
func WithStrictTransitions(strict bool) Option {
	return func(s *Service) { s.strict = strict }
}

// NewService 创建审批服务
func NewService(backend Backend, opts ...Option) *Service {
	svc := &Service{
		backend: backend,
		logger:  zap.NewNop(),
		tracer:  otel.Tracer("github.com/GGital/terraform-opstella/internal/approval"),
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Init 初始化后端存储
func (s *Service) Init(ctx context.Context) error {
	initer, ok := s.backend.(Initializer)
	if !ok {
		return nil
	}
	if err := initer.Init(ctx); err != nil {
		return wrapStore("初始化审批存储", err)
	}
	return nil
}

// Ping 检查后端是否可用
func (s *Service) Ping(ctx context.Context) error {
	if p, ok := s.backend.(Pinger); ok {
		return p.Ping(ctx)
	}
	_, err := s.load(ctx)
	return err
}

// BackendName 返回后端名称
func (s *Service) BackendName() string {
	if n, ok := s.backend.(Namer); ok {
		return n.Name()
	}
	return "custom"
}

// Get 查询流水线审批状态，不存在时返回合成的 pending 响应（不落盘）
func (s *Service) Get(ctx context.Context, pipelineID string) (resp *Response, err error) {
	ctx, span := s.startSpan(ctx, "Service.Get", pipelineID)
	defer func() { endSpan(span, err) }()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	rec, ok := snap[pipelineID]
	if !ok {
		return &Response{
			ApprovalStatus: StatusPending,
			PipelineID:     pipelineID,
			Timestamp:      FormatTimestamp(s.now()),
			Message:        msgPendingDefault,
		}, nil
	}

	return &Response{
		ApprovalStatus: rec.Status,
		PipelineID:     pipelineID,
		Timestamp:      FormatTimestamp(rec.UpdatedAt),
		Message:        statusMessage(rec.Status),
	}, nil
}

// Submit 提交（或覆盖）审批请求，状态重置为 pending
func (s *Service) Submit(ctx context.Context, pipelineID string, in SubmitInput) (resp *Response, err error) {
	ctx, span := s.startSpan(ctx, "Service.Submit", pipelineID)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec := Record{
		PipelineID:    pipelineID,
		Status:        StatusPending,
		Description:   in.Description,
		TerraformPlan: in.TerraformPlan,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	_, existed := snap[pipelineID]
	snap[pipelineID] = rec

	if err := s.save(ctx, snap); err != nil {
		return nil, err
	}

	metrics.ApprovalSubmissionsTotal.WithLabelValues(boolLabel(existed)).Inc()
	s.logger.Info("审批请求已提交",
		zap.String("pipeline_id", pipelineID),
		zap.Bool("overwritten", existed),
	)

	return &Response{
		ApprovalStatus: StatusPending,
		PipelineID:     pipelineID,
		Timestamp:      FormatTimestamp(rec.UpdatedAt),
		Message:        decisionMessage(StatusPending),
	}, nil
}

// Approve 批准流水线
func (s *Service) Approve(ctx context.Context, pipelineID string) (*Response, error) {
	return s.decide(ctx, pipelineID, StatusApproved)
}

// Reject 拒绝流水线
func (s *Service) Reject(ctx context.Context, pipelineID string) (*Response, error) {
	return s.decide(ctx, pipelineID, StatusRejected)
}

// decide 写入审批结果。默认无条件覆盖当前状态，严格模式下仅允许从 pending 流转。
func (s *Service) decide(ctx context.Context, pipelineID string, target Status) (resp *Response, err error) {
	ctx, span := s.startSpan(ctx, "Service.Decide", pipelineID)
	span.SetAttributes(attribute.String("target_status", target.String()))
	defer func() { endSpan(span, err) }()

	switch target {
	case StatusApproved, StatusRejected:
	case StatusPending:
		return nil, fmt.Errorf("%w: 不能通过审批操作回到 pending", ErrInvalidTransition)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidTransition, target)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	rec, ok := snap[pipelineID]
	if !ok {
		return nil, &NotFoundError{PipelineID: pipelineID}
	}

	if s.strict && !allowStrict(rec.Status, target) {
		return nil, &TransitionError{PipelineID: pipelineID, From: rec.Status, To: target}
	}

	previous := rec.Status
	rec.Status = target
	rec.UpdatedAt = s.now().UTC()
	snap[pipelineID] = rec

	if err := s.save(ctx, snap); err != nil {
		return nil, err
	}

	metrics.ApprovalDecisionsTotal.WithLabelValues(target.String(), "manual").Inc()
	s.logger.Info("审批状态已更新",
		zap.String("pipeline_id", pipelineID),
		zap.String("from", previous.String()),
		zap.String("to", target.String()),
	)

	return &Response{
		ApprovalStatus: target,
		PipelineID:     pipelineID,
		Timestamp:      FormatTimestamp(rec.UpdatedAt),
		Message:        decisionMessage(target),
	}, nil
}

// allowStrict 严格模式的流转规则：pending 可去任意终态，终态只允许重复自身
func allowStrict(from, to Status) bool {
	switch from {
	case StatusPending:
		return true
	case StatusApproved, StatusRejected:
		return from == to
	default:
		return false
	}
}

// List 返回全部审批记录
func (s *Service) List(ctx context.Context) (result *ListResult, err error) {
	ctx, span := s.startSpan(ctx, "Service.List", "")
	defer func() { endSpan(span, err) }()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return &ListResult{Total: len(snap), Approvals: snap}, nil
}

// Delete 删除审批记录
func (s *Service) Delete(ctx context.Context, pipelineID string) (result *DeleteResult, err error) {
	ctx, span := s.startSpan(ctx, "Service.Delete", pipelineID)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := snap[pipelineID]; !ok {
		return nil, &NotFoundError{PipelineID: pipelineID}
	}

	delete(snap, pipelineID)
	if err := s.save(ctx, snap); err != nil {
		return nil, err
	}

	s.logger.Info("审批记录已删除", zap.String("pipeline_id", pipelineID))
	return &DeleteResult{
		Message: fmt.Sprintf("Approval record for %s deleted successfully", pipelineID),
	}, nil
}

func (s *Service) load(ctx context.Context) (Snapshot, error) {
	start := time.Now()
	snap, err := s.backend.Load(ctx)
	metrics.StoreOperationDuration.WithLabelValues(s.BackendName(), "load").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, wrapStore("加载审批数据", err)
	}
	if snap == nil {
		snap = make(Snapshot)
	}
	metrics.ApprovalRecords.Set(float64(len(snap)))
	return snap, nil
}

func (s *Service) save(ctx context.Context, snap Snapshot) error {
	start := time.Now()
	err := s.backend.Save(ctx, snap)
	metrics.StoreOperationDuration.WithLabelValues(s.BackendName(), "save").Observe(time.Since(start).Seconds())
	if err != nil {
		return wrapStore("保存审批数据", err)
	}
	metrics.ApprovalRecords.Set(float64(len(snap)))
	return nil
}

func (s *Service) startSpan(ctx context.Context, name, pipelineID string) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, name)
	span.SetAttributes(attribute.String("backend", s.BackendName()))
	if pipelineID != "" {
		span.SetAttributes(attribute.String("pipeline_id", pipelineID))
	}
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
