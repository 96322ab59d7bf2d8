package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/GGital/terraform-opstella/internal/approval"
	"github.com/GGital/terraform-opstella/internal/infra"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// recordRow 审批记录表模型
type recordRow struct {
	PipelineID    string    `gorm:"primaryKey;size:255"`
	Status        string    `gorm:"size:20;not null;index"`
	Description   *string   `gorm:"type:text"`
	TerraformPlan *string   `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt     time.Time `gorm:"not null;autoUpdateTime:false"`
}

// TableName 指定表名
func (recordRow) TableName() string {
	return "approval_records"
}

func rowFromRecord(id string, rec approval.Record) recordRow {
	return recordRow{
		PipelineID:    id,
		Status:        rec.Status.String(),
		Description:   rec.Description,
		TerraformPlan: rec.TerraformPlan,
		CreatedAt:     rec.CreatedAt.UTC(),
		UpdatedAt:     rec.UpdatedAt.UTC(),
	}
}

func (r recordRow) toRecord() (approval.Record, error) {
	status, err := approval.ParseStatus(r.Status)
	if err != nil {
		return approval.Record{}, fmt.Errorf("记录 %s: %w", r.PipelineID, err)
	}
	return approval.Record{
		PipelineID:    r.PipelineID,
		Status:        status,
		Description:   r.Description,
		TerraformPlan: r.TerraformPlan,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}, nil
}

// Gorm 关系型数据库存储（sqlite / postgres）
//
// 每条记录一行；Save 在单个事务中整体替换表内容，保持快照语义。
type Gorm struct {
	db          *gorm.DB
	name        string
	autoMigrate bool
	logger      *zap.Logger
}

// GormOption 自定义配置
type GormOption func(*Gorm)

// WithAutoMigrate 启动时自动建表
func WithAutoMigrate(enabled bool) GormOption {
	return func(g *Gorm) { g.autoMigrate = enabled }
}

// WithGormLogger 注入日志器
func WithGormLogger(l *zap.Logger) GormOption {
	return func(g *Gorm) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGorm 创建数据库存储，name 为指标中的后端名称（sqlite / postgres）
func NewGorm(db *gorm.DB, name string, opts ...GormOption) *Gorm {
	g := &Gorm{
		db:          db,
		name:        name,
		autoMigrate: true,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Name 后端名称
func (g *Gorm) Name() string { return g.name }

// Init 自动迁移审批记录表
func (g *Gorm) Init(_ context.Context) error {
	if !g.autoMigrate {
		return nil
	}
	return infra.AutoMigrate(g.db, g.logger, &recordRow{})
}

// Load 读取全部记录
func (g *Gorm) Load(ctx context.Context) (approval.Snapshot, error) {
	var rows []recordRow
	if err := g.db.WithContext(ctx).Order("pipeline_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("查询审批记录失败: %w", err)
	}

	snap := make(approval.Snapshot, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		snap[row.PipelineID] = rec
	}
	return snap, nil
}

// Save 在事务中用快照替换全部记录
func (g *Gorm) Save(ctx context.Context, snap approval.Snapshot) error {
	rows := make([]recordRow, 0, len(snap))
	for id, rec := range snap {
		rows = append(rows, rowFromRecord(id, rec))
	}

	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&recordRow{}).Error; err != nil {
			return fmt.Errorf("清空审批记录失败: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			return fmt.Errorf("写入审批记录失败: %w", err)
		}
		return nil
	})
}

// Ping 数据库健康检查
func (g *Gorm) Ping(_ context.Context) error {
	return infra.PingDatabase(g.db)
}

// Close 关闭数据库连接
func (g *Gorm) Close() error {
	return infra.CloseDatabase(g.db)
}
