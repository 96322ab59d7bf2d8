package storage

import (
	"context"
	"fmt"

	"github.com/GGital/terraform-opstella/internal/approval"
	"github.com/GGital/terraform-opstella/internal/config"
	"github.com/GGital/terraform-opstella/internal/infra"

	"go.uber.org/zap"
)

// 后端名称
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// DefaultRedisKey Redis 快照默认键
const DefaultRedisKey = "opstella:approvals"

// New 按配置创建审批存储后端
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (approval.Backend, error) {
	if log == nil {
		log = zap.NewNop()
	}

	switch cfg.Storage.Backend {
	case BackendFile, "":
		log.Info("使用文件存储", zap.String("path", cfg.Storage.File.Path))
		return NewFile(cfg.Storage.File.Path), nil

	case BackendMemory:
		log.Warn("使用内存存储，重启后审批数据将丢失")
		return NewMemory(), nil

	case BackendSQLite, BackendPostgres:
		db, err := infra.OpenDatabase(cfg.Storage.Backend, &cfg.Database, log)
		if err != nil {
			return nil, err
		}
		return NewGorm(db, cfg.Storage.Backend,
			WithAutoMigrate(cfg.Database.AutoMigrate),
			WithGormLogger(log),
		), nil

	case BackendRedis:
		client, err := infra.OpenRedis(ctx, &cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		return NewRedis(client, cfg.Storage.Redis.Key), nil

	default:
		return nil, fmt.Errorf("不支持的存储后端: %q", cfg.Storage.Backend)
	}
}
