package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/GGital/terraform-opstella/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// OpenRedis 初始化 Redis 连接
// 支持三种模式: standalone(单节点), sentinel(哨兵), cluster(集群)
func OpenRedis(ctx context.Context, cfg *config.RedisConfig, log *zap.Logger) (redis.UniversalClient, error) {
	var rdb redis.UniversalClient

	mode := cfg.Mode
	if mode == "" {
		mode = "standalone"
	}

	switch mode {
	case "standalone":
		rdb = redis.NewClient(&redis.Options{
			Addr:         cfg.Addr(),
			Password:     cfg.Password,
			DB:           cfg.DB,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
		})
		log.Info("Redis 单节点模式初始化",
			zap.String("addr", cfg.Addr()),
			zap.Int("db", cfg.DB),
		)

	case "sentinel":
		if cfg.MasterName == "" || len(cfg.SentinelAddrs) == 0 {
			return nil, fmt.Errorf("哨兵模式需要配置 master_name 和 sentinel_addrs")
		}
		rdb = redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       cfg.MasterName,
			SentinelAddrs:    cfg.SentinelAddrs,
			SentinelPassword: cfg.SentinelPassword,
			Password:         cfg.Password,
			DB:               cfg.DB,
			PoolSize:         cfg.PoolSize,
			MinIdleConns:     cfg.MinIdleConns,
		})
		log.Info("Redis 哨兵模式初始化",
			zap.String("master", cfg.MasterName),
			zap.Strings("sentinels", cfg.SentinelAddrs),
		)

	case "cluster":
		if len(cfg.ClusterAddrs) == 0 {
			return nil, fmt.Errorf("集群模式需要配置 cluster_addrs")
		}
		rdb = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:        cfg.ClusterAddrs,
			Password:     cfg.Password,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
		})
		log.Info("Redis 集群模式初始化", zap.Strings("addrs", cfg.ClusterAddrs))

	default:
		return nil, fmt.Errorf("不支持的 Redis 模式: %s (可选: standalone, sentinel, cluster)", mode)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	log.Info("Redis 连接成功", zap.String("mode", mode))
	return rdb, nil
}
