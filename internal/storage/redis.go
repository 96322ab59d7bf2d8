package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/GGital/terraform-opstella/internal/approval"

	"github.com/redis/go-redis/v9"
)

// Redis 将整个快照以 JSON 字符串保存在单个键下
type Redis struct {
	client redis.UniversalClient
	key    string
}

// NewRedis 创建 Redis 存储
func NewRedis(client redis.UniversalClient, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{client: client, key: key}
}

// Name 后端名称
func (r *Redis) Name() string { return BackendRedis }

// Key 快照所在的键
func (r *Redis) Key() string { return r.key }

// Load 读取快照，键不存在时返回空快照
func (r *Redis) Load(ctx context.Context) (approval.Snapshot, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return make(approval.Snapshot), nil
		}
		return nil, fmt.Errorf("读取 Redis 快照失败: %w", err)
	}

	snap := make(approval.Snapshot)
	if len(data) == 0 {
		return snap, nil
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("解析 Redis 快照失败: %w", err)
	}
	return snap, nil
}

// Save 覆盖写入快照（不过期）
func (r *Redis) Save(ctx context.Context, snap approval.Snapshot) error {
	if snap == nil {
		snap = make(approval.Snapshot)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("序列化审批数据失败: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("写入 Redis 快照失败: %w", err)
	}
	return nil
}

// Ping Redis 健康检查
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close 关闭连接
func (r *Redis) Close() error {
	return r.client.Close()
}
