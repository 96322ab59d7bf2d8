package storage

import (
	"context"
	"sync"

	"github.com/GGital/terraform-opstella/internal/approval"
)

// Memory 进程内存储，重启后数据丢失（测试与演示使用）
type Memory struct {
	mu   sync.RWMutex
	snap approval.Snapshot
}

// NewMemory 创建内存存储
func NewMemory() *Memory {
	return &Memory{snap: make(approval.Snapshot)}
}

// Name 后端名称
func (m *Memory) Name() string { return BackendMemory }

// Load 返回快照副本，调用方修改不会影响已保存的数据
func (m *Memory) Load(_ context.Context) (approval.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap.Clone(), nil
}

// Save 整体替换快照
func (m *Memory) Save(_ context.Context, snap approval.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap.Clone()
	return nil
}
