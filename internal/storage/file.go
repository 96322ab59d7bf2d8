package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/GGital/terraform-opstella/internal/approval"
)

// File JSON 文件存储
//
// 整个快照序列化为一个对象（pipeline_id -> 记录），两空格缩进。
// 写入先落临时文件再 rename，读者不会看到写了一半的文档。
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile 创建文件存储
func NewFile(path string) *File {
	return &File{path: path}
}

// Name 后端名称
func (f *File) Name() string { return BackendFile }

// Path 数据文件路径
func (f *File) Path() string { return f.path }

// Init 创建数据目录；文件不存在时写入空文档
func (f *File) Init(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ensureDir(); err != nil {
		return err
	}
	if _, err := os.Stat(f.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("检查数据文件失败: %w", err)
	}
	return f.writeLocked(make(approval.Snapshot))
}

// Load 读取整个快照，文件不存在或为空时视为空快照
func (f *File) Load(_ context.Context) (approval.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(approval.Snapshot), nil
		}
		return nil, fmt.Errorf("读取数据文件失败: %w", err)
	}
	if len(data) == 0 {
		return make(approval.Snapshot), nil
	}

	snap := make(approval.Snapshot)
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("解析数据文件失败 %s: %w", f.path, err)
	}
	return snap, nil
}

// Save 覆盖写入整个快照
func (f *File) Save(_ context.Context, snap approval.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.ensureDir(); err != nil {
		return err
	}
	return f.writeLocked(snap)
}

// Ping 数据目录可访问即视为就绪
func (f *File) Ping(_ context.Context) error {
	dir := filepath.Dir(f.path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("数据目录不可用: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("数据目录不是目录: %s", dir)
	}
	return nil
}

func (f *File) ensureDir() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建数据目录失败: %w", err)
	}
	return nil
}

func (f *File) writeLocked(snap approval.Snapshot) error {
	if snap == nil {
		snap = make(approval.Snapshot)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化审批数据失败: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("刷新临时文件失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("关闭临时文件失败: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("设置文件权限失败: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		cleanup()
		return fmt.Errorf("替换数据文件失败: %w", err)
	}
	return nil
}
