package approval

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 流水线没有审批记录
	ErrNotFound = errors.New("approval record not found")
	// ErrInvalidTransition 严格模式下非 pending 记录不允许再次审批
	ErrInvalidTransition = errors.New("invalid approval transition")
	// ErrStore 持久化后端读写失败
	ErrStore = errors.New("approval store unavailable")
)

// NotFoundError 携带流水线 ID 的未找到错误
type NotFoundError struct {
	PipelineID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("No approval request found for pipeline %s", e.PipelineID)
}

// Unwrap 支持 errors.Is(err, ErrNotFound)
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// TransitionError 严格模式下的状态流转错误
type TransitionError struct {
	PipelineID string
	From       Status
	To         Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("Pipeline %s is already %s and cannot be %s", e.PipelineID, e.From, e.To)
}

// Unwrap 支持 errors.Is(err, ErrInvalidTransition)
func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// storeError 包装后端错误，同时匹配 ErrStore 与原始错误
type storeError struct {
	op  string
	err error
}

func (e *storeError) Error() string {
	return fmt.Sprintf("%s 失败: %v", e.op, e.err)
}

func (e *storeError) Is(target error) bool { return target == ErrStore }

func (e *storeError) Unwrap() error { return e.err }

func wrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	return &storeError{op: op, err: err}
}
