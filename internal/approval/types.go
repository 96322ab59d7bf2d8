package approval

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status 审批状态
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus 解析审批状态，仅接受三种合法取值
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), nil
	default:
		return "", fmt.Errorf("未知审批状态: %q", s)
	}
}

// String 实现 fmt.Stringer
func (s Status) String() string { return string(s) }

// UnmarshalJSON 拒绝未知状态，避免脏数据进入快照
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Record 单条流水线审批记录
type Record struct {
	PipelineID    string    `json:"pipeline_id"`
	Status        Status    `json:"status"`
	Description   *string   `json:"description"`
	TerraformPlan *string   `json:"terraform_plan"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Snapshot 完整的审批数据快照（pipeline_id -> Record）
type Snapshot map[string]Record

// Clone 深拷贝快照
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for id, rec := range s {
		out[id] = rec.clone()
	}
	return out
}

func (r Record) clone() Record {
	out := r
	if r.Description != nil {
		d := *r.Description
		out.Description = &d
	}
	if r.TerraformPlan != nil {
		p := *r.TerraformPlan
		out.TerraformPlan = &p
	}
	return out
}

// SubmitInput 提交审批请求的参数
type SubmitInput struct {
	Description   *string
	TerraformPlan *string
}

// Response 审批状态响应
type Response struct {
	ApprovalStatus Status `json:"approval_status"`
	PipelineID     string `json:"pipeline_id"`
	Timestamp      string `json:"timestamp"`
	Message        string `json:"message"`
}

// ListResult 全量列表结果
type ListResult struct {
	Total     int      `json:"total"`
	Approvals Snapshot `json:"approvals"`
}

// DeleteResult 删除结果
type DeleteResult struct {
	Message string `json:"message"`
}

// FormatTimestamp 统一时间戳格式（ISO-8601 / RFC3339，UTC）
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

const (
	msgPendingDefault = "Approval pending - awaiting manual review"
	msgSubmitted      = "Approval request submitted successfully"
	msgApproved       = "Pipeline approved successfully"
	msgRejected       = "Pipeline rejected"
)

// decisionMessage 审批/拒绝后的提示信息
func decisionMessage(s Status) string {
	switch s {
	case StatusApproved:
		return msgApproved
	case StatusRejected:
		return msgRejected
	case StatusPending:
		return msgSubmitted
	default:
		return ""
	}
}

// statusMessage 查询已存在记录时的提示信息
func statusMessage(s Status) string {
	return fmt.Sprintf("Pipeline %s for review", s)
}
