package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/GGital/terraform-opstella/internal/approval"
	"github.com/GGital/terraform-opstella/internal/client"

	"github.com/spf13/cobra"
)

var (
	submitDescription string
	submitPlanFile    string

	waitInterval time.Duration
	waitTimeout  time.Duration
)

var statusCmd = &cobra.Command{
	Use:     "status <pipeline-id>",
	Short:   "查询流水线审批状态",
	GroupID: "approval",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := approvalClient.GetStatus(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("查询审批状态: %w", err)
		}
		return printResponse(cmd.OutOrStdout(), resp)
	},
}

var submitCmd = &cobra.Command{
	Use:     "submit <pipeline-id>",
	Short:   "提交审批请求（重复提交会重置为 pending）",
	GroupID: "approval",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &client.SubmitRequest{}
		if cmd.Flags().Changed("description") {
			req.Description = &submitDescription
		}
		if submitPlanFile != "" {
			data, err := os.ReadFile(submitPlanFile)
			if err != nil {
				return fmt.Errorf("读取 Terraform 计划文件: %w", err)
			}
			plan := string(data)
			req.TerraformPlan = &plan
		}

		resp, err := approvalClient.Submit(cmd.Context(), args[0], req)
		if err != nil {
			return fmt.Errorf("提交审批请求: %w", err)
		}
		return printResponse(cmd.OutOrStdout(), resp)
	},
}

var approveCmd = &cobra.Command{
	Use:     "approve <pipeline-id>",
	Short:   "批准流水线",
	GroupID: "approval",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := approvalClient.Approve(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("批准流水线: %w", err)
		}
		return printResponse(cmd.OutOrStdout(), resp)
	},
}

var rejectCmd = &cobra.Command{
	Use:     "reject <pipeline-id>",
	Short:   "拒绝流水线",
	GroupID: "approval",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := approvalClient.Reject(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("拒绝流水线: %w", err)
		}
		return printResponse(cmd.OutOrStdout(), resp)
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "列出全部审批记录",
	GroupID: "approval",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := approvalClient.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("列出审批记录: %w", err)
		}
		if done, err := printStructured(cmd.OutOrStdout(), result); done {
			return err
		}
		printListTable(cmd.OutOrStdout(), result)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <pipeline-id>",
	Short:   "删除审批记录",
	GroupID: "approval",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := approvalClient.Delete(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("删除审批记录: %w", err)
		}
		if done, err := printStructured(cmd.OutOrStdout(), result); done {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	},
}

// waitCmd 流水线闸门：轮询直到审批结束，rejected 时以非零退出
var waitCmd = &cobra.Command{
	Use:     "wait <pipeline-id>",
	Short:   "等待审批结果（approved 退出 0，rejected 或超时退出 1）",
	GroupID: "approval",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if waitTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, waitTimeout)
			defer cancel()
		}

		resp, err := waitForDecision(ctx, args[0], waitInterval)
		if err != nil {
			return err
		}
		if err := printResponse(cmd.OutOrStdout(), resp); err != nil {
			return err
		}
		if resp.ApprovalStatus == approval.StatusRejected {
			return fmt.Errorf("流水线 %s 已被拒绝", args[0])
		}
		return nil
	},
}

func waitForDecision(ctx context.Context, pipelineID string, interval time.Duration) (*approval.Response, error) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		resp, err := approvalClient.GetStatus(ctx, pipelineID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("等待审批超时: %w", ctx.Err())
			}
			return nil, fmt.Errorf("查询审批状态: %w", err)
		}
		if resp.ApprovalStatus != approval.StatusPending {
			return resp, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("等待审批超时: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func init() {
	submitCmd.Flags().StringVar(&submitDescription, "description", "", "变更描述")
	submitCmd.Flags().StringVar(&submitPlanFile, "plan-file", "", "Terraform 计划输出文件 (terraform show 的文本)")

	waitCmd.Flags().DurationVar(&waitInterval, "interval", 5*time.Second, "轮询间隔")
	waitCmd.Flags().DurationVar(&waitTimeout, "timeout", 0, "最长等待时间（0 表示不限）")
}
