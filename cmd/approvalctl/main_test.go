package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/GGital/terraform-opstella/api"
	"github.com/GGital/terraform-opstella/internal/approval"
	"github.com/GGital/terraform-opstella/internal/config"
	"github.com/GGital/terraform-opstella/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Server.ServiceName = "Approval Service"
	srv := httptest.NewServer(api.SetupRouter(approval.NewService(storage.NewMemory()), cfg))
	t.Cleanup(srv.Close)
	return srv.URL
}

// resetFlags 恢复所有标志默认值，避免多次 Execute 之间串值
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// run 执行命令并返回标准输出
func run(t *testing.T, url string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--url", url}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLIApprovalFlow(t *testing.T) {
	url := startServer(t)

	planFile := filepath.Join(t.TempDir(), "plan.txt")
	require.NoError(t, os.WriteFile(planFile, []byte("+ aws_vpc.main"), 0o644))

	out, err := run(t, url, "submit", "pipe-1", "--description", "infra change", "--plan-file", planFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Status:     pending")

	out, err = run(t, url, "approve", "pipe-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Pipeline approved successfully")

	out, err = run(t, url, "status", "pipe-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Pipeline approved for review")

	out, err = run(t, url, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "pipe-1")
	assert.Contains(t, out, "infra change")
	assert.Contains(t, out, "1 approvals")

	out, err = run(t, url, "--json", "list")
	require.NoError(t, err)
	var list approval.ListResult
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Equal(t, "+ aws_vpc.main", *list.Approvals["pipe-1"].TerraformPlan)

	out, err = run(t, url, "wait", "pipe-1", "--interval", "10ms", "--timeout", "1s")
	require.NoError(t, err)
	assert.Contains(t, out, "approved")

	out, err = run(t, url, "delete", "pipe-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Approval record for pipe-1 deleted successfully")
}

func TestCLINotFound(t *testing.T) {
	url := startServer(t)

	_, err := run(t, url, "reject", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
	assert.Contains(t, err.Error(), "No approval request found for pipeline ghost")
}

func TestCLIWaitRejected(t *testing.T) {
	url := startServer(t)

	_, err := run(t, url, "submit", "pipe-2")
	require.NoError(t, err)
	_, err = run(t, url, "reject", "pipe-2")
	require.NoError(t, err)

	_, err = run(t, url, "wait", "pipe-2", "--interval", "10ms", "--timeout", "1s")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "拒绝")
}

func TestCLIWaitTimeout(t *testing.T) {
	url := startServer(t)

	start := time.Now()
	_, err := run(t, url, "wait", "pending-forever", "--interval", "10ms", "--timeout", "50ms")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "超时")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestCLIHealthJSON(t *testing.T) {
	url := startServer(t)

	out, err := run(t, url, "--json", "health")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"healthy","service":"Approval Service"}`, out)
}

func TestCLIYAMLOutput(t *testing.T) {
	url := startServer(t)

	_, err := run(t, url, "submit", "pipe-y", "--description", "yaml")
	require.NoError(t, err)

	out, err := run(t, url, "-o", "yaml", "status", "pipe-y")
	require.NoError(t, err)
	assert.Contains(t, out, "approval_status: pending")
	assert.Contains(t, out, "pipeline_id: pipe-y")

	out, err = run(t, url, "--output", "yaml", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "total: 1")
	assert.Contains(t, out, "description: yaml")
}
