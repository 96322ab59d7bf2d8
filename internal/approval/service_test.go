package approval_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/GGital/terraform-opstella/internal/approval"
	"github.com/GGital/terraform-opstella/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock 每次调用前进一秒
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// failingBackend 模拟存储不可用
type failingBackend struct {
	loadErr error
	saveErr error
	snap    approval.Snapshot
}

func (f *failingBackend) Load(context.Context) (approval.Snapshot, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.snap.Clone(), nil
}

func (f *failingBackend) Save(context.Context, approval.Snapshot) error {
	return f.saveErr
}

func strPtr(s string) *string { return &s }

func setupService(t *testing.T, opts ...approval.Option) (*approval.Service, *storage.Memory) {
	t.Helper()
	backend := storage.NewMemory()
	clock := newFakeClock()
	opts = append([]approval.Option{approval.WithClock(clock.Now)}, opts...)
	svc := approval.NewService(backend, opts...)
	require.NoError(t, svc.Init(context.Background()))
	return svc, backend
}

func TestGetUnknownPipelineIsSynthesized(t *testing.T) {
	ctx := context.Background()
	svc, backend := setupService(t)

	resp, err := svc.Get(ctx, "never-submitted")
	require.NoError(t, err)
	assert.Equal(t, approval.StatusPending, resp.ApprovalStatus)
	assert.Equal(t, "never-submitted", resp.PipelineID)
	assert.Equal(t, "Approval pending - awaiting manual review", resp.Message)
	assert.NotEmpty(t, resp.Timestamp)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, list.Total)

	snap, err := backend.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestSubmitThenGetAndList(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	resp, err := svc.Submit(ctx, "pipe-1", approval.SubmitInput{
		Description:   strPtr("infra change"),
		TerraformPlan: strPtr("+ aws_s3_bucket.logs"),
	})
	require.NoError(t, err)
	assert.Equal(t, approval.StatusPending, resp.ApprovalStatus)
	assert.Equal(t, "Approval request submitted successfully", resp.Message)

	got, err := svc.Get(ctx, "pipe-1")
	require.NoError(t, err)
	assert.Equal(t, approval.StatusPending, got.ApprovalStatus)
	assert.Equal(t, "pipe-1", got.PipelineID)
	assert.Equal(t, "Pipeline pending for review", got.Message)
	assert.Equal(t, resp.Timestamp, got.Timestamp)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	rec := list.Approvals["pipe-1"]
	assert.Equal(t, "pipe-1", rec.PipelineID)
	assert.Equal(t, "infra change", *rec.Description)
	assert.Equal(t, "+ aws_s3_bucket.logs", *rec.TerraformPlan)
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)
}

func TestSubmitWithoutOptionalFields(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Submit(ctx, "pipe-1", approval.SubmitInput{})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Nil(t, list.Approvals["pipe-1"].Description)
	assert.Nil(t, list.Approvals["pipe-1"].TerraformPlan)
}

func TestResubmitResetsToPending(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Submit(ctx, "pipe-1", approval.SubmitInput{Description: strPtr("v1")})
	require.NoError(t, err)
	_, err = svc.Approve(ctx, "pipe-1")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "pipe-1", approval.SubmitInput{Description: strPtr("v2")})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "pipe-1")
	require.NoError(t, err)
	assert.Equal(t, approval.StatusPending, got.ApprovalStatus)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "v2", *list.Approvals["pipe-1"].Description)
}

func TestApproveUpdatesTimestamp(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Submit(ctx, "pipe-1", approval.SubmitInput{})
	require.NoError(t, err)

	resp, err := svc.Approve(ctx, "pipe-1")
	require.NoError(t, err)
	assert.Equal(t, approval.StatusApproved, resp.ApprovalStatus)
	assert.Equal(t, "Pipeline approved successfully", resp.Message)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	rec := list.Approvals["pipe-1"]
	assert.Equal(t, approval.StatusApproved, rec.Status)
	assert.True(t, rec.UpdatedAt.After(rec.CreatedAt))
	assert.Equal(t, approval.FormatTimestamp(rec.UpdatedAt), resp.Timestamp)

	got, err := svc.Get(ctx, "pipe-1")
	require.NoError(t, err)
	assert.Equal(t, "Pipeline approved for review", got.Message)
}

func TestApproveIsIdempotentInEffect(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Submit(ctx, "pipe-1", approval.SubmitInput{})
	require.NoError(t, err)
	first, err := svc.Approve(ctx, "pipe-1")
	require.NoError(t, err)
	second, err := svc.Approve(ctx, "pipe-1")
	require.NoError(t, err)

	assert.Equal(t, approval.StatusApproved, second.ApprovalStatus)
	assert.NotEqual(t, first.Timestamp, second.Timestamp)
}

func TestDecisionOnUnknownPipeline(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	tests := []struct {
		name string
		call func(context.Context, string) (*approval.Response, error)
	}{
		{"approve", svc.Approve},
		{"reject", svc.Reject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tt.call(ctx, "ghost")
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.True(t, errors.Is(err, approval.ErrNotFound))

			var nf *approval.NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, "ghost", nf.PipelineID)
			assert.Equal(t, "No approval request found for pipeline ghost", err.Error())

			list, err := svc.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, list.Total)
		})
	}
}

func TestRejectAfterApproveOverwrites(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Submit(ctx, "pipe-1", approval.SubmitInput{})
	require.NoError(t, err)
	_, err = svc.Approve(ctx, "pipe-1")
	require.NoError(t, err)

	resp, err := svc.Reject(ctx, "pipe-1")
	require.NoError(t, err)
	assert.Equal(t, approval.StatusRejected, resp.ApprovalStatus)
	assert.Equal(t, "Pipeline rejected", resp.Message)

	resp, err = svc.Approve(ctx, "pipe-1")
	require.NoError(t, err)
	assert.Equal(t, approval.StatusApproved, resp.ApprovalStatus)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Submit(ctx, "pipe-1", approval.SubmitInput{})
	require.NoError(t, err)
	_, err = svc.Approve(ctx, "pipe-1")
	require.NoError(t, err)

	res, err := svc.Delete(ctx, "pipe-1")
	require.NoError(t, err)
	assert.Equal(t, "Approval record for pipe-1 deleted successfully", res.Message)

	got, err := svc.Get(ctx, "pipe-1")
	require.NoError(t, err)
	assert.Equal(t, approval.StatusPending, got.ApprovalStatus)
	assert.Equal(t, "Approval pending - awaiting manual review", got.Message)

	_, err = svc.Delete(ctx, "pipe-1")
	assert.ErrorIs(t, err, approval.ErrNotFound)
}

func TestStrictTransitions(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t, approval.WithStrictTransitions(true))

	_, err := svc.Submit(ctx, "pipe-1", approval.SubmitInput{})
	require.NoError(t, err)
	_, err = svc.Approve(ctx, "pipe-1")
	require.NoError(t, err)

	// 终态允许重复自身
	_, err = svc.Approve(ctx, "pipe-1")
	require.NoError(t, err)

	_, err = svc.Reject(ctx, "pipe-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, approval.ErrInvalidTransition)

	var te *approval.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, approval.StatusApproved, te.From)
	assert.Equal(t, approval.StatusRejected, te.To)

	got, err := svc.Get(ctx, "pipe-1")
	require.NoError(t, err)
	assert.Equal(t, approval.StatusApproved, got.ApprovalStatus)

	// 重新提交后可以再次决策
	_, err = svc.Submit(ctx, "pipe-1", approval.SubmitInput{})
	require.NoError(t, err)
	_, err = svc.Reject(ctx, "pipe-1")
	require.NoError(t, err)
}

func TestStoreFailures(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("disk full")

	t.Run("加载失败", func(t *testing.T) {
		svc := approval.NewService(&failingBackend{loadErr: cause})

		_, err := svc.Get(ctx, "pipe-1")
		require.Error(t, err)
		assert.ErrorIs(t, err, approval.ErrStore)
		assert.ErrorIs(t, err, cause)

		_, err = svc.List(ctx)
		assert.ErrorIs(t, err, approval.ErrStore)

		assert.Error(t, svc.Ping(ctx))
	})

	t.Run("保存失败", func(t *testing.T) {
		svc := approval.NewService(&failingBackend{saveErr: cause, snap: approval.Snapshot{}})

		_, err := svc.Submit(ctx, "pipe-1", approval.SubmitInput{})
		require.Error(t, err)
		assert.ErrorIs(t, err, approval.ErrStore)
		assert.False(t, errors.Is(err, approval.ErrNotFound))
	})

	t.Run("未找到不属于存储错误", func(t *testing.T) {
		svc := approval.NewService(&failingBackend{snap: approval.Snapshot{}})

		_, err := svc.Approve(ctx, "pipe-1")
		require.Error(t, err)
		assert.False(t, errors.Is(err, approval.ErrStore))
	})
}

func TestBackendName(t *testing.T) {
	svc, _ := setupService(t)
	assert.Equal(t, "memory", svc.BackendName())
	assert.NoError(t, svc.Ping(context.Background()))

	custom := approval.NewService(&failingBackend{snap: approval.Snapshot{}})
	assert.Equal(t, "custom", custom.BackendName())
	assert.NoError(t, custom.Ping(context.Background()))
}

func TestConcurrentSubmitsAreNotLost(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Submit(ctx, fmt.Sprintf("pipe-%d", i), approval.SubmitInput{})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, list.Total)
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "approved", "rejected"} {
		got, err := approval.ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, s, got.String())
	}

	_, err := approval.ParseStatus("APPROVED")
	assert.Error(t, err)
}
