package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GGital/terraform-opstella/internal/approval"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "未找到",
			err:        &approval.NotFoundError{PipelineID: "pipe-9"},
			wantStatus: http.StatusNotFound,
			wantDetail: "No approval request found for pipeline pipe-9",
		},
		{
			name:       "状态冲突",
			err:        &approval.TransitionError{PipelineID: "p", From: approval.StatusApproved, To: approval.StatusRejected},
			wantStatus: http.StatusConflict,
			wantDetail: "Pipeline p is already approved and cannot be rejected",
		},
		{
			name:       "存储错误",
			err:        fmt.Errorf("包装: %w", approval.ErrStore),
			wantStatus: http.StatusInternalServerError,
			wantDetail: DetailStoreUnavailable,
		},
		{
			name:       "未知错误",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: DetailInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := StatusFor(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantDetail, detail)
		})
	}
}

func TestResponseServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/approval/x/approve", nil)
	c.Params = gin.Params{{Key: "pipeline_id", Value: "x"}}

	ResponseServiceError(c, &approval.NotFoundError{PipelineID: "x"})

	require.Equal(t, http.StatusNotFound, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "No approval request found for pipeline x", body.Detail)
}

func TestResponseBadRequestDefaultDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ResponseBadRequest(c, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"invalid request body"}`, w.Body.String())
}
