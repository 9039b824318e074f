package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/apperr"
	"github.com/taskdeck/taskdeck/internal/policy"
	"github.com/taskdeck/taskdeck/internal/types"
)

func newContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest("GET", target, nil)
	return ctx
}

func TestParseID(t *testing.T) {
	tests := []struct {
		raw     string
		want    uint
		wantErr bool
	}{
		{"42", 42, false},
		{"", 0, true},
		{"0", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			ctx := newContext("/")
			ctx.Params = gin.Params{{Key: "id", Value: tt.raw}}

			id, err := ParseID(ctx, "id")

			if tt.wantErr {
				assert.True(t, apperr.IsKind(err, apperr.KindValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestParseOptionalID(t *testing.T) {
	id, err := ParseOptionalID(newContext("/tasks"), "projectId")
	require.NoError(t, err)
	assert.Nil(t, id)

	id, err = ParseOptionalID(newContext("/tasks?projectId=7"), "projectId")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, uint(7), *id)

	_, err = ParseOptionalID(newContext("/tasks?projectId=seven"), "projectId")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestGetCurrentUser(t *testing.T) {
	ctx := newContext("/")

	_, err := GetCurrentUser(ctx)
	assert.Error(t, err)

	ctx.Set(types.ContextUserKey, "not a caller")
	_, err = GetCurrentUser(ctx)
	assert.Error(t, err)

	ctx.Set(types.ContextUserKey, policy.Caller{ID: 3, Role: types.RoleMember})
	caller, err := GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(3), caller.ID)
}
