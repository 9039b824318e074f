package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/apperr"
)

func render(t *testing.T, write func(ctx *gin.Context)) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	write(ctx)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return w.Code, body
}

func TestSuccessEnvelope(t *testing.T) {
	code, body := render(t, func(ctx *gin.Context) {
		Success(ctx, http.StatusCreated, "Project created successfully", gin.H{"id": 1})
	})

	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, float64(http.StatusCreated), body["code"])
	assert.Equal(t, StatusSuccess, body["status"])
	assert.Equal(t, map[string]any{"id": float64(1)}, body["data"])
	assert.NotContains(t, body, "details")
	assert.NotContains(t, body, "cause")
}

func TestErrorEnvelopeKinds(t *testing.T) {
	code, body := render(t, func(ctx *gin.Context) {
		Error(ctx, apperr.Validation("Title is required"), "")
	})

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, StatusError, body["status"])
	assert.Equal(t, "Validation failed", body["message"])
	assert.Equal(t, "Title is required", body["details"])

	code, body = render(t, func(ctx *gin.Context) {
		Error(ctx, apperr.Upload(errors.New("bucket not found")), "")
	})

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "File upload failed", body["message"])
	assert.Equal(t, "bucket not found", body["cause"])
}

func TestInternalCauseIsHiddenByDefault(t *testing.T) {
	code, body := render(t, func(ctx *gin.Context) {
		Error(ctx, errors.New("connection refused"), "Failed to fetch projects")
	})

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Failed to fetch projects", body["message"])
	assert.NotContains(t, body, "cause")

	ExposeCause = true
	t.Cleanup(func() { ExposeCause = false })

	_, body = render(t, func(ctx *gin.Context) {
		Error(ctx, errors.New("connection refused"), "Failed to fetch projects")
	})

	assert.Equal(t, "connection refused", body["cause"])
}

func TestAbortStopsChain(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	reached := false
	r.GET("/", func(ctx *gin.Context) {
		Abort(ctx, apperr.Auth("Invalid or expired token"), "")
	}, func(ctx *gin.Context) {
		reached = true
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, reached)
}
