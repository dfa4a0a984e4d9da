package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(), RecoveryWithLogger())
	r.GET("/", handler)
	return r
}

func TestErrorHandlerRendersJSON(t *testing.T) {
	r := newTestEngine(func(c *gin.Context) {
		c.Error(NewBadGatewayError("MODEL_ERROR", "Model response error").WithDetails("timeout"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "MODEL_ERROR", body.Error.Code)
	assert.Equal(t, "Model response error", body.Error.Message)
	assert.Equal(t, "timeout", body.Error.Details)
}

func TestErrorHandlerRendersPlainText(t *testing.T) {
	r := newTestEngine(func(c *gin.Context) {
		c.Error(NewBadRequestError("INVALID_DATE", "Invalid start date format").AsText())
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid start date format", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}

func TestErrorHandlerHidesPlainErrors(t *testing.T) {
	r := newTestEngine(func(c *gin.Context) {
		c.Error(stderrors.New("pq: connection refused"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestRecoveryWithLogger(t *testing.T) {
	r := newTestEngine(func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SERVER_ERROR")
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := NewInternalServerError("SAVE_FAILED", "Failed to save summary").WithCause(cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.Same(t, err, FromError(fmt.Errorf("saving: %w", err)))

	generic := FromError(cause)
	assert.Equal(t, "INTERNAL_ERROR", generic.Code)
	assert.NotContains(t, generic.Message, "disk full")
	assert.Nil(t, FromError(nil))
}
