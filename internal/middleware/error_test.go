package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"prepwise_backend/internal/common"
)

func newErrorHandlerRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler(zap.NewNop()))
	router.POST("/sign-in", func(c *gin.Context) {
		common.RespondWithError(c, common.ErrNoSuchUser)
	})
	return router
}

func TestErrorHandler_HandlerWritten404IsSingleDocument(t *testing.T) {
	router := newErrorHandlerRouter()

	req := httptest.NewRequest(http.MethodPost, "/sign-in", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.True(t, json.Valid(rec.Body.Bytes()), "error body must be one valid JSON document, got: %s", rec.Body.String())

	var payload common.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "NO_SUCH_USER", payload.Code)
	assert.Equal(t, "User does not exist. Create an account.", payload.Message)
}

func TestErrorHandler_UnhandledErrorBecomesGeneric500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandler(zap.NewNop()))
	router.GET("/boom", func(c *gin.Context) {
		c.Set(common.RequestIDContextKey, "req-123")
		_ = c.Error(errors.New("database on fire"))
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var payload common.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", payload.Code)
}

func TestErrorHandler_UnknownEndpointFallback(t *testing.T) {
	router := newErrorHandlerRouter()

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.True(t, json.Valid(rec.Body.Bytes()))

	var payload common.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "NOT_FOUND", payload.Code)
}
