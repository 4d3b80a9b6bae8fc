// File: internal/user/handler.go
package user

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prepwise_backend/internal/common"
)

// Handler struct holds dependencies for user handlers.
type Handler struct {
	logger *zap.Logger
}

// NewHandler creates a new user handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

// RegisterRoutes sets up the routes for user profile operations. The
// required-session middleware guarantees a resolved user in context.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, sessionMW gin.HandlerFunc) {
	userGroup := router.Group("/users", sessionMW)
	{
		userGroup.GET("/me", h.me)
	}
}

func (h *Handler) me(c *gin.Context) {
	usr := common.GetCurrentUserFromContext(c)
	if usr == nil {
		// The middleware should have rejected the request already.
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	common.RespondOK(c, "", gin.H{"user": ToUserResponse(usr)})
}
