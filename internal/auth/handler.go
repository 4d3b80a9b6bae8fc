// File: internal/auth/handler.go
package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"prepwise_backend/internal/common"
	"prepwise_backend/internal/session"
	"prepwise_backend/internal/shared"
	"prepwise_backend/internal/user"
)

// Handler exposes the auth flows over HTTP. The session credential travels
// only in the cookie; response bodies never echo it.
type Handler struct {
	service *Service
	cookies *session.Cookies
	logger  *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(service *Service, cookies *session.Cookies, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		cookies: cookies,
		logger:  logger,
	}
}

// RegisterRoutes sets up the authentication routes. The optional-session
// middleware resolves a context user when a valid cookie is present but
// admits anonymous requests; /me and /sign-out rely on it.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, optionalSessionMW gin.HandlerFunc) {
	authGroup := router.Group("/auth", optionalSessionMW)
	{
		authGroup.POST("/sign-up", h.signUp)
		authGroup.POST("/sign-in", h.signIn)
		authGroup.POST("/provider", h.providerSignIn)
		authGroup.POST("/sign-out", h.signOut)
		authGroup.GET("/me", h.me)
	}
}

func (h *Handler) signUp(c *gin.Context) {
	var req SignUpRequest
	if !h.bind(c, &req) {
		return
	}
	if req.UID == "" && req.Password == "" {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Either uid or password must be provided."))
		return
	}

	var (
		usr *shared.User
		err error
	)
	if req.UID != "" {
		usr, err = h.service.Register(c.Request.Context(), req.UID, req.Name, req.Email)
	} else {
		usr, err = h.service.RegisterWithPassword(c.Request.Context(), req.Name, req.Email, req.Password)
	}
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Account created successfully. Please sign in.", gin.H{"user": user.ToUserResponse(usr)})
}

func (h *Handler) signIn(c *gin.Context) {
	var req SignInRequest
	if !h.bind(c, &req) {
		return
	}

	credential, _, err := h.service.SignIn(c.Request.Context(), req.Email, req.IDToken)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	h.cookies.Write(c, credential)
	common.RespondOK(c, "Signed in successfully.", nil)
}

func (h *Handler) providerSignIn(c *gin.Context) {
	var req ProviderSignInRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.service.SignInWithProvider(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	h.cookies.Write(c, result.Credential)
	data := gin.H{"user": user.ToUserResponse(result.User)}
	if result.Created {
		common.RespondCreated(c, "Signed in successfully.", data)
		return
	}
	common.RespondOK(c, "Signed in successfully.", data)
}

func (h *Handler) signOut(c *gin.Context) {
	usr := common.GetCurrentUserFromContext(c)
	revokeAll := c.Query("all") == "true"
	h.service.SignOut(c.Request.Context(), usr, revokeAll)
	h.cookies.Clear(c)
	common.RespondOK(c, "Signed out successfully.", nil)
}

// me reports the current session. Anonymous visitors get a null user with
// 200, never an error.
func (h *Handler) me(c *gin.Context) {
	usr := common.GetCurrentUserFromContext(c)
	if usr == nil {
		common.RespondOK(c, "", gin.H{"user": nil})
		return
	}
	common.RespondOK(c, "", gin.H{"user": user.ToUserResponse(usr)})
}

// bind decodes the JSON body, translating validation failures into the
// standard error shape. Returns false when the request was rejected.
func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(validationErrors)))
			return false
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return false
	}
	return true
}
