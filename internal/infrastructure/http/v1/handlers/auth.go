package handlers

import (
	"github.com/gin-gonic/gin"

	"registrar/internal/core/apperror"
	appctx "registrar/internal/core/context"
	"registrar/internal/domain/auth"
	"registrar/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		service:     service,
	}
}

func clientInfo(c *gin.Context) auth.ClientInfo {
	return auth.ClientInfo{UserAgent: c.Request.UserAgent(), IPAddress: c.ClientIP()}
}

// Register handles POST /auth/register (admin only).
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.ToAuthRequest())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromUser(user))
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tokens, user, err := h.service.Login(c.Request.Context(), req.ToCredentials(), clientInfo(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.LoginResponse{
		Tokens: dto.FromTokenPair(tokens),
		User:   dto.FromUser(user),
	})
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tokens, err := h.service.Refresh(c.Request.Context(), req.RefreshToken, clientInfo(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromTokenPair(tokens))
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	user := appctx.GetUser(ctx)
	if user == nil {
		h.Error(c, apperror.NewUnauthorized("not authenticated"))
		return
	}

	n, err := h.service.Logout(ctx, user.UserID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.LogoutResponse{Sessions: n})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromUser(user))
}
