package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"healthops/internal/domain/auth"
	"healthops/internal/infrastructure/http/v1/dto"
)

// AuthHandler handles login and grant administration.
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

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tokens, err := h.service.Login(c.Request.Context(), req.ToCredentials())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTokenPair(tokens))
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FromCaller(h.Caller(c)))
}

// Grant handles POST /grants
func (h *AuthHandler) Grant(c *gin.Context) {
	var req dto.GrantRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.Grant(c.Request.Context(), h.Caller(c), req.ToAuthRequest()); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "grant added")
}

// Revoke handles DELETE /grants
func (h *AuthHandler) Revoke(c *gin.Context) {
	var req dto.GrantRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.Revoke(c.Request.Context(), h.Caller(c), req.ToAuthRequest()); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "grant removed")
}

// RegisterRoutes registers auth routes.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/auth/login", h.Login)

	protected.GET("/auth/me", h.Me)
	protected.POST("/grants", h.Grant)
	protected.DELETE("/grants", h.Revoke)
}
