package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/jobboard/internal/http/response"
	"github.com/smallbiznis/jobboard/internal/service"
)

// AuthHandler serves registration, login and the caller profile.
type AuthHandler struct {
	Auth *service.AuthService
}

// NewAuthHandler creates the handler set.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if err := bindJSON(c, &req); err != nil {
		response.Abort(c, err)
		return
	}
	res, err := h.Auth.Register(c.Request.Context(), req)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginInput
	if err := bindJSON(c, &req); err != nil {
		response.Abort(c, err)
		return
	}
	res, err := h.Auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	caller, err := identity(c)
	if err != nil {
		response.Abort(c, err)
		return
	}
	user, err := h.Auth.Me(c.Request.Context(), caller)
	if err != nil {
		response.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
