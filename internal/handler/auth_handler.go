package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"realestate-service/internal/model"
	"realestate-service/internal/service"
)

type AuthHandler struct {
	Auth *service.AuthService
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.Register)
	rg.POST("/signin", h.SignIn)
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.Auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// POST /api/auth/signin
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req model.SignInRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.Auth.SignIn(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
