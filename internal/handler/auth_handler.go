package handler

import (
	"net/http"

	"electrical-qa-go/internal/service"
	"electrical-qa-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AuthHandler 负责处理认证相关的 API 请求，例如刷新 token。
type AuthHandler struct {
	userService service.UserService
}

// NewAuthHandler 创建一个新的 AuthHandler 实例。
func NewAuthHandler(userService service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// RefreshTokenRequest 定义了刷新 token API 的请求体结构。
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshToken 处理刷新 token 的请求。
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("RefreshToken: Invalid request payload, error: %v", err)
		respondError(c, http.StatusBadRequest, "无效的请求负载：refreshToken 不能为空")
		return
	}

	newAccessToken, newRefreshToken, err := h.userService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		log.Warnf("RefreshToken: Failed to refresh token, error: %v", err)
		respondError(c, http.StatusUnauthorized, "无效的 refresh token")
		return
	}

	log.Info("Token refreshed successfully")
	respond(c, http.StatusOK, "Token refreshed successfully", gin.H{
		"token":        newAccessToken,
		"refreshToken": newRefreshToken,
	})
}
