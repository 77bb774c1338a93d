package handler

import (
	"net/http"

	"electrical-qa-go/internal/middleware"
	"electrical-qa-go/internal/service"
	"electrical-qa-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// UserHandler 负责处理所有与普通用户相关的 API 请求。
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler 创建一个新的 UserHandler 实例。
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRequest 定义了用户注册 API 的请求体结构。
type RegisterRequest struct {
	Username        string `json:"username" binding:"required,max=150"`
	Email           string `json:"email" binding:"required,email"`
	FirstName       string `json:"firstName" binding:"required,max=150"`
	LastName        string `json:"lastName" binding:"required,max=150"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
}

// Register 处理用户注册请求，注册成功后直接返回登录 token。
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Register: Invalid request payload, error: %v", err)
		respondError(c, http.StatusBadRequest, "无效的请求负载：请填写用户名、邮箱、姓名和两次密码")
		return
	}

	user, accessToken, refreshToken, err := h.userService.Register(c.Request.Context(), service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		log.Warnf("Register: User registration failed for '%s', error: %v", req.Username, err)
		respondServiceError(c, err)
		return
	}

	log.Infof("User '%s' registered successfully", user.Username)
	respond(c, http.StatusCreated, "Welcome "+user.Username+"! Your account has been created.", gin.H{
		"user":         user,
		"token":        accessToken,
		"refreshToken": refreshToken,
	})
}

// LoginRequest 定义了用户登录 API 的请求体结构。
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 处理用户登录请求。
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Login: Invalid request payload, error: %v", err)
		respondError(c, http.StatusBadRequest, "无效的请求负载：用户名和密码不能为空")
		return
	}

	accessToken, refreshToken, err := h.userService.Login(req.Username, req.Password)
	if err != nil {
		log.Warnf("Login: User authentication failed for '%s', error: %v", req.Username, err)
		if statusOf(err) == http.StatusUnauthorized {
			respondError(c, http.StatusUnauthorized, "无效的凭证")
			return
		}
		respondServiceError(c, err)
		return
	}

	log.Infof("User '%s' logged in successfully", req.Username)
	respond(c, http.StatusOK, "Login successful", gin.H{
		"token":        accessToken,
		"refreshToken": refreshToken,
	})
}

// GetProfile 获取当前登录用户的个人信息。
// 用户信息已经由 AuthMiddleware 注入到上下文中。
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusInternalServerError, "无法获取用户信息")
		return
	}
	respond(c, http.StatusOK, "success", user)
}

// LogoutRequest 是登出的可选请求体，带上 refreshToken 时一并吊销。
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Logout 处理用户登出逻辑。
func (h *UserHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "无效的请求负载")
			return
		}
	}

	if err := h.userService.Logout(c.Request.Context(), middleware.BearerToken(c), req.RefreshToken); err != nil {
		log.Error("Logout: Failed to logout", err)
		respondServiceError(c, err)
		return
	}

	if user, ok := currentUser(c); ok {
		log.Infof("User '%s' logged out successfully", user.Username)
	}
	respond(c, http.StatusOK, "Logout successful", nil)
}
