// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"electrical-qa-go/internal/model"
	"electrical-qa-go/internal/service"

	"github.com/gin-gonic/gin"
)

// 所有接口都返回 {"code","message","data"} 结构。
func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{"code": status, "message": message, "data": data})
}

func respondError(c *gin.Context, status int, message string) {
	respond(c, status, message, nil)
}

// statusOf 把业务错误映射为 HTTP 状态码。
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrQuestionNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrTranscriptNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrEmptyQuestion),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrInvalidRefreshToken):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrTokenRevoked):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrSearchUnavailable),
		errors.Is(err, service.ErrArchiveUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError 输出业务错误；未知错误不向客户端暴露细节。
func respondServiceError(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		respondError(c, status, "服务器内部错误")
		return
	}
	respondError(c, status, err.Error())
}

func currentUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	u, ok := v.(*model.User)
	return u, ok
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	return page, size
}
