package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Healthz 用于存活探测。
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
