package middleware

import (
	"bytes"
	"io"
	"regexp"
	"time"

	"electrical-qa-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// 日志中需要隐藏的字段：密码与 token。
var sensitiveField = regexp.MustCompile(`"(password|passwordConfirm|token|refreshToken)"\s*:\s*"(?:[^"\\]|\\.)*"`)

// maskSensitive 把 JSON 文本中的敏感字段值替换为 ***。
func maskSensitive(body string) string {
	return sensitiveField.ReplaceAllString(body, `"$1":"***"`)
}

// bodyLogWriter 用于捕获响应体
type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write 实现了 io.Writer 接口，将响应写入 gin.ResponseWriter 和一个内部的 buffer
func (w bodyLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// RequestLogger 是一个 Gin 中间件，用于记录详细的请求和响应日志。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		// 读取并重新缓存请求体
		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))

		blw := &bodyLogWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		log.Infow("HTTP Request Log",
			"statusCode", c.Writer.Status(),
			"latency", time.Since(startTime).String(),
			"clientIP", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"requestBody", maskSensitive(string(requestBody)),
			"responseBody", maskSensitive(blw.body.String()),
		)
	}
}
