package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"electrical-qa-go/internal/model"
	"electrical-qa-go/internal/service"
	"electrical-qa-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter(jwtManager *token.JWTManager, users *service.MockUserService, admin bool) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware(jwtManager, users)}
	if admin {
		handlers = append(handlers, AdminAuthMiddleware())
	}
	handlers = append(handlers, func(c *gin.Context) {
		u, _ := c.Get("user")
		c.JSON(http.StatusOK, gin.H{"username": u.(*model.User).Username})
	})
	r.GET("/protected", handlers...)
	return r
}

func doGet(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	jwtManager := token.NewJWTManager("test-secret", 1, 7)
	access, err := jwtManager.GenerateToken(3, "ampere", model.RoleUser)
	require.NoError(t, err)
	refresh, err := jwtManager.GenerateRefreshToken(3, "ampere", model.RoleUser)
	require.NoError(t, err)

	t.Run("valid access token", func(t *testing.T) {
		users := new(service.MockUserService)
		users.On("IsTokenRevoked", mock.Anything, access).Return(false, nil)
		users.On("GetProfile", "ampere").Return(&model.User{ID: 3, Username: "ampere"}, nil)

		w := doGet(newProtectedRouter(jwtManager, users, false), "Bearer "+access)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ampere")
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Token " + access},
		{"garbage token", "Bearer not-a-jwt"},
		{"refresh token", "Bearer " + refresh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(service.MockUserService)
			w := doGet(newProtectedRouter(jwtManager, users, false), tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			users.AssertNotCalled(t, "GetProfile", mock.Anything)
		})
	}

	t.Run("revoked token", func(t *testing.T) {
		users := new(service.MockUserService)
		users.On("IsTokenRevoked", mock.Anything, access).Return(true, nil)

		w := doGet(newProtectedRouter(jwtManager, users, false), "Bearer "+access)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		users.AssertNotCalled(t, "GetProfile", mock.Anything)
	})

	t.Run("deleted user", func(t *testing.T) {
		users := new(service.MockUserService)
		users.On("IsTokenRevoked", mock.Anything, access).Return(false, nil)
		users.On("GetProfile", "ampere").Return(nil, service.ErrUserNotFound)

		w := doGet(newProtectedRouter(jwtManager, users, false), "Bearer "+access)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAdminAuthMiddleware(t *testing.T) {
	jwtManager := token.NewJWTManager("test-secret", 1, 7)
	access, err := jwtManager.GenerateToken(1, "root", model.RoleAdmin)
	require.NoError(t, err)

	users := new(service.MockUserService)
	users.On("IsTokenRevoked", mock.Anything, access).Return(false, nil)
	users.On("GetProfile", "root").Return(&model.User{ID: 1, Username: "root", Role: model.RoleUser}, nil).Once()
	users.On("GetProfile", "root").Return(&model.User{ID: 1, Username: "root", Role: model.RoleAdmin}, nil).Once()

	r := newProtectedRouter(jwtManager, users, true)

	// 以数据库中的角色为准，而不是 token 中的角色
	w := doGet(r, "Bearer "+access)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doGet(r, "Bearer "+access)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMaskSensitive(t *testing.T) {
	in := `{"username":"tesla","password":"s3cr\"et","passwordConfirm":"s3cret","data":{"token":"abc.def"}}`
	out := maskSensitive(in)
	assert.NotContains(t, out, "s3cr")
	assert.NotContains(t, out, "abc.def")
	assert.Contains(t, out, `"username":"tesla"`)
	assert.Contains(t, out, `"password":"***"`)
}
