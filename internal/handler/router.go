package handler

import (
	"electrical-qa-go/internal/middleware"
	"electrical-qa-go/internal/service"
	"electrical-qa-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// Services 汇总了路由需要的全部业务服务。
type Services struct {
	User     service.UserService
	Question service.QuestionService
	Search   service.SearchService
	Admin    service.AdminService
}

// RegisterRoutes 注册全部 HTTP 路由。
func RegisterRoutes(r *gin.Engine, jwtManager *token.JWTManager, svc Services) {
	userHandler := NewUserHandler(svc.User)
	authHandler := NewAuthHandler(svc.User)
	questionHandler := NewQuestionHandler(svc.Question)
	searchHandler := NewSearchHandler(svc.Search)
	adminHandler := NewAdminHandler(svc.Admin)
	authMiddleware := middleware.AuthMiddleware(jwtManager, svc.User)

	r.GET("/healthz", Healthz)

	apiV1 := r.Group("/api/v1")
	{
		apiV1.GET("/home", questionHandler.Home)
		apiV1.GET("/categories", questionHandler.Categories)

		// Auth 路由组
		auth := apiV1.Group("/auth")
		{
			auth.POST("/refreshToken", authHandler.RefreshToken)
		}

		users := apiV1.Group("/users")
		{
			// 无需认证的路由 (公开访问)
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)

			// 需要认证的路由 (仅限登录用户访问)
			authed := users.Group("/")
			authed.Use(authMiddleware)
			{
				authed.GET("/me", userHandler.GetProfile)
				authed.POST("/logout", userHandler.Logout)
			}
		}

		questions := apiV1.Group("/questions")
		{
			questions.GET("", questionHandler.ListQuestions)
			questions.GET("/:id", questionHandler.GetQuestion)
			questions.POST("", authMiddleware, questionHandler.Ask)
			questions.GET("/:id/transcript", authMiddleware, searchHandler.Transcript)
		}

		// Search 路由组
		search := apiV1.Group("/search")
		search.Use(authMiddleware)
		{
			search.GET("/questions", searchHandler.SearchQuestions)
		}

		admin := apiV1.Group("/admin")
		// 管理员路由组，需要同时通过认证和管理员授权两个中间件
		admin.Use(authMiddleware, middleware.AdminAuthMiddleware())
		{
			admin.GET("/questions", adminHandler.ListQuestions)
			admin.DELETE("/questions/:id", adminHandler.DeleteQuestion)
			admin.GET("/answers", adminHandler.ListAnswers)
			admin.GET("/users/list", adminHandler.ListUsers)
			admin.PUT("/users/:userId/role", adminHandler.SetUserRole)
		}
	}
}
