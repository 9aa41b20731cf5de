package router

import (
	"context"
	"time"

	"blog-backend/config"
	"blog-backend/internal/handler"
	"blog-backend/pkg/jwt"
	"blog-backend/pkg/logger"
	"blog-backend/pkg/metrics"
	"blog-backend/pkg/middleware"
	redisPkg "blog-backend/pkg/redis"
	"blog-backend/pkg/response"
	"blog-backend/pkg/websocket"

	"github.com/gin-gonic/gin"
)

// 认证相关接口的限流：每个 IP 每分钟次数
const (
	tokenRateLimit          = 20
	passwordResetRateLimit  = 5
	passwordChangeRateLimit = 10
	rateLimitWindow         = time.Minute
)

// HealthCheck 单个依赖的健康检查
type HealthCheck func(ctx context.Context) error

// Deps 路由依赖
type Deps struct {
	Config    *config.Config
	JWT       *jwt.JWTService
	Limiter   *redisPkg.RateLimiter // 为空时不限流
	Auth      *handler.AuthHandler
	Profile   *handler.ProfileHandler
	Post      *handler.PostHandler
	Dashboard *handler.DashboardHandler
	WebSocket *websocket.Handler
	Health    map[string]HealthCheck
}

// Setup 创建 gin 引擎并注册全部路由
func Setup(d Deps) *gin.Engine {
	router := gin.New()

	router.Use(logger.ErrorLoggerMiddleware()) // panic 恢复
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(d.Config.CORS))
	router.Use(logger.RequestLogger())
	router.Use(metrics.Middleware())

	setupBasicRoutes(router, d.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	if d.WebSocket != nil {
		router.GET("/ws", d.WebSocket.Serve)
	}

	keyFn := middleware.KeyByIPAndPath()
	auth := d.JWT.AuthMiddleware()

	v1 := router.Group("/api/v1")
	{
		// 身份认证
		v1.POST("/token", middleware.RateLimit(d.Limiter, tokenRateLimit, rateLimitWindow, keyFn), d.Auth.Login)
		v1.POST("/token/refresh", d.Auth.Refresh)
		v1.POST("/register", d.Auth.Register)
		v1.GET("/password-reset/:email", middleware.RateLimit(d.Limiter, passwordResetRateLimit, rateLimitWindow, keyFn), d.Auth.PasswordResetEmail)
		v1.POST("/password-change", middleware.RateLimit(d.Limiter, passwordChangeRateLimit, rateLimitWindow, keyFn), d.Auth.PasswordChange)

		// 用户资料
		v1.GET("/profile/:user_id", d.Profile.GetProfile)
		v1.PUT("/profile/:user_id", auth, d.Profile.UpdateProfile)

		// 公开浏览
		v1.GET("/categories", d.Post.ListCategories)
		v1.GET("/posts", d.Post.ListPosts)
		v1.GET("/posts/category/:category_slug", d.Post.ListPostsByCategory)
		v1.GET("/posts/:slug", d.Post.GetPost)

		// 读者互动
		post := v1.Group("/post")
		{
			post.POST("/like", auth, d.Post.LikePost)
			post.POST("/comment", d.JWT.OptionalAuth(), d.Post.CommentPost)
			post.POST("/bookmark", auth, d.Post.BookmarkPost)
		}

		// 作者后台（需要认证）
		dashboard := v1.Group("/dashboard")
		dashboard.Use(auth)
		{
			dashboard.GET("/stats", d.Dashboard.Stats)
			dashboard.GET("/posts", d.Dashboard.Posts)
			dashboard.GET("/comments", d.Dashboard.Comments)
			dashboard.GET("/notifications", d.Dashboard.Notifications)
			dashboard.POST("/notification/seen", d.Dashboard.MarkNotificationSeen)
			dashboard.POST("/comment/reply", d.Dashboard.ReplyComment)
			dashboard.POST("/post", d.Dashboard.CreatePost)
			dashboard.GET("/post/:post_id", d.Dashboard.GetPost)
			dashboard.PUT("/post/:post_id", d.Dashboard.EditPost)
			dashboard.DELETE("/post/:post_id", d.Dashboard.DeletePost)
		}
	}

	return router
}

// setupBasicRoutes 欢迎页与健康检查
func setupBasicRoutes(router *gin.Engine, checks map[string]HealthCheck) {
	// 完整url为：http://localhost:8000/
	router.GET("/", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "Welcome to the blog API",
			"version": "1.0.0",
		})
	})

	// 完整url为：http://localhost:8000/health
	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		deps := gin.H{}
		for name, check := range checks {
			if err := check(c.Request.Context()); err != nil {
				status = "degraded"
				deps[name] = err.Error()
				continue
			}
			deps[name] = "ok"
		}
		response.Success(c, gin.H{
			"status":       status,
			"dependencies": deps,
			"time":         time.Now().Format(time.RFC3339),
		})
	})
}
