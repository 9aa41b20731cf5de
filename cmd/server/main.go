package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog-backend/config"
	"blog-backend/internal/handler"
	"blog-backend/internal/model"
	"blog-backend/internal/repository"
	"blog-backend/internal/router"
	"blog-backend/internal/service"
	dbPkg "blog-backend/pkg/db"
	"blog-backend/pkg/jwt"
	"blog-backend/pkg/logger"
	"blog-backend/pkg/mailer"
	redisPkg "blog-backend/pkg/redis"
	"blog-backend/pkg/storage"
	"blog-backend/pkg/validation"
	"blog-backend/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	log.Info("=== 博客后端启动 ===")
	log.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("database_host", cfg.Database.Host),
		zap.String("database_name", cfg.Database.Database),
		zap.Duration("jwt_access_ttl", cfg.JWT.AccessTTL),
		zap.Duration("jwt_refresh_ttl", cfg.JWT.RefreshTTL),
		zap.String("mail_driver", cfg.Mail.Driver),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 初始化数据库连接
	db, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(); err != nil {
			log.Error("关闭数据库连接失败", zap.Error(err))
		}
	}()
	log.Info("数据库连接成功")

	// 3.1 自动迁移表结构
	if err := dbPkg.AutoMigrate(model.All()...); err != nil {
		log.Fatal("自动迁移失败", zap.Error(err))
	}
	repos := repository.New(db)
	if err := repos.Categories.EnsureDefault(context.Background()); err != nil {
		log.Fatal("初始化默认分类失败", zap.Error(err))
	}
	log.Info("自动迁移完成")

	// 4. 初始化Redis（令牌黑名单、限流）
	rdb, err := redisPkg.InitRedis(cfg.Redis)
	if err != nil {
		log.Fatal("Redis连接失败", zap.Error(err))
	}
	defer func() {
		if err := redisPkg.Close(); err != nil {
			log.Error("关闭Redis连接失败", zap.Error(err))
		}
	}()

	// 5. 初始化外部通道：邮件、媒体存储、WebSocket
	sender, err := mailer.New(cfg.Mail, cfg.RabbitMQ)
	if err != nil {
		log.Fatal("初始化邮件发送失败", zap.Error(err))
	}
	if q, ok := sender.(*mailer.QueueSender); ok {
		defer q.Close()
	}

	store, err := storage.New(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatal("初始化媒体存储失败", zap.Error(err))
	}
	if gcs, ok := store.(*storage.GCSStore); ok {
		defer gcs.Close()
	}

	wsManager := websocket.NewManager()

	// 6. 初始化业务服务
	validation.Init()
	jwtSvc := jwt.NewJWTService(cfg.JWT, redisPkg.NewTokenBlacklist(rdb))
	authSvc := service.NewAuthService(repos, jwtSvc, sender, cfg.Mail.ResetURL)
	profileSvc := service.NewProfileService(repos)
	postSvc := service.NewPostService(repos)
	interactionSvc := service.NewInteractionService(repos, wsManager)
	dashboardSvc := service.NewDashboardService(repos)

	// 7. 设置Gin模式并创建路由
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.Setup(router.Deps{
		Config:    cfg,
		JWT:       jwtSvc,
		Limiter:   redisPkg.NewRateLimiter(rdb),
		Auth:      handler.NewAuthHandler(authSvc),
		Profile:   handler.NewProfileHandler(profileSvc, store),
		Post:      handler.NewPostHandler(postSvc, interactionSvc),
		Dashboard: handler.NewDashboardHandler(dashboardSvc, store),
		WebSocket: websocket.NewHandler(jwtSvc, wsManager, cfg.WebSocket),
		Health: map[string]router.HealthCheck{
			"database": func(context.Context) error { return dbPkg.HealthCheck() },
			"redis":    redisPkg.HealthCheck,
		},
	})

	// 8. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 9. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	log.Info("服务器已安全关闭")
}
