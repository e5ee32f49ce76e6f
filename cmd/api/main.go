// @title Biblioteka API
// @version 1.0
// @description 图书借阅管理系统API：图书、用户、借阅订单与活动日志
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/biblioteka/backend/docs"
	appActivity "github.com/biblioteka/backend/internal/application/activity"
	appBook "github.com/biblioteka/backend/internal/application/book"
	appOrder "github.com/biblioteka/backend/internal/application/order"
	appUser "github.com/biblioteka/backend/internal/application/user"
	"github.com/biblioteka/backend/internal/domain/activity"
	domainUser "github.com/biblioteka/backend/internal/domain/user"
	"github.com/biblioteka/backend/internal/infrastructure/config"
	"github.com/biblioteka/backend/internal/infrastructure/persistence/mysql"
	redisstore "github.com/biblioteka/backend/internal/infrastructure/persistence/redis"
	"github.com/biblioteka/backend/internal/interface/http/handler"
	"github.com/biblioteka/backend/internal/interface/http/middleware"
	"github.com/biblioteka/backend/pkg/eventbus"
	"github.com/biblioteka/backend/pkg/jwt"
	"github.com/biblioteka/backend/pkg/logger"
	"github.com/biblioteka/backend/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	metrics.InitMetrics()

	app, err := buildApp(cfg, log)
	if err != nil {
		log.Fatal("初始化失败", zap.Error(err))
	}
	defer app.close(log)

	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.Metrics())

	registerRoutes(engine, app)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("服务启动", zap.Int("port", cfg.Server.Port), zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	// 优雅关闭：等待SIGINT/SIGTERM，给进行中的请求10秒完成
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("收到退出信号，开始优雅关闭")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("优雅关闭失败", zap.Error(err))
	}
	log.Info("服务已退出")
}

// registerRoutes 注册全部路由
func registerRoutes(engine *gin.Engine, app *application) {
	// 健康检查与可观测端点
	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authRequired := middleware.RequireAuth(app.jwtMgr, app.sessions, app.log)
	adminOnly := middleware.RequireRole(domainUser.RoleAdmin)

	v1 := engine.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", app.userHandler.Register)
		auth.POST("/login", app.userHandler.Login)
		auth.POST("/refresh", app.userHandler.Refresh)
		auth.POST("/logout", authRequired, app.userHandler.Logout)
		auth.GET("/me", authRequired, app.userHandler.Me)
	}

	books := v1.Group("/books")
	{
		books.GET("", app.bookHandler.List)
		books.GET("/:id", app.bookHandler.Get)
		books.POST("", authRequired, adminOnly, app.bookHandler.Create)
		books.PATCH("/:id", authRequired, adminOnly, app.bookHandler.Update)
		books.DELETE("/:id", authRequired, adminOnly, app.bookHandler.Delete)
		books.POST("/:id/rent", authRequired, app.bookHandler.Rent)
		books.POST("/:id/return", authRequired, app.bookHandler.Return)
	}

	orders := v1.Group("/orders", authRequired)
	{
		orders.POST("", app.orderHandler.Create)
		orders.GET("", app.orderHandler.List)
		orders.GET("/:id", app.orderHandler.Get)
		orders.PATCH("/:id/return", app.orderHandler.Return)
	}

	users := v1.Group("/users", authRequired)
	{
		users.GET("", adminOnly, app.userHandler.List)
		users.POST("", adminOnly, app.userHandler.Create)
		users.GET("/:id", app.userHandler.Get)
		users.PATCH("/:id", app.userHandler.Update)
		users.DELETE("/:id", adminOnly, app.userHandler.Delete)
	}

	v1.GET("/activities", authRequired, adminOnly, app.activityHandler.List)
}

// application 组装完成的应用依赖
type application struct {
	log             *zap.Logger
	jwtMgr          *jwt.Manager
	sessions        *redisstore.SessionStore
	publisher       *eventbus.Publisher
	userHandler     *handler.UserHandler
	bookHandler     *handler.BookHandler
	orderHandler    *handler.OrderHandler
	activityHandler *handler.ActivityHandler
}

// buildApp 手动依赖注入
// 各层装配顺序：基础设施 → 仓储 → 领域/应用服务 → 处理器
func buildApp(cfg *config.Config, log *zap.Logger) (*application, error) {
	db, err := mysql.NewDB(cfg.Database, cfg.Server.Mode)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	redisClient, err := redisstore.NewClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}
	sessions := redisstore.NewSessionStore(redisClient)

	var publisher *eventbus.Publisher
	if cfg.MQ.Enabled {
		publisher, err = eventbus.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
		if err != nil {
			return nil, fmt.Errorf("init event publisher: %w", err)
		}
	}

	jwtMgr := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire)

	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	activityRepo := mysql.NewActivityRepository(db)
	txManager := mysql.NewTxManager(db)

	recorder := activity.NewRecorder(activityRepo, publisher, log)
	userDomainSvc := domainUser.NewService()

	userSvc := appUser.NewService(userRepo, bookRepo, orderRepo, userDomainSvc,
		jwtMgr, sessions, txManager, recorder, log)
	bookSvc := appBook.NewService(bookRepo, orderRepo, txManager, recorder, log)
	orderSvc := appOrder.NewService(orderRepo, bookRepo, txManager, recorder, log)
	activitySvc := appActivity.NewService(activityRepo)

	return &application{
		log:             log,
		jwtMgr:          jwtMgr,
		sessions:        sessions,
		publisher:       publisher,
		userHandler:     handler.NewUserHandler(userSvc),
		bookHandler:     handler.NewBookHandler(bookSvc),
		orderHandler:    handler.NewOrderHandler(orderSvc),
		activityHandler: handler.NewActivityHandler(activitySvc),
	}, nil
}

// close 释放外部连接
func (a *application) close(log *zap.Logger) {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			log.Warn("关闭事件发布器失败", zap.Error(err))
		}
	}
}
