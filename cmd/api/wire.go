//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appActivity "github.com/biblioteka/backend/internal/application/activity"
	appBook "github.com/biblioteka/backend/internal/application/book"
	appOrder "github.com/biblioteka/backend/internal/application/order"
	appUser "github.com/biblioteka/backend/internal/application/user"
	"github.com/biblioteka/backend/internal/domain/activity"
	"github.com/biblioteka/backend/internal/domain/book"
	"github.com/biblioteka/backend/internal/domain/order"
	domainUser "github.com/biblioteka/backend/internal/domain/user"
	"github.com/biblioteka/backend/internal/infrastructure/config"
	"github.com/biblioteka/backend/internal/infrastructure/persistence/mysql"
	redisstore "github.com/biblioteka/backend/internal/infrastructure/persistence/redis"
	"github.com/biblioteka/backend/internal/interface/http/handler"
	"github.com/biblioteka/backend/pkg/eventbus"
	"github.com/biblioteka/backend/pkg/jwt"
)

// 基础设施Provider：从配置展开各组件所需的参数

func provideDB(cfg *config.Config) (*gorm.DB, error) {
	return mysql.NewDB(cfg.Database, cfg.Server.Mode)
}

func provideRedisClient(cfg *config.Config) (*redisstore.SessionStore, error) {
	client, err := redisstore.NewClient(cfg.Redis)
	if err != nil {
		return nil, err
	}
	return redisstore.NewSessionStore(client), nil
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire)
}

func providePublisher(cfg *config.Config) (*eventbus.Publisher, error) {
	if !cfg.MQ.Enabled {
		return nil, nil
	}
	return eventbus.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
}

// infraSet 基础设施Provider集合
var infraSet = wire.NewSet(
	provideDB,
	provideRedisClient,
	provideJWTManager,
	providePublisher,
	mysql.NewTxManager,
	wire.Bind(new(appUser.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(appBook.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(appOrder.TxManager), new(*mysql.TxManager)),
)

// repoSet 仓储Provider集合
var repoSet = wire.NewSet(
	mysql.NewUserRepository,
	wire.Bind(new(domainUser.Repository), new(*mysql.UserRepository)),
	mysql.NewBookRepository,
	wire.Bind(new(book.Repository), new(*mysql.BookRepository)),
	mysql.NewOrderRepository,
	wire.Bind(new(order.Repository), new(*mysql.OrderRepository)),
	mysql.NewActivityRepository,
	wire.Bind(new(activity.Repository), new(*mysql.ActivityRepository)),
)

// serviceSet 领域与应用服务Provider集合
var serviceSet = wire.NewSet(
	domainUser.NewService,
	activity.NewRecorder,
	appUser.NewService,
	appBook.NewService,
	appOrder.NewService,
	appActivity.NewService,
)

// handlerSet 处理器Provider集合
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewOrderHandler,
	handler.NewActivityHandler,
	wire.Struct(new(application), "*"),
)

// initializeApp 由wire生成装配代码（go generate ./cmd/api）
func initializeApp(cfg *config.Config, log *zap.Logger) (*application, error) {
	wire.Build(infraSet, repoSet, serviceSet, handlerSet)
	return nil, nil
}
