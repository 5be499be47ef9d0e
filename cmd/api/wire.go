//go:build wireinject
// +build wireinject

// Wire依赖注入配置
//
// 使用方式:
//  1. 修改Provider后运行 `wire gen ./cmd/api`
//  2. Wire生成wire_gen.go,main.go改调InitializeApp()
//
// 当前main.go仍使用手动注入,本文件作为依赖关系的声明式描述,
// 迁移到Wire时只需生成一次
package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

	appbook "github.com/cerbrary/cerbrary/internal/application/book"
	apploan "github.com/cerbrary/cerbrary/internal/application/loan"
	appuser "github.com/cerbrary/cerbrary/internal/application/user"
	"github.com/cerbrary/cerbrary/internal/domain/book"
	"github.com/cerbrary/cerbrary/internal/domain/loan"
	"github.com/cerbrary/cerbrary/internal/domain/user"
	"github.com/cerbrary/cerbrary/internal/infrastructure/config"
	"github.com/cerbrary/cerbrary/internal/infrastructure/notify"
	"github.com/cerbrary/cerbrary/internal/infrastructure/persistence/mysql"
	"github.com/cerbrary/cerbrary/internal/infrastructure/persistence/redis"
	"github.com/cerbrary/cerbrary/internal/interface/http/handler"
	"github.com/cerbrary/cerbrary/internal/interface/http/middleware"
	"github.com/cerbrary/cerbrary/pkg/jwt"
	"github.com/cerbrary/cerbrary/pkg/mq"
)

// infrastructureSet 基础设施层:配置、数据库、Redis
var infrastructureSet = wire.NewSet(
	config.Load,
	mysql.NewDB,
	redis.NewClient,
)

// repositorySet 仓储层
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewBookRepository,
	mysql.NewLoanRepository,
	mysql.NewTxManager,
	wire.Bind(new(apploan.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(appbook.TxManager), new(*mysql.TxManager)),
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	user.NewService,
	book.NewService,
)

// applicationSet 应用层用例
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	provideLoginUseCase,
	provideLogoutUseCase,
	appuser.NewManageUsersUseCase,
	appbook.NewAddBookUseCase,
	appbook.NewGetBookUseCase,
	appbook.NewListBooksUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewDeleteBookUseCase,
	provideBorrowBookUseCase,
	apploan.NewReturnBookUseCase,
	apploan.NewCancelLoanUseCase,
	apploan.NewListLoansUseCase,
)

// middlewareSet JWT、会话与认证中间件
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideSessionStore,
	provideLoanNotifier,
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewLoanHandler,
)

// provideJWTManager jwt.NewManager的参数要从Config中提取
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideLoanNotifier MQ未启用时退化为仅记录日志的空实现
func provideLoanNotifier(cfg *config.Config) (notify.LoanNotifier, error) {
	if !cfg.MQ.Enabled {
		return notify.NewNopNotifier(), nil
	}

	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
	if err != nil {
		return nil, err
	}
	return notify.NewLoanNotifier(publisher, cfg.MQ.Exchange), nil
}

func provideLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore *redis.SessionStore,
	cfg *config.Config,
) *appuser.LoginUseCase {
	return appuser.NewLoginUseCase(userService, jwtManager, sessionStore, cfg.JWT.RefreshTokenExpire)
}

func provideLogoutUseCase(sessionStore *redis.SessionStore, cfg *config.Config) *appuser.LogoutUseCase {
	return appuser.NewLogoutUseCase(sessionStore, cfg.JWT.AccessTokenExpire)
}

func provideBorrowBookUseCase(
	loanRepo loan.Repository,
	bookRepo book.Repository,
	userRepo user.Repository,
	notifier notify.LoanNotifier,
	cfg *config.Config,
) *apploan.BorrowBookUseCase {
	return apploan.NewBorrowBookUseCase(loanRepo, bookRepo, userRepo, notifier, cfg.Loan.Period)
}

// provideGinEngine 组装Gin引擎,路由注册复用main.go的registerRoutes
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	loanHandler *handler.LoanHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.Metrics())
	registerRoutes(r, userHandler, bookHandler, loanHandler, authMiddleware)
	return r
}

// InitializeApp 初始化整个应用
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideGinEngine,
	)
	return nil, nil
}
