package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appbook "github.com/cerbrary/cerbrary/internal/application/book"
	apploan "github.com/cerbrary/cerbrary/internal/application/loan"
	appuser "github.com/cerbrary/cerbrary/internal/application/user"
	"github.com/cerbrary/cerbrary/internal/domain/book"
	"github.com/cerbrary/cerbrary/internal/domain/user"
	"github.com/cerbrary/cerbrary/internal/infrastructure/config"
	"github.com/cerbrary/cerbrary/internal/infrastructure/notify"
	"github.com/cerbrary/cerbrary/internal/infrastructure/persistence/mysql"
	"github.com/cerbrary/cerbrary/internal/infrastructure/persistence/redis"
	"github.com/cerbrary/cerbrary/internal/interface/http/handler"
	"github.com/cerbrary/cerbrary/internal/interface/http/middleware"
	"github.com/cerbrary/cerbrary/pkg/jwt"
	"github.com/cerbrary/cerbrary/pkg/metrics"
	"github.com/cerbrary/cerbrary/pkg/mq"
	"github.com/cerbrary/cerbrary/pkg/response"
	"github.com/cerbrary/cerbrary/pkg/tracing"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化Prometheus指标
	metrics.InitMetrics()

	// 3. 初始化分布式追踪(可选)
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer("cerbrary", cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatalf("初始化追踪失败: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				log.Printf("关闭追踪失败: %v", err)
			}
		}()
	}

	// 4. 初始化数据库与Redis
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 5. 初始化借阅事件发布(MQ未启用时退化为仅记录日志)
	var notifier notify.LoanNotifier
	if cfg.MQ.Enabled {
		publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
		if err != nil {
			log.Fatalf("初始化MQ失败: %v", err)
		}
		defer publisher.Close()
		notifier = notify.NewLoanNotifier(publisher, cfg.MQ.Exchange)
	} else {
		notifier = notify.NewNopNotifier()
	}

	// 6. 依赖注入(手动组装)
	// Repository ← Service ← UseCase ← Handler

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	loanRepo := mysql.NewLoanRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 领域层
	userService := user.NewService(userRepo)
	bookService := book.NewService(bookRepo)

	// 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore, cfg.JWT.RefreshTokenExpire)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore, cfg.JWT.AccessTokenExpire)
	manageUsersUseCase := appuser.NewManageUsersUseCase(userRepo)

	addBookUseCase := appbook.NewAddBookUseCase(bookService)
	getBookUseCase := appbook.NewGetBookUseCase(bookService)
	listBooksUseCase := appbook.NewListBooksUseCase(bookService)
	updateBookUseCase := appbook.NewUpdateBookUseCase(bookService)
	deleteBookUseCase := appbook.NewDeleteBookUseCase(bookRepo, loanRepo, txManager)

	borrowUseCase := apploan.NewBorrowBookUseCase(loanRepo, bookRepo, userRepo, notifier, cfg.Loan.Period)
	returnUseCase := apploan.NewReturnBookUseCase(loanRepo, bookRepo, txManager, notifier)
	cancelUseCase := apploan.NewCancelLoanUseCase(loanRepo, bookRepo, txManager, notifier)
	listLoansUseCase := apploan.NewListLoansUseCase(loanRepo)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase, manageUsersUseCase)
	bookHandler := handler.NewBookHandler(addBookUseCase, getBookUseCase, listBooksUseCase, updateBookUseCase, deleteBookUseCase)
	loanHandler := handler.NewLoanHandler(borrowUseCase, returnUseCase, cancelUseCase, listLoansUseCase)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 7. 初始化Gin引擎并注册路由
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Metrics())

	registerRoutes(r, userHandler, bookHandler, loanHandler, authMiddleware)

	// 8. 启动服务,优雅关闭
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("服务启动: http://localhost%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("启动服务失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("收到退出信号,正在关闭...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务关闭失败: %v", err)
	}
	log.Println("服务已退出")
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	loanHandler *handler.LoanHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档(生产环境建议禁用或加访问控制)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 用户模块
		users := v1.Group("/users")
		{
			// 公开接口
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)

			// 需要登录
			users.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)

			// 管理员:用户管理
			admin := users.Group("", authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
			{
				admin.GET("", userHandler.ListUsers)
				admin.PUT("/:id", userHandler.UpdateUser)
				admin.DELETE("/:id", userHandler.DeleteUser)
			}
		}

		// 图书模块
		books := v1.Group("/books")
		{
			// 公开接口
			books.GET("", bookHandler.ListBooks)
			books.GET("/:id", bookHandler.GetBook)

			// 管理员:图书管理
			admin := books.Group("", authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
			{
				admin.POST("", bookHandler.AddBook)
				admin.PUT("/:id", bookHandler.UpdateBook)
				admin.DELETE("/:id", bookHandler.DeleteBook)
			}
		}

		// 借阅模块(全部需要登录)
		transactions := v1.Group("/transactions")
		transactions.Use(authMiddleware.RequireAuth())
		{
			transactions.POST("", loanHandler.Borrow)
			transactions.PUT("", loanHandler.UpdateLoan)
			transactions.GET("", loanHandler.ListLoans)
		}
	}
}
