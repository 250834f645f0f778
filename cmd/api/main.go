package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"

	"github.com/Antonio-217/controle-financeiro/internal/amqp"
	"github.com/Antonio-217/controle-financeiro/internal/config"
	"github.com/Antonio-217/controle-financeiro/internal/database"
	_ "github.com/Antonio-217/controle-financeiro/internal/docs" // Import swagger docs
	apperrors "github.com/Antonio-217/controle-financeiro/internal/errors"
	"github.com/Antonio-217/controle-financeiro/internal/handlers"
	"github.com/Antonio-217/controle-financeiro/internal/logger"
	"github.com/Antonio-217/controle-financeiro/internal/middleware"
	"github.com/Antonio-217/controle-financeiro/internal/realtime"
	"github.com/Antonio-217/controle-financeiro/internal/services"
	"github.com/Antonio-217/controle-financeiro/internal/validator"
)

const shutdownTimeout = 10 * time.Second

// @title           Controle Financeiro API
// @version         1.0
// @description     Family budgeting with the 50/30/20 rule: monthly records, bucket targets, due-date alerts and savings boxes.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run(ctx context.Context) error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("failed to close database", "error", err)
		}
	}()

	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	subcategoryService := services.NewSubcategoryService(db)
	auditService := services.NewAuditService(db)
	dashboardService := services.NewDashboardService(db, appConfig.DueAlertDays)

	hub := realtime.NewHub(dashboardService, realtime.DefaultFanOut)
	defer hub.Close()

	notifiers := services.Notifiers{hub}
	var broker *amqp.Client
	if appConfig.AMQPURL != "" {
		broker, err = amqp.NewClient(appConfig.AMQPURL, appConfig.AMQPExchange, uuid.NewString())
		if err != nil {
			return fmt.Errorf("failed to connect to AMQP broker: %w", err)
		}
		defer broker.Close()
		notifiers = append(notifiers, broker)
	} else {
		log.Info("AMQP_URL not set, ledger changes stay local to this instance")
	}

	transactionService := services.NewTransactionService(db, notifiers)
	savingsBoxService := services.NewSavingsBoxService(db, notifiers)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	categoryHandler := handlers.NewCategoryHandler(subcategoryService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	savingsBoxHandler := handlers.NewSavingsBoxHandler(savingsBoxService, auditService)
	liveHandler := handlers.NewLiveHandler(hub, appConfig.CORSOrigin)

	if appConfig.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(appConfig.CORSOrigin))
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.NoRoute(func(c *gin.Context) {
		middleware.WriteError(c, apperrors.ErrNotFound)
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/dashboard", dashboardHandler.GetDashboard)
	protected.GET("/live", liveHandler.Live)

	categories := protected.Group("/categories")
	categories.GET("", categoryHandler.ListCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	boxes := protected.Group("/savings-boxes")
	boxes.GET("", savingsBoxHandler.ListBoxes)
	boxes.POST("", savingsBoxHandler.CreateBox)
	boxes.GET("/:id", savingsBoxHandler.GetBox)
	boxes.DELETE("/:id", savingsBoxHandler.DeleteBox)
	boxes.POST("/:id/deposit", savingsBoxHandler.Deposit)
	boxes.POST("/:id/withdraw", savingsBoxHandler.Withdraw)
	boxes.GET("/:id/movements", savingsBoxHandler.ListMovements)

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("Starting controle-financeiro server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if broker != nil {
		g.Go(func() error {
			err := broker.Run(gctx, func(msg *amqp.LedgerChangedMessage) error {
				hub.Notify(msg.GroupID)
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
