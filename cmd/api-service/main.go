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

	"golang-sales-insights/internal/api/config"
	delivery "golang-sales-insights/internal/api/delivery/http"
	"golang-sales-insights/internal/api/repository"
	"golang-sales-insights/internal/api/service"
	"golang-sales-insights/pkg/logger"
	"golang-sales-insights/pkg/postgres"
	"golang-sales-insights/pkg/redis"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the API service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting API Service", logger.StringField("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	// Initialize repositories
	oppRepo := repository.NewOpportunityRepository(db.DB)
	callRepo := repository.NewCallRepository(db.DB)
	contactRepo := repository.NewContactRepository(db.DB)
	docRepo := repository.NewDocumentRepository(db.DB)
	accountRepo := repository.NewAccountRepository(db.DB)

	// Initialize services
	publisher := service.NewTaskPublisher(redisClient.Client, appLogger, cfg)
	callSvc := service.NewCallService(callRepo, publisher, appLogger)
	oppSvc := service.NewOpportunityService(oppRepo, callRepo, contactRepo, publisher, appLogger)
	docSvc := service.NewDocumentService(docRepo, oppRepo, publisher, appLogger)

	// Start the periodic account research refresh
	researchScheduler := service.NewResearchScheduler(cfg.Scheduler.AccountResearchCron, accountRepo, publisher, appLogger)
	if err := researchScheduler.Start(); err != nil {
		appLogger.Fatal("Failed to start research scheduler", logger.ErrorField(err))
	}
	defer researchScheduler.Stop()

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	// Initialize handlers and routes
	apiV1 := e.Group("/api/v1")

	callHandler := delivery.NewCallHandler(callSvc, appLogger)
	callsGroup := apiV1.Group("/calls")
	callHandler.RegisterRoutes(callsGroup)

	oppHandler := delivery.NewOpportunityHandler(oppSvc, docSvc, appLogger)
	oppGroup := apiV1.Group("/opportunities")
	oppHandler.RegisterRoutes(oppGroup)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.StringField("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

func main() {
	rootCmd := &cobra.Command{Use: "api-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-api.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing api-service CLI: %s\n", err)
		os.Exit(1)
	}
}
