package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-sales-insights/internal/worker/config"
	"golang-sales-insights/internal/worker/delivery/consumer"
	"golang-sales-insights/internal/worker/repository"
	"golang-sales-insights/internal/worker/service"
	"golang-sales-insights/pkg/common"
	"golang-sales-insights/pkg/logger"
	"golang-sales-insights/pkg/postgres"
	"golang-sales-insights/pkg/redis"
	"golang-sales-insights/pkg/telegram"

	gocache "github.com/patrickmn/go-cache"
	"github.com/spf13/cobra"
	"google.golang.org/genai"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the insight worker service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Insight Worker Service", logger.StringField("name", cfg.App.Name))

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

	// Create the consumer groups. MKSTREAM creates missing streams.
	streams := []string{
		common.RedisStreamTranscriptParse,
		common.RedisStreamRiskAnalysis,
		common.RedisStreamInsightConsolidation,
		common.RedisStreamDocumentGeneration,
		common.RedisStreamAccountResearch,
	}
	for _, stream := range streams {
		if err := redisClient.XGroupCreateMkStream(context.Background(), stream, common.RedisStreamGroup, "0").Err(); err != nil {
			if err.Error() != "BUSYGROUP Consumer Group name already exists" {
				appLogger.Fatal("Failed to create consumer group", logger.StringField("stream", stream), logger.ErrorField(err))
			}
		}
	}

	// Initialize repositories
	callRepo := repository.NewCallTranscriptRepository(db.DB)
	oppRepo := repository.NewOpportunityRepository(db.DB)
	contactRepo := repository.NewContactRepository(db.DB)
	docRepo := repository.NewDocumentRepository(db.DB)
	accountRepo := repository.NewAccountRepository(db.DB)
	newsRepo := repository.NewAccountNewsRepository(db.DB)

	cacheTTL := cfg.Research.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	researchCache := gocache.New(cacheTTL, time.Hour)
	researchRepo := repository.NewAccountResearchRepository(cfg, appLogger, researchCache)

	// Initialize Gemini
	genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.Gemini.APIKey,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize Gemini AI client", logger.ErrorField(err))
	}
	aiRepo, err := repository.NewGeminiAIRepository(cfg, appLogger, genAiClient)
	if err != nil {
		appLogger.Fatal("Failed to initialize Gemini AI repository", logger.ErrorField(err))
	}

	var notifier telegram.Notifier
	if cfg.Telegram.BotToken != "" {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
		}
	}

	// Initialize services
	transcriptParseSvc := service.NewTranscriptParseService(appLogger, redisClient.Client, aiRepo, callRepo)
	riskAnalysisSvc := service.NewRiskAnalysisService(appLogger, redisClient.Client, aiRepo, callRepo)
	consolidationSvc := service.NewConsolidationService(appLogger, redisClient.Client, aiRepo, callRepo, oppRepo)
	documentGenSvc := service.NewDocumentGenerationService(cfg, appLogger, redisClient.Client, aiRepo, docRepo, oppRepo, contactRepo, newsRepo, notifier)
	accountResearchSvc := service.NewAccountResearchService(cfg, appLogger, redisClient.Client, accountRepo, researchRepo, newsRepo)

	// Initialize and start the Redis consumer
	redisConsumer := consumer.NewRedisConsumer(cfg, transcriptParseSvc, riskAnalysisSvc, consolidationSvc, documentGenSvc, accountResearchSvc, appLogger)
	redisConsumer.Start(ctx)

	appLogger.Info("Insight worker started. Waiting for tasks...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down insight worker...")
	cancel()
	redisConsumer.Stop()
	appLogger.Info("Insight worker stopped.")
}

func main() {
	rootCmd := &cobra.Command{Use: "worker-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-worker.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing worker-service CLI: %s\n", err)
		os.Exit(1)
	}
}
