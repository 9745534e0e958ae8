package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/buseagkoc/construction-chatbot/internal/ai"
	"github.com/buseagkoc/construction-chatbot/internal/cache"
	"github.com/buseagkoc/construction-chatbot/internal/config"
	"github.com/buseagkoc/construction-chatbot/internal/db"
	"github.com/buseagkoc/construction-chatbot/internal/embedcache"
	"github.com/buseagkoc/construction-chatbot/internal/handler"
	"github.com/buseagkoc/construction-chatbot/internal/job"
	"github.com/buseagkoc/construction-chatbot/internal/middleware"
	"github.com/buseagkoc/construction-chatbot/internal/schedule"
	"github.com/buseagkoc/construction-chatbot/internal/service"
	"github.com/buseagkoc/construction-chatbot/internal/store"
)

const batchFlushSpec = "*/15 * * * * *"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "construction-chatbot",
		Short: "construction document chatbot server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run chatbot server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
			return runServer(cfg)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.Bool("redis_cache", cfg.Redis.Addr != ""),
	)

	database, err := db.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(database); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	aiProvider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	generator := ai.NewGenerator(aiProvider, cfg.AI.Model)
	embedder := embedcache.WrapLruCacheToEmbedder(
		ai.NewEmbedder(aiProvider, cfg.AI.EmbedModel),
		cfg.EmbedCache.Size,
		time.Duration(cfg.EmbedCache.TTLMinutes)*time.Minute,
	)

	queryCache := cache.NewMemory()
	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		queryCache = cache.NewRedis(client)
	}

	vectorStore := store.NewPgVectorStore(database, embedder)
	documentService := service.NewDocumentService()
	batchService := service.NewBatchService(
		vectorStore,
		cfg.Batch.Size,
		time.Duration(cfg.Batch.MaxAgeSeconds)*time.Second,
	)
	answerService := service.NewAnswerService(
		vectorStore,
		queryCache,
		generator,
		cfg.AI.MaxConcurrent,
		time.Duration(cfg.QueryCache.TTLSeconds)*time.Second,
		time.Duration(cfg.AI.TimeoutSeconds)*time.Second,
	)
	chatService := service.NewChatService(
		documentService,
		batchService,
		answerService,
		service.NewConversationWindow(),
		queryCache,
	)

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewBatchFlushJob(batchService), batchFlushSpec); err != nil {
		return fmt.Errorf("schedule batch flush: %w", err)
	}

	deps := handler.RouterDeps{
		Documents:     handler.NewDocumentHandler(chatService, documentService, batchService, vectorStore, cfg.MaxUploadBytes),
		Chat:          handler.NewChatHandler(chatService),
		ChatRateLimit: time.Duration(cfg.ChatRateLimitSeconds) * time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler.Start(ctx)
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	chatService.Close(shutdownCtx)
	if err := database.Close(); err != nil {
		logutil.GetLogger(context.Background()).Warn("close db", zap.Error(err))
	}
	return nil
}
