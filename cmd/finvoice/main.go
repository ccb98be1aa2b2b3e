package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"finvoice/internal/api"
	"finvoice/internal/api/handlers"
	"finvoice/internal/pipeline"
	"finvoice/internal/repository"
	"finvoice/internal/service"
	"finvoice/pkg/config"
	"finvoice/pkg/logger"
	"finvoice/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting FinVoice service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := repository.EnsureSchema(ctx, db); err != nil {
		appLogger.Fatal("Failed to ensure database schema", zap.Error(err))
	}

	// Initialize repositories
	expenseRepo := repository.NewExpenseRepository(db, appLogger)
	goalRepo := repository.NewGoalRepository(db, appLogger)

	// Initialize services
	llmService, err := service.NewLLMService(&cfg.GigaChat, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	transcriber := service.NewTranscriber(&cfg.Speech, appLogger)
	routerService := service.NewRouterService(llmService, appLogger)
	intentService := service.NewIntentService(llmService, appLogger)
	sessions := service.NewSessionStore()

	// Assemble the request pipeline
	requestPipeline := pipeline.New(
		transcriber,
		routerService,
		intentService,
		llmService,
		expenseRepo,
		goalRepo,
		appLogger,
	)

	// Initialize handlers and router
	chatHandler := handlers.NewChatHandler(requestPipeline, sessions, cfg.Assistant.AudioDir, appLogger)
	app := api.SetupRouter(chatHandler, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
