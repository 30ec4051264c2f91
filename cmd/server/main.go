package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/analyzer"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/auth"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/config"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/db"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/extractor"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/llm"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/repository"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/router"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/services"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/storage"
	"github.com/BerylCAtieno/labor-process-analyzer-api/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)

	ctx := context.Background()

	// Run migrations
	if err := db.RunMigrations(cfg.DatabaseDriver, cfg.DatabaseURL); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// Initialize database
	database, err := db.Connect(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close()

	store, err := storage.New(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize object storage", "error", err, "store", cfg.ObjectStore)
	}

	llmAnalyzer := analyzer.NewAnalyzer(llm.NewCatalog(cfg.ProviderCredentials(), llm.NewProvider), analyzer.Config{
		Primary:            llm.Kind(cfg.LLMPrimaryProvider),
		Secondary:          llm.Kind(cfg.LLMSecondaryProvider),
		MaxCharacters:      cfg.MaxTextLength,
		Timeout:            cfg.LLMTimeout(),
		LegalContextModels: cfg.LegalContextModels(),
	}, logger)

	userRepo := repository.NewUserRepository(database)
	processRepo := repository.NewProcessRepository(database)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL())

	userService := services.NewUserService(userRepo, tokens, logger)
	processService := services.NewProcessService(processRepo, userRepo, logger)
	assistantService := services.NewAssistantService(extractor.New(), llmAnalyzer, store, processRepo, processService, logger)

	if err := userService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Fatal("Failed to create admin user", "error", err)
	}

	// Setup HTTP router
	handler := router.NewRouter(router.Deps{
		Assistant:   assistantService,
		Processes:   processService,
		Users:       userService,
		UserLoader:  userRepo,
		Tokens:      tokens,
		DB:          database,
		MaxFileSize: cfg.MaxFileSize(),
		CORSOrigins: cfg.CORSAllowOrigins,
		Logger:      logger,
	})

	// An analysis can spend the LLM timeout on each of the three completion calls.
	writeTimeout := 3*cfg.LLMTimeout() + 30*time.Second

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server",
			"port", cfg.Port,
			"env", cfg.Env,
			"database", cfg.DatabaseDriver,
			"store", cfg.ObjectStore,
			"primary_provider", cfg.LLMPrimaryProvider,
			"secondary_provider", cfg.LLMSecondaryProvider)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
