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

	"phonics-coach/internal/analysis"
	"phonics-coach/internal/cache"
	"phonics-coach/internal/config"
	"phonics-coach/internal/database"
	"phonics-coach/internal/handler"
	"phonics-coach/internal/llm"
	"phonics-coach/internal/pronunciation"
	"phonics-coach/internal/queue"
	"phonics-coach/internal/repository"
	"phonics-coach/internal/router"
	"phonics-coach/internal/service"
	"phonics-coach/internal/session"
	"phonics-coach/internal/storage"
	"phonics-coach/internal/transcription"
	"phonics-coach/internal/validator"
	"phonics-coach/pkg/auth"
	"phonics-coach/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title           Phonics Coach API
// @version         1.0
// @description     Pronunciation practice for children: record a word, get it scored and receive friendly feedback.

// @contact.name    API Support
// @contact.email   support@example.com

// @host            localhost:8080
// @BasePath        /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter your bearer token in the format: Bearer {token}

func main() {
	if err := run(); err != nil {
		logger.L().Error("server_failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg := config.Load()

	log, err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.LogEnv,
		FilePath:    cfg.LogFile,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log.Info("config_loaded", "transcription_provider", cfg.TranscriptionProvider, "ai_enabled", cfg.AIEnabled())

	// Register custom validators
	validator.RegisterCustomValidators()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	mongoDB, err := database.NewMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	defer mongoDB.Close()

	// Redis Cache
	redisCache, err := cache.NewRedis(ctx, cfg.RedisURI)
	if err != nil {
		return err
	}
	defer redisCache.Close()

	// S3 Storage
	s3Client, err := storage.NewS3Client(ctx, cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3UseSSL)
	if err != nil {
		return err
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		return err
	}

	// JWT Manager
	jwtManager := auth.NewJWTManager(cfg.AccessTokenSecret, cfg.AccessTokenExpiry)

	// Repository layer
	userRepo := repository.NewUserRepository(mongoDB.Database)
	attemptRepo := repository.NewAttemptRepository(mongoDB.Database)

	// Pipeline capabilities
	transcriber, err := newTranscriber(cfg)
	if err != nil {
		return err
	}
	generator, synth, err := newAI(cfg)
	if err != nil {
		return err
	}

	orchestrator := analysis.NewOrchestrator(nil, generator, analysis.Config{
		RecordingWindow: cfg.RecordingWindow,
		FeedbackTimeout: cfg.FeedbackTimeout,
	})
	pronouncer := pronunciation.NewService(synth, redisCache, pronunciation.DefaultCacheTTL)

	// Archive queue and processor
	archiveQueue := queue.NewMemoryQueue(cfg.ArchiveQueueSize)
	archiveProcessor := queue.NewProcessor(archiveQueue, s3Client, attemptRepo, cfg.ArchiveWorkers)

	// Service layer
	tokenStore := cache.NewRefreshTokenStore(redisCache)
	authService := service.NewAuthService(service.AuthServiceConfig{
		UserRepo:        userRepo,
		TokenStore:      tokenStore,
		JWTManager:      jwtManager,
		AccessTokenTTL:  cfg.AccessTokenExpiry,
		RefreshTokenTTL: cfg.RefreshTokenExpiry,
	})
	userService := service.NewUserService(service.UserServiceConfig{
		Repo:       userRepo,
		Attempts:   attemptRepo,
		Storage:    s3Client,
		TokenStore: tokenStore,
		Cache:      redisCache,
	})
	wordService := service.NewWordService(pronouncer)
	practiceService := service.NewPracticeService(service.PracticeServiceConfig{
		Sessions:      session.NewStore(redisCache, cfg.SessionTTL),
		Attempts:      attemptRepo,
		Consent:       userService,
		Storage:       s3Client,
		Queue:         archiveQueue,
		Orchestrator:  orchestrator,
		Transcriber:   transcriber,
		MinAudioBytes: cfg.MinAudioBytes,
		SessionTTL:    cfg.SessionTTL,
	})

	// Router
	r := router.Setup(&router.Config{
		AuthHandler:     handler.NewAuthHandler(authService),
		UserHandler:     handler.NewUserHandler(userService),
		WordHandler:     handler.NewWordHandler(wordService),
		PracticeHandler: handler.NewPracticeHandler(practiceService),
		TokenManager:    jwtManager,
	})

	// Start archive processor
	archiveProcessor.Start(ctx)

	// Create HTTP server for graceful shutdown support
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server_starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info("shutdown_signal_received", "signal", sig.String())
	case err := <-serverErr:
		return fmt.Errorf("listen: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Shutdown HTTP server first (drain connections)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http_shutdown_failed", "error", err)
	}

	// Cancel context to signal processor shutdown, then wait for workers
	cancel()
	archiveProcessor.Stop()

	log.Info("server_stopped")
	return nil
}

func newTranscriber(cfg *config.Config) (transcription.Service, error) {
	switch cfg.TranscriptionProvider {
	case config.ProviderWhisper:
		return transcription.NewWhisperService(cfg.WhisperServerURL)
	case config.ProviderOpenAI:
		return transcription.NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	default:
		return transcription.NewMockService(), nil
	}
}

// newAI builds the feedback generator and the speech synthesizer. Both stay
// nil without an API key; feedback then comes from the rule-based tiers and
// pronunciation requests answer 503.
func newAI(cfg *config.Config) (llm.Generator, pronunciation.Synthesizer, error) {
	if !cfg.AIEnabled() {
		return nil, nil, nil
	}

	gen, err := llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.LLMModel, llm.WithBaseURL(cfg.OpenAIBaseURL))
	if err != nil {
		return nil, nil, err
	}
	tts, err := pronunciation.NewOpenAITTS(cfg.OpenAIAPIKey, cfg.TTSModel, cfg.TTSVoice, pronunciation.WithBaseURL(cfg.OpenAIBaseURL))
	if err != nil {
		return nil, nil, err
	}
	return gen, tts, nil
}
