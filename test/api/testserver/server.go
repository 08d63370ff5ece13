//go:build api

// Package testserver provides a fully wired test server for API integration tests.
package testserver

import (
	"context"
	"time"

	"phonics-coach/internal/analysis"
	"phonics-coach/internal/cache"
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
	"phonics-coach/pkg/auth"
	"phonics-coach/test/api/testdb"

	"github.com/gin-gonic/gin"
)

const (
	// TestAccessTokenSecret is the JWT secret used in tests.
	TestAccessTokenSecret = "test-secret-key-for-api-tests"
	// TestAccessTokenExpiry is the access token expiry time used in tests.
	TestAccessTokenExpiry = 15 * time.Minute
	// TestRefreshTokenExpiry is the refresh token expiry time used in tests.
	TestRefreshTokenExpiry = 7 * 24 * time.Hour
	// TestDBName is the database name used in tests.
	TestDBName = "test_api"
	// TestRecordingWindow bounds uploads; uploads finish long before it.
	TestRecordingWindow = 5 * time.Second
	// TestMinAudioBytes is the shortest accepted upload.
	TestMinAudioBytes = 1024
	// TestMaxUploadBytes fits a few seconds of 16 kHz audio.
	TestMaxUploadBytes = 256 << 10

	archiveWorkers = 2
)

// TestServer holds all dependencies for API integration tests.
type TestServer struct {
	// Router is the Gin engine for making HTTP requests.
	Router *gin.Engine

	// Containers
	MongoDB *testdb.Mongo
	Redis   *testdb.Redis
	MinIO   *testdb.MinIO

	// Repositories (for direct database access in tests)
	UserRepo    repository.UserRepository
	AttemptRepo repository.AttemptRepository

	// Services (for direct service access in tests)
	AuthService     service.AuthServicer
	UserService     service.UserServicer
	PracticeService service.PracticeServicer

	// Auth
	JWTManager *auth.JWTManager

	// Transcriber is what uploads are transcribed with. Tests may change
	// its Text or Err.
	Transcriber *transcription.MockService
	// Generator answers AI feedback requests. Its Err is set by default, so
	// feedback comes from the rule-based tiers unless a test clears it.
	Generator *llm.StaticGenerator

	// Queue
	ArchiveQueue     *queue.MemoryQueue
	ArchiveProcessor *queue.Processor
	storage          storage.Storage
}

// New creates a new test server with all dependencies wired up.
func New(ctx context.Context) (*TestServer, error) {
	gin.SetMode(gin.TestMode)

	// Start containers
	mongoDB, err := testdb.StartMongo(ctx, TestDBName)
	if err != nil {
		return nil, err
	}

	redisContainer, err := testdb.StartRedis(ctx)
	if err != nil {
		_ = mongoDB.Close(ctx)
		return nil, err
	}

	minioContainer, err := testdb.StartMinIO(ctx)
	if err != nil {
		_ = mongoDB.Close(ctx)
		_ = redisContainer.Close(ctx)
		return nil, err
	}

	cleanupAll := func() {
		_ = minioContainer.Close(ctx)
		_ = redisContainer.Close(ctx)
		_ = mongoDB.Close(ctx)
	}

	// Create cache (uses real Redis)
	redisCache, err := cache.NewRedis(ctx, redisContainer.Addr)
	if err != nil {
		cleanupAll()
		return nil, err
	}

	// Create storage (uses real MinIO)
	s3Client, err := storage.NewS3Client(ctx,
		minioContainer.Endpoint,
		minioContainer.AccessKey,
		minioContainer.SecretKey,
		minioContainer.Bucket,
		false, // useSSL
	)
	if err != nil {
		cleanupAll()
		return nil, err
	}

	// JWT Manager
	jwtManager := auth.NewJWTManager(TestAccessTokenSecret, TestAccessTokenExpiry)

	// Repository layer
	userRepo := repository.NewUserRepository(mongoDB.Database)
	attemptRepo := repository.NewAttemptRepository(mongoDB.Database)

	// Pipeline capabilities
	transcriber := &transcription.MockService{Text: "ball", SimulatedDelay: 10 * time.Millisecond}
	generator := &llm.StaticGenerator{Err: llm.ErrDisabled}
	orchestrator := analysis.NewOrchestrator(nil, generator, analysis.Config{
		RecordingWindow: TestRecordingWindow,
		FeedbackTimeout: time.Second,
	})

	// Archive queue and processor
	archiveQueue := queue.NewMemoryQueue(100)
	archiveProcessor := queue.NewProcessor(archiveQueue, s3Client, attemptRepo, archiveWorkers)

	// Service layer
	tokenStore := cache.NewRefreshTokenStore(redisCache)
	authService := service.NewAuthService(service.AuthServiceConfig{
		UserRepo:        userRepo,
		TokenStore:      tokenStore,
		JWTManager:      jwtManager,
		AccessTokenTTL:  TestAccessTokenExpiry,
		RefreshTokenTTL: TestRefreshTokenExpiry,
	})
	userService := service.NewUserService(service.UserServiceConfig{
		Repo:       userRepo,
		Attempts:   attemptRepo,
		Storage:    s3Client,
		TokenStore: tokenStore,
		Cache:      redisCache,
	})
	wordService := service.NewWordService(pronunciation.NewService(nil, redisCache, 0))
	practiceService := service.NewPracticeService(service.PracticeServiceConfig{
		Sessions:       session.NewStore(redisCache, session.DefaultTTL),
		Attempts:       attemptRepo,
		Consent:        userService,
		Storage:        s3Client,
		Queue:          archiveQueue,
		Orchestrator:   orchestrator,
		Transcriber:    transcriber,
		MinAudioBytes:  TestMinAudioBytes,
		MaxUploadBytes: TestMaxUploadBytes,
	})

	// Router
	r := router.Setup(&router.Config{
		AuthHandler:     handler.NewAuthHandler(authService),
		UserHandler:     handler.NewUserHandler(userService),
		WordHandler:     handler.NewWordHandler(wordService),
		PracticeHandler: handler.NewPracticeHandler(practiceService),
		TokenManager:    jwtManager,
	})

	return &TestServer{
		Router:           r,
		MongoDB:          mongoDB,
		Redis:            redisContainer,
		MinIO:            minioContainer,
		UserRepo:         userRepo,
		AttemptRepo:      attemptRepo,
		AuthService:      authService,
		UserService:      userService,
		PracticeService:  practiceService,
		JWTManager:       jwtManager,
		Transcriber:      transcriber,
		Generator:        generator,
		ArchiveQueue:     archiveQueue,
		ArchiveProcessor: archiveProcessor,
		storage:          s3Client,
	}, nil
}

// Cleanup terminates all containers.
func (ts *TestServer) Cleanup(ctx context.Context) {
	if ts.MinIO != nil {
		_ = ts.MinIO.Close(ctx)
	}
	if ts.Redis != nil {
		_ = ts.Redis.Close(ctx)
	}
	if ts.MongoDB != nil {
		_ = ts.MongoDB.Close(ctx)
	}
}

// StartArchiveProcessor starts the archive workers.
func (ts *TestServer) StartArchiveProcessor(ctx context.Context) {
	ts.ArchiveProcessor.Start(ctx)
}

// StopArchiveProcessor stops the archive workers and resets the queue so
// later tests can enqueue again.
func (ts *TestServer) StopArchiveProcessor() {
	ts.ArchiveProcessor.Stop()
	ts.ArchiveQueue.Reset()
	// a stopped processor cannot be restarted
	ts.ArchiveProcessor = queue.NewProcessor(ts.ArchiveQueue, ts.storage, ts.AttemptRepo, archiveWorkers)
}

