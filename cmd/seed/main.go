package main

import (
	"bytes"
	"context"
	"math"
	"os"
	"time"

	"phonics-coach/internal/audio"
	"phonics-coach/internal/config"
	"phonics-coach/internal/database"
	"phonics-coach/internal/feedback"
	"phonics-coach/internal/models"
	"phonics-coach/internal/repository"
	"phonics-coach/internal/scoring"
	"phonics-coach/internal/storage"
	"phonics-coach/internal/words"
	"phonics-coach/pkg/auth"
	"phonics-coach/pkg/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// seedAttempt is one archived attempt of the demo account.
type seedAttempt struct {
	target        string
	letter        string
	transcription string
	degraded      bool
	age           time.Duration
}

var demoAttempts = []seedAttempt{
	{target: "B", letter: "B", transcription: "bal", age: 72 * time.Hour},
	{target: "B", letter: "B", transcription: "ball", age: 71 * time.Hour},
	{target: "v-b", letter: "V", transcription: "biolin", age: 48 * time.Hour},
	{target: "v-b", letter: "B", transcription: "ball", age: 47 * time.Hour},
	{target: "v-b", letter: "V", transcription: "wiolin", age: 46 * time.Hour},
	{target: "v-b", letter: "B", degraded: true, age: 45 * time.Hour},
	{target: "v-b", letter: "V", transcription: "violin", age: 24 * time.Hour},
	{target: "s-sh", letter: "S", transcription: "shun", age: 3 * time.Hour},
	{target: "s-sh", letter: "SH", transcription: "ship", age: 2 * time.Hour},
}

func main() {
	cfg := config.Load()

	log, err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.LogEnv})
	if err != nil {
		panic(err)
	}
	log.Info("seed_started")

	ctx := context.Background()

	mongoDB, err := database.NewMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Error("mongodb_connect_failed", "error", err)
		os.Exit(1)
	}
	defer mongoDB.Close()

	s3Client, err := storage.NewS3Client(ctx, cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3UseSSL)
	if err != nil {
		log.Error("s3_connect_failed", "error", err)
		os.Exit(1)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		log.Error("s3_bucket_failed", "error", err)
		os.Exit(1)
	}

	clearCollections(ctx, mongoDB.Database)

	parentID := seedParent(ctx, mongoDB.Database)
	seedAttempts(ctx, mongoDB.Database, s3Client, parentID)

	log.Info("seed_completed", "parent_email", "parent@example.com")
}

func clearCollections(ctx context.Context, db *mongo.Database) {
	for _, name := range []string{"users", "attempts"} {
		if _, err := db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			logger.L().Error("seed_clear_failed", "collection", name, "error", err)
			os.Exit(1)
		}
	}
}

func seedParent(ctx context.Context, db *mongo.Database) primitive.ObjectID {
	password, err := auth.HashPassword("password123")
	if err != nil {
		logger.L().Error("seed_hash_failed", "error", err)
		os.Exit(1)
	}

	parent := &models.User{
		Email:              "parent@example.com",
		Password:           password,
		Name:               "Jane Doe",
		PhoneNumber:        "+15551234567",
		ChildAge:           6,
		Region:             "US",
		ProblemDescription: "Says B instead of V, and S instead of SH",
		RecordingConsent:   true,
		ProfileCompleted:   true,
	}
	if err := repository.NewUserRepository(db).Create(ctx, parent); err != nil {
		logger.L().Error("seed_parent_failed", "error", err)
		os.Exit(1)
	}

	logger.L().Info("seed_parent_created", "user_id", parent.ID.Hex())
	return parent.ID
}

func seedAttempts(ctx context.Context, db *mongo.Database, s3Client *storage.S3Client, parentID primitive.ObjectID) {
	repo := repository.NewAttemptRepository(db)
	now := time.Now()

	for i, a := range demoAttempts {
		entry := words.Lookup(a.letter)
		target, _ := words.Resolve(a.target)

		record := &models.AttemptRecord{
			AttemptID:      uuid.NewString(),
			UserID:         parentID,
			SessionID:      "seed-" + a.target,
			Target:         a.target,
			ExpectedWord:   entry.Word,
			TargetPhonemes: target.Phonemes,
			CreatedAt:      now.Add(-a.age),
		}
		if a.degraded {
			record.Transcription = models.DegradedTranscription
			record.Accuracy = 80
			record.Feedback = "Recording failed. Please try again."
			record.Degraded = true
		} else {
			record.Transcription = a.transcription
			record.Accuracy = scoring.Score(a.transcription, entry.Word)
			record.Feedback = feedback.Synthesize(record.Accuracy, a.transcription, entry.Word)
		}

		record.AudioKey = storage.AttemptKey(parentID.Hex(), record.AttemptID)
		if err := uploadTone(ctx, s3Client, record.AudioKey, 220+float64(i)*40); err != nil {
			logger.L().Warn("seed_audio_failed", "key", record.AudioKey, "error", err)
			record.AudioKey = ""
		}

		if err := repo.Create(ctx, record); err != nil {
			logger.L().Error("seed_attempt_failed", "attempt_id", record.AttemptID, "error", err)
			os.Exit(1)
		}
	}

	logger.L().Info("seed_attempts_created", "count", len(demoAttempts))
}

// uploadTone stores a one-second sine tone standing in for a recording.
func uploadTone(ctx context.Context, s3Client *storage.S3Client, key string, freq float64) error {
	const rate = 16000
	samples := make([]int, rate)
	for i := range samples {
		samples[i] = int(8000 * math.Sin(2*math.Pi*freq*float64(i)/rate))
	}

	data, err := audio.EncodePCM16(samples, rate, 1)
	if err != nil {
		return err
	}
	return s3Client.PutObject(ctx, key, bytes.NewReader(data), int64(len(data)), storage.ContentTypeWAV)
}
