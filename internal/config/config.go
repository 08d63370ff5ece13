// Package config loads server configuration from the environment.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Transcription providers.
const (
	ProviderMock    = "mock"
	ProviderWhisper = "whisper"
	ProviderOpenAI  = "openai"
)

// Config holds all configuration for the server.
type Config struct {
	ServerPort string
	GinMode    string

	LogLevel string
	LogEnv   string
	LogFile  string

	MongoURI      string
	MongoDatabase string
	RedisURI      string

	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool

	TranscriptionProvider string
	WhisperServerURL      string
	OpenAIAPIKey          string
	OpenAIBaseURL         string
	LLMModel              string
	TTSModel              string
	TTSVoice              string

	RecordingWindow time.Duration
	FeedbackTimeout time.Duration
	MinAudioBytes   int
	SessionTTL      time.Duration

	ArchiveWorkers   int
	ArchiveQueueSize int
}

// Load reads configuration from .env file and environment variables
func Load() *Config {
	// a missing .env is fine, the variables may be set directly
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		GinMode:    getEnv("GIN_MODE", "debug"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogEnv:   getEnv("LOG_ENV", "dev"),
		LogFile:  getEnv("LOG_FILE", ""),

		MongoURI:      getEnvRequired("MONGO_URI"),
		MongoDatabase: getEnvRequired("MONGO_DATABASE"),
		RedisURI:      getEnv("REDIS_URI", "localhost:6379"),

		AccessTokenSecret:  getEnvRequired("JWT_SECRET"),
		AccessTokenExpiry:  parseDuration(getEnv("ACCESS_TOKEN_EXPIRY", "15m")),
		RefreshTokenExpiry: parseDuration(getEnv("REFRESH_TOKEN_EXPIRY", "168h")),

		S3Endpoint:  getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKey: getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey: getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:    getEnv("S3_BUCKET", "practice-attempts"),
		S3UseSSL:    parseBool(getEnv("S3_USE_SSL", "false")),

		TranscriptionProvider: getEnv("TRANSCRIPTION_PROVIDER", ProviderMock),
		WhisperServerURL:      getEnv("WHISPER_SERVER_URL", "http://localhost:8178"),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:         getEnv("OPENAI_BASE_URL", ""),
		LLMModel:              getEnv("LLM_MODEL", "gpt-4o-mini"),
		TTSModel:              getEnv("TTS_MODEL", "tts-1"),
		TTSVoice:              getEnv("TTS_VOICE", "alloy"),

		RecordingWindow: parseDuration(getEnv("RECORDING_WINDOW", "3s")),
		FeedbackTimeout: parseDuration(getEnv("FEEDBACK_TIMEOUT", "8s")),
		MinAudioBytes:   parseInt(getEnv("MIN_AUDIO_BYTES", "1024")),
		SessionTTL:      parseDuration(getEnv("SESSION_TTL", "2h")),

		ArchiveWorkers:   parseInt(getEnv("ARCHIVE_WORKERS", "2")),
		ArchiveQueueSize: parseInt(getEnv("ARCHIVE_QUEUE_SIZE", "100")),
	}

	switch cfg.TranscriptionProvider {
	case ProviderMock, ProviderWhisper, ProviderOpenAI:
	default:
		log.Fatalf("Unknown TRANSCRIPTION_PROVIDER %q", cfg.TranscriptionProvider)
	}
	if cfg.TranscriptionProvider == ProviderOpenAI && cfg.OpenAIAPIKey == "" {
		log.Fatalf("TRANSCRIPTION_PROVIDER=openai requires OPENAI_API_KEY")
	}

	return cfg
}

// AIEnabled reports whether an OpenAI key is configured for feedback and speech.
func (c *Config) AIEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// getEnv reads an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvRequired reads an environment variable and exits if not set
func getEnvRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("Required environment variable %s is not set", key)
	}
	return value
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatalf("Invalid duration format: %s", s)
	}
	return d
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("Invalid integer: %s", s)
	}
	return n
}

// parseBool treats anything but "true" and "1" as false.
func parseBool(s string) bool {
	return s == "true" || s == "1"
}
