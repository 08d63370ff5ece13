package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const appDir = "phonics-coach"

// FileConfig is the practice CLI's TOML configuration.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Services ServicesConfig `toml:"services"`
	Log      LogConfig      `toml:"log"`
}

// PracticeConfig holds practice defaults. Nil means "not set in the file".
type PracticeConfig struct {
	Letter          *string `toml:"letter"`
	Course          *string `toml:"course"`
	RecordingWindow *string `toml:"recording-window"`
	MinAudioBytes   *int    `toml:"min-audio-bytes"`
	History         *string `toml:"history"`
}

// ServicesConfig points the CLI at its transcription and AI backends.
type ServicesConfig struct {
	Transcription *string `toml:"transcription"`
	WhisperURL    *string `toml:"whisper-url"`
	OpenAIKey     *string `toml:"openai-key"`
	OpenAIBaseURL *string `toml:"openai-base-url"`
	Model         *string `toml:"model"`
	Voice         *string `toml:"voice"`
}

// LogConfig mirrors the server's logging keys.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadFile reads a TOML config from path. A missing file is not an error.
func LoadFile(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("stat config: %w", err)
	}

	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Practice.RecordingWindow != nil {
		if _, err := time.ParseDuration(*cfg.Practice.RecordingWindow); err != nil {
			return FileConfig{}, fmt.Errorf("practice.recording-window: %w", err)
		}
	}
	return cfg, nil
}

// XDGConfigHome returns $XDG_CONFIG_HOME or ~/.config.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns $XDG_DATA_HOME or ~/.local/share.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appDir, "config.toml")
}

func DefaultHistoryPath() string {
	return filepath.Join(XDGDataHome(), appDir, "history.db")
}

// StringOr returns *p, or fallback when p is nil or empty.
func StringOr(p *string, fallback string) string {
	if p == nil || *p == "" {
		return fallback
	}
	return *p
}

// IntOr returns *p, or fallback when p is nil.
func IntOr(p *int, fallback int) int {
	if p == nil {
		return fallback
	}
	return *p
}

// DurationOr parses *p, or returns fallback when p is nil or invalid.
func DurationOr(p *string, fallback time.Duration) time.Duration {
	if p == nil {
		return fallback
	}
	d, err := time.ParseDuration(*p)
	if err != nil {
		return fallback
	}
	return d
}
