// Command practice is the offline companion of the phonics coach: it plays
// reference words, records attempts from the microphone, scores them and
// keeps a local history.
package main

import (
	"fmt"
	"os"
	"time"

	"phonics-coach/internal/analysis"
	"phonics-coach/internal/config"
	"phonics-coach/internal/transcription"
	"phonics-coach/internal/words"
	"phonics-coach/pkg/logger"

	"github.com/spf13/cobra"
)

const (
	providerWhisper = "whisper"
	providerOpenAI  = "openai"
	providerMock    = "mock"

	defaultWhisperURL = "http://localhost:8178"
	defaultModel      = "gpt-4o-mini"
	defaultVoice      = "alloy"
)

// options are the resolved CLI settings: flags win over the config file,
// which wins over the defaults.
type options struct {
	configPath    string
	target        string
	transcription string
	whisperURL    string
	openAIKey     string
	openAIBaseURL string
	model         string
	voice         string
	window        time.Duration
	minAudioBytes int
	historyPath   string
	logLevel      string
	logFile       string
	offline       bool
	output        string
}

var opts options

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "practice",
		Short:             "Pronunciation practice for letters and sound pairs",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: resolveOptions,
	}

	f := rootCmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", config.DefaultConfigPath(), "path to the TOML config file")
	f.StringVarP(&opts.target, "target", "t", words.DefaultLetter, "letter (B) or course (v-b) to practise")
	f.StringVar(&opts.transcription, "transcription", providerWhisper, "transcription backend: whisper, openai or mock")
	f.StringVar(&opts.whisperURL, "whisper-url", defaultWhisperURL, "whisper.cpp server URL")
	f.StringVar(&opts.openAIBaseURL, "openai-base-url", "", "OpenAI-compatible API base URL")
	f.StringVar(&opts.model, "model", defaultModel, "chat model for feedback")
	f.StringVar(&opts.voice, "voice", defaultVoice, "voice for reference pronunciations")
	f.DurationVar(&opts.window, "window", analysis.DefaultRecordingWindow, "recording window")
	f.IntVar(&opts.minAudioBytes, "min-audio-bytes", transcription.DefaultMinAudioBytes, "shortest recording accepted")
	f.StringVar(&opts.historyPath, "history", config.DefaultHistoryPath(), "SQLite history file")
	f.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	f.BoolVar(&opts.offline, "offline", false, "never call the AI model")
	f.StringVarP(&opts.output, "output", "o", outputText, "output format: text or json")

	rootCmd.AddCommand(newWordsCmd())
	rootCmd.AddCommand(newCoursesCmd())
	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newListenCmd())
	rootCmd.AddCommand(newRecordCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

func resolveOptions(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	p := fileCfg.Practice
	applyStringConfig(cmd, "target", &opts.target, p.Letter)
	applyStringConfig(cmd, "target", &opts.target, p.Course)
	applyDurationConfig(cmd, "window", &opts.window, p.RecordingWindow)
	applyIntConfig(cmd, "min-audio-bytes", &opts.minAudioBytes, p.MinAudioBytes)
	applyStringConfig(cmd, "history", &opts.historyPath, p.History)

	s := fileCfg.Services
	applyStringConfig(cmd, "transcription", &opts.transcription, s.Transcription)
	applyStringConfig(cmd, "whisper-url", &opts.whisperURL, s.WhisperURL)
	applyStringConfig(cmd, "openai-base-url", &opts.openAIBaseURL, s.OpenAIBaseURL)
	applyStringConfig(cmd, "model", &opts.model, s.Model)
	applyStringConfig(cmd, "voice", &opts.voice, s.Voice)
	opts.openAIKey = config.StringOr(s.OpenAIKey, os.Getenv("OPENAI_API_KEY"))

	applyStringConfig(cmd, "log-level", &opts.logLevel, fileCfg.Log.Level)
	opts.logFile = config.StringOr(fileCfg.Log.File, "")

	if err := validateOptions(&opts); err != nil {
		return err
	}

	if _, err := logger.Init(logger.Config{Level: opts.logLevel, FilePath: opts.logFile}); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	return nil
}

func validateOptions(o *options) error {
	if !words.IsValidTarget(o.target) {
		return errUnknownTarget(o.target)
	}
	switch o.transcription {
	case providerWhisper, providerMock:
	case providerOpenAI:
		if o.openAIKey == "" {
			return fmt.Errorf("transcription %q needs OPENAI_API_KEY or services.openai-key", o.transcription)
		}
	default:
		return fmt.Errorf("unknown transcription backend %q", o.transcription)
	}
	if o.output != outputText && o.output != outputJSON {
		return fmt.Errorf("unknown output format %q", o.output)
	}
	if o.window <= 0 {
		return fmt.Errorf("window must be positive, got %s", o.window)
	}
	return nil
}

func errUnknownTarget(id string) error {
	return fmt.Errorf("unknown target %q: use a letter from `practice words` or a course from `practice courses`", id)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || *value == "" {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = config.DurationOr(value, *target)
}
