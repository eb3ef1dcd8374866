// Package config handles loading and validating the eactranslator
// configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config is the root configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Transports TransportsConfig `mapstructure:"transports"`
	Models     ModelsConfig     `mapstructure:"models"`
	Journal    JournalConfig    `mapstructure:"journal"`
	Speech     SpeechConfig     `mapstructure:"speech"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	HTTP HTTPConfig `mapstructure:"http"`
	GRPC GRPCConfig `mapstructure:"grpc"`
}

// HTTPConfig configures the HTTP/WebSocket transport.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// GRPCConfig configures the gRPC transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// ModelsConfig configures where translation models are resolved and run.
type ModelsConfig struct {
	HubURL       string        `mapstructure:"hub_url"`
	InferenceURL string        `mapstructure:"inference_url"`
	Token        string        `mapstructure:"token"`
	Timeout      time.Duration `mapstructure:"timeout"`

	// Preload loads every routed model at startup instead of on first use.
	Preload bool `mapstructure:"preload"`
}

// JournalConfig configures the translation log.
type JournalConfig struct {
	Path      string `mapstructure:"path"`
	MaxSizeMB int    `mapstructure:"max_size_mb"` // 0 never rotates; >0 renames the live file when full
	OnError   string `mapstructure:"on_error"`    // warn, fail
}

// SpeechConfig groups the speech adapters.
type SpeechConfig struct {
	Input  SpeechInputConfig  `mapstructure:"input"`
	Output SpeechOutputConfig `mapstructure:"output"`
}

// SpeechInputConfig selects and configures the transcription backend.
type SpeechInputConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Backend       string        `mapstructure:"backend"` // huggingface, whisper
	Model         string        `mapstructure:"model"`
	Endpoint      string        `mapstructure:"endpoint"` // whisper only
	Flavor        string        `mapstructure:"flavor"`   // whisper only: openai, asr
	Language      string        `mapstructure:"language"`
	MinFrameBytes int64         `mapstructure:"min_frame_bytes"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Retries       int           `mapstructure:"retries"`
}

// SpeechOutputConfig selects and configures the synthesis backend.
type SpeechOutputConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Backend   string        `mapstructure:"backend"` // huggingface, piper
	Model     string        `mapstructure:"model"`
	Token     string        `mapstructure:"token"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Retries   int           `mapstructure:"retries"`
	OutputDir string        `mapstructure:"output_dir"`
	Piper     PiperConfig   `mapstructure:"piper"`
}

// PiperConfig holds Piper settings (Wyoming protocol).
type PiperConfig struct {
	Endpoint string            `mapstructure:"endpoint"` // host:port
	Voices   map[string]string `mapstructure:"voices"`   // language code -> voice name
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level     string `mapstructure:"level"`  // debug, info, warn, error
	Format    string `mapstructure:"format"` // json, text
	File      string `mapstructure:"file"`   // empty logs to stdout
	MaxSizeMB int    `mapstructure:"max_size_mb"`
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./eactranslator.yaml, ./configs/eactranslator.yaml,
// /etc/eactranslator/eactranslator.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 8080)
	v.SetDefault("transports.grpc.enabled", false)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("models.hub_url", "https://huggingface.co")
	v.SetDefault("models.inference_url", "https://api-inference.huggingface.co/models")
	v.SetDefault("models.token", "${HUGGINGFACEHUB_API_TOKEN}")
	v.SetDefault("models.timeout", "60s")
	v.SetDefault("models.preload", false)
	v.SetDefault("journal.path", "translation_log.txt")
	v.SetDefault("journal.max_size_mb", 0)
	v.SetDefault("journal.on_error", "warn")
	v.SetDefault("speech.input.enabled", true)
	v.SetDefault("speech.input.backend", "huggingface")
	v.SetDefault("speech.input.model", "openai/whisper-large-v3")
	v.SetDefault("speech.input.endpoint", "http://localhost:8000/v1/audio/transcriptions")
	v.SetDefault("speech.input.flavor", "openai")
	v.SetDefault("speech.input.min_frame_bytes", 10000)
	v.SetDefault("speech.input.timeout", "60s")
	v.SetDefault("speech.input.retries", 2)
	v.SetDefault("speech.output.enabled", true)
	v.SetDefault("speech.output.backend", "huggingface")
	v.SetDefault("speech.output.model", "microsoft/speecht5_tts")
	v.SetDefault("speech.output.token", "${HUGGINGFACEHUB_API_TOKEN}")
	v.SetDefault("speech.output.timeout", "30s")
	v.SetDefault("speech.output.retries", 0)
	v.SetDefault("speech.output.output_dir", "")
	v.SetDefault("speech.output.piper.endpoint", "localhost:10200")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 10)

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("eactranslator")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/eactranslator")
	}

	// Environment variables: EACT_SERVER_HEALTH_PORT, EACT_SPEECH_OUTPUT_BACKEND, etc.
	v.SetEnvPrefix("EACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional, env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Debug("no config file found, using defaults and environment variables")
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in secrets (e.g. "${HUGGINGFACEHUB_API_TOKEN}").
	cfg.Models.Token = resolveEnvRef(cfg.Models.Token)
	cfg.Speech.Output.Token = resolveEnvRef(cfg.Speech.Output.Token)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	var errs []error
	if !oneOf(c.Journal.OnError, "warn", "fail") {
		errs = append(errs, fmt.Errorf("journal.on_error: unknown policy %q", c.Journal.OnError))
	}
	if c.Journal.Path == "" {
		errs = append(errs, errors.New("journal.path is required"))
	}
	if !oneOf(c.Speech.Input.Backend, "huggingface", "whisper") {
		errs = append(errs, fmt.Errorf("speech.input.backend: unknown backend %q", c.Speech.Input.Backend))
	}
	if c.Speech.Input.Backend == "whisper" && !oneOf(c.Speech.Input.Flavor, "openai", "asr") {
		errs = append(errs, fmt.Errorf("speech.input.flavor: unknown flavor %q", c.Speech.Input.Flavor))
	}
	if !oneOf(c.Speech.Output.Backend, "huggingface", "piper") {
		errs = append(errs, fmt.Errorf("speech.output.backend: unknown backend %q", c.Speech.Output.Backend))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// resolveEnvRef replaces a "${VAR_NAME}" value with the variable's value.
// An unset variable resolves to "", which callers treat as "not configured".
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		return os.Getenv(val[2 : len(val)-1])
	}
	return val
}

// SetupLogging configures the global slog logger based on config. Output
// goes to w, or to a size-rotated file when cfg.File is set; the returned
// closer releases the file.
func SetupLogging(cfg LoggingConfig, w io.Writer) (io.Closer, error) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var (
		out    = w
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("logging: creating log directory: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: 3,
			LocalTime:  true,
		}
		out, closer = lj, lj
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	slog.SetDefault(slog.New(handler))
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
