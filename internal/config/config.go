// Package config handles mediabot configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration decodes human-readable YAML durations like "90s" or "24h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all mediabot configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Server    ServerConfig    `yaml:"server"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Engines   EnginesConfig   `yaml:"engines"`
	Sandbox   SandboxConfig   `yaml:"sandbox"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// TelegramConfig configures the Telegram transport.
type TelegramConfig struct {
	Token       string `yaml:"token"`
	PollTimeout int    `yaml:"poll_timeout"`
}

// ServerConfig configures the health/metrics HTTP server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// PipelineConfig bounds pipeline inputs and execution.
type PipelineConfig struct {
	MaxVideoSeconds float64  `yaml:"max_video_seconds"`
	MaxTranslateLen int      `yaml:"max_translate_len"`
	MaxSynthesisLen int      `yaml:"max_synthesis_len"`
	CallTimeout     Duration `yaml:"call_timeout"`
	QueueSize       int      `yaml:"queue_size"`
}

// EnginesConfig configures the external processing engines.
type EnginesConfig struct {
	FFmpegPath   string `yaml:"ffmpeg_path"`
	FFprobePath  string `yaml:"ffprobe_path"`
	WhisperURL   string `yaml:"whisper_url"`
	WhisperKey   string `yaml:"whisper_key"`
	WhisperModel string `yaml:"whisper_model"`
	// SerializeRecognizer gates the shared recognition engine behind a
	// single-slot queue when the backend cannot take concurrent calls.
	SerializeRecognizer bool   `yaml:"serialize_recognizer"`
	TranslateURL        string `yaml:"translate_url"`
	TTSURL              string `yaml:"tts_url"`
	SpeechLang          string `yaml:"speech_lang"`
	VoiceLang           string `yaml:"voice_lang"`
}

// SandboxConfig configures temporary artifact storage.
type SandboxConfig struct {
	Dir string `yaml:"dir"`
}

// SchedulerConfig configures periodic maintenance jobs.
type SchedulerConfig struct {
	CleanupSpec     string   `yaml:"cleanup_spec"`
	ConversationTTL Duration `yaml:"conversation_ttl"`
	ArtifactMaxAge  Duration `yaml:"artifact_max_age"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Telegram: TelegramConfig{PollTimeout: 60},
		Server:   ServerConfig{Host: "127.0.0.1", Port: 18810},
		Pipeline: PipelineConfig{
			MaxVideoSeconds: 60,
			MaxTranslateLen: 5000,
			MaxSynthesisLen: 3000,
			CallTimeout:     Duration(2 * time.Minute),
			QueueSize:       16,
		},
		Engines: EnginesConfig{
			FFmpegPath:   "ffmpeg",
			FFprobePath:  "ffprobe",
			WhisperModel: "whisper-1",
			SpeechLang:   "ru",
			VoiceLang:    "ru",
		},
		Sandbox: SandboxConfig{Dir: os.TempDir()},
		Scheduler: SchedulerConfig{
			CleanupSpec:     "@every 30m",
			ConversationTTL: Duration(24 * time.Hour),
			ArtifactMaxAge:  Duration(time.Hour),
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads configuration from a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv lets secrets come from the environment instead of the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("WHISPER_API_KEY"); v != "" {
		c.Engines.WhisperKey = v
	}
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required (or set BOT_TOKEN)")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Pipeline.MaxVideoSeconds <= 0 {
		return fmt.Errorf("pipeline.max_video_seconds must be positive")
	}
	if c.Pipeline.MaxTranslateLen <= 0 || c.Pipeline.MaxSynthesisLen <= 0 {
		return fmt.Errorf("pipeline text limits must be positive")
	}
	if c.Pipeline.CallTimeout <= 0 {
		return fmt.Errorf("pipeline.call_timeout must be positive")
	}
	return nil
}
