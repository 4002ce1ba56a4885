package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	yaml := []byte(`
telegram:
  token: test-token
server:
  port: 18810
  host: localhost
pipeline:
  max_video_seconds: 60
  call_timeout: 90s
engines:
  whisper_url: http://localhost:9000/v1/audio/transcriptions
logging:
  level: debug
`)
	f, _ := os.CreateTemp("", "config-*.yaml")
	f.Write(yaml)
	f.Close()
	defer os.Remove(f.Name())

	cfg, err := Load(f.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 18810 {
		t.Errorf("Expected port 18810, got %d", cfg.Server.Port)
	}
	if cfg.Pipeline.CallTimeout.Std() != 90*time.Second {
		t.Errorf("Expected call_timeout 90s, got %s", cfg.Pipeline.CallTimeout.Std())
	}
	if cfg.Engines.WhisperURL != "http://localhost:9000/v1/audio/transcriptions" {
		t.Errorf("Unexpected whisper_url %q", cfg.Engines.WhisperURL)
	}
	// Defaults survive a partial file.
	if cfg.Pipeline.MaxTranslateLen != 5000 {
		t.Errorf("Expected default max_translate_len 5000, got %d", cfg.Pipeline.MaxTranslateLen)
	}
}

func TestTokenFromEnv(t *testing.T) {
	f, _ := os.CreateTemp("", "config-*.yaml")
	f.WriteString("server:\n  port: 18810\n")
	f.Close()
	defer os.Remove(f.Name())

	t.Setenv("BOT_TOKEN", "env-token")
	cfg, err := Load(f.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Telegram.Token != "env-token" {
		t.Errorf("Expected token from env, got %q", cfg.Telegram.Token)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Telegram.Token = "x"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestValidateMissingToken(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for missing token")
	}
}

func TestValidateInvalidPort(t *testing.T) {
	cfg := Default()
	cfg.Telegram.Token = "x"
	cfg.Server.Port = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for invalid port")
	}
}
