// Mediabot turns Telegram chats into media pipelines: circle video clips,
// speech transcription, translation, and speech synthesis.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cortexhub/mediabot/internal/channel/telegram"
	"github.com/cortexhub/mediabot/internal/config"
	"github.com/cortexhub/mediabot/internal/conversation"
	"github.com/cortexhub/mediabot/internal/engine/ffmpeg"
	"github.com/cortexhub/mediabot/internal/engine/gtranslate"
	"github.com/cortexhub/mediabot/internal/engine/gtts"
	"github.com/cortexhub/mediabot/internal/engine/whisper"
	"github.com/cortexhub/mediabot/internal/gateway"
	"github.com/cortexhub/mediabot/internal/logging"
	"github.com/cortexhub/mediabot/internal/pipeline"
	"github.com/cortexhub/mediabot/internal/sandbox"
	"github.com/cortexhub/mediabot/internal/scheduler"
	"github.com/cortexhub/mediabot/internal/server"
)

var version = "1.0.0"

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *showVersion {
		fmt.Printf("mediabot v%s\n", version)
		os.Exit(0)
	}

	// Secrets may live in a .env next to the binary; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("starting mediabot", "version", version)

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sandboxes, err := sandbox.NewManager(cfg.Sandbox.Dir, logging.WithComponent(logger, "sandbox"))
	if err != nil {
		return fmt.Errorf("sandbox: %w", err)
	}

	transcoder := ffmpeg.New(cfg.Engines.FFmpegPath, cfg.Engines.FFprobePath)

	// A recognizer that fails to initialize does not stop the process; the
	// speech-to-text adapter simply reports itself unavailable.
	var recognizer pipeline.Recognizer
	if wc, err := whisper.New(whisper.Config{
		Endpoint:  cfg.Engines.WhisperURL,
		APIKey:    cfg.Engines.WhisperKey,
		Model:     cfg.Engines.WhisperModel,
		Serialize: cfg.Engines.SerializeRecognizer,
	}); err != nil {
		logger.Warn("speech recognition disabled", "error", err)
	} else {
		recognizer = wc
	}

	pipelineLog := logging.WithComponent(logger, "pipeline")
	speechToText := pipeline.NewSpeechToText(transcoder, recognizer, sandboxes, cfg.Engines.SpeechLang, pipelineLog)
	adapters := []pipeline.Adapter{
		pipeline.NewVideoCircle(transcoder, transcoder, sandboxes, cfg.Pipeline.MaxVideoSeconds, pipelineLog),
		speechToText,
		pipeline.NewTranslate(gtranslate.New(cfg.Engines.TranslateURL), cfg.Pipeline.MaxTranslateLen, pipelineLog),
		pipeline.NewSpeechSynthesis(gtts.New(cfg.Engines.TTSURL), cfg.Pipeline.MaxSynthesisLen, cfg.Engines.VoiceLang, pipelineLog),
	}

	adapter := telegram.New(cfg.Telegram.Token, cfg.Telegram.PollTimeout, logging.WithComponent(logger, "telegram"))
	if !adapter.IsEnabled() {
		return errors.New("telegram adapter is not configured")
	}

	store := conversation.NewStore()
	router := gateway.New(store, adapter, adapters, gateway.Options{
		CallTimeout:     cfg.Pipeline.CallTimeout.Std(),
		QueueSize:       cfg.Pipeline.QueueSize,
		MaxVideoSeconds: cfg.Pipeline.MaxVideoSeconds,
		MaxTranslateLen: cfg.Pipeline.MaxTranslateLen,
		MaxSynthesisLen: cfg.Pipeline.MaxSynthesisLen,
	}, logging.WithComponent(logger, "gateway"))

	if err := adapter.Start(ctx); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	go router.Run(ctx, adapter.Incoming())

	jobs, err := scheduler.New(cfg.Scheduler.CleanupSpec, store, sandboxes,
		cfg.Scheduler.ConversationTTL.Std(), cfg.Scheduler.ArtifactMaxAge.Std(),
		logging.WithComponent(logger, "scheduler"))
	if err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	jobs.Start()

	srv := server.New(cfg.Server.Host, cfg.Server.Port, server.Status{
		ChannelEnabled:      adapter.IsEnabled(),
		RecognizerAvailable: speechToText.Available(),
	}, store, logging.WithComponent(logger, "server"))
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-sigChan:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-serverErr:
		logger.Error("http server failed", "error", err)
	}

	cancel()
	if err := adapter.Stop(); err != nil {
		logger.Warn("telegram stop failed", "error", err)
	}
	router.Close()
	jobs.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown failed", "error", err)
	}

	logger.Info("goodbye")
	return nil
}
