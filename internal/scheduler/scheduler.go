// Package scheduler runs the periodic housekeeping jobs: dropping idle
// conversations and sweeping orphaned sandbox artifacts.
package scheduler

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cortexhub/mediabot/internal/conversation"
	"github.com/cortexhub/mediabot/internal/sandbox"
)

type Scheduler struct {
	cron            *cron.Cron
	store           *conversation.Store
	sandboxes       *sandbox.Manager
	conversationTTL time.Duration
	artifactMaxAge  time.Duration
	logger          *slog.Logger
}

// New wires the cleanup job onto the given cron spec ("@every 30m" style or
// standard five-field crontab).
func New(spec string, store *conversation.Store, sandboxes *sandbox.Manager, conversationTTL, artifactMaxAge time.Duration, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:            cron.New(),
		store:           store,
		sandboxes:       sandboxes,
		conversationTTL: conversationTTL,
		artifactMaxAge:  artifactMaxAge,
		logger:          logger,
	}
	if _, err := s.cron.AddFunc(spec, s.cleanup); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) cleanup() {
	dropped := s.store.CleanupStale(s.conversationTTL)
	swept := s.sandboxes.SweepOlderThan(s.artifactMaxAge)
	if dropped > 0 || swept > 0 {
		s.logger.Info("housekeeping done",
			"conversations_dropped", dropped,
			"artifacts_swept", swept)
	}
}
