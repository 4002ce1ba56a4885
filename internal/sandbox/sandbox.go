// Package sandbox manages temporary file artifacts for pipeline operations.
// Every artifact is owned by exactly one Scope and is removed when the scope
// closes, no matter how the operation ended.
package sandbox

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const filePrefix = "mediabot-"

// Manager hands out per-operation scopes inside a single artifact directory.
type Manager struct {
	dir    string
	logger *slog.Logger
	seq    atomic.Uint64
}

// NewManager creates a manager rooted at dir. The directory is created if
// missing.
func NewManager(dir string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sandbox dir: %w", err)
	}
	return &Manager{dir: dir, logger: logger}, nil
}

// Scope opens a new scope for one pipeline invocation.
func (m *Manager) Scope(conversationID, operation string) *Scope {
	return &Scope{m: m, conv: sanitize(conversationID), op: sanitize(operation)}
}

// Scope tracks the artifacts of a single operation.
type Scope struct {
	m    *Manager
	conv string
	op   string

	mu        sync.Mutex
	artifacts []string
	closed    bool
}

// Acquire reserves a unique artifact path. The name embeds the conversation
// id, the operation kind and a process-wide counter so concurrent users can
// never collide. The file itself is not created.
func (s *Scope) Acquire(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", errors.New("sandbox scope is closed")
	}
	n := s.m.seq.Add(1)
	path := filepath.Join(s.m.dir, fmt.Sprintf("%s%s-%s-%d-%s", filePrefix, s.conv, s.op, n, sanitize(name)))
	s.artifacts = append(s.artifacts, path)
	return path, nil
}

// Release deletes one artifact ahead of scope close. Idempotent; a missing
// file counts as released, and deletion failures are logged but never
// returned so they cannot mask the operation's own result.
func (s *Scope) Release(path string) {
	s.mu.Lock()
	for i, p := range s.artifacts {
		if p == path {
			s.artifacts = append(s.artifacts[:i], s.artifacts[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.m.remove(path)
}

// Close releases every remaining artifact. Safe to call more than once.
func (s *Scope) Close() {
	s.mu.Lock()
	remaining := s.artifacts
	s.artifacts = nil
	s.closed = true
	s.mu.Unlock()
	for _, p := range remaining {
		s.m.remove(p)
	}
}

func (m *Manager) remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		m.logger.Warn("failed to remove artifact", "path", path, "error", err)
	}
}

// SweepOlderThan removes leftover artifacts older than maxAge. Covers files
// orphaned by a crash mid-operation; run periodically from the scheduler.
func (m *Manager) SweepOlderThan(maxAge time.Duration) int {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		m.logger.Warn("sandbox sweep failed", "error", err)
		return 0
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), filePrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		m.remove(filepath.Join(m.dir, e.Name()))
		removed++
	}
	return removed
}

// sanitize keeps artifact names flat and shell-safe.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_':
			return r
		default:
			return '-'
		}
	}, s)
}
