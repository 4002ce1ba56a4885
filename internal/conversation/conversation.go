// Package conversation holds per-user state for the gateway: the active
// pipeline mode and any mode-scoped working data.
package conversation

import (
	"sync"
	"time"
)

// Mode enumerates the conversation states.
type Mode int

const (
	ModeMainMenu Mode = iota
	ModeVideo
	ModeSpeechToText
	ModeTranslateLanguageSelect
	ModeTranslateActive
	ModeSpeechSynthesis
)

func (m Mode) String() string {
	switch m {
	case ModeMainMenu:
		return "main_menu"
	case ModeVideo:
		return "video"
	case ModeSpeechToText:
		return "speech_to_text"
	case ModeTranslateLanguageSelect:
		return "translate_language_select"
	case ModeTranslateActive:
		return "translate_active"
	case ModeSpeechSynthesis:
		return "speech_synthesis"
	default:
		return "unknown"
	}
}

// ScratchTargetLang is the scratch key carrying the chosen translation
// target while the conversation is in ModeTranslateActive.
const ScratchTargetLang = "target_lang"

// Conversation is one user's state. Mutated only through its methods; safe
// for concurrent use, though the gateway serializes events per conversation.
type Conversation struct {
	ID string

	mu         sync.Mutex
	mode       Mode
	scratch    map[string]string
	generation uint64
	lastActive time.Time
}

// Mode returns the current mode.
func (c *Conversation) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Generation returns a counter that increments on every transition. An
// operation started under an older generation discards its result on
// arrival instead of delivering into the wrong mode.
func (c *Conversation) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// SetMode transitions to a new mode. Scratch is always cleared: scratch
// keys are only ever valid for the mode that wrote them.
func (c *Conversation) SetMode(mode Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
	c.scratch = nil
	c.generation++
	c.lastActive = time.Now()
}

// SetScratch stores a mode-scoped value.
func (c *Conversation) SetScratch(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scratch == nil {
		c.scratch = make(map[string]string)
	}
	c.scratch[key] = value
}

// Scratch returns a mode-scoped value.
func (c *Conversation) Scratch(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.scratch[key]
	return v, ok
}

// ScratchLen reports how many scratch keys are populated.
func (c *Conversation) ScratchLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.scratch)
}

// Touch refreshes the activity timestamp.
func (c *Conversation) Touch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastActive = time.Now()
}

// LastActive returns the last activity timestamp.
func (c *Conversation) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// Store is a concurrency-safe conversation map keyed by conversation id.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
}

func NewStore() *Store {
	return &Store{conversations: make(map[string]*Conversation)}
}

// Get returns the conversation for id, creating it in MainMenu on first
// contact.
func (s *Store) Get(id string) *Conversation {
	s.mu.RLock()
	c, ok := s.conversations[id]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.conversations[id]; ok {
		return c
	}
	c = &Conversation{ID: id, mode: ModeMainMenu, lastActive: time.Now()}
	s.conversations[id] = c
	return c
}

// Len returns the number of live conversations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

// CleanupStale drops conversations idle longer than maxAge and returns how
// many were removed.
func (s *Store) CleanupStale(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, c := range s.conversations {
		if c.LastActive().Before(cutoff) {
			delete(s.conversations, id)
			removed++
		}
	}
	return removed
}
