package conversation

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStoreLazyCreate(t *testing.T) {
	s := NewStore()
	c := s.Get("42")
	assert.Equal(t, ModeMainMenu, c.Mode(), "new conversations start in the main menu")
	assert.Same(t, c, s.Get("42"), "same id yields the same conversation")
	assert.Equal(t, 1, s.Len())
}

func TestSetModeClearsScratch(t *testing.T) {
	s := NewStore()
	c := s.Get("1")

	c.SetMode(ModeTranslateActive)
	c.SetScratch(ScratchTargetLang, "de")
	v, ok := c.Scratch(ScratchTargetLang)
	assert.True(t, ok)
	assert.Equal(t, "de", v)

	c.SetMode(ModeMainMenu)
	_, ok = c.Scratch(ScratchTargetLang)
	assert.False(t, ok, "scratch must not survive a transition out")
	assert.Zero(t, c.ScratchLen())
}

func TestScratchSurvivesWithinMode(t *testing.T) {
	c := NewStore().Get("1")
	c.SetMode(ModeTranslateActive)
	c.SetScratch(ScratchTargetLang, "ja")

	// Repeated reads within the mode keep the value.
	for i := 0; i < 3; i++ {
		v, ok := c.Scratch(ScratchTargetLang)
		assert.True(t, ok)
		assert.Equal(t, "ja", v)
	}
}

func TestGenerationIncrementsOnTransition(t *testing.T) {
	c := NewStore().Get("1")
	g0 := c.Generation()
	c.SetMode(ModeVideo)
	g1 := c.Generation()
	assert.Greater(t, g1, g0)
	c.SetMode(ModeMainMenu)
	assert.Greater(t, c.Generation(), g1)
}

func TestCleanupStale(t *testing.T) {
	s := NewStore()
	stale := s.Get("old")
	stale.mu.Lock()
	stale.lastActive = time.Now().Add(-48 * time.Hour)
	stale.mu.Unlock()
	s.Get("fresh")

	removed := s.CleanupStale(24 * time.Hour)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, s.Len())
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c := s.Get("shared")
				c.SetMode(ModeVideo)
				c.Touch()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, s.Len())
}
