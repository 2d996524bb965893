package game

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultAutosaveInterval is how often the autosaver writes a draft.
const DefaultAutosaveInterval = 15 * time.Second

// Autosaver periodically writes the engine's draft while a session is
// active. Ticks are skipped while a save is still in flight so overlapping
// writes cannot interleave, and the loop stops as soon as its context is
// canceled: a stale autosave firing after session teardown could overwrite
// newer progress.
type Autosaver struct {
	engine   *Engine
	interval time.Duration

	mu       sync.Mutex
	inFlight bool
}

// NewAutosaver creates an autosaver for an engine. interval <= 0 selects
// DefaultAutosaveInterval.
func NewAutosaver(e *Engine, interval time.Duration) *Autosaver {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	return &Autosaver{engine: e, interval: interval}
}

// Run blocks, saving a draft on every tick while the engine has unsaved
// changes, until ctx is canceled. Callers cancel the context on template
// change or navigation away.
func (a *Autosaver) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}

func (a *Autosaver) tick(ctx context.Context) {
	if !a.engine.IsDirty() {
		return
	}
	a.mu.Lock()
	if a.inFlight {
		a.mu.Unlock()
		return
	}
	a.inFlight = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.inFlight = false
		a.mu.Unlock()
	}()

	if ctx.Err() != nil {
		return
	}
	if err := a.engine.SaveDraft(); err != nil {
		// Persistence failures never crash the session; the dirty flag
		// stays set and the next tick retries.
		log.Printf("game: autosave failed: %v", err)
	}
}
