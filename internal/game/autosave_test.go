package game

import (
	"context"
	"testing"
	"time"
)

func TestAutosaverWritesDraftWhileDirty(t *testing.T) {
	e, gw := newEngine(t)
	e.FillRegion("r1", 1)

	a := NewAutosaver(e, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		gw.mu.Lock()
		_, ok := gw.drafts["apple-simple"]
		gw.mu.Unlock()
		if ok {
			break
		}
		select {
		case <-deadline:
			t.Fatal("autosaver never wrote a draft")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("autosaver did not stop on cancel")
	}
}

func TestAutosaverSkipsCleanSession(t *testing.T) {
	e, gw := newEngine(t)
	a := NewAutosaver(e, time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	a.Run(ctx)

	gw.mu.Lock()
	defer gw.mu.Unlock()
	if len(gw.drafts) != 0 {
		t.Errorf("clean session produced %d drafts, want 0", len(gw.drafts))
	}
}

func TestAutosaverDefaultInterval(t *testing.T) {
	a := NewAutosaver(New(newFakeGateway()), 0)
	if a.interval != DefaultAutosaveInterval {
		t.Errorf("interval = %v, want %v", a.interval, DefaultAutosaveInterval)
	}
}
