// Package game implements the numbered-region coloring engine: the active
// template, the filled-region map, selection/hint/view state, progress and
// completion detection, plus durable saves through the persistence gateway.
package game

import (
	"log"
	"sync"
	"time"

	"github.com/paintbn/paintbn/internal/store"
	"github.com/paintbn/paintbn/internal/template"
)

// Zoom bounds for the view state.
const (
	MinZoom = 0.5
	MaxZoom = 4.0
)

// FeedbackTTL is how long an "incorrect, retry" feedback stays visible
// unless superseded by newer feedback.
const FeedbackTTL = time.Second

// Gateway is the persistence contract the engine depends on. Implemented
// by store.KV.
type Gateway interface {
	SaveArtwork(a *store.Artwork) error
	ArtworkByID(id string) (*store.Artwork, bool, error)
	ArtworksByTemplate(templateID string) ([]store.Artwork, error)
	SaveDraft(d *store.Draft) error
	DraftByTemplate(templateID string) (*store.Draft, bool, error)
	DeleteDraft(templateID string) error
}

// FilledRegion records one fill attempt on a region. At most one entry per
// region exists at a time; the last attempt wins, but only correct fills
// are sticky.
type FilledRegion struct {
	RegionID    string
	ColorNumber int
	IsCorrect   bool
	FilledAt    time.Time

	seq uint64 // breaks FilledAt ties for undo ordering
}

// FillOutcome reports what a FillRegion call did.
type FillOutcome int

const (
	// FillIgnored means nothing changed: no template, already correctly
	// filled, unknown region, or the session is complete.
	FillIgnored FillOutcome = iota
	// FillCorrect means the region was filled with its true color.
	FillCorrect
	// FillIncorrect means the attempt was recorded as a mistake.
	FillIncorrect
	// FillCompleted means this fill was correct and completed the puzzle.
	FillCompleted
)

// FeedbackKind labels user-visible feedback. Correct fills are silent;
// only wrong answers and completion interrupt.
type FeedbackKind int

const (
	FeedbackIncorrect FeedbackKind = iota + 1
	FeedbackCompleted
)

// Feedback is the engine's current transient feedback, if any.
type Feedback struct {
	Kind     FeedbackKind
	RegionID string
	seq      uint64
}

// Engine is the region-fill state machine. Safe for use from concurrent
// timer callbacks; all state transitions are serialized internally.
type Engine struct {
	mu      sync.Mutex
	now     func() time.Time
	gateway Gateway

	tpl      *template.Template
	filled   map[string]FilledRegion
	mistakes int
	fillSeq  uint64
	stateSeq uint64 // bumped on every fill-state mutation

	selectedColor int // 0 = none
	hintActive    bool
	hintRegionID  string
	showNumbers   bool
	zoom          float64
	panX, panY    float64

	completed   bool
	dirty       bool
	startedAt   time.Time
	lastSavedAt time.Time
	artworkID   string

	feedback    *Feedback
	feedbackSeq uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock injects the time source. Used by tests for deterministic
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine bound to a persistence gateway. The engine starts
// Idle; call StartGame to load a template.
func New(gw Gateway, opts ...Option) *Engine {
	e := &Engine{
		now:     time.Now,
		gateway: gw,
		filled:  map[string]FilledRegion{},
		zoom:    1,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// StartGame begins a fresh attempt at a template: filled regions cleared,
// color #1 selected, completion and dirty flags reset. Loading prior
// progress is a separate explicit operation (LoadProgress).
func (e *Engine) StartGame(tpl *template.Template) error {
	if err := tpl.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tpl = tpl
	e.filled = make(map[string]FilledRegion, tpl.RegionCount)
	e.mistakes = 0
	e.selectedColor = 1
	e.hintActive = false
	e.hintRegionID = ""
	e.showNumbers = true
	e.zoom = 1
	e.panX, e.panY = 0, 0
	e.completed = false
	e.dirty = false
	e.startedAt = e.now()
	e.lastSavedAt = time.Time{}
	e.artworkID = ""
	e.feedback = nil
	return nil
}

// Template returns the active template, or nil when idle.
func (e *Engine) Template() *template.Template {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tpl
}

// SetSelectedColor selects the active palette number; 0 clears the
// selection. Not validated against remaining counts: a user may select an
// exhausted color.
func (e *Engine) SetSelectedColor(colorNumber int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selectedColor = colorNumber
}

// SelectedColor returns the active palette number (0 = none).
func (e *Engine) SelectedColor() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedColor
}

// FillRegion records a fill attempt. Correctness is recomputed here from
// the template's true answer; the caller's opinion is never trusted.
// Completion is detected when every region is correctly filled, and takes
// priority over per-click feedback.
func (e *Engine) FillRegion(regionID string, colorNumber int) FillOutcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tpl == nil || e.completed {
		return FillIgnored
	}
	truth, ok := e.tpl.CorrectColor(regionID)
	if !ok {
		// Defensive: a tap on a region the template does not know.
		// Ignore rather than corrupt state.
		log.Printf("game: fill on unknown region %q ignored", regionID)
		return FillIgnored
	}
	if prev, ok := e.filled[regionID]; ok && prev.IsCorrect {
		return FillIgnored
	}

	e.fillSeq++
	e.stateSeq++
	entry := FilledRegion{
		RegionID:    regionID,
		ColorNumber: colorNumber,
		IsCorrect:   colorNumber == truth,
		FilledAt:    e.now(),
		seq:         e.fillSeq,
	}
	e.filled[regionID] = entry
	e.dirty = true
	if e.hintRegionID == regionID && entry.IsCorrect {
		e.hintActive = false
		e.hintRegionID = ""
	}

	if !entry.IsCorrect {
		e.mistakes++
		e.setFeedbackLocked(Feedback{Kind: FeedbackIncorrect, RegionID: regionID})
		return FillIncorrect
	}

	if e.correctCountLocked() == e.tpl.RegionCount {
		e.completed = true
		e.setFeedbackLocked(Feedback{Kind: FeedbackCompleted})
		return FillCompleted
	}
	// Correct fills are silent.
	return FillCorrect
}

// IsRegionFilled reports whether a region has received its correct color.
func (e *Engine) IsRegionFilled(regionID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	f, ok := e.filled[regionID]
	return ok && f.IsCorrect
}

// UndoLastFill removes the most recently filled entry, ordered by FilledAt
// (insertion order breaks exact ties). No-op when nothing is filled or the
// session is complete.
func (e *Engine) UndoLastFill() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.completed || len(e.filled) == 0 {
		return false
	}
	var last *FilledRegion
	for id := range e.filled {
		f := e.filled[id]
		if last == nil || f.FilledAt.After(last.FilledAt) ||
			(f.FilledAt.Equal(last.FilledAt) && f.seq > last.seq) {
			last = &f
		}
	}
	delete(e.filled, last.RegionID)
	e.stateSeq++
	e.dirty = true
	return true
}

// ToggleHint activates or deactivates the hint. Activating picks the first
// unfilled region matching the selected color, falling back to the first
// unfilled region overall.
func (e *Engine) ToggleHint() (regionID string, active bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hintActive {
		e.hintActive = false
		e.hintRegionID = ""
		return "", false
	}
	if e.tpl == nil {
		return "", false
	}
	id := e.firstUnfilledLocked(e.selectedColor)
	if id == "" {
		id = e.firstUnfilledLocked(0)
	}
	if id == "" {
		return "", false
	}
	e.hintActive = true
	e.hintRegionID = id
	return id, true
}

// HintRegion returns the active hint target, if any.
func (e *Engine) HintRegion() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hintRegionID, e.hintActive
}

// SetShowNumbers toggles number glyph rendering.
func (e *Engine) SetShowNumbers(show bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.showNumbers = show
}

// SetZoom clamps and stores the zoom level.
func (e *Engine) SetZoom(z float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if z < MinZoom {
		z = MinZoom
	}
	if z > MaxZoom {
		z = MaxZoom
	}
	e.zoom = z
	return z
}

// SetPan stores the pan offset.
func (e *Engine) SetPan(x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.panX, e.panY = x, y
}

// View returns the current view state (zoom, pan, showNumbers).
func (e *Engine) View() (zoom, panX, panY float64, showNumbers bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.zoom, e.panX, e.panY, e.showNumbers
}

// Progress returns the completion percentage, rounded.
func (e *Engine) Progress() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.progressLocked()
}

func (e *Engine) progressLocked() int {
	if e.tpl == nil || e.tpl.RegionCount == 0 {
		return 0
	}
	return int(float64(100*e.correctCountLocked())/float64(e.tpl.RegionCount) + 0.5)
}

// RemainingCount returns how many regions of a color are still unfilled.
// Never negative: a negative value would mean the filled map disagrees with
// the template, which is logged and clamped rather than propagated, since
// a stored artwork must never become unusable over a minor inconsistency.
func (e *Engine) RemainingCount(colorNumber int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tpl == nil {
		return 0
	}
	var total int
	for _, p := range e.tpl.ColorPalette {
		if p.Number == colorNumber {
			total = p.TotalRegions
			break
		}
	}
	var correct int
	for _, f := range e.filled {
		if f.IsCorrect && f.ColorNumber == colorNumber {
			correct++
		}
	}
	if correct > total {
		log.Printf("game: color %d has %d correct fills but only %d regions; clamping", colorNumber, correct, total)
		return 0
	}
	return total - correct
}

// CorrectColor exposes the template's true answer for a region. Used for
// hint rendering and debugging only.
func (e *Engine) CorrectColor(regionID string) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tpl == nil {
		return 0, false
	}
	return e.tpl.CorrectColor(regionID)
}

// MistakesCount returns the number of incorrect attempts this session.
func (e *Engine) MistakesCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mistakes
}

// IsCompleted reports whether every region is correctly filled.
func (e *Engine) IsCompleted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.completed
}

// IsDirty reports whether unsaved changes exist.
func (e *Engine) IsDirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// FilledRegions returns a copy of the filled-region map.
func (e *Engine) FilledRegions() map[string]FilledRegion {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]FilledRegion, len(e.filled))
	for k, v := range e.filled {
		out[k] = v
	}
	return out
}

// CurrentFeedback returns the live feedback, if any.
func (e *Engine) CurrentFeedback() (Feedback, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.feedback == nil {
		return Feedback{}, false
	}
	return *e.feedback, true
}

// setFeedbackLocked installs feedback. Incorrect feedback auto-expires
// after FeedbackTTL unless newer feedback has superseded it in the
// meantime; the sequence check suppresses stale timeouts so rapid retries
// do not flicker. Completion feedback does not expire.
func (e *Engine) setFeedbackLocked(f Feedback) {
	e.feedbackSeq++
	f.seq = e.feedbackSeq
	e.feedback = &f
	if f.Kind == FeedbackCompleted {
		return
	}
	seq := f.seq
	time.AfterFunc(FeedbackTTL, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.feedback != nil && e.feedback.seq == seq {
			e.feedback = nil
		}
	})
}

func (e *Engine) correctCountLocked() int {
	var n int
	for _, f := range e.filled {
		if f.IsCorrect {
			n++
		}
	}
	return n
}

// firstUnfilledLocked returns the first region (template order) that is not
// correctly filled, restricted to colorNumber when it is non-zero.
func (e *Engine) firstUnfilledLocked(colorNumber int) string {
	for _, r := range e.tpl.Data.Regions {
		if colorNumber != 0 && r.ColorNumber != colorNumber {
			continue
		}
		if f, ok := e.filled[r.ID]; ok && f.IsCorrect {
			continue
		}
		return r.ID
	}
	return ""
}
