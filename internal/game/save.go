package game

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/paintbn/paintbn/internal/store"
)

// SaveProgress durably saves the session as an Artwork. Repeated saves for
// the same template update one record (latest wins); a brand new session
// gets a fresh id. Idempotent: saving twice with no intervening fills
// persists the same progress. A failed save leaves in-memory state intact,
// the dirty flag set and lastSavedAt unchanged.
func (e *Engine) SaveProgress() (string, error) {
	e.mu.Lock()
	if e.tpl == nil {
		e.mu.Unlock()
		return "", fmt.Errorf("game: no active template")
	}
	tpl := e.tpl
	content := e.contentLocked()
	progress := e.progressLocked()
	artworkID := e.artworkID
	snapshotSeq := e.stateSeq
	now := e.now()
	e.mu.Unlock()

	// Reuse the existing artwork for this template so saves update
	// rather than duplicate.
	var existing *store.Artwork
	if artworkID != "" {
		a, ok, err := e.gateway.ArtworkByID(artworkID)
		if err != nil {
			return "", fmt.Errorf("game: locating artwork: %w", err)
		}
		if ok {
			existing = a
		}
	}
	if existing == nil {
		all, err := e.gateway.ArtworksByTemplate(tpl.ID)
		if err != nil {
			return "", fmt.Errorf("game: locating artwork: %w", err)
		}
		if len(all) > 0 {
			sort.Slice(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })
			existing = &all[0]
		}
	}

	artwork := store.Artwork{
		ID:         uuid.NewString(),
		TemplateID: tpl.ID,
		Title:      tpl.Title,
		CreatedAt:  now,
	}
	if existing != nil {
		artwork.ID = existing.ID
		artwork.CreatedAt = existing.CreatedAt
		if existing.Title != "" {
			artwork.Title = existing.Title
		}
	}
	artwork.UpdatedAt = now
	artwork.Progress = progress
	artwork.Content = content
	artwork.ThumbnailDataURL = renderThumbnail(tpl, content.Regions)

	if err := e.gateway.SaveArtwork(&artwork); err != nil {
		return "", fmt.Errorf("game: saving artwork: %w", err)
	}

	e.mu.Lock()
	e.artworkID = artwork.ID
	// A fill may have landed while the gateway write was in flight; the
	// session is only clean if the saved snapshot is still current.
	if e.stateSeq == snapshotSeq {
		e.dirty = false
		e.lastSavedAt = now
	}
	e.mu.Unlock()
	return artwork.ID, nil
}

// LoadProgress rehydrates the filled-region map from a saved artwork. The
// matching template must already be loaded via StartGame.
func (e *Engine) LoadProgress(artworkID string) error {
	a, ok, err := e.gateway.ArtworkByID(artworkID)
	if err != nil {
		return fmt.Errorf("game: loading artwork %s: %w", artworkID, err)
	}
	if !ok {
		return fmt.Errorf("game: artwork %s not found", artworkID)
	}
	return e.restore(a)
}

// LoadProgressByTemplate loads the most recently updated artwork for the
// active template.
func (e *Engine) LoadProgressByTemplate(templateID string) error {
	all, err := e.gateway.ArtworksByTemplate(templateID)
	if err != nil {
		return fmt.Errorf("game: loading artworks for %s: %w", templateID, err)
	}
	if len(all) == 0 {
		return fmt.Errorf("game: no artwork for template %s", templateID)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })
	return e.restore(&all[0])
}

// SaveDraft writes the lightweight autosave record for the active template.
// Unlike SaveProgress it does not clear the dirty flag; a draft is only a
// resume point, not an explicit save.
func (e *Engine) SaveDraft() error {
	e.mu.Lock()
	if e.tpl == nil {
		e.mu.Unlock()
		return fmt.Errorf("game: no active template")
	}
	d := store.Draft{
		TemplateID: e.tpl.ID,
		Content:    e.contentLocked(),
		UpdatedAt:  e.now(),
	}
	e.mu.Unlock()
	if err := e.gateway.SaveDraft(&d); err != nil {
		return fmt.Errorf("game: saving draft: %w", err)
	}
	return nil
}

// LoadDraft resumes from the autosave draft for the active template, if one
// exists.
func (e *Engine) LoadDraft() (bool, error) {
	e.mu.Lock()
	if e.tpl == nil {
		e.mu.Unlock()
		return false, fmt.Errorf("game: no active template")
	}
	templateID := e.tpl.ID
	e.mu.Unlock()

	d, ok, err := e.gateway.DraftByTemplate(templateID)
	if err != nil {
		return false, fmt.Errorf("game: loading draft: %w", err)
	}
	if !ok {
		return false, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applyContentLocked(d.Content)
	return true, nil
}

func (e *Engine) restore(a *store.Artwork) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tpl == nil {
		return fmt.Errorf("game: no active template")
	}
	if a.TemplateID != e.tpl.ID {
		return fmt.Errorf("game: artwork %s belongs to template %s, not %s", a.ID, a.TemplateID, e.tpl.ID)
	}
	if a.Content.Kind != store.KindRegions || a.Content.Regions == nil {
		return fmt.Errorf("game: artwork %s holds %s content, want regions", a.ID, a.Content.Kind)
	}
	e.applyContentLocked(a.Content)
	e.artworkID = a.ID
	e.dirty = false
	return nil
}

// applyContentLocked rehydrates session state from persisted content.
// Entries referencing regions the template no longer has are dropped with a
// log line rather than failing the load.
func (e *Engine) applyContentLocked(c store.ArtworkContent) {
	e.stateSeq++
	e.filled = make(map[string]FilledRegion)
	e.mistakes = 0
	if c.Regions == nil {
		return
	}
	e.mistakes = c.Regions.MistakesCount
	for _, rec := range c.Regions.FilledRegions {
		if _, ok := e.tpl.Region(rec.RegionID); !ok {
			log.Printf("game: dropping filled region %s absent from template", rec.RegionID)
			continue
		}
		e.fillSeq++
		e.filled[rec.RegionID] = FilledRegion{
			RegionID:    rec.RegionID,
			ColorNumber: rec.ColorNumber,
			IsCorrect:   rec.IsCorrect,
			FilledAt:    time.UnixMilli(rec.FilledAt),
			seq:         e.fillSeq,
		}
	}
	e.completed = e.correctCountLocked() == e.tpl.RegionCount && e.tpl.RegionCount > 0
}

// contentLocked serializes the filled-region map as a tagged regions
// variant. Entries are sorted by timestamp so the stored form is stable.
func (e *Engine) contentLocked() store.ArtworkContent {
	recs := make([]store.FilledRegionRecord, 0, len(e.filled))
	for _, f := range e.filled {
		recs = append(recs, store.FilledRegionRecord{
			RegionID:    f.RegionID,
			ColorNumber: f.ColorNumber,
			IsCorrect:   f.IsCorrect,
			FilledAt:    f.FilledAt.UnixMilli(),
		})
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].FilledAt != recs[j].FilledAt {
			return recs[i].FilledAt < recs[j].FilledAt
		}
		return recs[i].RegionID < recs[j].RegionID
	})
	return store.ArtworkContent{
		Kind: store.KindRegions,
		Regions: &store.RegionContent{
			FilledRegions: recs,
			MistakesCount: e.mistakes,
		},
	}
}
