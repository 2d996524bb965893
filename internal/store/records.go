// Package store persists artworks, drafts and settings in a local embedded
// key-value database (bbolt), and saves uploaded/generated image blobs to a
// filesystem-backed blob store.
package store

import "time"

// Store names the three record stores.
type Store string

const (
	Artworks Store = "artworks"
	Drafts   Store = "drafts"
	Settings Store = "settings"
)

// ContentKind discriminates the two coloring modes an artwork can hold.
// Explicitly tagged; no optional duck-typed extra fields.
type ContentKind string

const (
	KindRegions  ContentKind = "regions"
	KindFreehand ContentKind = "freehand"
)

// FilledRegionRecord is one serialized region-fill attempt. Maps are stored
// as entry slices, never as live references to engine state.
type FilledRegionRecord struct {
	RegionID    string `json:"regionId"`
	ColorNumber int    `json:"colorNumber"`
	IsCorrect   bool   `json:"isCorrect"`
	FilledAt    int64  `json:"filledAt"` // unix milliseconds
}

// RegionContent is the persisted state of a numbered-region session.
type RegionContent struct {
	FilledRegions []FilledRegionRecord `json:"filledRegions"`
	MistakesCount int                  `json:"mistakesCount"`
}

// FreehandContent is the persisted state of a freehand canvas session.
type FreehandContent struct {
	ColoredRegions map[string]string `json:"coloredRegions,omitempty"`
	CanvasDataURL  string            `json:"canvasDataUrl,omitempty"`
}

// ArtworkContent is the tagged union of the two session kinds. Exactly one
// of Regions/Freehand is set, matching Kind.
type ArtworkContent struct {
	Kind     ContentKind      `json:"kind"`
	Regions  *RegionContent   `json:"regions,omitempty"`
	Freehand *FreehandContent `json:"freehand,omitempty"`
}

// Artwork is the durable result of a play session. Repeated saves against
// the same template update one record (latest wins) rather than creating
// duplicates.
type Artwork struct {
	ID               string         `json:"id"`
	TemplateID       string         `json:"templateId"`
	Title            string         `json:"title,omitempty"`
	ThumbnailDataURL string         `json:"thumbnailDataUrl,omitempty"`
	Progress         int            `json:"progress"` // 0-100
	Content          ArtworkContent `json:"content"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	IsSynced         bool           `json:"isSynced"`
}

// Draft is the lightweight autosave record, keyed by template id and
// overwritten on every autosave tick. A draft only exists for "resume where
// I left off"; an Artwork is an explicit save.
type Draft struct {
	TemplateID string         `json:"templateId"`
	Content    ArtworkContent `json:"content"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}
