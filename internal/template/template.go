// Package template defines the immutable puzzle content model: a numbered
// color palette plus the fillable vector regions, with the invariants that
// bind them together.
package template

import (
	"fmt"
	"strings"
)

// Difficulty labels a template and drives generation bounds.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty validates and normalizes a difficulty string.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case Easy:
		return Easy, nil
	case Medium:
		return Medium, nil
	case Hard:
		return Hard, nil
	}
	return "", fmt.Errorf("invalid difficulty %q (want easy, medium or hard)", s)
}

// GenerationBounds are the per-difficulty generation parameters: how many
// palette colors are allowed and the minimum traced contour area in pixels
// (smaller contours are discarded as noise).
type GenerationBounds struct {
	MinColors int
	MaxColors int
	TurdSize  int
}

// Bounds returns the generation bounds for a difficulty.
func (d Difficulty) Bounds() GenerationBounds {
	switch d {
	case Easy:
		return GenerationBounds{MinColors: 5, MaxColors: 10, TurdSize: 200}
	case Hard:
		return GenerationBounds{MinColors: 20, MaxColors: 30, TurdSize: 50}
	default:
		return GenerationBounds{MinColors: 10, MaxColors: 20, TurdSize: 100}
	}
}

// ClampColors forces a requested color count into the difficulty's range.
func (d Difficulty) ClampColors(n int) int {
	b := d.Bounds()
	if n < b.MinColors {
		return b.MinColors
	}
	if n > b.MaxColors {
		return b.MaxColors
	}
	return n
}

// ViewBox is the template's coordinate space.
type ViewBox struct {
	MinX   float64 `json:"minX"`
	MinY   float64 `json:"minY"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PaletteColor is one numbered color of a template's palette.
type PaletteColor struct {
	Number       int    `json:"number"`
	Hex          string `json:"hex"`
	Name         string `json:"name,omitempty"`
	TotalRegions int    `json:"totalRegions"`
}

// Region is one fillable shape. Never mutated after template creation.
type Region struct {
	ID          string  `json:"id"`
	ColorNumber int     `json:"colorNumber"`
	Path        string  `json:"path"`
	LabelX      float64 `json:"labelX"`
	LabelY      float64 `json:"labelY"`
	FontSize    int     `json:"fontSize,omitempty"`
}

// Data holds the drawable content of a template.
type Data struct {
	ViewBox ViewBox  `json:"viewBox"`
	Regions []Region `json:"regions"`
}

// Template is an immutable puzzle definition. Created by the generation
// pipeline (or authored manually); read-only at game time.
type Template struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	CategoryID    string         `json:"categoryId,omitempty"`
	Difficulty    Difficulty     `json:"difficulty"`
	ColorCount    int            `json:"colorCount"`
	RegionCount   int            `json:"regionCount"`
	EstimatedTime int            `json:"estimatedTime,omitempty"` // minutes
	ColorPalette  []PaletteColor `json:"colorPalette"`
	Data          Data           `json:"templateData"`
}

// Region returns the region with the given id, if present.
func (t *Template) Region(id string) (*Region, bool) {
	for i := range t.Data.Regions {
		if t.Data.Regions[i].ID == id {
			return &t.Data.Regions[i], true
		}
	}
	return nil, false
}

// CorrectColor returns the true color number for a region.
func (t *Template) CorrectColor(regionID string) (int, bool) {
	r, ok := t.Region(regionID)
	if !ok {
		return 0, false
	}
	return r.ColorNumber, true
}

// Validate checks the structural invariants binding palette and regions:
// unique palette numbers, every region's colorNumber present in the palette,
// per-color totals matching the actual region counts, and regionCount
// matching the region list length.
func (t *Template) Validate() error {
	if t.RegionCount != len(t.Data.Regions) {
		return fmt.Errorf("template %s: regionCount %d != %d regions", t.ID, t.RegionCount, len(t.Data.Regions))
	}
	if t.ColorCount != len(t.ColorPalette) {
		return fmt.Errorf("template %s: colorCount %d != %d palette entries", t.ID, t.ColorCount, len(t.ColorPalette))
	}

	totals := make(map[int]int, len(t.ColorPalette))
	for _, p := range t.ColorPalette {
		if p.Number < 1 {
			return fmt.Errorf("template %s: palette number %d must be positive", t.ID, p.Number)
		}
		if _, dup := totals[p.Number]; dup {
			return fmt.Errorf("template %s: duplicate palette number %d", t.ID, p.Number)
		}
		totals[p.Number] = p.TotalRegions
	}

	seen := make(map[string]struct{}, len(t.Data.Regions))
	counts := make(map[int]int, len(t.ColorPalette))
	for _, r := range t.Data.Regions {
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("template %s: duplicate region id %q", t.ID, r.ID)
		}
		seen[r.ID] = struct{}{}
		if _, ok := totals[r.ColorNumber]; !ok {
			return fmt.Errorf("template %s: region %s references unknown color %d", t.ID, r.ID, r.ColorNumber)
		}
		counts[r.ColorNumber]++
	}

	for number, want := range totals {
		if got := counts[number]; got != want {
			return fmt.Errorf("template %s: color %d declares %d regions, found %d", t.ID, number, want, got)
		}
	}
	return nil
}

// RecountTotals recomputes each palette entry's TotalRegions from the region
// list. Used by the generation pipeline before validation.
func (t *Template) RecountTotals() {
	counts := make(map[int]int)
	for _, r := range t.Data.Regions {
		counts[r.ColorNumber]++
	}
	for i := range t.ColorPalette {
		t.ColorPalette[i].TotalRegions = counts[t.ColorPalette[i].Number]
	}
}
