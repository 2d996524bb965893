// Package paintbn turns raster images into paint-by-numbers puzzles and
// drives the coloring game built on them.
//
// The generation pipeline quantizes an image to a numbered color palette,
// traces each color's mask into closed vector regions, and places a number
// label in every region:
//
//	img, _ := paintbn.LoadImage("photo.jpg")
//	result, _ := paintbn.Generate(img, paintbn.DefaultOptions())
//	// result.Template holds the playable puzzle
//
// The runtime side (internal/game) consumes the produced template: region
// fills are validated against the palette, progress is tracked, and
// sessions persist through the local store.
package paintbn

import (
	"errors"
	"fmt"
	"image"
	"log"

	"github.com/google/uuid"

	"github.com/paintbn/paintbn/internal/colorx"
	"github.com/paintbn/paintbn/internal/imaging"
	"github.com/paintbn/paintbn/internal/quantize"
	"github.com/paintbn/paintbn/internal/render"
	"github.com/paintbn/paintbn/internal/template"
	"github.com/paintbn/paintbn/internal/trace"
)

// traceMaxDim bounds the resolution tracing runs at; it becomes the
// template's viewBox size.
const traceMaxDim = 400

// maxSmoothingRadius is the blur radius applied at Smoothing = 1.
const maxSmoothingRadius = 4

// ErrColorExtraction is returned when no palette can be derived from the
// input image.
var ErrColorExtraction = quantize.ErrColorExtraction

// Options configure template generation.
type Options struct {
	// ColorCount is the requested palette size. Clamped to the
	// difficulty's range.
	ColorCount int

	// Difficulty selects palette bounds and tracing noise suppression.
	Difficulty template.Difficulty

	// Smoothing in [0, 1] applies a pre-quantization blur that merges
	// noisy micro-regions. 0 disables it.
	Smoothing float64

	// Title is carried onto the generated template.
	Title string
}

// DefaultOptions returns medium-difficulty generation settings.
func DefaultOptions() Options {
	return Options{
		ColorCount: 12,
		Difficulty: template.Medium,
		Smoothing:  0.2,
	}
}

// ColorSummary is one palette entry of a generation result.
type ColorSummary struct {
	Index      int     `json:"index"` // 1-based color number
	Hex        string  `json:"hex"`
	Percentage float64 `json:"percentage"`
}

// Result is the outcome of one generation run. Template is nil when
// tracing failed; the raster-level fields are still populated so the
// caller can inspect the palette and retry with different parameters.
type Result struct {
	Width        int                `json:"width"`
	Height       int                `json:"height"`
	ColorCount   int                `json:"colorCount"`
	Colors       []ColorSummary     `json:"colors"`
	RegionCount  int                `json:"regionCount"`
	PreviewImage string             `json:"previewImage,omitempty"`
	Template     *template.Template `json:"template,omitempty"`
	TraceFailed  bool               `json:"traceFailed,omitempty"`
}

// LoadImage reads an image from disk. Supports PNG, JPEG, and WEBP.
func LoadImage(path string) (image.Image, error) {
	return imaging.Load(path)
}

// SavePNG writes an image to disk as PNG.
func SavePNG(path string, img image.Image) error {
	return imaging.SavePNG(path, img)
}

// Generate runs the full pipeline: smoothing blur, color quantization,
// per-color contour tracing, label placement and template assembly.
//
// Quantization failure aborts generation. A tracing failure does not: the
// result is returned without a template, with TraceFailed set, matching
// the policy that vectorization problems are recoverable by retrying with
// different parameters.
func Generate(img image.Image, opts Options) (*Result, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrColorExtraction)
	}
	if opts.Smoothing < 0 || opts.Smoothing > 1 {
		return nil, fmt.Errorf("smoothing must be in [0, 1], got %g", opts.Smoothing)
	}
	if opts.Difficulty == "" {
		opts.Difficulty = template.Medium
	}
	colorCount := opts.Difficulty.ClampColors(opts.ColorCount)
	bounds := opts.Difficulty.Bounds()

	working := imaging.ToRGBA(imaging.Downsample(img, traceMaxDim))
	if r := int(opts.Smoothing*maxSmoothingRadius + 0.5); r > 0 {
		working = imaging.BoxBlur(working, r)
	}

	extraction, err := quantize.Extract(working, colorCount)
	if err != nil {
		return nil, err
	}
	palette := extraction.Palette()

	res := &Result{
		Width:      working.Bounds().Dx(),
		Height:     working.Bounds().Dy(),
		ColorCount: len(palette),
	}
	for i, c := range extraction.Colors {
		res.Colors = append(res.Colors, ColorSummary{
			Index:      i + 1,
			Hex:        c.Hex,
			Percentage: c.Percentage,
		})
	}

	preview := quantizedPreview(working, palette)

	traced, err := trace.ConvertToSVG(working, palette, trace.Options{
		TurdSize:     bounds.TurdSize,
		OptTolerance: 0.2,
	})
	if err != nil {
		if !errors.Is(err, trace.ErrTrace) {
			return nil, err
		}
		// Recover: the raster result is still useful without vectors.
		log.Printf("paintbn: tracing failed, returning raster-only result: %v", err)
		if dataURL, perr := imaging.PNGDataURL(preview); perr == nil {
			res.PreviewImage = dataURL
		}
		res.TraceFailed = true
		return res, nil
	}

	// Overlay the region numbers so admins can check label placement.
	render.NumberPreview(preview, &template.Data{ViewBox: traced.ViewBox, Regions: traced.Regions})
	if dataURL, perr := imaging.PNGDataURL(preview); perr == nil {
		res.PreviewImage = dataURL
	}

	tpl := &template.Template{
		ID:          uuid.NewString(),
		Title:       opts.Title,
		Difficulty:  opts.Difficulty,
		ColorCount:  len(palette),
		RegionCount: len(traced.Regions),
		Data: template.Data{
			ViewBox: traced.ViewBox,
			Regions: traced.Regions,
		},
	}
	for i, c := range palette {
		tpl.ColorPalette = append(tpl.ColorPalette, template.PaletteColor{
			Number: i + 1,
			Hex:    c.Hex(),
		})
	}
	tpl.RecountTotals()
	tpl.EstimatedTime = estimateMinutes(len(traced.Regions))
	if err := tpl.Validate(); err != nil {
		return nil, fmt.Errorf("generated template failed validation: %w", err)
	}

	res.RegionCount = len(traced.Regions)
	res.Template = tpl
	return res, nil
}

// quantizedPreview renders the working image with every pixel snapped to
// its nearest palette color.
func quantizedPreview(img *image.RGBA, palette []colorx.RGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := colorx.FromStdColor(img.At(x, y))
			if i := colorx.NearestIndex(c, palette); i >= 0 {
				out.SetRGBA(x, y, palette[i].ToStdColor())
			}
		}
	}
	return out
}

// estimateMinutes guesses a completion time from the region count,
// at roughly twenty seconds per region.
func estimateMinutes(regions int) int {
	m := regions / 3
	if m < 1 {
		m = 1
	}
	return m
}
