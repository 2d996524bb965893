// Package colorx provides the small color toolkit shared by the quantizer,
// the tracer and the flood-fill engine: 8-bit RGBA values, hex parsing and
// formatting, channel distances and perceptual luminance.
package colorx

import (
	"fmt"
	"image/color"
	"math"
	"strings"
)

// RGBA represents a color with 8-bit RGBA components.
type RGBA struct {
	R, G, B, A uint8
}

// FromStdColor converts a standard library color to RGBA.
func FromStdColor(c color.Color) RGBA {
	r, g, b, a := c.RGBA()
	return RGBA{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
		A: uint8(a >> 8),
	}
}

// ToStdColor converts RGBA to a standard library color.
func (c RGBA) ToStdColor() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Hex formats the color as "#rrggbb". The alpha channel is ignored.
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses a hex color string like "#000", "#000000", "#FF00FF".
func ParseHex(s string) (RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	var r, g, b uint8
	switch len(s) {
	case 3:
		_, err := fmt.Sscanf(s, "%1x%1x%1x", &r, &g, &b)
		if err != nil {
			return RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		r = r*16 + r
		g = g*16 + g
		b = b*16 + b
	case 6:
		_, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b)
		if err != nil {
			return RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
	default:
		return RGBA{}, fmt.Errorf("invalid hex color %q: must be 3 or 6 hex digits", s)
	}
	return RGBA{R: r, G: g, B: b, A: 255}, nil
}

// DistanceSq computes the squared Euclidean distance in RGB space.
// Cheaper than Distance when only comparisons are needed.
func DistanceSq(a, b RGBA) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// Distance computes the Euclidean distance in RGB space between two colors.
func Distance(a, b RGBA) float64 {
	return math.Sqrt(float64(DistanceSq(a, b)))
}

// Luma returns the Rec. 601 perceptual luminance in [0, 255].
// This is the weighting used to recognise hand-drawn outline pixels.
func (c RGBA) Luma() float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// NearestIndex returns the index of the palette entry closest to c in RGB
// space. Returns -1 for an empty palette.
func NearestIndex(c RGBA, palette []RGBA) int {
	best := -1
	bestDist := math.MaxInt
	for i, p := range palette {
		if d := DistanceSq(c, p); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// MaxDistance is the maximum possible Euclidean distance in RGB space.
var MaxDistance = math.Sqrt(255 * 255 * 3)
