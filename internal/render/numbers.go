// Package render draws region numbers onto generated preview images so an
// admin can eyeball label placement before publishing a template.
package render

import (
	"image"
	"image/color"

	"github.com/paintbn/paintbn/internal/template"
)

// NumberPreview overlays every region's color number at its label anchor.
// The image is expected to share the template's viewBox coordinate space
// (generation traces at the preview's resolution, so scale is 1:1). Label
// color flips between black and white depending on the pixel under the
// anchor so numbers stay legible on dark regions.
func NumberPreview(img *image.RGBA, data *template.Data) {
	for _, r := range data.Regions {
		x := int(r.LabelX - data.ViewBox.MinX)
		y := int(r.LabelY - data.ViewBox.MinY)
		size := r.FontSize
		if size <= 0 {
			size = 10
		}
		drawNumber(img, r.ColorNumber, x, y, labelColor(img, x, y), size)
	}
}

// numberExtent returns the pixel width and height of a rendered number with
// the given digit count. Digit cells keep the 5x7 glyph aspect at the
// requested height, separated by one glyph-column of space.
func numberExtent(digits, size int) (w, h int) {
	if digits == 0 {
		return 0, 0
	}
	h = size
	if h < glyphHeight {
		h = glyphHeight
	}
	cell := h * glyphWidth / glyphHeight
	gap := h / glyphHeight
	return digits*cell + (digits-1)*gap, h
}

// drawNumber rasterizes the decimal digits of n centered on (cx, cy) at the
// given pixel height. The blit walks destination pixels inside the label
// box clipped to the image and samples the glyph grid per pixel, so the
// whole label font-size range renders without an integer scale step.
func drawNumber(img *image.RGBA, n, cx, cy int, col color.Color, size int) {
	if n < 0 {
		n = -n
	}
	digits := digitsOf(n)
	w, h := numberExtent(len(digits), size)
	cell := h * glyphWidth / glyphHeight
	gap := h / glyphHeight

	x0 := cx - w/2
	y0 := cy - h/2
	box := image.Rect(x0, y0, x0+w, y0+h).Intersect(img.Bounds())
	for py := box.Min.Y; py < box.Max.Y; py++ {
		row := (py - y0) * glyphHeight / h
		for px := box.Min.X; px < box.Max.X; px++ {
			dx := px - x0
			i := dx / (cell + gap)
			off := dx - i*(cell+gap)
			if off >= cell {
				// Between digit cells.
				continue
			}
			bit := off * glyphWidth / cell
			g := digitGlyphs[digits[i]]
			if g[row]&(1<<uint(glyphWidth-1-bit)) != 0 {
				img.Set(px, py, col)
			}
		}
	}
}

// digitsOf splits a non-negative number into decimal digits, most
// significant first.
func digitsOf(n int) []int {
	if n == 0 {
		return []int{0}
	}
	var out []int
	for n > 0 {
		out = append(out, n%10)
		n /= 10
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func labelColor(img *image.RGBA, x, y int) color.Color {
	b := img.Bounds()
	if x < 0 || x >= b.Dx() || y < 0 || y >= b.Dy() {
		return color.Black
	}
	c := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
	// Rec. 601 luma; flip to white on dark backgrounds.
	if 0.299*float64(c.R)+0.587*float64(c.G)+0.114*float64(c.B) < 128 {
		return color.White
	}
	return color.Black
}
