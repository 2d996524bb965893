// Package floodfill implements the scanline raster fill used by the
// freehand coloring canvas: 4-connected, tolerance-matched, and careful to
// leave dark outline pixels untouched so hand-drawn borders stay crisp
// after many fills.
package floodfill

import (
	"image"

	"github.com/paintbn/paintbn/internal/colorx"
)

// Options control matching and outline preservation.
type Options struct {
	// Tolerance is the maximum per-channel difference (R, G, B and A
	// independently) from the seed color for a pixel to be filled.
	// Per-channel rather than Euclidean: cheaper and more predictable.
	Tolerance uint8

	// PreserveOutline prevents dark, opaque pixels from being filled or
	// acting as seeds.
	PreserveOutline bool

	// OutlineThreshold is the luminance below which a sufficiently
	// opaque pixel counts as outline.
	OutlineThreshold float64
}

// DefaultOptions match the interactive canvas defaults.
func DefaultOptions() Options {
	return Options{Tolerance: 32, PreserveOutline: true, OutlineThreshold: 80}
}

// outlineAlphaMin is the opacity above which a dark pixel is treated as
// outline rather than a translucent shadow.
const outlineAlphaMin = 200

type span struct {
	x0, x1, y int
}

// Fill flood-fills the image in place starting from (startX, startY).
// Uses an explicit worklist of scanline spans, never recursion, so memory
// stays bounded on large contiguous areas. Calling Fill again at the same
// point with the same color is a no-op.
func Fill(img *image.RGBA, startX, startY int, fill colorx.RGBA, opts Options) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if startX < b.Min.X || startX >= b.Max.X || startY < b.Min.Y || startY >= b.Max.Y {
		return
	}

	seed := pixelAt(img, startX, startY)
	if opts.PreserveOutline && isOutline(seed, opts.OutlineThreshold) {
		return
	}
	if seed == fill {
		return
	}

	visited := make([]bool, w*h)
	idx := func(x, y int) int { return (y-b.Min.Y)*w + (x - b.Min.X) }

	matches := func(x, y int) bool {
		if visited[idx(x, y)] {
			return false
		}
		c := pixelAt(img, x, y)
		if opts.PreserveOutline && isOutline(c, opts.OutlineThreshold) {
			return false
		}
		return withinTolerance(c, seed, opts.Tolerance)
	}

	stack := []span{{x0: startX, x1: startX, y: startY}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for x := s.x0; x <= s.x1; x++ {
			if !matches(x, s.y) {
				continue
			}
			// Extend the run left and right along the scanline.
			left := x
			for left > b.Min.X && matches(left-1, s.y) {
				left--
			}
			right := x
			for right < b.Max.X-1 && matches(right+1, s.y) {
				right++
			}
			for fx := left; fx <= right; fx++ {
				visited[idx(fx, s.y)] = true
				setPixel(img, fx, s.y, fill)
			}
			if s.y > b.Min.Y {
				stack = append(stack, span{x0: left, x1: right, y: s.y - 1})
			}
			if s.y < b.Max.Y-1 {
				stack = append(stack, span{x0: left, x1: right, y: s.y + 1})
			}
			x = right
		}
	}
}

// isOutline reports whether a pixel belongs to a drawn border: dark in
// perceptual luminance and sufficiently opaque.
func isOutline(c colorx.RGBA, threshold float64) bool {
	return c.Luma() < threshold && c.A > outlineAlphaMin
}

func withinTolerance(c, seed colorx.RGBA, tol uint8) bool {
	return absDiff(c.R, seed.R) <= tol &&
		absDiff(c.G, seed.G) <= tol &&
		absDiff(c.B, seed.B) <= tol &&
		absDiff(c.A, seed.A) <= tol
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

func pixelAt(img *image.RGBA, x, y int) colorx.RGBA {
	i := img.PixOffset(x, y)
	return colorx.RGBA{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2], A: img.Pix[i+3]}
}

func setPixel(img *image.RGBA, x, y int, c colorx.RGBA) {
	i := img.PixOffset(x, y)
	img.Pix[i] = c.R
	img.Pix[i+1] = c.G
	img.Pix[i+2] = c.B
	img.Pix[i+3] = c.A
}
