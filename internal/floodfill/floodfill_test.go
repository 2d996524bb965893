package floodfill

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/paintbn/paintbn/internal/colorx"
)

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
	red   = colorx.RGBA{R: 255, G: 0, B: 0, A: 255}
)

// canvas builds a w x h image filled with bg.
func canvas(w, h int, bg color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, bg)
		}
	}
	return img
}

// borderedCanvas draws a black rectangle outline from (x0,y0) to (x1,y1).
func borderedCanvas(w, h, x0, y0, x1, y1 int) *image.RGBA {
	img := canvas(w, h, white)
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, black)
		img.SetRGBA(x, y1, black)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, black)
		img.SetRGBA(x1, y, black)
	}
	return img
}

func TestFillBasic(t *testing.T) {
	img := canvas(10, 10, white)
	Fill(img, 5, 5, red, DefaultOptions())
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if got := img.RGBAAt(x, y); got != red.ToStdColor() {
				t.Fatalf("pixel (%d,%d) = %v, want red", x, y, got)
			}
		}
	}
}

func TestFillIdempotent(t *testing.T) {
	img := borderedCanvas(20, 20, 2, 2, 17, 17)
	opts := DefaultOptions()
	Fill(img, 10, 10, red, opts)
	snapshot := append([]uint8(nil), img.Pix...)
	Fill(img, 10, 10, red, opts)
	if !bytes.Equal(snapshot, img.Pix) {
		t.Error("second fill at the same point changed the buffer")
	}
}

func TestFillRespectsOutline(t *testing.T) {
	// Full tolerance must still not cross a dark border.
	img := borderedCanvas(20, 20, 5, 5, 14, 14)
	opts := Options{Tolerance: 255, PreserveOutline: true, OutlineThreshold: 80}
	Fill(img, 10, 10, red, opts)

	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			got := img.RGBAAt(x, y)
			inside := x > 5 && x < 14 && y > 5 && y < 14
			onBorder := (x == 5 || x == 14) && y >= 5 && y <= 14 ||
				(y == 5 || y == 14) && x >= 5 && x <= 14
			switch {
			case onBorder:
				if got != black {
					t.Fatalf("border pixel (%d,%d) overwritten: %v", x, y, got)
				}
			case inside:
				if got != red.ToStdColor() {
					t.Fatalf("interior pixel (%d,%d) = %v, want red", x, y, got)
				}
			default:
				if got != white {
					t.Fatalf("exterior pixel (%d,%d) = %v, want white", x, y, got)
				}
			}
		}
	}
}

func TestFillNoOps(t *testing.T) {
	opts := DefaultOptions()

	// Seed out of bounds.
	img := canvas(10, 10, white)
	before := append([]uint8(nil), img.Pix...)
	Fill(img, -1, 5, red, opts)
	Fill(img, 5, 10, red, opts)
	if !bytes.Equal(before, img.Pix) {
		t.Error("out-of-bounds seed mutated the buffer")
	}

	// Seed on an outline pixel.
	img = borderedCanvas(10, 10, 2, 2, 7, 7)
	before = append([]uint8(nil), img.Pix...)
	Fill(img, 2, 2, red, opts)
	if !bytes.Equal(before, img.Pix) {
		t.Error("outline seed mutated the buffer")
	}

	// Seed color already equals fill color.
	img = canvas(10, 10, red.ToStdColor())
	before = append([]uint8(nil), img.Pix...)
	Fill(img, 5, 5, red, opts)
	if !bytes.Equal(before, img.Pix) {
		t.Error("fill with identical color mutated the buffer")
	}
}

func TestFillTolerancePerChannel(t *testing.T) {
	// Left half light gray, right half a gray 40 levels darker: a
	// tolerance of 10 must not cross the boundary, 60 must.
	build := func() *image.RGBA {
		img := canvas(10, 10, color.RGBA{200, 200, 200, 255})
		for y := 0; y < 10; y++ {
			for x := 5; x < 10; x++ {
				img.SetRGBA(x, y, color.RGBA{160, 160, 160, 255})
			}
		}
		return img
	}

	img := build()
	Fill(img, 2, 5, red, Options{Tolerance: 10, PreserveOutline: false})
	if got := img.RGBAAt(7, 5); got != (color.RGBA{160, 160, 160, 255}) {
		t.Errorf("tolerance 10 crossed the boundary: right half = %v", got)
	}
	if got := img.RGBAAt(2, 5); got != red.ToStdColor() {
		t.Errorf("tolerance 10 failed to fill the seed half: %v", got)
	}

	img = build()
	Fill(img, 2, 5, red, Options{Tolerance: 60, PreserveOutline: false})
	if got := img.RGBAAt(7, 5); got != red.ToStdColor() {
		t.Errorf("tolerance 60 did not cross the boundary: right half = %v", got)
	}
}
