package quantize

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

// stripes builds an image of vertical color bands.
func stripes(w, h int, colors ...color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	band := w / len(colors)
	for x := 0; x < w; x++ {
		ci := x / band
		if ci >= len(colors) {
			ci = len(colors) - 1
		}
		for y := 0; y < h; y++ {
			img.SetRGBA(x, y, colors[ci])
		}
	}
	return img
}

func TestExtractColorCountBound(t *testing.T) {
	img := stripes(120, 40,
		color.RGBA{255, 0, 0, 255},
		color.RGBA{0, 255, 0, 255},
		color.RGBA{0, 0, 255, 255},
		color.RGBA{255, 255, 0, 255},
	)
	for _, n := range []int{1, 2, 3, 4, 8} {
		got, err := Extract(img, n)
		if err != nil {
			t.Fatalf("Extract(n=%d): %v", n, err)
		}
		if len(got.Colors) > n {
			t.Errorf("Extract(n=%d) returned %d colors", n, len(got.Colors))
		}
		if n <= 4 && len(got.Colors) != n {
			t.Errorf("Extract(n=%d) with 4 distinct colors returned %d", n, len(got.Colors))
		}
	}
}

func TestExtractNeverFabricatesColors(t *testing.T) {
	img := stripes(60, 20, color.RGBA{10, 20, 30, 255}, color.RGBA{200, 100, 50, 255})
	got, err := Extract(img, 10)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got.Colors) != 2 {
		t.Errorf("flat two-color image produced %d colors, want 2", len(got.Colors))
	}
}

func TestExtractPercentagesSumTo100(t *testing.T) {
	img := stripes(100, 50,
		color.RGBA{255, 0, 0, 255},
		color.RGBA{0, 255, 0, 255},
		color.RGBA{0, 0, 255, 255},
	)
	got, err := Extract(img, 3)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	var sum float64
	for _, c := range got.Colors {
		sum += c.Percentage
	}
	if math.Abs(sum-100) > 0.01 {
		t.Errorf("percentages sum to %v, want ~100", sum)
	}
}

func TestExtractSortedByFrequency(t *testing.T) {
	// 3/4 red, 1/4 blue.
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if x < 30 {
				img.SetRGBA(x, y, color.RGBA{255, 0, 0, 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{0, 0, 255, 255})
			}
		}
	}
	got, err := Extract(img, 2)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got.Colors) != 2 {
		t.Fatalf("got %d colors, want 2", len(got.Colors))
	}
	if got.Colors[0].Count < got.Colors[1].Count {
		t.Errorf("colors not sorted by descending count: %d < %d", got.Colors[0].Count, got.Colors[1].Count)
	}
	if got.DominantColor != got.Colors[0] {
		t.Errorf("dominant color %v != first color %v", got.DominantColor, got.Colors[0])
	}
	if got.Colors[0].R != 255 {
		t.Errorf("dominant color should be red, got %s", got.Colors[0].Hex)
	}
}

func TestExtractFullCountOnClusteredColors(t *testing.T) {
	// Two tight clusters of shades (near-black, near-white) invite the
	// iteration to merge or starve centroids. With 8 distinct input colors
	// a request for 6 must still yield exactly 6.
	img := stripes(160, 40,
		color.RGBA{0, 0, 0, 255},
		color.RGBA{8, 8, 8, 255},
		color.RGBA{16, 16, 16, 255},
		color.RGBA{24, 24, 24, 255},
		color.RGBA{230, 230, 230, 255},
		color.RGBA{238, 238, 238, 255},
		color.RGBA{246, 246, 246, 255},
		color.RGBA{255, 255, 255, 255},
	)
	got, err := Extract(img, 6)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got.Colors) != 6 {
		t.Errorf("got %d colors, want 6", len(got.Colors))
	}
	for _, c := range got.Colors {
		if c.Count == 0 {
			t.Errorf("color %s carries a zero count", c.Hex)
		}
	}
}

func TestExtractFullCountOnSkewedFrequencies(t *testing.T) {
	// One dominant color plus several single-column accents: rare colors
	// must not be absorbed below the requested palette size.
	img := image.NewRGBA(image.Rect(0, 0, 120, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 120; x++ {
			img.SetRGBA(x, y, color.RGBA{240, 240, 240, 255})
		}
	}
	accents := []color.RGBA{
		{255, 0, 0, 255},
		{0, 255, 0, 255},
		{0, 0, 255, 255},
		{255, 0, 255, 255},
		{0, 128, 128, 255},
		{128, 64, 0, 255},
		{64, 0, 128, 255},
	}
	for i, c := range accents {
		for y := 0; y < 40; y++ {
			img.SetRGBA(i*3, y, c)
		}
	}
	got, err := Extract(img, 6)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got.Colors) != 6 {
		t.Errorf("got %d colors, want 6 with 8 distinct input colors", len(got.Colors))
	}
}

func TestExtractDegenerateInput(t *testing.T) {
	if _, err := Extract(image.NewRGBA(image.Rect(0, 0, 0, 0)), 5); !errors.Is(err, ErrColorExtraction) {
		t.Errorf("empty image error = %v, want ErrColorExtraction", err)
	}
	// Fully transparent image has no opaque pixels.
	if _, err := Extract(image.NewRGBA(image.Rect(0, 0, 10, 10)), 5); !errors.Is(err, ErrColorExtraction) {
		t.Errorf("transparent image error = %v, want ErrColorExtraction", err)
	}
	if _, err := Extract(nil, 5); !errors.Is(err, ErrColorExtraction) {
		t.Errorf("nil image error = %v, want ErrColorExtraction", err)
	}
}

func TestExtractDeterministic(t *testing.T) {
	img := stripes(90, 30,
		color.RGBA{200, 30, 30, 255},
		color.RGBA{30, 200, 30, 255},
		color.RGBA{30, 30, 200, 255},
	)
	a, err := Extract(img, 2)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	b, err := Extract(img, 2)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(a.Colors) != len(b.Colors) {
		t.Fatalf("runs disagree: %d vs %d colors", len(a.Colors), len(b.Colors))
	}
	for i := range a.Colors {
		if a.Colors[i] != b.Colors[i] {
			t.Errorf("color %d differs between runs: %v vs %v", i, a.Colors[i], b.Colors[i])
		}
	}
}
