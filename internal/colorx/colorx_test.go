package colorx

import (
	"image/color"
	"testing"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    RGBA
		wantErr bool
	}{
		{"#000", RGBA{0, 0, 0, 255}, false},
		{"#fff", RGBA{255, 255, 255, 255}, false},
		{"#FF00FF", RGBA{255, 0, 255, 255}, false},
		{"1e90ff", RGBA{30, 144, 255, 255}, false},
		{"#12345", RGBA{}, true},
		{"", RGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHex(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHexRoundTrip(t *testing.T) {
	c := RGBA{R: 30, G: 144, B: 255, A: 255}
	parsed, err := ParseHex(c.Hex())
	if err != nil {
		t.Fatalf("ParseHex(%q): %v", c.Hex(), err)
	}
	if parsed != c {
		t.Errorf("round trip %v -> %q -> %v", c, c.Hex(), parsed)
	}
}

func TestFromStdColor(t *testing.T) {
	c := FromStdColor(color.RGBA{R: 10, G: 20, B: 30, A: 255})
	want := RGBA{10, 20, 30, 255}
	if c != want {
		t.Errorf("FromStdColor = %v, want %v", c, want)
	}
}

func TestNearestIndex(t *testing.T) {
	palette := []RGBA{
		{255, 0, 0, 255},
		{0, 255, 0, 255},
		{0, 0, 255, 255},
	}
	tests := []struct {
		c    RGBA
		want int
	}{
		{RGBA{250, 10, 10, 255}, 0},
		{RGBA{10, 240, 10, 255}, 1},
		{RGBA{0, 0, 200, 255}, 2},
	}
	for _, tt := range tests {
		if got := NearestIndex(tt.c, palette); got != tt.want {
			t.Errorf("NearestIndex(%v) = %d, want %d", tt.c, got, tt.want)
		}
	}
	if got := NearestIndex(RGBA{}, nil); got != -1 {
		t.Errorf("NearestIndex with empty palette = %d, want -1", got)
	}
}

func TestLuma(t *testing.T) {
	if got := (RGBA{0, 0, 0, 255}).Luma(); got != 0 {
		t.Errorf("black luma = %v, want 0", got)
	}
	if got := (RGBA{255, 255, 255, 255}).Luma(); got < 254.9 || got > 255.1 {
		t.Errorf("white luma = %v, want ~255", got)
	}
	// Green contributes the most to perceived brightness.
	g := (RGBA{0, 255, 0, 255}).Luma()
	b := (RGBA{0, 0, 255, 255}).Luma()
	if g <= b {
		t.Errorf("green luma %v should exceed blue luma %v", g, b)
	}
}
