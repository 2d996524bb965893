package template

import (
	"encoding/json"
	"testing"
)

// appleSimple builds a small valid template: 6 regions over 4 colors.
func appleSimple() *Template {
	return &Template{
		ID:          "apple-simple",
		Title:       "Apple",
		Difficulty:  Easy,
		ColorCount:  4,
		RegionCount: 6,
		ColorPalette: []PaletteColor{
			{Number: 1, Hex: "#e74c3c", Name: "red", TotalRegions: 1},
			{Number: 2, Hex: "#27ae60", Name: "green", TotalRegions: 2},
			{Number: 3, Hex: "#8e5a2b", Name: "brown", TotalRegions: 2},
			{Number: 4, Hex: "#f1c40f", Name: "yellow", TotalRegions: 1},
		},
		Data: Data{
			ViewBox: ViewBox{Width: 300, Height: 300},
			Regions: []Region{
				{ID: "region-1-0", ColorNumber: 1, Path: "M10,10 L50,10 L50,50 Z", LabelX: 30, LabelY: 25},
				{ID: "region-2-0", ColorNumber: 2, Path: "M60,10 L90,10 L90,50 Z", LabelX: 75, LabelY: 25},
				{ID: "region-2-1", ColorNumber: 2, Path: "M100,10 L130,10 L130,50 Z", LabelX: 115, LabelY: 25},
				{ID: "region-3-0", ColorNumber: 3, Path: "M10,60 L50,60 L50,100 Z", LabelX: 30, LabelY: 75},
				{ID: "region-3-1", ColorNumber: 3, Path: "M60,60 L90,60 L90,100 Z", LabelX: 75, LabelY: 75},
				{ID: "region-4-0", ColorNumber: 4, Path: "M100,60 L130,60 L130,100 Z", LabelX: 115, LabelY: 75},
			},
		},
	}
}

func TestValidateOK(t *testing.T) {
	if err := appleSimple().Validate(); err != nil {
		t.Errorf("valid template rejected: %v", err)
	}
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Template)
	}{
		{"regionCount mismatch", func(tpl *Template) { tpl.RegionCount = 5 }},
		{"colorCount mismatch", func(tpl *Template) { tpl.ColorCount = 3 }},
		{"duplicate palette number", func(tpl *Template) { tpl.ColorPalette[1].Number = 1 }},
		{"nonpositive palette number", func(tpl *Template) { tpl.ColorPalette[0].Number = 0 }},
		{"unknown region color", func(tpl *Template) { tpl.Data.Regions[0].ColorNumber = 9 }},
		{"duplicate region id", func(tpl *Template) { tpl.Data.Regions[1].ID = "region-1-0" }},
		{"totals mismatch", func(tpl *Template) { tpl.ColorPalette[0].TotalRegions = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := appleSimple()
			tt.mutate(tpl)
			if err := tpl.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestRecountTotals(t *testing.T) {
	tpl := appleSimple()
	tpl.ColorPalette[0].TotalRegions = 99
	tpl.RecountTotals()
	if err := tpl.Validate(); err != nil {
		t.Errorf("template invalid after recount: %v", err)
	}
}

func TestCorrectColor(t *testing.T) {
	tpl := appleSimple()
	if n, ok := tpl.CorrectColor("region-3-1"); !ok || n != 3 {
		t.Errorf("CorrectColor(region-3-1) = %d, %v; want 3, true", n, ok)
	}
	if _, ok := tpl.CorrectColor("nope"); ok {
		t.Error("CorrectColor on unknown region returned ok")
	}
}

func TestParseDifficulty(t *testing.T) {
	for in, want := range map[string]Difficulty{
		"easy": Easy, "MEDIUM": Medium, " hard ": Hard,
	} {
		got, err := ParseDifficulty(in)
		if err != nil || got != want {
			t.Errorf("ParseDifficulty(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseDifficulty("extreme"); err == nil {
		t.Error("ParseDifficulty accepted an invalid value")
	}
}

func TestDifficultyBounds(t *testing.T) {
	tests := []struct {
		d        Difficulty
		min, max int
		turd     int
	}{
		{Easy, 5, 10, 200},
		{Medium, 10, 20, 100},
		{Hard, 20, 30, 50},
	}
	for _, tt := range tests {
		b := tt.d.Bounds()
		if b.MinColors != tt.min || b.MaxColors != tt.max || b.TurdSize != tt.turd {
			t.Errorf("%s bounds = %+v, want [%d,%d]/%d", tt.d, b, tt.min, tt.max, tt.turd)
		}
	}
	if got := Easy.ClampColors(30); got != 10 {
		t.Errorf("Easy.ClampColors(30) = %d, want 10", got)
	}
	if got := Hard.ClampColors(3); got != 20 {
		t.Errorf("Hard.ClampColors(3) = %d, want 20", got)
	}
	if got := Medium.ClampColors(15); got != 15 {
		t.Errorf("Medium.ClampColors(15) = %d, want 15", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	tpl := appleSimple()
	data, err := json.Marshal(tpl)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Template
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := back.Validate(); err != nil {
		t.Errorf("round-tripped template invalid: %v", err)
	}
	if back.Data.Regions[2].ID != "region-2-1" {
		t.Errorf("region order lost in round trip")
	}
}
