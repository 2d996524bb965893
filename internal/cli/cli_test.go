package cli

import "testing"

func TestParseGenerate(t *testing.T) {
	cfg, err := Parse([]string{
		"generate",
		"--in=photo.jpg",
		"--out=template.json",
		"--preview=preview.png",
		"--colors=15",
		"--difficulty=hard",
		"--smoothing=0.5",
		"--title=Sunset",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Mode != ModeGenerate {
		t.Errorf("mode = %q", cfg.Mode)
	}
	if cfg.InPath != "photo.jpg" || cfg.OutPath != "template.json" || cfg.PreviewPath != "preview.png" {
		t.Errorf("paths = %q %q %q", cfg.InPath, cfg.OutPath, cfg.PreviewPath)
	}
	if cfg.ColorCount != 15 || cfg.Difficulty != "hard" || cfg.Smoothing != 0.5 || cfg.Title != "Sunset" {
		t.Errorf("options = %+v", cfg)
	}
}

func TestParseGenerateDefaults(t *testing.T) {
	cfg, err := Parse([]string{"generate", "--in=a.png", "--out=b.json"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.ColorCount != 12 || cfg.Difficulty != "medium" || cfg.Smoothing != 0.2 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestParseServe(t *testing.T) {
	cfg, err := Parse([]string{"serve", "--addr=:9000", "--data=/tmp/paintbn"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Mode != ModeServe || cfg.Addr != ":9000" || cfg.DataDir != "/tmp/paintbn" {
		t.Errorf("serve config = %+v", cfg)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"unknown command", []string{"paint"}},
		{"missing in", []string{"generate", "--out=b.json"}},
		{"missing out", []string{"generate", "--in=a.png"}},
		{"non-json out", []string{"generate", "--in=a.png", "--out=b.txt"}},
		{"smoothing out of range", []string{"generate", "--in=a.png", "--out=b.json", "--smoothing=3"}},
		{"colors below one", []string{"generate", "--in=a.png", "--out=b.json", "--colors=0"}},
		{"empty data dir", []string{"serve", "--data="}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.args); err == nil {
				t.Errorf("Parse(%v) succeeded, want error", tt.args)
			}
		})
	}
}
