// Package cli parses the paintbn command line: a "generate" mode that
// converts one image into a template on disk, and a "serve" mode that runs
// the admin HTTP API.
package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Mode selects what the binary does.
type Mode string

const (
	ModeGenerate Mode = "generate"
	ModeServe    Mode = "serve"
)

// Config holds the parsed and validated CLI arguments.
type Config struct {
	Mode Mode

	// generate
	InPath      string
	OutPath     string // template JSON output
	PreviewPath string // optional preview PNG output
	ColorCount  int
	Difficulty  string
	Smoothing   float64
	Title       string

	// serve
	Addr    string
	DataDir string
}

// Parse parses os.Args style arguments (excluding the program name).
func Parse(args []string) (Config, error) {
	if len(args) == 0 {
		return Config{}, fmt.Errorf("usage: paintbn <generate|serve> [options]")
	}
	switch args[0] {
	case string(ModeGenerate):
		return parseGenerate(args[1:])
	case string(ModeServe):
		return parseServe(args[1:])
	default:
		return Config{}, fmt.Errorf("unknown command %q (want generate or serve)", args[0])
	}
}

func parseGenerate(args []string) (Config, error) {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	inPath := fs.String("in", "", "Path to input image (required, supports PNG, JPEG, WEBP)")
	outPath := fs.String("out", "", "Path to template JSON output (required)")
	preview := fs.String("preview", "", "Optional path for the quantized preview PNG")
	colors := fs.Int("colors", 12, "Requested palette size (clamped to the difficulty's range)")
	difficulty := fs.String("difficulty", "medium", "Difficulty: easy, medium or hard")
	smoothing := fs.Float64("smoothing", 0.2, "Pre-quantization blur strength (0-1)")
	title := fs.String("title", "", "Template title")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: paintbn generate [options]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n  paintbn generate --in=photo.jpg --out=template.json --colors=15 --difficulty=medium\n")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if *inPath == "" {
		return Config{}, fmt.Errorf("--in is required")
	}
	if *outPath == "" {
		return Config{}, fmt.Errorf("--out is required")
	}
	if ext := strings.ToLower(filepath.Ext(*outPath)); ext != ".json" {
		return Config{}, fmt.Errorf("--out must be a .json file, got %q", ext)
	}
	if *smoothing < 0 || *smoothing > 1 {
		return Config{}, fmt.Errorf("--smoothing must be between 0 and 1, got %g", *smoothing)
	}
	if *colors < 1 {
		return Config{}, fmt.Errorf("--colors must be >= 1, got %d", *colors)
	}

	return Config{
		Mode:        ModeGenerate,
		InPath:      *inPath,
		OutPath:     *outPath,
		PreviewPath: *preview,
		ColorCount:  *colors,
		Difficulty:  *difficulty,
		Smoothing:   *smoothing,
		Title:       *title,
	}, nil
}

func parseServe(args []string) (Config, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", ":8080", "HTTP listen address")
	dataDir := fs.String("data", "./data", "Directory for the store database and blobs")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: paintbn serve [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if *dataDir == "" {
		return Config{}, fmt.Errorf("--data is required")
	}
	return Config{Mode: ModeServe, Addr: *addr, DataDir: *dataDir}, nil
}
