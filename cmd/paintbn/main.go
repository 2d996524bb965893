package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/paintbn/paintbn"
	"github.com/paintbn/paintbn/internal/cli"
	"github.com/paintbn/paintbn/internal/server"
	"github.com/paintbn/paintbn/internal/store"
	"github.com/paintbn/paintbn/internal/template"
)

func main() {
	cfg, err := cli.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch cfg.Mode {
	case cli.ModeGenerate:
		err = runGenerate(cfg)
	case cli.ModeServe:
		err = runServe(cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runGenerate(cfg cli.Config) error {
	difficulty, err := template.ParseDifficulty(cfg.Difficulty)
	if err != nil {
		return err
	}

	fmt.Printf("Loading image: %s\n", cfg.InPath)
	img, err := paintbn.LoadImage(cfg.InPath)
	if err != nil {
		return err
	}
	fmt.Printf("Image loaded: %dx%d\n", img.Bounds().Dx(), img.Bounds().Dy())

	fmt.Printf("Generating (difficulty=%s, colors=%d)...\n", difficulty, cfg.ColorCount)
	result, err := paintbn.Generate(img, paintbn.Options{
		ColorCount: cfg.ColorCount,
		Difficulty: difficulty,
		Smoothing:  cfg.Smoothing,
		Title:      cfg.Title,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Palette: %d colors\n", result.ColorCount)

	if result.Template == nil {
		return fmt.Errorf("tracing failed; retry with different parameters")
	}
	fmt.Printf("Regions: %d\n", result.RegionCount)

	data, err := json.MarshalIndent(result.Template, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding template: %w", err)
	}
	if err := os.WriteFile(cfg.OutPath, data, 0o644); err != nil {
		return fmt.Errorf("writing template: %w", err)
	}
	fmt.Printf("Template saved: %s\n", cfg.OutPath)

	if cfg.PreviewPath != "" && result.PreviewImage != "" {
		if err := writeDataURL(cfg.PreviewPath, result.PreviewImage); err != nil {
			return err
		}
		fmt.Printf("Preview saved: %s\n", cfg.PreviewPath)
	}

	fmt.Println("Done!")
	return nil
}

func runServe(cfg cli.Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	kv, err := store.Open(filepath.Join(cfg.DataDir, "paintbn.db"))
	if err != nil {
		return err
	}
	defer kv.Close()

	blobs := store.NewBlobStore(filepath.Join(cfg.DataDir, "blobs"), "/blobs")
	srv := server.New(kv, blobs)

	fmt.Printf("Listening on %s\n", cfg.Addr)
	return http.ListenAndServe(cfg.Addr, srv.Router())
}

func writeDataURL(path, dataURL string) error {
	_, b64, ok := strings.Cut(dataURL, ",")
	if !ok {
		return fmt.Errorf("malformed data URL")
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return fmt.Errorf("decoding preview: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
