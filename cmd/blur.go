package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/rm-hull/compat-blur/internal/png"
	"github.com/rm-hull/compat-blur/internal/render"
)

// Blur runs the pipeline over a single file and writes the result as PNG.
func Blur(input, output string, engineOpts EngineOptions, opts PipelineOptions) error {
	_, renderer, err := engineOpts.Build(nil)
	if err != nil {
		return err
	}

	stages, err := opts.Stages(renderer, false)
	if err != nil {
		return err
	}

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", input, err)
	}
	defer func() {
		_ = f.Close()
	}()

	img, err := png.NewImageFromReader(f)
	if err != nil {
		return err
	}

	if err := img.Pipeline(stages...); err != nil {
		return err
	}

	if err := writeFile(output, img.Write); err != nil {
		return err
	}

	log.Printf("Wrote %s (%s %dx%d -> %dx%d, via %s)", output,
		img.Format, img.Origin.Dx(), img.Origin.Dy(), img.Bounds.Dx(), img.Bounds.Dy(), strategyName(renderer, opts))
	return nil
}

// writeFile writes to a temporary file next to path and renames it into
// place, so readers never see a partial image.
func writeFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, "blur-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	cleanupTemp := true
	defer func() {
		_ = tmpFile.Close()
		if cleanupTemp {
			_ = os.Remove(tmpFile.Name())
		}
	}()

	if err := write(tmpFile); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file before rename: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	cleanupTemp = false
	return nil
}

func strategyName(renderer *render.Renderer, opts PipelineOptions) string {
	radius, err := opts.RadiusInPixels()
	if err != nil {
		return "unknown"
	}
	return renderer.Select(radius).Name()
}
