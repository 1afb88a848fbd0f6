package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/rm-hull/compat-blur/internal/png"
)

const maxAnimationSteps = 60

// AnimateOptions controls the blur ramp rendered by Animate.
type AnimateOptions struct {
	MaxRadius  float64
	Steps      int
	FrameDelay float64
}

func (o AnimateOptions) validate() error {
	if o.Steps < 1 || o.Steps > maxAnimationSteps {
		return fmt.Errorf("steps must be between 1 and %d, got %d", maxAnimationSteps, o.Steps)
	}
	if o.FrameDelay <= 0 || o.FrameDelay > 60 {
		return fmt.Errorf("frame delay must be between 0 and 60 seconds, got %g", o.FrameDelay)
	}
	if o.MaxRadius < 0 {
		return fmt.Errorf("radius must not be negative, got %g", o.MaxRadius)
	}
	return nil
}

// Animate renders input blurring from sharp to MaxRadius as an APNG.
func Animate(input, output string, engineOpts EngineOptions, opts AnimateOptions) error {
	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", input, err)
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := animate(f, engineOpts, opts)
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	log.Printf("Wrote %d frames to %s", opts.Steps+1, output)
	return nil
}

func animate(r io.Reader, engineOpts EngineOptions, opts AnimateOptions) ([]byte, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	engine, _, err := engineOpts.Build(nil)
	if err != nil {
		return nil, err
	}

	img, err := png.NewImageFromReader(r)
	if err != nil {
		return nil, err
	}

	frames, err := png.BlurRamp(engine, img.Img, opts.MaxRadius, opts.Steps)
	if err != nil {
		return nil, err
	}

	return png.Animate(frames, opts.FrameDelay)
}
