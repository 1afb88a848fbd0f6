package png

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/clone"
	"github.com/kettek/apng"
	"github.com/rm-hull/compat-blur/internal/blur"
)

// Animate encodes frames as a looping APNG, showing each frame for
// frameDelay seconds. All frames must share the same bounds.
func Animate(frames []image.Image, frameDelay float64) ([]byte, error) {
	if len(frames) == 0 {
		return nil, errors.New("no frames to animate")
	}

	a := apng.APNG{
		Frames:    make([]apng.Frame, len(frames)),
		LoopCount: 0,
	}

	bounds := frames[0].Bounds()
	for i, img := range frames {
		if img.Bounds() != bounds {
			return nil, fmt.Errorf("frame %d has bounds %v, expected %v", i, img.Bounds(), bounds)
		}
		a.Frames[i] = apng.Frame{
			Image:            img,
			DelayNumerator:   uint16(frameDelay * 1000),
			DelayDenominator: 1000,
		}
	}

	var buf bytes.Buffer
	if err := apng.Encode(&buf, a); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// BlurRamp renders steps+1 frames blurring img from radius 0 up to
// maxRadius. The source is padded once for maxRadius and every frame is
// blurred with edge clamping on that canvas, so all frames share the
// dimensions of a single unbounded blur at maxRadius.
func BlurRamp(engine *blur.Engine, img image.Image, maxRadius float64, steps int) ([]image.Image, error) {
	if steps < 1 {
		return nil, errors.New("steps must be at least 1")
	}

	padded := blur.Pad(clone.AsRGBA(img), blur.Padding(maxRadius))

	frames := make([]image.Image, 0, steps+1)
	for i := 0; i <= steps; i++ {
		radius := maxRadius * float64(i) / float64(steps)
		frame, err := engine.BlurMultiPass(padded, radius)
		if err != nil {
			return nil, fmt.Errorf("frame %d (radius %.2f): %w", i, radius, err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}
