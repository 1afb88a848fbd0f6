package render

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/clone"
	"github.com/rm-hull/compat-blur/internal/blur"
)

// NativeStrategy stands in for a platform blur effect that handles any radius
// in one call. It is only selected when the host reports the capability.
type NativeStrategy struct {
	enabled bool
}

// NewNativeStrategy returns a native strategy; enabled is the result of the
// host's capability query.
func NewNativeStrategy(enabled bool) *NativeStrategy {
	return &NativeStrategy{enabled: enabled}
}

func (n *NativeStrategy) Name() string {
	return "native"
}

func (n *NativeStrategy) Available() bool {
	return n.enabled
}

// Blur applies a single unbounded-radius Gaussian. With EdgeTransparent the
// canvas is padded exactly like the multi-pass engine so both strategies
// return images of the same size.
func (n *NativeStrategy) Blur(img image.Image, req blur.Request) (*image.RGBA, error) {
	if !n.enabled {
		return nil, fmt.Errorf("native blur: %w", blur.ErrPrimitiveUnavailable)
	}

	src := clone.AsRGBA(img)
	if req.Edge == blur.EdgeTransparent {
		src = blur.Pad(src, blur.Padding(req.Radius))
	}
	if req.Radius <= 0 {
		return src, nil
	}
	return blur.Convolve(src, blur.GaussianKernel(req.Radius)), nil
}
