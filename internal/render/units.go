package render

import (
	"fmt"
	"strings"
)

// DpToPx converts a radius in density-independent pixels to device pixels.
// A non-positive density is treated as 1.
func DpToPx(dp, density float64) float64 {
	if density <= 0 {
		density = 1
	}
	return dp * density
}

// RadiusInPixels interprets value according to unit ("px" or "dp").
func RadiusInPixels(value float64, unit string, density float64) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", "px":
		return value, nil
	case "dp":
		return DpToPx(value, density), nil
	default:
		return 0, fmt.Errorf("unknown radius unit %q", unit)
	}
}
