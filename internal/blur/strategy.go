package blur

import (
	"fmt"
	"image"
	"strings"
)

// EdgeTreatment controls what a blur samples beyond the image bounds.
type EdgeTreatment uint8

const (
	// EdgeClamp keeps the canvas size; the primitive repeats edge pixels.
	EdgeClamp EdgeTreatment = iota

	// EdgeTransparent grows the canvas with transparent padding so blur
	// energy spreading past the original bounds is not clipped.
	EdgeTransparent
)

func (e EdgeTreatment) String() string {
	switch e {
	case EdgeClamp:
		return "clamp"
	case EdgeTransparent:
		return "transparent"
	default:
		return fmt.Sprintf("EdgeTreatment(%d)", e)
	}
}

// ParseEdgeTreatment accepts "clamp", "transparent" or its alias "unbounded".
func ParseEdgeTreatment(s string) (EdgeTreatment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clamp", "bounded":
		return EdgeClamp, nil
	case "", "transparent", "unbounded":
		return EdgeTransparent, nil
	default:
		return 0, fmt.Errorf("unknown edge treatment %q", s)
	}
}

// Request is a single blur invocation. Radius is in pixels.
type Request struct {
	Radius float64
	Edge   EdgeTreatment
}

// Strategy produces a blurred image. The multi-pass Engine is one strategy;
// a host may register a native one and pick between them with Available.
type Strategy interface {
	Name() string
	Available() bool
	Blur(img image.Image, req Request) (*image.RGBA, error)
}
