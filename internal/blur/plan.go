package blur

import (
	"fmt"
	"math"
)

// MaxPrimitiveRadius is the largest radius a single primitive pass accepts.
const MaxPrimitiveRadius = 25.0

// Radii beyond these bounds cannot be represented as a canvas or a pass
// count and are rejected like infinite ones.
const (
	maxPadding = math.MaxInt32
	maxPasses  = math.MaxInt32
)

// PassPlan describes how a requested radius is spread over repeated primitive
// passes. Every pass uses the same radius.
type PassPlan struct {
	Passes int
	Radius float64
}

func (p PassPlan) String() string {
	return fmt.Sprintf("%d x %.4f", p.Passes, p.Radius)
}

// Plan returns the smallest number of equal passes whose radius does not
// exceed limit: n = ceil((radius/limit)^2), each pass at radius/sqrt(n).
// Successive Gaussian passes add variances, so n passes at radius/sqrt(n)
// approximate one pass at radius.
//
// A non-positive radius yields the zero plan (no passes).
func Plan(radius, limit float64) PassPlan {
	if radius <= 0 || math.IsNaN(radius) {
		return PassPlan{}
	}
	if limit <= 0 {
		panic(fmt.Sprintf("blur: pass radius limit must be positive, got %v", limit))
	}

	ratio := radius / limit
	if ratio*ratio > maxPasses {
		panic(fmt.Sprintf("blur: radius %v needs more than %d passes of %v", radius, maxPasses, limit))
	}
	n := int(math.Ceil(ratio * ratio))
	if n < 1 {
		n = 1
	}
	per := radius / math.Sqrt(float64(n))
	// ratio*ratio can round down across an integer boundary
	for per > limit {
		n++
		per = radius / math.Sqrt(float64(n))
	}
	return PassPlan{Passes: n, Radius: per}
}

// Padding is the number of transparent pixels added on every side of the
// canvas by an unbounded blur of the given radius.
func Padding(radius float64) int {
	if radius <= 0 || math.IsNaN(radius) {
		return 0
	}
	if radius > maxPadding {
		panic(fmt.Sprintf("blur: radius %v exceeds the largest padding %d", radius, maxPadding))
	}
	return int(math.Ceil(radius))
}

func clampRadius(radius float64) float64 {
	switch {
	case math.IsNaN(radius) || radius < 0:
		return 0
	case radius > MaxPrimitiveRadius:
		return MaxPrimitiveRadius
	default:
		return radius
	}
}

func mustBeFinite(radius float64) {
	if math.IsInf(radius, 0) {
		panic("blur: radius must be finite")
	}
}
