// Package render picks a blur strategy for the host and shields it from blur
// failures.
package render

import (
	"image"
	"log"
	"time"

	"github.com/anthonynsimon/bild/clone"
	"github.com/rm-hull/compat-blur/internal/blur"
)

// Renderer prefers the native strategy when it is available and the radius is
// positive, otherwise it uses the fallback (normally a *blur.Engine).
type Renderer struct {
	native   blur.Strategy
	fallback blur.Strategy
	metrics  *Metrics
}

// NewRenderer builds a renderer. native may be nil; metrics may be nil.
func NewRenderer(native, fallback blur.Strategy, metrics *Metrics) *Renderer {
	if fallback == nil {
		panic("render: fallback strategy must not be nil")
	}
	return &Renderer{native: native, fallback: fallback, metrics: metrics}
}

// Select returns the strategy used for a blur of the given radius.
func (r *Renderer) Select(radius float64) blur.Strategy {
	if radius > 0 && r.native != nil && r.native.Available() {
		return r.native
	}
	return r.fallback
}

// Render blurs src. The returned image is never nil: when the selected
// strategy fails the error is logged and returned alongside an unblurred copy
// of src, so callers can always draw something.
func (r *Renderer) Render(src image.Image, req blur.Request) (*image.RGBA, error) {
	strategy := r.Select(req.Radius)
	start := time.Now()

	out, err := strategy.Blur(src, req)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		log.Printf("WARNING: %s blur (radius=%.2f, edge=%s) failed, showing unblurred source: %v",
			strategy.Name(), req.Radius, req.Edge, err)
		r.metrics.observe(strategy.Name(), "fallback", elapsed)
		return clone.AsRGBA(src), err
	}

	r.metrics.observe(strategy.Name(), "ok", elapsed)
	return out, nil
}
