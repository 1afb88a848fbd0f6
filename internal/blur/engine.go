// Package blur implements a multi-pass blur on top of a bounded-radius
// primitive, with transparent edge padding to emulate an unbounded blur.
package blur

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/clone"
	"golang.org/x/image/draw"
)

// Engine composes arbitrary blur radii out of a Primitive limited to
// MaxPrimitiveRadius. It holds no mutable state and may be shared between
// goroutines; every top-level call opens its own primitive session.
type Engine struct {
	primitive Primitive
}

// NewEngine returns an engine that blurs with p.
func NewEngine(p Primitive) *Engine {
	if p == nil {
		panic("blur: primitive must not be nil")
	}
	return &Engine{primitive: p}
}

// Name implements Strategy.
func (e *Engine) Name() string {
	return "multipass/" + e.primitive.Name()
}

// Primitive returns the primitive every pass runs on.
func (e *Engine) Primitive() Primitive {
	return e.primitive
}

// Available implements Strategy. Whether the primitive can actually be opened
// is only known at call time.
func (e *Engine) Available() bool {
	return true
}

// Blur implements Strategy, dispatching on the request's edge treatment.
func (e *Engine) Blur(img image.Image, req Request) (*image.RGBA, error) {
	switch req.Edge {
	case EdgeClamp:
		return e.BlurMultiPass(img, req.Radius)
	case EdgeTransparent:
		return e.BlurUnbounded(img, req.Radius)
	default:
		panic(fmt.Sprintf("blur: unsupported edge treatment %v", req.Edge))
	}
}

// BlurSinglePass applies one primitive pass. The radius is clamped to
// [0, MaxPrimitiveRadius]. The result has the same dimensions as img.
func (e *Engine) BlurSinglePass(img image.Image, radius float64) (*image.RGBA, error) {
	return e.singlePass(normalise(img), radius)
}

// BlurMultiPass blurs img by radius, splitting radii above MaxPrimitiveRadius
// into equal passes (see Plan). A non-positive radius returns an unmodified
// copy. If any pass fails the whole call fails and nothing is returned.
func (e *Engine) BlurMultiPass(img image.Image, radius float64) (*image.RGBA, error) {
	mustBeFinite(radius)
	return e.multiPass(normalise(img), radius)
}

// BlurUnbounded pads img with ceil(radius) transparent pixels on every side
// and blurs the padded canvas with BlurMultiPass. The result is larger than
// img by 2*ceil(radius) on each axis and is not cropped back.
func (e *Engine) BlurUnbounded(img image.Image, radius float64) (*image.RGBA, error) {
	mustBeFinite(radius)
	return e.multiPass(Pad(normalise(img), Padding(radius)), radius)
}

func (e *Engine) singlePass(src *image.RGBA, radius float64) (*image.RGBA, error) {
	s, err := e.open()
	if err != nil {
		return nil, err
	}
	defer e.release(s)

	return e.pass(s, src, clampRadius(radius))
}

func (e *Engine) multiPass(src *image.RGBA, radius float64) (*image.RGBA, error) {
	if radius <= 0 || math.IsNaN(radius) {
		return src, nil
	}
	if radius <= MaxPrimitiveRadius {
		return e.singlePass(src, radius)
	}

	plan := Plan(radius, MaxPrimitiveRadius)
	Logger().Debug("multi-pass blur",
		"primitive", e.primitive.Name(),
		"radius", radius,
		"passes", plan.Passes,
		"passRadius", plan.Radius,
		"width", src.Bounds().Dx(),
		"height", src.Bounds().Dy(),
	)

	s, err := e.open()
	if err != nil {
		return nil, err
	}
	defer e.release(s)

	current := src
	for i := range plan.Passes {
		current, err = e.pass(s, current, plan.Radius)
		if err != nil {
			return nil, fmt.Errorf("pass %d of %d: %w", i+1, plan.Passes, err)
		}
	}
	return current, nil
}

func (e *Engine) open() (Session, error) {
	s, err := e.primitive.Open()
	if err != nil {
		return nil, unavailable(err, "open %s primitive", e.primitive.Name())
	}
	if s == nil {
		return nil, unavailable(fmt.Errorf("nil session"), "open %s primitive", e.primitive.Name())
	}
	return s, nil
}

func (e *Engine) release(s Session) {
	if err := s.Close(); err != nil {
		Logger().Warn("failed to release primitive session", "primitive", e.primitive.Name(), "err", err)
	}
}

func (e *Engine) pass(s Session, src *image.RGBA, radius float64) (*image.RGBA, error) {
	out, err := s.Blur(src, radius)
	if err != nil {
		return nil, unavailable(err, "%s blur (radius %.2f)", e.primitive.Name(), radius)
	}
	if out == nil || out.Bounds().Size() != src.Bounds().Size() {
		return nil, unavailable(fmt.Errorf("unexpected output for %v input", src.Bounds().Size()),
			"%s blur (radius %.2f)", e.primitive.Name(), radius)
	}
	return out, nil
}

// Pad returns a copy of src centred on a transparent canvas grown by padding
// pixels on every side. With padding <= 0 src is returned as is.
func Pad(src *image.RGBA, padding int) *image.RGBA {
	if padding <= 0 {
		return src
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w+2*padding, h+2*padding))
	draw.Draw(dst, image.Rect(padding, padding, padding+w, padding+h), src, src.Bounds().Min, draw.Src)
	return dst
}

// normalise returns an owned, zero-origin RGBA copy of img. Empty or nil
// images are programmer errors.
func normalise(img image.Image) *image.RGBA {
	if img == nil {
		panic("blur: nil image")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		panic(fmt.Sprintf("blur: image must have positive dimensions, got %dx%d", b.Dx(), b.Dy()))
	}
	if b.Min == (image.Point{}) {
		return clone.AsRGBA(img)
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
