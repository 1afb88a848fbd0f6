package blur

import (
	"fmt"
	"image"
	"strings"
)

// Primitive is a bounded-radius blur routine. Open acquires whatever context
// the routine needs; the returned Session must be closed by the caller.
type Primitive interface {
	Name() string
	Open() (Session, error)
}

// Session is an open primitive context. It is not safe for concurrent use.
// Blur must return an image with the same bounds as src and must not modify
// src. Radius is always within [0, MaxPrimitiveRadius].
type Session interface {
	Blur(src *image.RGBA, radius float64) (*image.RGBA, error)
	Close() error
}

type kernelPrimitive struct {
	name   string
	kernel func(radius float64) []float64
}

// NewGaussianPrimitive returns a primitive running a separable Gaussian
// convolution (see GaussianKernel).
func NewGaussianPrimitive() Primitive {
	return &kernelPrimitive{name: "gaussian", kernel: GaussianKernel}
}

// NewBoxPrimitive returns a separable box blur primitive. Repeated box
// passes converge towards a Gaussian, which makes it a cheap alternative when
// the radius is decomposed into several passes.
func NewBoxPrimitive() Primitive {
	return &kernelPrimitive{name: "box", kernel: BoxKernel}
}

// ParsePrimitive resolves a primitive by name ("gaussian" or "box").
func ParsePrimitive(name string) (Primitive, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "gaussian":
		return NewGaussianPrimitive(), nil
	case "box":
		return NewBoxPrimitive(), nil
	default:
		return nil, fmt.Errorf("unknown blur primitive %q", name)
	}
}

func (p *kernelPrimitive) Name() string {
	return p.name
}

func (p *kernelPrimitive) Open() (Session, error) {
	return &kernelSession{primitive: p}, nil
}

type kernelSession struct {
	primitive *kernelPrimitive
	passes    int
	closed    bool
}

func (s *kernelSession) Blur(src *image.RGBA, radius float64) (out *image.RGBA, err error) {
	if s.closed {
		return nil, unavailable(errSessionClosed, "%s primitive", s.primitive.name)
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = unavailable(fmt.Errorf("%v", r), "%s primitive panicked", s.primitive.name)
		}
	}()

	s.passes++
	return Convolve(src, s.primitive.kernel(radius)), nil
}

func (s *kernelSession) Close() error {
	if s.closed {
		return errSessionClosed
	}
	s.closed = true
	Logger().Debug("primitive session closed", "primitive", s.primitive.name, "passes", s.passes)
	return nil
}
