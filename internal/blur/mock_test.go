package blur

import (
	"image"
	"image/color"
)

// MockPrimitive is a mock implementation of Primitive for testing
type MockPrimitive struct {
	OpenFunc  func() (Session, error)
	OpenCalls int
}

func (m *MockPrimitive) Name() string { return "mock" }

func (m *MockPrimitive) Open() (Session, error) {
	m.OpenCalls++
	return m.OpenFunc()
}

// MockSession records every pass it is asked to run
type MockSession struct {
	BlurFunc   func(src *image.RGBA, radius float64) (*image.RGBA, error)
	Radii      []float64
	CloseCalls int
}

func (m *MockSession) Blur(src *image.RGBA, radius float64) (*image.RGBA, error) {
	m.Radii = append(m.Radii, radius)
	if m.BlurFunc != nil {
		return m.BlurFunc(src, radius)
	}
	out := image.NewRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	return out, nil
}

func (m *MockSession) Close() error {
	m.CloseCalls++
	return nil
}

func newMockPrimitive(s *MockSession) *MockPrimitive {
	return &MockPrimitive{
		OpenFunc: func() (Session, error) { return s, nil },
	}
}

func uniformImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func checkerboard(w, h, cell int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{0, 0, 0, 255})
			}
		}
	}
	return img
}

// stepEdge is black on the left half and white on the right half.
func stepEdge(w, h int) *image.RGBA {
	img := uniformImage(w, h, color.RGBA{0, 0, 0, 255})
	for y := 0; y < h; y++ {
		for x := w / 2; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	return img
}

// edgeEnergy sums squared horizontal differences of the red channel along row y.
func edgeEnergy(img *image.RGBA, y int) float64 {
	var sum float64
	b := img.Bounds()
	for x := b.Min.X + 1; x < b.Max.X; x++ {
		d := float64(img.RGBAAt(x, y).R) - float64(img.RGBAAt(x-1, y).R)
		sum += d * d
	}
	return sum
}
