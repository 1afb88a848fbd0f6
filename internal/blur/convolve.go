package blur

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/parallel"
)

// GaussianKernel returns a normalised 1D Gaussian kernel with sigma equal to
// half the radius, truncated at three sigma. Variances add across passes, so
// n passes at radius/sqrt(n) match one pass at radius.
func GaussianKernel(radius float64) []float64 {
	sigma := radius / 2
	if sigma <= 0 || math.IsNaN(sigma) {
		return []float64{1}
	}

	half := int(math.Ceil(sigma * 3))
	kernel := make([]float64, 2*half+1)
	twoSigmaSq := 2 * sigma * sigma
	sum := 0.0
	for i := range kernel {
		x := float64(i - half)
		kernel[i] = math.Exp(-(x * x) / twoSigmaSq)
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// BoxKernel returns a uniform kernel spanning round(radius) pixels either side.
func BoxKernel(radius float64) []float64 {
	half := 0
	if radius > 0 {
		half = int(math.Round(radius))
	}
	kernel := make([]float64, 2*half+1)
	for i := range kernel {
		kernel[i] = 1 / float64(len(kernel))
	}
	return kernel
}

// Convolve applies kernel horizontally then vertically, repeating edge
// pixels. Sums are kept in float64 between the two passes and rounded to
// nearest once, so a uniform image comes back unchanged. The result is a
// new zero-origin image; src is not modified.
func Convolve(src *image.RGBA, kernel []float64) *image.RGBA {
	if len(kernel) <= 1 {
		return clone.AsRGBA(src)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	half := len(kernel) / 2
	tmp := make([]float64, w*h*4)

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < w; x++ {
				var r, g, bl, a float64
				for k, weight := range kernel {
					i := row + clampIndex(x+k-half, w)*4
					r += float64(src.Pix[i]) * weight
					g += float64(src.Pix[i+1]) * weight
					bl += float64(src.Pix[i+2]) * weight
					a += float64(src.Pix[i+3]) * weight
				}
				j := (y*w + x) * 4
				tmp[j], tmp[j+1], tmp[j+2], tmp[j+3] = r, g, bl, a
			}
		}
	})

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				var r, g, bl, a float64
				for k, weight := range kernel {
					j := (clampIndex(y+k-half, h)*w + x) * 4
					r += tmp[j] * weight
					g += tmp[j+1] * weight
					bl += tmp[j+2] * weight
					a += tmp[j+3] * weight
				}
				o := y*dst.Stride + x*4
				dst.Pix[o] = roundUint8(r)
				dst.Pix[o+1] = roundUint8(g)
				dst.Pix[o+2] = roundUint8(bl)
				dst.Pix[o+3] = roundUint8(a)
			}
		}
	})
	return dst
}

func clampIndex(i, n int) int {
	switch {
	case i < 0:
		return 0
	case i >= n:
		return n - 1
	default:
		return i
	}
}

func roundUint8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
