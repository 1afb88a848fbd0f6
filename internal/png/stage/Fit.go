package stage

import (
	"image"

	"github.com/rm-hull/compat-blur/internal/png"
	"golang.org/x/image/draw"
)

type FitStage struct {
	Width  int
	Height int
}

// Process scales the image into a Width x Height canvas with Catmull-Rom
// resampling. A zero size fits back into the canvas the image was decoded
// with, which shrinks the padding an unbounded blur added.
func (s *FitStage) Process(p *png.Image) error {
	target := image.Rect(0, 0, s.Width, s.Height)
	if s.Width <= 0 || s.Height <= 0 {
		target = image.Rect(0, 0, p.Origin.Dx(), p.Origin.Dy())
	}
	if target.Size() == p.Bounds.Size() {
		return nil
	}

	scaled := image.NewRGBA(target)
	draw.CatmullRom.Scale(scaled, target, p.Img, p.Bounds, draw.Src, nil)
	p.Set(scaled)
	return nil
}
