package stage

import (
	"github.com/anthonynsimon/bild/adjust"
	"github.com/rm-hull/compat-blur/internal/png"
)

type GreyscaleStage struct{}

// Process fully desaturates the image. Unlike a luminance conversion this
// keeps the alpha channel, so transparent padding stays transparent.
func (s *GreyscaleStage) Process(p *png.Image) error {
	p.Set(adjust.Saturation(p.Img, -1))
	return nil
}
