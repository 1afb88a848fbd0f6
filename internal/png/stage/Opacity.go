package stage

import (
	"fmt"

	"github.com/anthonynsimon/bild/clone"
	"github.com/rm-hull/compat-blur/internal/png"
)

type OpacityStage struct {
	Alpha float64
}

// Process multiplies every channel of the premultiplied image by Alpha,
// which must be in [0, 1]
func (s *OpacityStage) Process(p *png.Image) error {
	if s.Alpha < 0 || s.Alpha > 1 {
		return fmt.Errorf("opacity must be between 0 and 1, got %v", s.Alpha)
	}
	if s.Alpha == 1 {
		return nil
	}

	out := clone.AsRGBA(p.Img)
	for i, v := range out.Pix {
		out.Pix[i] = uint8(float64(v)*s.Alpha + 0.5)
	}
	p.Set(out)
	return nil
}
