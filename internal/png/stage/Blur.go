package stage

import (
	"fmt"

	"github.com/rm-hull/compat-blur/internal/blur"
	"github.com/rm-hull/compat-blur/internal/png"
	"github.com/rm-hull/compat-blur/internal/render"
)

type BlurStage struct {
	Renderer      *render.Renderer
	Request       blur.Request
	AllowFallback bool
}

// Process blurs the image with whichever strategy the renderer selects.
// With EdgeTransparent the canvas grows by twice ceil(radius) on each axis.
// A failed blur is reported as an error and leaves the image untouched,
// unless AllowFallback is set, in which case the unblurred image carries on
// through the pipeline marked as degraded.
func (s *BlurStage) Process(p *png.Image) error {
	out, err := s.Renderer.Render(p.Img, s.Request)
	if err != nil {
		if !s.AllowFallback {
			return fmt.Errorf("failed to blur image (radius=%.2f): %w", s.Request.Radius, err)
		}
		p.Degraded = true
	}
	p.Set(out)
	return nil
}
