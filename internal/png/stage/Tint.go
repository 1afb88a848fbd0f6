package stage

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/rm-hull/compat-blur/internal/png"
)

type TintStage struct {
	Color color.Color
}

// Process paints every pixel with the tint colour, scaled by the pixel's own
// alpha (a source-in tint). Fully transparent pixels remain transparent.
func (s *TintStage) Process(p *png.Image) error {
	tint := color.NRGBAModel.Convert(s.Color).(color.NRGBA)
	out := image.NewNRGBA(p.Bounds)
	for y := p.Bounds.Min.Y; y < p.Bounds.Max.Y; y++ {
		for x := p.Bounds.Min.X; x < p.Bounds.Max.X; x++ {
			_, _, _, a := p.Img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			alpha := uint8(uint32(tint.A) * (a >> 8) / 255)
			out.SetNRGBA(x, y, color.NRGBA{tint.R, tint.G, tint.B, alpha})
		}
	}
	p.Set(out)
	return nil
}

// ParseHexColor parses "#rgb", "#rrggbb" or "#rrggbbaa" (the leading # is optional).
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
