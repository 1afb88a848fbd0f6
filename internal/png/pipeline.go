package png

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image is the unit of work flowing through a pipeline. Img is replaced by
// each stage; Origin keeps the bounds the image was decoded with so later
// stages can restore the original canvas. Degraded is set when a stage had
// to fall back to an unprocessed image.
type Image struct {
	Img      image.Image
	Bounds   image.Rectangle
	Origin   image.Rectangle
	Format   string
	Degraded bool
}

type PipelineStage interface {
	Process(img *Image) error
}

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// NewImageFromReader decodes any registered format (PNG, JPEG, GIF, BMP,
// TIFF, WebP). PNG input is decoded with image/png directly: the apng
// package registers itself for the same signature, which would otherwise
// report every PNG as "apng". Animated PNGs yield their default image.
func NewImageFromReader(r io.Reader) (*Image, error) {
	br := bufio.NewReader(r)
	if sig, err := br.Peek(len(pngSignature)); err == nil && bytes.Equal(sig, pngSignature) {
		img, err := png.Decode(br)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
		return NewImage(img, "png"), nil
	}

	img, format, err := image.Decode(br)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return NewImage(img, format), nil
}

func NewImage(img image.Image, format string) *Image {
	return &Image{
		Img:    img,
		Bounds: img.Bounds(),
		Origin: img.Bounds(),
		Format: format,
	}
}

// Set replaces the current image and keeps Bounds in sync.
func (p *Image) Set(img image.Image) {
	p.Img = img
	p.Bounds = img.Bounds()
}

// Write always encodes as PNG: blurred output carries an alpha channel.
func (p *Image) Write(w io.Writer) error {
	return png.Encode(w, p.Img)
}

func (p *Image) Pipeline(stages ...PipelineStage) error {
	for _, stage := range stages {
		if err := stage.Process(p); err != nil {
			return err
		}
	}
	return nil
}
