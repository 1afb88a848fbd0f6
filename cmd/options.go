package cmd

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rm-hull/compat-blur/internal"
	"github.com/rm-hull/compat-blur/internal/blur"
	"github.com/rm-hull/compat-blur/internal/png"
	"github.com/rm-hull/compat-blur/internal/png/stage"
	"github.com/rm-hull/compat-blur/internal/render"
)

// EngineOptions selects how blurs are rendered.
type EngineOptions struct {
	Primitive string
	Native    bool
}

// EngineOptionsFromEnv reads BLUR_PRIMITIVE and BLUR_NATIVE.
func EngineOptionsFromEnv() EngineOptions {
	return EngineOptions{
		Primitive: internal.EnvString("BLUR_PRIMITIVE", "gaussian"),
		Native:    internal.EnvBool("BLUR_NATIVE", false),
	}
}

// Build returns the multipass engine and a renderer preferring the native
// strategy when enabled. reg may be nil, in which case nothing is recorded.
func (o EngineOptions) Build(reg prometheus.Registerer) (*blur.Engine, *render.Renderer, error) {
	primitive, err := blur.ParsePrimitive(o.Primitive)
	if err != nil {
		return nil, nil, err
	}

	var metrics *render.Metrics
	if reg != nil {
		metrics = render.NewMetrics(reg)
	}

	engine := blur.NewEngine(primitive)
	renderer := render.NewRenderer(render.NewNativeStrategy(o.Native), engine, metrics)
	return engine, renderer, nil
}

// PipelineOptions describes the stages applied to each image. Alpha must be
// set explicitly: 1 leaves opacity alone.
type PipelineOptions struct {
	Radius    float64
	Unit      string
	Density   float64
	Edge      string
	Greyscale bool
	Tint      string
	Alpha     float64
	Fit       bool
	Width     int
	Height    int
}

// DefaultPipelineOptions blurs nothing and keeps the transparent margin.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		Unit:    "px",
		Density: 1,
		Edge:    "transparent",
		Alpha:   1,
	}
}

// RadiusInPixels resolves Radius against Unit and Density.
func (o PipelineOptions) RadiusInPixels() (float64, error) {
	return render.RadiusInPixels(o.Radius, o.Unit, o.Density)
}

// Stages turns the options into a pipeline, blur first.
func (o PipelineOptions) Stages(renderer *render.Renderer, allowFallback bool) ([]png.PipelineStage, error) {
	radius, err := o.RadiusInPixels()
	if err != nil {
		return nil, err
	}

	edge, err := blur.ParseEdgeTreatment(o.Edge)
	if err != nil {
		return nil, err
	}

	stages := []png.PipelineStage{
		&stage.BlurStage{
			Renderer:      renderer,
			Request:       blur.Request{Radius: radius, Edge: edge},
			AllowFallback: allowFallback,
		},
	}

	if o.Greyscale {
		stages = append(stages, &stage.GreyscaleStage{})
	}

	if o.Tint != "" {
		c, err := stage.ParseHexColor(o.Tint)
		if err != nil {
			return nil, fmt.Errorf("invalid tint: %w", err)
		}
		stages = append(stages, &stage.TintStage{Color: c})
	}

	if o.Alpha != 1 {
		if o.Alpha < 0 || o.Alpha > 1 {
			return nil, fmt.Errorf("alpha must be between 0 and 1, got %g", o.Alpha)
		}
		stages = append(stages, &stage.OpacityStage{Alpha: o.Alpha})
	}

	if o.Fit || o.Width > 0 || o.Height > 0 {
		if o.Width < 0 || o.Height < 0 {
			return nil, fmt.Errorf("invalid fit size %dx%d", o.Width, o.Height)
		}
		stages = append(stages, &stage.FitStage{Width: o.Width, Height: o.Height})
	}

	return stages, nil
}
