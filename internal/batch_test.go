package internal

import (
	"errors"
	"image"
	stdpng "image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rm-hull/compat-blur/internal/blur"
	"github.com/rm-hull/compat-blur/internal/png"
	"github.com/rm-hull/compat-blur/internal/png/stage"
	"github.com/rm-hull/compat-blur/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stageFunc func(p *png.Image) error

func (f stageFunc) Process(p *png.Image) error { return f(p) }

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, stdpng.Encode(f, img))
	require.NoError(t, f.Close())
}

func blurStages() []png.PipelineStage {
	engine := blur.NewEngine(blur.NewGaussianPrimitive())
	return []png.PipelineStage{
		&stage.BlurStage{
			Renderer: render.NewRenderer(nil, engine, nil),
			Request:  blur.Request{Radius: 3, Edge: blur.EdgeTransparent},
		},
	}
}

func TestProcessor(t *testing.T) {
	t.Run("blurs every image", func(t *testing.T) {
		in, out := t.TempDir(), filepath.Join(t.TempDir(), "out")
		writePNG(t, filepath.Join(in, "a.png"), 8, 8)
		writePNG(t, filepath.Join(in, "b.PNG"), 4, 6)
		require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("skip me"), 0644))

		p, err := NewProcessor(in, out, 2, blurStages())
		require.NoError(t, err)
		assert.Empty(t, p.Run())

		f, err := os.Open(filepath.Join(out, "b.png"))
		require.NoError(t, err)
		defer f.Close()
		img, err := stdpng.Decode(f)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 10, 12), img.Bounds())

		assert.FileExists(t, filepath.Join(out, "a.png"))
		leftovers, _ := filepath.Glob(filepath.Join(out, "*.tmp"))
		assert.Empty(t, leftovers)
	})

	t.Run("existing outputs are skipped", func(t *testing.T) {
		in, out := t.TempDir(), t.TempDir()
		writePNG(t, filepath.Join(in, "a.png"), 2, 2)
		require.NoError(t, os.WriteFile(filepath.Join(out, "a.png"), []byte("keep"), 0644))

		calls := 0
		p, err := NewProcessor(in, out, 1, []png.PipelineStage{
			stageFunc(func(*png.Image) error { calls++; return nil }),
		})
		require.NoError(t, err)
		assert.Empty(t, p.Run())
		assert.Equal(t, 0, calls)

		data, err := os.ReadFile(filepath.Join(out, "a.png"))
		require.NoError(t, err)
		assert.Equal(t, "keep", string(data))
	})

	t.Run("pipeline errors are collected", func(t *testing.T) {
		in, out := t.TempDir(), t.TempDir()
		writePNG(t, filepath.Join(in, "a.png"), 2, 2)
		writePNG(t, filepath.Join(in, "b.png"), 2, 2)
		boom := errors.New("boom")

		p, err := NewProcessor(in, out, 2, []png.PipelineStage{
			stageFunc(func(*png.Image) error { return boom }),
		})
		require.NoError(t, err)
		errs := p.Run()
		require.Len(t, errs, 2)
		assert.ErrorIs(t, errs[0], boom)
		assert.NoFileExists(t, filepath.Join(out, "a.png"))
	})

	t.Run("undecodable image", func(t *testing.T) {
		in, out := t.TempDir(), t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(in, "bad.png"), []byte("nope"), 0644))

		p, err := NewProcessor(in, out, 1, nil)
		require.NoError(t, err)
		errs := p.Run()
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Error(), "failed to read")
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := NewProcessor(t.TempDir(), t.TempDir(), 1, nil)
		assert.ErrorIs(t, err, ErrNoImages)
	})

	t.Run("invalid pool size", func(t *testing.T) {
		_, err := NewProcessor(t.TempDir(), t.TempDir(), 0, nil)
		assert.EqualError(t, err, "pool size must be at least 1")
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := NewProcessor(filepath.Join(t.TempDir(), "missing"), t.TempDir(), 1, nil)
		assert.Error(t, err)
	})
}

func TestOutputPath(t *testing.T) {
	p := &Processor{outputDir: "/out"}
	assert.Equal(t, filepath.Join("/out", "holiday.png"), p.OutputPath("/in/holiday.jpeg"))
}

func TestBatchTask(t *testing.T) {
	t.Run("empty inbox is fine", func(t *testing.T) {
		task := BatchTask(t.TempDir(), t.TempDir(), 1, nil)
		assert.NoError(t, task())
	})

	t.Run("errors are joined", func(t *testing.T) {
		in := t.TempDir()
		writePNG(t, filepath.Join(in, "a.png"), 2, 2)
		boom := errors.New("boom")
		task := BatchTask(in, t.TempDir(), 1, []png.PipelineStage{
			stageFunc(func(*png.Image) error { return boom }),
		})
		assert.ErrorIs(t, task(), boom)
	})
}

func TestNewScheduler(t *testing.T) {
	t.Run("runs the task immediately", func(t *testing.T) {
		runs := 0
		s, err := NewScheduler(time.Hour, func() error { runs++; return nil })
		require.NoError(t, err)
		defer func() { _ = s.Shutdown() }()
		assert.Equal(t, 1, runs)
	})

	t.Run("initial failure", func(t *testing.T) {
		_, err := NewScheduler(time.Hour, func() error { return errors.New("boom") })
		assert.ErrorContains(t, err, "initial run of job failed")
	})

	t.Run("invalid interval", func(t *testing.T) {
		_, err := NewScheduler(0, func() error { return nil })
		assert.Error(t, err)
	})
}
