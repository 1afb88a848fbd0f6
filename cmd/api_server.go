package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/Depado/ginprom"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rm-hull/compat-blur/internal"
	"github.com/rm-hull/compat-blur/internal/blur"
	"github.com/rm-hull/compat-blur/internal/png"
	"github.com/rm-hull/compat-blur/internal/render"
	healthcheck "github.com/tavsec/gin-healthcheck"
	"github.com/tavsec/gin-healthcheck/checks"
	hc_config "github.com/tavsec/gin-healthcheck/config"
)

const (
	defaultMaxUploadBytes = 10 << 20
	maxQueryRadius        = 500
)

// ServerConfig holds everything NewRouter needs.
type ServerConfig struct {
	Engine         EngineOptions
	MaxUploadBytes int64
	Debug          bool
}

func ApiServer(port int, debug bool, engineOpts EngineOptions) {
	config := ServerConfig{
		Engine:         engineOpts,
		MaxUploadBytes: internal.EnvInt64("BLUR_MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		Debug:          debug,
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r, err := NewRouter(config, reg)
	if err != nil {
		log.Fatal(err)
	}

	addr := fmt.Sprintf(":%d", port)
	log.Printf("Starting HTTP API Server on port %d...", port)
	if err := r.Run(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("HTTP API Server failed to start on port %d: %v", port, err)
	}
}

// NewRouter wires the blur endpoints, metrics and health checks. Metrics
// are registered on reg so each router can be given its own registry.
func NewRouter(config ServerConfig, reg *prometheus.Registry) (*gin.Engine, error) {
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = defaultMaxUploadBytes
	}

	engine, renderer, err := config.Engine.Build(reg)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	metrics := ginprom.New(
		ginprom.Engine(r),
		ginprom.Registry(reg),
		ginprom.Path("/metrics"),
		ginprom.Ignore("/healthz"),
	)

	r.Use(
		gin.Recovery(),
		gin.LoggerWithWriter(gin.DefaultWriter, "/healthz", "/metrics"),
		metrics.Instrument(),
	)

	if config.Debug {
		log.Println("WARNING: pprof endpoints are enabled and exposed. Do not run with this flag in production.")
		pprof.Register(r)
	}

	err = healthcheck.New(r, hc_config.DefaultConfig(), []checks.Check{&primitiveCheck{primitive: engine.Primitive()}})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize healthcheck: %w", err)
	}

	h := &handler{
		engine:         engine,
		renderer:       renderer,
		maxUploadBytes: config.MaxUploadBytes,
	}

	v1 := r.Group("/v1")
	v1.POST("/blur", h.blur)
	v1.POST("/blur/animate", h.animate)

	return r, nil
}

// primitiveCheck reports healthy while a blur session can be opened.
type primitiveCheck struct {
	primitive blur.Primitive
}

func (c *primitiveCheck) Pass() bool {
	session, err := c.primitive.Open()
	if err != nil {
		return false
	}
	return session.Close() == nil
}

func (c *primitiveCheck) Name() string {
	return "blur-primitive-" + c.primitive.Name()
}

type handler struct {
	engine         *blur.Engine
	renderer       *render.Renderer
	maxUploadBytes int64
}

func (h *handler) blur(c *gin.Context) {
	opts, err := pipelineOptionsFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if radius, err := opts.RadiusInPixels(); err == nil && radius > maxQueryRadius {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("radius must not exceed %d px", maxQueryRadius)})
		return
	}

	stages, err := opts.Stages(h.renderer, true)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	img, status, err := h.readImage(c)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if err := img.Pipeline(stages...); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := img.Write(&buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("X-Blur-Strategy", strategyName(h.renderer, opts))
	c.Header("X-Source-Format", img.Format)
	if img.Degraded {
		c.Header("X-Blur-Fallback", "true")
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (h *handler) animate(c *gin.Context) {
	opts := AnimateOptions{}
	var err error

	if opts.MaxRadius, err = queryFloat(c, "radius", 0); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if opts.Steps, err = queryInt(c, "steps", 8); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if opts.FrameDelay, err = queryFloat(c, "delay", 0.1); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := opts.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if opts.MaxRadius > maxQueryRadius {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("radius must not exceed %d", maxQueryRadius)})
		return
	}

	img, status, err := h.readImage(c)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	frames, err := png.BlurRamp(h.engine, img.Img, opts.MaxRadius, opts.Steps)
	if err != nil {
		if errors.Is(err, blur.ErrPrimitiveUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	data, err := png.Animate(frames, opts.FrameDelay)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "image/apng", data)
}

// readImage decodes the multipart "image" field, enforcing the upload limit.
func (h *handler) readImage(c *gin.Context) (*png.Image, int, error) {
	if c.Request.ContentLength > h.maxUploadBytes {
		return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", h.maxUploadBytes)
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", h.maxUploadBytes)
		}
		return nil, http.StatusBadRequest, fmt.Errorf("missing image: %w", err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	defer func() {
		_ = file.Close()
	}()

	img, err := png.NewImageFromReader(file)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	return img, http.StatusOK, nil
}

func pipelineOptionsFromQuery(c *gin.Context) (PipelineOptions, error) {
	opts := DefaultPipelineOptions()
	var err error

	if opts.Radius, err = queryFloat(c, "radius", 0); err != nil {
		return opts, err
	}
	if opts.Density, err = queryFloat(c, "density", 1); err != nil {
		return opts, err
	}
	if opts.Alpha, err = queryFloat(c, "alpha", 1); err != nil {
		return opts, err
	}
	if opts.Width, err = queryInt(c, "width", 0); err != nil {
		return opts, err
	}
	if opts.Height, err = queryInt(c, "height", 0); err != nil {
		return opts, err
	}
	if opts.Greyscale, err = queryBool(c, "greyscale"); err != nil {
		return opts, err
	}
	if opts.Fit, err = queryBool(c, "fit"); err != nil {
		return opts, err
	}

	opts.Unit = c.DefaultQuery("unit", opts.Unit)
	opts.Edge = c.DefaultQuery("edge", opts.Edge)
	opts.Tint = c.Query("tint")
	return opts, nil
}

func queryFloat(c *gin.Context, key string, def float64) (float64, error) {
	v, ok := c.GetQuery(key)
	if !ok || v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return f, nil
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	v, ok := c.GetQuery(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

func queryBool(c *gin.Context, key string) (bool, error) {
	v, ok := c.GetQuery(key)
	if !ok || v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", key, v)
	}
	return b, nil
}
