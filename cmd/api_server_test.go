package cmd

import (
	"bytes"
	"image"
	"image/color"
	stdpng "image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rm-hull/compat-blur/internal/blur"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 200, 40, 40, 255
	}
	return img
}

func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, "upload.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, stdpng.Encode(&buf, img))
	return buf.Bytes()
}

func newTestRouter(t *testing.T, config ServerConfig) *gin.Engine {
	t.Helper()
	if config.Engine.Primitive == "" {
		config.Engine.Primitive = "gaussian"
	}
	r, err := NewRouter(config, prometheus.NewRegistry())
	require.NoError(t, err)
	return r
}

func post(r http.Handler, url string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, url, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBlurEndpoint(t *testing.T) {
	r := newTestRouter(t, ServerConfig{})
	upload := pngBytes(t, testImage(10, 8))

	t.Run("transparent edges grow the canvas", func(t *testing.T) {
		body, ct := multipartBody(t, "image", upload)
		w := post(r, "/v1/blur?radius=30", body, ct)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.Equal(t, "multipass/gaussian", w.Header().Get("X-Blur-Strategy"))
		assert.Equal(t, "png", w.Header().Get("X-Source-Format"))
		assert.Empty(t, w.Header().Get("X-Blur-Fallback"))

		out, err := stdpng.Decode(w.Body)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 70, 68), out.Bounds())
	})

	t.Run("clamped edges keep the size", func(t *testing.T) {
		body, ct := multipartBody(t, "image", upload)
		w := post(r, "/v1/blur?radius=5&edge=clamp", body, ct)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		out, err := stdpng.Decode(w.Body)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 10, 8), out.Bounds())
	})

	t.Run("dp radius and fit", func(t *testing.T) {
		body, ct := multipartBody(t, "image", upload)
		w := post(r, "/v1/blur?radius=2&unit=dp&density=2&fit=true", body, ct)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		out, err := stdpng.Decode(w.Body)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 10, 8), out.Bounds())
	})

	t.Run("zero radius returns the image", func(t *testing.T) {
		body, ct := multipartBody(t, "image", upload)
		w := post(r, "/v1/blur", body, ct)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		out, err := stdpng.Decode(w.Body)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 10, 8), out.Bounds())
		assert.Equal(t, color.RGBA{200, 40, 40, 255}, color.RGBAModel.Convert(out.At(4, 4)))
	})

	badRequests := map[string]string{
		"bad radius":  "/v1/blur?radius=abc",
		"inf radius":  "/v1/blur?radius=Inf",
		"huge radius": "/v1/blur?radius=100000",
		"bad unit":    "/v1/blur?radius=3&unit=em",
		"bad edge":    "/v1/blur?radius=3&edge=mirror",
		"bad alpha":   "/v1/blur?radius=3&alpha=2",
		"bad tint":    "/v1/blur?radius=3&tint=purple",
		"bad bool":    "/v1/blur?radius=3&greyscale=maybe",
	}
	for name, url := range badRequests {
		t.Run(name, func(t *testing.T) {
			body, ct := multipartBody(t, "image", upload)
			w := post(r, url, body, ct)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	t.Run("undecodable image", func(t *testing.T) {
		body, ct := multipartBody(t, "image", []byte("not an image"))
		w := post(r, "/v1/blur?radius=3", body, ct)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing field", func(t *testing.T) {
		body, ct := multipartBody(t, "file", upload)
		w := post(r, "/v1/blur?radius=3", body, ct)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBlurEndpoint_UploadLimit(t *testing.T) {
	r := newTestRouter(t, ServerConfig{MaxUploadBytes: 64})
	body, ct := multipartBody(t, "image", pngBytes(t, testImage(32, 32)))

	w := post(r, "/v1/blur?radius=3", body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestAnimateEndpoint(t *testing.T) {
	r := newTestRouter(t, ServerConfig{})
	upload := pngBytes(t, testImage(6, 6))

	t.Run("renders an apng", func(t *testing.T) {
		body, ct := multipartBody(t, "image", upload)
		w := post(r, "/v1/blur/animate?radius=4&steps=2&delay=0.2", body, ct)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "image/apng", w.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
		assert.Contains(t, w.Body.String(), "acTL")
	})

	for name, url := range map[string]string{
		"too many steps": "/v1/blur/animate?radius=4&steps=1000",
		"zero steps":     "/v1/blur/animate?radius=4&steps=0",
		"bad delay":      "/v1/blur/animate?radius=4&delay=0",
		"huge radius":    "/v1/blur/animate?radius=9999",
	} {
		t.Run(name, func(t *testing.T) {
			body, ct := multipartBody(t, "image", upload)
			w := post(r, url, body, ct)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t, ServerConfig{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	body, ct := multipartBody(t, "image", pngBytes(t, testImage(4, 4)))
	require.Equal(t, http.StatusOK, post(r, "/v1/blur?radius=2", body, ct).Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "compat_blur_renders_total")
}

type closedPrimitive struct{}

func (closedPrimitive) Name() string { return "closed" }
func (closedPrimitive) Open() (blur.Session, error) {
	return nil, blur.ErrPrimitiveUnavailable
}

func TestPrimitiveCheck(t *testing.T) {
	engine, _, err := EngineOptions{Primitive: "box"}.Build(nil)
	require.NoError(t, err)

	check := &primitiveCheck{primitive: engine.Primitive()}
	assert.True(t, check.Pass())
	assert.Equal(t, "blur-primitive-box", check.Name())

	check = &primitiveCheck{primitive: closedPrimitive{}}
	assert.False(t, check.Pass())
}

func TestNewRouter_UnknownPrimitive(t *testing.T) {
	_, err := NewRouter(ServerConfig{Engine: EngineOptions{Primitive: "bokeh"}}, prometheus.NewRegistry())
	assert.Error(t, err)
}
