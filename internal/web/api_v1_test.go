package web

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rook-computer/clockface/internal/background"
	"github.com/rook-computer/clockface/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUpdater struct {
	status background.Status
	bg     *background.Background
}

func (s stubUpdater) Status() background.Status          { return s.status }
func (s stubUpdater) Background() *background.Background { return s.bg }

type stubFrames struct{ frame *image.RGBA }

func (s stubFrames) LastFrame() *image.RGBA { return s.frame }

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apiError {
	t.Helper()
	var e apiError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&e))
	return e
}

func TestStatus(t *testing.T) {
	published := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	img := image.NewRGBA(image.Rect(0, 0, 1024, 576))
	mux := NewDefaultMux(APIV1Deps{
		Updater: stubUpdater{
			status: background.Status{Updating: true, Attempts: 3, Successes: 2, Failures: 1, Seq: 2, Prompt: "a fox"},
			bg:     &background.Background{Image: img, Seq: 2, Prompt: "a fox", PublishedAt: published},
		},
		Started: time.Now().Add(-time.Minute),
	})

	rec := do(t, mux, http.MethodGet, "/api/v1/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, true, body["updating"])
	assert.Equal(t, 3.0, body["attempts"])
	assert.Equal(t, 1.0, body["failures"])
	assert.GreaterOrEqual(t, body["uptimeSeconds"], 59.0)

	bg, ok := body["background"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2.0, bg["seq"])
	assert.Equal(t, 1024.0, bg["width"])
	assert.Equal(t, 576.0, bg["height"])
	assert.Equal(t, "2024-05-01T08:30:00Z", bg["publishedAt"])
}

func TestStatus_NoBackgroundYet(t *testing.T) {
	mux := NewDefaultMux(APIV1Deps{Updater: stubUpdater{}})
	rec := do(t, mux, http.MethodGet, "/api/v1/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Nil(t, body["background"])
	assert.Equal(t, false, body["updating"])
}

func TestStatus_NotConfigured(t *testing.T) {
	rec := do(t, NewDefaultMux(APIV1Deps{}), http.MethodGet, "/api/v1/status")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not_ready", decodeError(t, rec).Error)
}

func TestBackgroundPNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	img.Set(3, 2, color.RGBA{R: 9, G: 8, B: 7, A: 255})
	mux := NewDefaultMux(APIV1Deps{Updater: stubUpdater{bg: &background.Background{Image: img, Seq: 5}}})

	rec := do(t, mux, http.MethodGet, "/api/v1/background.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "5", rec.Header().Get("X-Background-Seq"))

	decoded, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
	r, g, b, _ := decoded.At(3, 2).RGBA()
	assert.Equal(t, []uint32{9 * 0x101, 8 * 0x101, 7 * 0x101}, []uint32{r, g, b})
}

func TestBackgroundPNG_NotFound(t *testing.T) {
	rec := do(t, NewDefaultMux(APIV1Deps{Updater: stubUpdater{}}), http.MethodGet, "/api/v1/background.png")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no_background", decodeError(t, rec).Error)
}

func TestFramePNG(t *testing.T) {
	mux := NewDefaultMux(APIV1Deps{Updater: stubUpdater{}})
	rec := do(t, mux, http.MethodGet, "/api/v1/frame.png")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	mux = NewDefaultMux(APIV1Deps{Updater: stubUpdater{}, Frames: stubFrames{frame: image.NewRGBA(image.Rect(0, 0, 64, 36))}})
	rec = do(t, mux, http.MethodGet, "/api/v1/frame.png")
	require.Equal(t, http.StatusOK, rec.Code)
	decoded, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 36), decoded.Bounds())
}

func TestFramePNG_FromRecorder(t *testing.T) {
	recorder := render.NewRecorder(render.NewMemoryDisplay(32, 18), time.Hour)
	mux := NewDefaultMux(APIV1Deps{Updater: stubUpdater{}, Frames: recorder})

	rec := do(t, mux, http.MethodGet, "/api/v1/frame.png")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	frame := image.NewRGBA(image.Rect(0, 0, 32, 18))
	frame.SetRGBA(3, 4, color.RGBA{R: 0xFF, A: 0xFF})
	require.NoError(t, recorder.Present(frame))

	rec = do(t, mux, http.MethodGet, "/api/v1/frame.png")
	require.Equal(t, http.StatusOK, rec.Code)
	decoded, err := png.Decode(rec.Body)
	require.NoError(t, err)
	r, _, _, _ := decoded.At(3, 4).RGBA()
	assert.Equal(t, uint32(0xFFFF), r)
}

func TestMethodNotAllowed(t *testing.T) {
	mux := NewDefaultMux(APIV1Deps{Updater: stubUpdater{}})
	for _, path := range []string{"/api/v1/status", "/api/v1/background.png", "/api/v1/frame.png"} {
		rec := do(t, mux, http.MethodPost, path)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, path)
		assert.Equal(t, "method_not_allowed", decodeError(t, rec).Error)
	}
}

func TestMetricsRoute(t *testing.T) {
	mux := NewDefaultMux(APIV1Deps{})
	assert.Equal(t, http.StatusNotFound, do(t, mux, http.MethodGet, "/metrics").Code)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "clockface_frames_total 1\n")
	})
	mux = NewDefaultMux(APIV1Deps{Metrics: metrics})
	rec := do(t, mux, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "clockface_frames_total 1\n", rec.Body.String())
}

func TestDevCORS(t *testing.T) {
	h := WithDevCORS(NewDefaultMux(APIV1Deps{Updater: stubUpdater{}}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/status", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHTTPServer_StartStop(t *testing.T) {
	srv := NewHTTPServer(ServerConfig{ListenAddr: "127.0.0.1:0"}, NewDefaultMux(APIV1Deps{Updater: stubUpdater{}}))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, srv.Start(ctx))
	addr := srv.Addr()
	require.NotEmpty(t, addr)

	resp, err := http.Get("http://" + addr + "/api/v1/status")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Stop())
	assert.Empty(t, srv.Addr())
	assert.Error(t, srv.Start(ctx))
}

func TestServerConfig(t *testing.T) {
	assert.False(t, ServerConfig{}.Enabled())
	assert.True(t, ServerConfig{ListenAddr: ":8080"}.Enabled())
}
