package web

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"strconv"
	"time"

	"github.com/rook-computer/clockface/internal/background"
)

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// StatusSource is the part of the background updater the API reads.
type StatusSource interface {
	Status() background.Status
	Background() *background.Background
}

// FrameSource exposes the most recently presented frame.
type FrameSource interface {
	LastFrame() *image.RGBA
}

type APIV1Deps struct {
	Updater StatusSource
	// Frames is optional; /frame.png answers 404 without it.
	Frames  FrameSource
	Metrics http.Handler
	Started time.Time
}

type backgroundInfo struct {
	Seq         uint64    `json:"seq"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Prompt      string    `json:"prompt"`
	PublishedAt time.Time `json:"publishedAt"`
}

type statusResponse struct {
	background.Status
	UptimeSeconds int64           `json:"uptimeSeconds"`
	Background    *backgroundInfo `json:"background"`
}

func apiV1Router(deps APIV1Deps) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) { handleStatus(w, r, deps) })
	mux.HandleFunc("/background.png", func(w http.ResponseWriter, r *http.Request) { handleBackground(w, r, deps) })
	mux.HandleFunc("/frame.png", func(w http.ResponseWriter, r *http.Request) { handleFrame(w, r, deps) })
	return mux
}

func handleStatus(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if !requireGET(w, r) {
		return
	}
	if deps.Updater == nil {
		writeAPIError(w, http.StatusServiceUnavailable, "not_ready", "updater not configured")
		return
	}

	resp := statusResponse{Status: deps.Updater.Status()}
	if !deps.Started.IsZero() {
		resp.UptimeSeconds = int64(time.Since(deps.Started).Seconds())
	}
	if bg := deps.Updater.Background(); bg != nil {
		b := bg.Image.Bounds()
		resp.Background = &backgroundInfo{
			Seq:         bg.Seq,
			Width:       b.Dx(),
			Height:      b.Dy(),
			Prompt:      bg.Prompt,
			PublishedAt: bg.PublishedAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func handleBackground(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if !requireGET(w, r) {
		return
	}
	var bg *background.Background
	if deps.Updater != nil {
		bg = deps.Updater.Background()
	}
	if bg == nil {
		writeAPIError(w, http.StatusNotFound, "no_background", "no background has been generated yet")
		return
	}
	w.Header().Set("X-Background-Seq", strconv.FormatUint(bg.Seq, 10))
	writePNG(w, bg.Image)
}

func handleFrame(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if !requireGET(w, r) {
		return
	}
	var frame *image.RGBA
	if deps.Frames != nil {
		frame = deps.Frames.LastFrame()
	}
	if frame == nil {
		writeAPIError(w, http.StatusNotFound, "no_frame", "no frame has been presented yet")
		return
	}
	writePNG(w, frame)
}

func requireGET(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	return false
}

func writePNG(w http.ResponseWriter, img image.Image) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		writeAPIError(w, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
