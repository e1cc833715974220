package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rook-computer/clockface/internal/render/layout"
	xdraw "golang.org/x/image/draw"
)

var errSimulatedFailure = errors.New("simulated generation failure")

type SimFaults struct {
	Fail      bool `json:"fail"`
	LatencyMs int  `json:"latencyMs"`
}

// SimControl holds the fault settings shared by the HTTP endpoints and the
// simulated generator.
type SimControl struct {
	startup SimFaults

	faults struct {
		mu sync.RWMutex
		v  SimFaults
	}
}

func NewSimControl(startup SimFaults) *SimControl {
	c := &SimControl{startup: startup}
	c.faults.v = startup
	return c
}

func (c *SimControl) Faults() SimFaults {
	c.faults.mu.RLock()
	defer c.faults.mu.RUnlock()
	return c.faults.v
}

func (c *SimControl) SetFaults(v SimFaults) {
	if v.LatencyMs < 0 {
		v.LatencyMs = 0
	}
	c.faults.mu.Lock()
	c.faults.v = v
	c.faults.mu.Unlock()
}

func (c *SimControl) Reset() { c.SetFaults(c.startup) }

// SimGenerator stands in for the txt2img backend. It paints a gradient whose
// hue shifts with every call and lightens it where the conditioning image
// has hands.
type SimGenerator struct {
	Control *SimControl
	Width   int
	Height  int

	calls atomic.Uint64
}

func (g *SimGenerator) Generate(ctx context.Context, prompt string, conditioning []byte) (image.Image, error) {
	n := g.calls.Add(1)
	faults := g.Control.Faults()

	if faults.LatencyMs > 0 {
		timer := time.NewTimer(time.Duration(faults.LatencyMs) * time.Millisecond)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if faults.Fail {
		return nil, errSimulatedFailure
	}

	w, h := layout.FitSize(g.Width, g.Height, 1024, 1024)
	img := gradient(w, h, n)
	if len(conditioning) > 0 {
		hands, err := png.Decode(bytes.NewReader(conditioning))
		if err != nil {
			return nil, err
		}
		blendSilhouette(img, hands)
	}
	return img, nil
}

func gradient(w, h int, seed uint64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	shift := uint8(seed * 47)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x*255/max(w-1, 1)) + shift,
				G: uint8(y*255/max(h-1, 1)) + shift/2,
				B: 160 - shift/3,
				A: 0xFF,
			})
		}
	}
	return img
}

// blendSilhouette averages dst with white wherever the scaled conditioning
// image is bright.
func blendSilhouette(dst *image.RGBA, hands image.Image) {
	scaled := image.NewRGBA(dst.Bounds())
	xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), hands, hands.Bounds(), xdraw.Src, nil)
	for i := 0; i+3 < len(dst.Pix); i += 4 {
		lum := (int(scaled.Pix[i]) + int(scaled.Pix[i+1]) + int(scaled.Pix[i+2])) / 3
		if lum < 128 {
			continue
		}
		for c := 0; c < 3; c++ {
			dst.Pix[i+c] = uint8((int(dst.Pix[i+c]) + 0xFF) / 2)
		}
	}
}

func registerSimEndpoints(mux *http.ServeMux, control *SimControl) {
	mux.HandleFunc("/sim/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		control.Reset()
		writeSimJSON(w, http.StatusOK, control.Faults())
	})

	mux.HandleFunc("/sim/faults", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeSimJSON(w, http.StatusOK, control.Faults())
		case http.MethodPost:
			var patch struct {
				Fail      *bool `json:"fail"`
				LatencyMs *int  `json:"latencyMs"`
			}
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
				writeSimError(w, http.StatusBadRequest, "invalid json")
				return
			}
			current := control.Faults()
			if patch.Fail != nil {
				current.Fail = *patch.Fail
			}
			if patch.LatencyMs != nil {
				current.LatencyMs = *patch.LatencyMs
			}
			control.SetFaults(current)
			writeSimJSON(w, http.StatusOK, control.Faults())
		default:
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	})
}

func writeSimJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSimError(w http.ResponseWriter, status int, message string) {
	writeSimJSON(w, status, map[string]any{"error": message})
}
