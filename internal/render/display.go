package render

import (
	"errors"
	"image"
	"image/draw"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

var ErrDisplayClosed = errors.New("display closed")

// Display presents fully composed frames. Present may scale the frame to the
// device resolution but must not retain it after returning.
type Display interface {
	Bounds() image.Rectangle
	Present(frame *image.RGBA) error
	Close() error
}

// MemoryDisplay keeps a copy of the last presented frame. It backs the
// simulator and tests.
type MemoryDisplay struct {
	mu     sync.RWMutex
	bounds image.Rectangle
	last   *image.RGBA
	frames uint64
	closed bool
}

func NewMemoryDisplay(width, height int) *MemoryDisplay {
	return &MemoryDisplay{bounds: image.Rect(0, 0, width, height)}
}

func (d *MemoryDisplay) Bounds() image.Rectangle { return d.bounds }

func (d *MemoryDisplay) Present(frame *image.RGBA) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDisplayClosed
	}
	if d.last == nil || d.last.Bounds() != frame.Bounds() {
		d.last = image.NewRGBA(frame.Bounds())
	}
	copy(d.last.Pix, frame.Pix)
	d.frames++
	return nil
}

func (d *MemoryDisplay) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

// LastFrame returns a copy of the last presented frame, or nil.
func (d *MemoryDisplay) LastFrame() *image.RGBA {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return cloneRGBA(d.last)
}

func (d *MemoryDisplay) Frames() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.frames
}

// Recorder wraps a Display and snapshots at most one frame per interval so
// the status API can serve a recent frame without copying every tick.
type Recorder struct {
	Display

	mu       sync.RWMutex
	last     *image.RGBA
	sampling rate.Sometimes
}

func NewRecorder(d Display, every time.Duration) *Recorder {
	return &Recorder{Display: d, sampling: rate.Sometimes{Interval: every}}
}

func (r *Recorder) Present(frame *image.RGBA) error {
	if err := r.Display.Present(frame); err != nil {
		return err
	}
	r.sampling.Do(func() {
		snap := cloneRGBA(frame)
		r.mu.Lock()
		r.last = snap
		r.mu.Unlock()
	})
	return nil
}

func (r *Recorder) LastFrame() *image.RGBA {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneRGBA(r.last)
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	if src == nil {
		return nil
	}
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}
