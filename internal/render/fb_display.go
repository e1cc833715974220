package render

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	fb "github.com/gonutz/framebuffer"
)

// FBDisplay presents frames on a Linux framebuffer device, scaling the
// logical frame to the device resolution with nearest-neighbour sampling.
type FBDisplay struct {
	mu     sync.Mutex
	dev    *fb.Device
	bounds image.Rectangle
}

func OpenFramebuffer(path string) (*FBDisplay, error) {
	dev, err := fb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open framebuffer %s: %w", path, err)
	}
	return &FBDisplay{dev: dev, bounds: dev.Bounds()}, nil
}

// Bounds reports the device resolution.
func (d *FBDisplay) Bounds() image.Rectangle { return d.bounds }

func (d *FBDisplay) Present(frame *image.RGBA) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		return ErrDisplayClosed
	}
	blitToFB(d.dev, frame)
	return nil
}

func (d *FBDisplay) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dev == nil {
		return nil
	}
	d.dev.Close()
	d.dev = nil
	return nil
}

func blitToFB(dev *fb.Device, frame *image.RGBA) {
	bounds := dev.Bounds()
	src := frame.Bounds()
	fbWidth, fbHeight := bounds.Dx(), bounds.Dy()
	for y := 0; y < fbHeight; y++ {
		sy := src.Min.Y + (y*src.Dy())/fbHeight
		for x := 0; x < fbWidth; x++ {
			sx := src.Min.X + (x*src.Dx())/fbWidth
			pixel := frame.RGBAAt(sx, sy)
			dev.Set(bounds.Min.X+x, bounds.Min.Y+y, color.RGBA{R: pixel.R, G: pixel.G, B: pixel.B, A: 0xFF})
		}
	}
}
