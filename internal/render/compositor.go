package render

import (
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/rook-computer/clockface/internal/render/layout"
	xdraw "golang.org/x/image/draw"
)

const qrPaddingPx = 12

// FrameInput is everything the compositor needs for one frame. The
// background fields are a snapshot of the updater's latest publication.
type FrameInput struct {
	Now time.Time

	Background    image.Image
	BackgroundSeq uint64
	PublishedAt   time.Time

	// Tint is drawn over the dark overlay when its alpha is non-zero.
	Tint color.NRGBA

	Caption string
}

// Compositor builds display frames: backdrop, (cross-faded) background,
// dark overlay, tint, second hand and optional status decorations.
// It is used from the render goroutine only.
type Compositor struct {
	Radius             float64
	OverlayAlpha       uint8
	TransitionDuration time.Duration

	Captioner *Captioner
	QR        image.Image

	canvas   *image.RGBA
	current  *image.RGBA
	previous *image.RGBA
	seq      uint64
}

func NewCompositor(width, height int, radius float64) *Compositor {
	return &Compositor{
		Radius: radius,
		canvas: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

func (c *Compositor) Bounds() image.Rectangle { return c.canvas.Bounds() }

// Compose draws a frame into the compositor's canvas and returns it. The
// returned image is reused by the next call.
func (c *Compositor) Compose(in FrameInput) *image.RGBA {
	bounds := c.canvas.Bounds()
	draw.Draw(c.canvas, bounds, image.NewUniform(Backdrop), image.Point{}, draw.Src)

	c.adopt(in)
	if c.current != nil {
		progress := TransitionProgress(in.PublishedAt, in.Now, c.TransitionDuration)
		if progress >= 1 {
			c.previous = nil
			draw.Draw(c.canvas, bounds, c.current, image.Point{}, draw.Src)
		} else {
			if c.previous != nil {
				draw.Draw(c.canvas, bounds, c.previous, image.Point{}, draw.Src)
			}
			mask := image.NewUniform(color.Alpha{A: uint8(progress * 0xFF)})
			draw.DrawMask(c.canvas, bounds, c.current, image.Point{}, mask, image.Point{}, draw.Over)
		}
	}

	if c.OverlayAlpha > 0 {
		draw.Draw(c.canvas, bounds, image.NewUniform(color.RGBA{A: c.OverlayAlpha}), image.Point{}, draw.Over)
	}
	if in.Tint.A > 0 {
		draw.Draw(c.canvas, bounds, image.NewUniform(in.Tint), image.Point{}, draw.Over)
	}

	DrawSecondHand(c.canvas, c.Radius, in.Now.Second())

	if c.Captioner != nil && in.Caption != "" {
		c.Captioner.Draw(c.canvas, in.Caption, qrPaddingPx, qrPaddingPx, CaptionColor)
	}
	if c.QR != nil {
		qb := c.QR.Bounds()
		dst := layout.AnchorBottomRight(layout.Inset(bounds, qrPaddingPx), qb.Dx(), qb.Dy())
		draw.Draw(c.canvas, dst, c.QR, qb.Min, draw.Over)
	}
	return c.canvas
}

// adopt scales a newly published background to the canvas once and keeps
// the previous one for the cross-fade.
func (c *Compositor) adopt(in FrameInput) {
	if in.Background == nil || in.BackgroundSeq == c.seq {
		return
	}
	c.previous = c.current
	c.current = ScaleToCover(in.Background, c.canvas.Bounds().Dx(), c.canvas.Bounds().Dy())
	c.seq = in.BackgroundSeq
}

// ScaleToCover scales src to exactly width×height, centre-cropping the
// axis that overflows.
func ScaleToCover(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	crop := layout.CoverSource(src.Bounds(), width, height)
	if crop.Dx() == width && crop.Dy() == height {
		draw.Draw(dst, dst.Bounds(), src, crop.Min, draw.Src)
		return dst
	}
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, crop, xdraw.Src, nil)
	return dst
}

// TransitionProgress maps elapsed time since start onto [0, 1].
func TransitionProgress(start, now time.Time, duration time.Duration) float64 {
	if duration <= 0 {
		return 1
	}
	p := float64(now.Sub(start)) / float64(duration)
	switch {
	case p <= 0:
		return 0
	case p >= 1:
		return 1
	default:
		return p
	}
}
