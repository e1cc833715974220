package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/golang/freetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

const defaultCaptionSize = 14

// Captioner draws single-line status text. It prefers Go Regular rendered
// through freetype and falls back to basicfont when the font cannot be used.
type Captioner struct {
	ctx  *freetype.Context
	size float64
}

func NewCaptioner(size float64) *Captioner {
	if size <= 0 {
		size = defaultCaptionSize
	}
	c := &Captioner{size: size}
	tt, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return c
	}
	c.ctx = freetype.NewContext()
	c.ctx.SetDPI(72)
	c.ctx.SetFont(tt)
	c.ctx.SetFontSize(size)
	c.ctx.SetHinting(font.HintingFull)
	return c
}

// LineHeight is the vertical space one caption line occupies.
func (c *Captioner) LineHeight() int {
	if c.ctx == nil {
		return basicfont.Face7x13.Height
	}
	return int(math.Ceil(c.size * 1.25))
}

// Draw renders text with its top-left corner at (x, y).
func (c *Captioner) Draw(dst draw.Image, text string, x, y int, col color.Color) {
	if text == "" {
		return
	}
	src := image.NewUniform(col)
	if c.ctx != nil {
		c.ctx.SetDst(dst)
		c.ctx.SetClip(dst.Bounds())
		c.ctx.SetSrc(src)
		baseline := y + int(math.Ceil(c.size))
		if _, err := c.ctx.DrawString(text, freetype.Pt(x, baseline)); err == nil {
			return
		}
	}
	drawer := &font.Drawer{Dst: dst, Src: src, Face: basicfont.Face7x13}
	drawer.Dot = fixed.P(x, y+basicfont.Face7x13.Ascent)
	drawer.DrawString(text)
}
