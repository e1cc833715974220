package background

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/rook-computer/clockface/internal/render/layout"
	xdraw "golang.org/x/image/draw"
)

const thumbnailSize = 100

// ExtractDominantColor picks the brightest pixel, by R+G+B, of a thumbnail
// of img that fits within 100×100. Ties go to the first pixel in row order.
// The result carries alpha as its opacity.
func ExtractDominantColor(img image.Image, alpha uint8) color.NRGBA {
	best := color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: alpha}
	if img == nil || img.Bounds().Empty() {
		return best
	}

	b := img.Bounds()
	w, h := layout.FitSize(b.Dx(), b.Dy(), thumbnailSize, thumbnailSize)
	thumb := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(thumb, thumb.Bounds(), img, b.Min, draw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(thumb, thumb.Bounds(), img, b, xdraw.Src, nil)
	}

	bestSum := -1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := thumb.NRGBAAt(x, y)
			if sum := int(c.R) + int(c.G) + int(c.B); sum > bestSum {
				bestSum = sum
				best = color.NRGBA{R: c.R, G: c.G, B: c.B, A: alpha}
			}
		}
	}
	return best
}

// LerpColor interpolates each channel from prev to cur. progress <= 0 yields
// prev and progress >= 1 yields cur exactly; values in between truncate.
func LerpColor(prev, cur color.NRGBA, progress float64) color.NRGBA {
	switch {
	case progress <= 0:
		return prev
	case progress >= 1:
		return cur
	}
	return color.NRGBA{
		R: lerp(prev.R, cur.R, progress),
		G: lerp(prev.G, cur.G, progress),
		B: lerp(prev.B, cur.B, progress),
		A: lerp(prev.A, cur.A, progress),
	}
}

func lerp(a, b uint8, p float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*p)
}
