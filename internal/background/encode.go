package background

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
)

// Flatten composites img over opaque black. Hand images are white on
// transparent; the backend expects an opaque silhouette.
func Flatten(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)
	return out
}

var pngEncoder = png.Encoder{CompressionLevel: png.BestSpeed}

// EncodePNG encodes img for the conditioning payload.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := pngEncoder.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
