package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/skip2/go-qrcode"
)

const defaultQRCodeSizePx = 96

// StatusQRCode renders payload (usually the status API URL) as a QR code
// on a translucent plate so it stays scannable over generated art.
// An empty payload yields (nil, nil).
func StatusQRCode(payload string, sizePx int, alpha uint8) (*image.RGBA, error) {
	if payload == "" {
		return nil, nil
	}
	if sizePx <= 0 {
		sizePx = defaultQRCodeSizePx
	}
	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	code.BackgroundColor = color.White
	code.ForegroundColor = color.Black

	out := image.NewRGBA(image.Rect(0, 0, sizePx, sizePx))
	draw.DrawMask(out, out.Bounds(), code.Image(sizePx), image.Point{}, image.NewUniform(color.Alpha{A: alpha}), image.Point{}, draw.Src)
	return out, nil
}
