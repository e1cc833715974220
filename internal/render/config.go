package render

import "image/color"

// Palette shared by the hand image, the overlay and the live second hand.
var (
	HandColor       = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	SecondHandColor = color.RGBA{R: 0xFF, G: 0x00, B: 0x00, A: 0xFF}
	Backdrop        = color.RGBA{A: 0xFF}
	CaptionColor    = color.RGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
)

// HandSpec sizes a hand relative to the clock radius. Widths are in pixels.
type HandSpec struct {
	LengthRatio float64
	StartWidth  float64
	EndWidth    float64
}

var (
	HourHand   = HandSpec{LengthRatio: 0.5, StartWidth: 20, EndWidth: 4}
	MinuteHand = HandSpec{LengthRatio: 0.7, StartWidth: 12, EndWidth: 2}
	SecondHand = HandSpec{LengthRatio: 0.8, StartWidth: 2, EndWidth: 2}
)
