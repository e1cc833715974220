package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// Point is a sub-pixel canvas position.
type Point struct {
	X, Y float64
}

// taperSteps is the number of segments sampled along each side of a hand.
const taperSteps = 20

// HandAngle returns the angle in degrees of a hand that has covered unit out
// of period. 12 o'clock is -90 because canvas y grows downwards.
func HandAngle(unit, period float64) float64 {
	return -90 + 360*unit/period
}

// HourAngle includes the minute fraction so the hour hand creeps between marks.
func HourAngle(hour, minute int) float64 {
	return HandAngle(float64(hour%12)+float64(minute)/60, 12)
}

func MinuteAngle(minute int) float64 { return HandAngle(float64(minute), 60) }

func SecondAngle(second int) float64 { return HandAngle(float64(second), 60) }

// HandEnd returns the tip of a hand of the given length anchored at center.
func HandEnd(center Point, angleDeg, length float64) Point {
	rad := angleDeg * math.Pi / 180
	return Point{
		X: center.X + length*math.Cos(rad),
		Y: center.Y + length*math.Sin(rad),
	}
}

// TaperedPolygon outlines a hand from start to end whose width narrows
// linearly from startWidth to endWidth. One side is walked outward and the
// other back, so the result is a closed simple polygon.
func TaperedPolygon(start, end Point, startWidth, endWidth float64) []Point {
	angle := math.Atan2(end.Y-start.Y, end.X-start.X)
	nx, ny := math.Cos(angle+math.Pi/2), math.Sin(angle+math.Pi/2)

	side := func(t, sign float64) Point {
		half := (startWidth*(1-t) + endWidth*t) / 2
		x := start.X + (end.X-start.X)*t
		y := start.Y + (end.Y-start.Y)*t
		return Point{X: x + sign*nx*half, Y: y + sign*ny*half}
	}

	points := make([]Point, 0, 2*(taperSteps+1))
	for i := 0; i <= taperSteps; i++ {
		points = append(points, side(float64(i)/taperSteps, 1))
	}
	for i := taperSteps; i >= 0; i-- {
		points = append(points, side(float64(i)/taperSteps, -1))
	}
	return points
}

// FillPolygon rasterizes an anti-aliased polygon onto dst.
func FillPolygon(dst draw.Image, points []Point, c color.Color) {
	if len(points) < 3 {
		return
	}
	bounds := dst.Bounds()
	if bounds.Empty() {
		return
	}
	z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	ox, oy := float64(bounds.Min.X), float64(bounds.Min.Y)
	z.MoveTo(float32(points[0].X-ox), float32(points[0].Y-oy))
	for _, p := range points[1:] {
		z.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	z.ClosePath()
	z.Draw(dst, bounds, image.NewUniform(c), image.Point{})
}

// DrawHand draws one hand of the given spec onto dst.
func DrawHand(dst draw.Image, center Point, radius, angleDeg float64, spec HandSpec, c color.Color) {
	end := HandEnd(center, angleDeg, radius*spec.LengthRatio)
	FillPolygon(dst, TaperedPolygon(center, end, spec.StartWidth, spec.EndWidth), c)
}

// RenderHands draws the hour and minute hands onto a fresh transparent canvas.
// The result is the conditioning image for background generation.
func RenderHands(width, height int, radius float64, hour, minute int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	center := Center(img.Bounds())
	DrawHand(img, center, radius, HourAngle(hour, minute), HourHand, HandColor)
	DrawHand(img, center, radius, MinuteAngle(minute), MinuteHand, HandColor)
	return img
}

// DrawSecondHand draws the thin red second hand directly onto a frame.
func DrawSecondHand(dst draw.Image, radius float64, second int) {
	DrawHand(dst, Center(dst.Bounds()), radius, SecondAngle(second), SecondHand, SecondHandColor)
}

// Center mirrors integer-division centring so hand anchors match across images.
func Center(r image.Rectangle) Point {
	return Point{X: float64(r.Min.X + r.Dx()/2), Y: float64(r.Min.Y + r.Dy()/2)}
}
