package layout

import "image"

// Normalize ensures Min is <= Max on both axes.
func Normalize(rect image.Rectangle) image.Rectangle {
	if rect.Min.X > rect.Max.X {
		rect.Min.X, rect.Max.X = rect.Max.X, rect.Min.X
	}
	if rect.Min.Y > rect.Max.Y {
		rect.Min.Y, rect.Max.Y = rect.Max.Y, rect.Min.Y
	}
	return rect
}

// Inset shrinks rect by paddingPx on all sides, never past its centre.
func Inset(rect image.Rectangle, paddingPx int) image.Rectangle {
	rect = Normalize(rect)
	if paddingPx <= 0 {
		return rect
	}
	px := min(paddingPx, rect.Dx()/2)
	py := min(paddingPx, rect.Dy()/2)
	return image.Rect(rect.Min.X+px, rect.Min.Y+py, rect.Max.X-px, rect.Max.Y-py)
}

// AnchorBottomRight places a (widthPx, heightPx) box in the bottom-right corner
// of rect, clamped to rect.
func AnchorBottomRight(rect image.Rectangle, widthPx, heightPx int) image.Rectangle {
	rect = Normalize(rect)
	widthPx = clamp(widthPx, 0, rect.Dx())
	heightPx = clamp(heightPx, 0, rect.Dy())
	return image.Rect(rect.Max.X-widthPx, rect.Max.Y-heightPx, rect.Max.X, rect.Max.Y)
}

// CoverSource returns the centred region of src that, scaled uniformly, covers
// a dst-shaped area exactly (CSS object-fit: cover). The surplus axis is cropped.
func CoverSource(src image.Rectangle, dstWidth, dstHeight int) image.Rectangle {
	src = Normalize(src)
	sw, sh := src.Dx(), src.Dy()
	if sw == 0 || sh == 0 || dstWidth <= 0 || dstHeight <= 0 {
		return src
	}
	// Compare aspect ratios without floats: sw/sh vs dw/dh.
	if sw*dstHeight > sh*dstWidth {
		w := sh * dstWidth / dstHeight
		x := src.Min.X + (sw-w)/2
		return image.Rect(x, src.Min.Y, x+w, src.Max.Y)
	}
	h := sw * dstHeight / dstWidth
	y := src.Min.Y + (sh-h)/2
	return image.Rect(src.Min.X, y, src.Max.X, y+h)
}

// FitSize scales (w, h) down to fit within maxW×maxH keeping the aspect ratio.
// Sizes already inside the box are returned unchanged.
func FitSize(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	if w*maxH > h*maxW {
		return maxW, max(1, h*maxW/w)
	}
	return max(1, w*maxH/h), maxH
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
