package layout

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	r := image.Rectangle{Min: image.Pt(10, 20), Max: image.Pt(0, 5)}
	assert.Equal(t, image.Rect(0, 5, 10, 20), Normalize(r))
}

func TestInset(t *testing.T) {
	assert.Equal(t, image.Rect(8, 8, 92, 42), Inset(image.Rect(0, 0, 100, 50), 8))
	assert.Equal(t, image.Rect(0, 0, 100, 50), Inset(image.Rect(0, 0, 100, 50), 0))
	// Padding larger than half the box collapses to the centre line.
	assert.Equal(t, image.Rect(5, 5, 5, 5), Inset(image.Rect(0, 0, 10, 10), 40))
}

func TestAnchorBottomRight(t *testing.T) {
	assert.Equal(t, image.Rect(60, 30, 100, 50), AnchorBottomRight(image.Rect(0, 0, 100, 50), 40, 20))
	assert.Equal(t, image.Rect(0, 0, 100, 50), AnchorBottomRight(image.Rect(0, 0, 100, 50), 400, 200))
	assert.Equal(t, image.Rect(100, 50, 100, 50), AnchorBottomRight(image.Rect(0, 0, 100, 50), -1, -1))
}

func TestCoverSource(t *testing.T) {
	tests := []struct {
		name string
		src  image.Rectangle
		w, h int
		want image.Rectangle
	}{
		{"same aspect", image.Rect(0, 0, 1280, 720), 640, 360, image.Rect(0, 0, 1280, 720)},
		{"square into wide crops rows", image.Rect(0, 0, 512, 512), 640, 360, image.Rect(0, 112, 512, 400)},
		{"wide into square crops columns", image.Rect(0, 0, 640, 360), 100, 100, image.Rect(140, 0, 500, 360)},
		{"offset source", image.Rect(10, 10, 522, 522), 640, 360, image.Rect(10, 122, 522, 410)},
		{"empty source", image.Rect(0, 0, 0, 0), 640, 360, image.Rect(0, 0, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoverSource(tt.src, tt.w, tt.h))
		})
	}
}

func TestFitSize(t *testing.T) {
	w, h := FitSize(640, 360, 100, 100)
	assert.Equal(t, 100, w)
	assert.Equal(t, 56, h)

	w, h = FitSize(360, 640, 100, 100)
	assert.Equal(t, 56, w)
	assert.Equal(t, 100, h)

	w, h = FitSize(80, 60, 100, 100)
	assert.Equal(t, 80, w)
	assert.Equal(t, 60, h)
}
