package facematch

import (
	"image"
	"math"
)

// ScaleRect maps a rectangle found on a frame downscaled by factor back to
// the original frame's coordinates.
func ScaleRect(r image.Rectangle, factor float64) image.Rectangle {
	if factor <= 0 || factor == 1 {
		return r
	}
	scale := func(v int) int {
		return int(math.Round(float64(v) / factor))
	}
	return image.Rect(scale(r.Min.X), scale(r.Min.Y), scale(r.Max.X), scale(r.Max.Y))
}
