package vision

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Box colours by face state.
var (
	ColorNew     = color.RGBA{0, 255, 0, 255}   // green
	ColorMarked  = color.RGBA{255, 165, 0, 255} // orange
	ColorUnknown = color.RGBA{255, 0, 0, 255}   // red
)

const (
	boxLineWidth = 2
	labelHeight  = 25
	labelPadding = 5
)

// drawHLine draws a horizontal line on the image.
func drawHLine(dst *image.RGBA, x1, x2, y int, c color.RGBA) {
	bounds := dst.Bounds()
	if y < bounds.Min.Y || y >= bounds.Max.Y {
		return
	}
	for x := x1; x <= x2; x++ {
		if x >= bounds.Min.X && x < bounds.Max.X {
			dst.SetRGBA(x, y, c)
		}
	}
}

// drawVLine draws a vertical line on the image.
func drawVLine(dst *image.RGBA, y1, y2, x int, c color.RGBA) {
	bounds := dst.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X {
		return
	}
	for y := y1; y <= y2; y++ {
		if y >= bounds.Min.Y && y < bounds.Max.Y {
			dst.SetRGBA(x, y, c)
		}
	}
}

// DrawBox draws a rectangle outline of the given colour.
func DrawBox(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	x1, y1, x2, y2 := r.Min.X, r.Min.Y, r.Max.X, r.Max.Y
	for w := range boxLineWidth {
		drawHLine(dst, x1, x2, y1+w, c)
		drawHLine(dst, x1, x2, y2-w, c)
		drawVLine(dst, y1, y2, x1+w, c)
		drawVLine(dst, y1, y2, x2-w, c)
	}
}

// DrawLabel draws a box around r with a filled strip along its bottom edge
// carrying the label in white.
func DrawLabel(dst *image.RGBA, r image.Rectangle, label string, c color.RGBA) {
	DrawBox(dst, r, c)

	strip := image.Rect(r.Min.X, r.Max.Y-labelHeight, r.Max.X, r.Max.Y).Intersect(dst.Bounds())
	draw.Draw(dst, strip, image.NewUniform(c), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(r.Min.X+labelPadding, r.Max.Y-labelPadding),
	}
	d.DrawString(label)
}
