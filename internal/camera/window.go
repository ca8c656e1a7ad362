package camera

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Window is a native OpenCV preview window.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a preview window with the given title.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Show displays img and pumps the window's event loop.
// It returns false once the user has closed the window.
func (w *Window) Show(img image.Image) (bool, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return true, fmt.Errorf("converting frame for display: %w", err)
	}
	defer mat.Close()

	w.win.IMShow(mat)
	w.win.WaitKey(1)
	return w.win.IsOpen(), nil
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}
