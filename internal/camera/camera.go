// Package camera reads frames from a local video capture device through OpenCV.
package camera

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ErrReadFailed is returned when the device delivers no frame.
var ErrReadFailed = errors.New("camera read failed")

// Webcam is an opened video capture device.
type Webcam struct {
	device int
	cap    *gocv.VideoCapture
	frame  gocv.Mat
}

// Open opens the video capture device with the given index.
func Open(device int) (*Webcam, error) {
	c, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("opening video capture device %d: %w", device, err)
	}
	if !c.IsOpened() {
		_ = c.Close()
		return nil, fmt.Errorf("video capture device %d is not available", device)
	}
	return &Webcam{
		device: device,
		cap:    c,
		frame:  gocv.NewMat(),
	}, nil
}

// Read grabs the next frame.
func (w *Webcam) Read() (image.Image, error) {
	if ok := w.cap.Read(&w.frame); !ok || w.frame.Empty() {
		return nil, ErrReadFailed
	}
	img, err := w.frame.ToImage()
	if err != nil {
		return nil, fmt.Errorf("converting frame: %w", err)
	}
	return img, nil
}

// Device returns the device index.
func (w *Webcam) Device() int {
	return w.device
}

// Close releases the device.
func (w *Webcam) Close() error {
	if err := w.frame.Close(); err != nil {
		return fmt.Errorf("releasing frame buffer: %w", err)
	}
	if err := w.cap.Close(); err != nil {
		return fmt.Errorf("releasing camera: %w", err)
	}
	return nil
}
