// Package vision holds the image plumbing around face detection: the Detector
// contract, resizing, JPEG encoding and frame annotation. It has no cgo
// dependencies; the dlib backed detector lives in the dlib subpackage.
package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/kozaktomas/face-attendance/internal/constants"
)

// ErrNoFace is returned when an image that must contain a face has none.
var ErrNoFace = errors.New("no face found")

// Face is a single detected face.
type Face struct {
	Rect       image.Rectangle // location relative to the analysed image's top-left corner
	Descriptor []float32       // identity embedding
}

// Detector finds faces in an image and computes a descriptor for each.
type Detector interface {
	Detect(img image.Image) ([]Face, error)
}

// Decode decodes JPEG or PNG image data.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// EncodeJPEG encodes an image as JPEG.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: constants.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
