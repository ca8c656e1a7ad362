// Package dlib implements vision.Detector with go-face, which wraps dlib's
// HOG/CNN face detector and its 128-dimensional face descriptor network.
//
// The models directory must contain shape_predictor_5_face_landmarks.dat,
// dlib_face_recognition_resnet_model_v1.dat and, for the CNN detector,
// mmod_human_face_detector.dat.
package dlib

import (
	"fmt"
	"image"
	"sync"

	"github.com/Kagami/go-face"
	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/kozaktomas/face-attendance/internal/vision"
)

// Recognizer detects faces and computes descriptors with dlib.
type Recognizer struct {
	rec *face.Recognizer
	cnn bool
	mu  sync.Mutex // dlib recognizer is not safe for concurrent use
}

// New loads the dlib models from modelsDir. useCNN selects the CNN face
// detector instead of HOG.
func New(modelsDir string, useCNN bool) (*Recognizer, error) {
	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load face models from %s: %w", modelsDir, err)
	}
	return &Recognizer{rec: rec, cnn: useCNN}, nil
}

// Detect implements vision.Detector.
func (r *Recognizer) Detect(img image.Image) ([]vision.Face, error) {
	data, err := vision.EncodeJPEG(img)
	if err != nil {
		return nil, err
	}
	return r.DetectJPEG(data)
}

// DetectJPEG runs detection on JPEG encoded image data.
func (r *Recognizer) DetectJPEG(data []byte) ([]vision.Face, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var faces []face.Face
	var err error
	if r.cnn {
		faces, err = r.rec.RecognizeCNN(data)
	} else {
		faces, err = r.rec.Recognize(data)
	}
	if err != nil {
		return nil, fmt.Errorf("face recognition failed: %w", err)
	}

	result := make([]vision.Face, len(faces))
	for i, f := range faces {
		descriptor := make([]float32, constants.DescriptorSize)
		copy(descriptor, f.Descriptor[:])
		result[i] = vision.Face{
			Rect:       f.Rectangle,
			Descriptor: descriptor,
		}
	}
	return result, nil
}

// Close frees the dlib resources.
func (r *Recognizer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rec.Close()
}
