// Package session runs the live capture loop: read a frame, find and identify
// faces, record first sightings in the ledger and hand an annotated frame to
// the display.
package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kozaktomas/face-attendance/internal/facematch"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/kozaktomas/face-attendance/internal/vision"
)

// ErrFrameSkipped is returned by Tick when no frame could be read.
var ErrFrameSkipped = errors.New("frame skipped")

// FrameSource delivers camera frames.
type FrameSource interface {
	Read() (image.Image, error)
}

// Recorder is the part of the ledger the loop needs.
type Recorder interface {
	Record(name string) (ledger.Record, bool, error)
}

// Display receives every processed frame.
type Display interface {
	ShowFrame(f *Frame)
}

// Displays fans a frame out to several displays.
type Displays []Display

// ShowFrame implements Display.
func (d Displays) ShowFrame(f *Frame) {
	for _, display := range d {
		display.ShowFrame(f)
	}
}

// FaceResult is one face found in a frame.
type FaceResult struct {
	Rect     image.Rectangle     `json:"rect"` // in original frame coordinates
	Name     string              `json:"name"`
	Distance float64             `json:"distance"`
	State    facematch.FaceState `json:"state"`
}

// Frame is the outcome of one tick.
type Frame struct {
	Image   *image.RGBA  `json:"-"` // annotated original-resolution frame
	Faces   []FaceResult `json:"faces"`
	Summary string       `json:"summary"`
	At      time.Time    `json:"at"`
}

// Options tunes the loop.
type Options struct {
	Tolerance   float64
	Downscale   float64       // frame scale factor before detection
	UpdateDelay time.Duration // pause after each tick
	Now         func() time.Time
}

// Stats counts ticks since the session started.
type Stats struct {
	Ticks   int64 `json:"ticks"`
	Skipped int64 `json:"skipped"`
	Faces   int64 `json:"faces"`
}

// Session is everything the capture loop works with.
type Session struct {
	gallery  *facematch.Gallery
	ledger   Recorder
	detector vision.Detector
	source   FrameSource
	display  Display
	opts     Options

	ticks   atomic.Int64
	skipped atomic.Int64
	faces   atomic.Int64
}

// New creates a session. display may be nil.
func New(g *facematch.Gallery, l Recorder, det vision.Detector, src FrameSource, display Display, opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if display == nil {
		display = Displays(nil)
	}
	return &Session{
		gallery:  g,
		ledger:   l,
		detector: det,
		source:   src,
		display:  display,
		opts:     opts,
	}
}

// Stats returns the session counters.
func (s *Session) Stats() Stats {
	return Stats{
		Ticks:   s.ticks.Load(),
		Skipped: s.skipped.Load(),
		Faces:   s.faces.Load(),
	}
}

// Run calls Tick until ctx is done. The next tick starts UpdateDelay after
// the previous one returned, so ticks never overlap. Read failures and
// detection errors are logged and never stop the loop.
func (s *Session) Run(ctx context.Context) error {
	skipping := false
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		_, err := s.Tick(ctx)
		if ctx.Err() != nil {
			return nil
		}
		switch {
		case errors.Is(err, ErrFrameSkipped):
			if !skipping {
				log.Printf("WARNING: %v, retrying", err)
				skipping = true
			}
		case err != nil:
			log.Printf("WARNING: frame processing failed: %v", err)
		case skipping:
			log.Println("Camera frames resumed")
			skipping = false
		}

		timer.Reset(s.opts.UpdateDelay)
	}
}

// Tick processes one frame.
func (s *Session) Tick(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.ticks.Add(1)

	img, err := s.source.Read()
	if err != nil || img == nil {
		s.skipped.Add(1)
		if err == nil {
			err = errors.New("empty frame")
		}
		return nil, fmt.Errorf("%w: %w", ErrFrameSkipped, err)
	}

	small := vision.Downsample(img, s.opts.Downscale)
	detected, err := s.detector.Detect(small)
	if err != nil {
		return nil, fmt.Errorf("detecting faces: %w", err)
	}

	frame := &Frame{
		Image: vision.ToRGBA(img),
		Faces: make([]FaceResult, 0, len(detected)),
		At:    s.opts.Now(),
	}

	scale := s.opts.Downscale
	if scale <= 0 || scale >= 1 {
		scale = 1
	}
	for _, face := range detected {
		result := facematch.Match(face.Descriptor, s.gallery, s.opts.Tolerance)
		fr := FaceResult{
			Rect:     facematch.ScaleRect(face.Rect, scale),
			Name:     result.Name,
			Distance: result.Distance,
			State:    s.identify(result),
		}
		frame.Faces = append(frame.Faces, fr)
		vision.DrawLabel(frame.Image, fr.Rect, fr.Name, stateColor(fr.State))
	}

	s.faces.Add(int64(len(frame.Faces)))
	frame.Summary = Summary(frame.Faces)
	s.display.ShowFrame(frame)
	return frame, nil
}

// identify records a known face in the ledger and classifies it.
func (s *Session) identify(result facematch.Result) facematch.FaceState {
	if !result.Known {
		return facematch.StateUnknown
	}

	_, added, err := s.ledger.Record(result.Name)
	if err != nil {
		log.Printf("WARNING: failed to record attendance for %s: %v", result.Name, err)
		return facematch.StateNew
	}
	if added {
		return facematch.StateNew
	}
	return facematch.StateMarked
}

func stateColor(state facematch.FaceState) color.RGBA {
	switch state {
	case facematch.StateNew:
		return vision.ColorNew
	case facematch.StateMarked:
		return vision.ColorMarked
	default:
		return vision.ColorUnknown
	}
}

// Summary lists every face name of a frame, Unknown included.
func Summary(faces []FaceResult) string {
	if len(faces) == 0 {
		return "No face detected"
	}
	names := make([]string, len(faces))
	for i, f := range faces {
		names[i] = f.Name
	}
	return "Detected: " + strings.Join(names, ", ")
}
