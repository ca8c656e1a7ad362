package handlers

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/kozaktomas/face-attendance/internal/facematch"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/kozaktomas/face-attendance/internal/session"
)

// testBoard creates a board with an 08:15:00 cutoff and an opened day.
func testBoard(t *testing.T, records ...ledger.Record) *Board {
	t.Helper()

	cutoff, err := ledger.ParseCutoff("08:15:00")
	if err != nil {
		t.Fatalf("failed to parse cutoff: %v", err)
	}

	b := NewBoard(cutoff)
	b.DayOpened("2024-03-04", "logs/attendance_2024-03-04.csv", records)
	return b
}

// testFrame creates a small annotated frame with a single face.
func testFrame(name string, state facematch.FaceState) *session.Frame {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := range 48 {
		for x := range 64 {
			img.Set(x, y, color.RGBA{R: 40, G: 80, B: 120, A: 255})
		}
	}

	faces := []session.FaceResult{{
		Rect:     image.Rect(10, 10, 30, 30),
		Name:     name,
		Distance: 0.2,
		State:    state,
	}}

	return &session.Frame{
		Image:   img,
		Faces:   faces,
		Summary: session.Summary(faces),
		At:      time.Date(2024, 3, 4, 8, 0, 0, 0, time.Local),
	}
}

type fakeStats struct {
	stats session.Stats
}

func (f fakeStats) Stats() session.Stats {
	return f.stats
}
