package handlers

import (
	"image"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/kozaktomas/face-attendance/internal/session"
)

// StatsSource reports capture loop counters.
type StatsSource interface {
	Stats() session.Stats
}

// AttendanceSnapshot is the attendance table as shown on the dashboard.
type AttendanceSnapshot struct {
	Day     string          `json:"day"`
	Path    string          `json:"path"`
	Cutoff  string          `json:"cutoff"`
	Records []ledger.Record `json:"records"`
}

// CameraStatus describes the capture side of the dashboard.
type CameraStatus struct {
	SessionID   string               `json:"session_id"`
	Camera      string               `json:"camera"` // "ok", "waiting" or the open error
	Summary     string               `json:"summary"`
	Faces       []session.FaceResult `json:"faces"`
	UpdatedAt   *time.Time           `json:"updated_at,omitempty"`
	GallerySize int                  `json:"gallery_size"`
	Stats       session.Stats        `json:"stats"`
}

// Board is the dashboard's view of the running session. It mirrors the
// ledger (as a ledger.Observer) and keeps the latest frame (as a
// session.Display), fanning new records out to SSE listeners.
type Board struct {
	EventBroadcaster

	sessionID string
	cutoff    string

	mu          sync.RWMutex
	day         string
	path        string
	records     []ledger.Record
	frame       *session.Frame
	cameraErr   string
	gallerySize int
	stats       StatsSource
}

// NewBoard creates an empty board.
func NewBoard(cutoff ledger.Cutoff) *Board {
	return &Board{
		sessionID: uuid.NewString(),
		cutoff:    cutoff.String(),
	}
}

// SessionID identifies this process run.
func (b *Board) SessionID() string {
	return b.sessionID
}

// DayOpened implements ledger.Observer.
func (b *Board) DayOpened(day, path string, records []ledger.Record) {
	b.mu.Lock()
	b.day = day
	b.path = path
	b.records = slices.Clone(records)
	b.mu.Unlock()

	b.SendEvent(EventSnapshot, b.Attendance())
}

// Recorded implements ledger.Observer.
func (b *Board) Recorded(rec ledger.Record) {
	b.mu.Lock()
	b.records = append(b.records, rec)
	b.mu.Unlock()

	b.SendEvent(EventRecord, rec)
}

// ShowFrame implements session.Display.
func (b *Board) ShowFrame(f *session.Frame) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frame = f
}

// SetCameraError records that the camera could not be opened.
func (b *Board) SetCameraError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		b.cameraErr = ""
		return
	}
	b.cameraErr = err.Error()
}

// SetGallerySize records how many people are registered.
func (b *Board) SetGallerySize(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gallerySize = n
}

// SetStatsSource attaches the capture loop counters.
func (b *Board) SetStatsSource(s StatsSource) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats = s
}

// Attendance returns the current attendance table.
func (b *Board) Attendance() AttendanceSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	records := slices.Clone(b.records)
	if records == nil {
		records = []ledger.Record{}
	}
	return AttendanceSnapshot{
		Day:     b.day,
		Path:    b.path,
		Cutoff:  b.cutoff,
		Records: records,
	}
}

// LatestImage returns the latest annotated frame, or nil before the first one.
func (b *Board) LatestImage() image.Image {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.frame == nil || b.frame.Image == nil {
		return nil
	}
	return b.frame.Image
}

// Camera returns the capture status.
func (b *Board) Camera() CameraStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()

	status := CameraStatus{
		SessionID:   b.sessionID,
		Camera:      "waiting",
		Summary:     "No face detected",
		Faces:       []session.FaceResult{},
		GallerySize: b.gallerySize,
	}

	switch {
	case b.cameraErr != "":
		status.Camera = b.cameraErr
	case b.frame != nil:
		status.Camera = "ok"
	}

	if b.frame != nil {
		at := b.frame.At
		status.Summary = b.frame.Summary
		status.Faces = slices.Clone(b.frame.Faces)
		status.UpdatedAt = &at
	}
	if b.stats != nil {
		status.Stats = b.stats.Stats()
	}
	return status
}
