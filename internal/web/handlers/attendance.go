package handlers

import (
	"log"
	"net/http"

	"github.com/kozaktomas/face-attendance/internal/vision"
)

// AttendanceHandler serves the dashboard endpoints.
type AttendanceHandler struct {
	board *Board
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(board *Board) *AttendanceHandler {
	return &AttendanceHandler{board: board}
}

// List returns today's attendance table.
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.board.Attendance())
}

// Events streams attendance changes over SSE, starting with a snapshot.
func (h *AttendanceHandler) Events(w http.ResponseWriter, r *http.Request) {
	initial := Event{Type: EventSnapshot, Data: h.board.Attendance()}
	streamSSEEvents(w, r, &h.board.EventBroadcaster, initial)
}

// Status returns the capture status and the faces of the latest frame.
func (h *AttendanceHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.board.Camera())
}

// Frame returns the latest annotated frame as JPEG.
func (h *AttendanceHandler) Frame(w http.ResponseWriter, r *http.Request) {
	img := h.board.LatestImage()
	if img == nil {
		respondError(w, http.StatusNotFound, "no frame captured yet")
		return
	}

	data, err := vision.EncodeJPEG(img)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode frame")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("WARNING: failed to write frame: %v", err)
	}
}
