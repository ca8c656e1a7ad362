package handlers

import (
	"net/http"

	"github.com/kozaktomas/face-attendance/internal/config"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{
		config: cfg,
	}
}

// ConfigResponse represents the effective settings of the running session
type ConfigResponse struct {
	GalleryDir     string  `json:"gallery_dir"`
	LedgerDir      string  `json:"ledger_dir"`
	LateAfter      string  `json:"late_after"`
	Tolerance      float64 `json:"tolerance"`
	DetectionModel string  `json:"detection_model"`
	Downscale      float64 `json:"downscale"`
	CameraDevice   int     `json:"camera_device"`
	UpdateDelayMs  int     `json:"update_delay_ms"`
}

// Get returns the effective configuration
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	response := ConfigResponse{
		GalleryDir:     h.config.Gallery.Dir,
		LedgerDir:      h.config.Ledger.Dir,
		LateAfter:      h.config.Ledger.LateAfter,
		Tolerance:      h.config.Recognition.Tolerance,
		DetectionModel: h.config.Recognition.DetectionModel,
		Downscale:      h.config.Recognition.Downscale,
		CameraDevice:   h.config.Camera.Device,
		UpdateDelayMs:  h.config.Camera.UpdateDelayMs,
	}

	respondJSON(w, http.StatusOK, response)
}
