package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kozaktomas/face-attendance/internal/constants"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Detection models understood by the recognizer.
const (
	DetectionModelHOG = "hog"
	DetectionModelCNN = "cnn"
)

type Config struct {
	Gallery     GalleryConfig     `yaml:"gallery"`
	Ledger      LedgerConfig      `yaml:"ledger"`
	Recognition RecognitionConfig `yaml:"recognition"`
	Camera      CameraConfig      `yaml:"camera"`
	Web         WebConfig         `yaml:"web"`
}

type GalleryConfig struct {
	Dir string `yaml:"dir"` // directory of registered reference photos
}

type LedgerConfig struct {
	Dir       string `yaml:"dir"`        // directory holding attendance_<date>.csv files
	LateAfter string `yaml:"late_after"` // HH:MM:SS, sightings strictly after this are Late
}

type RecognitionConfig struct {
	ModelsDir      string  `yaml:"models_dir"` // dlib model files for go-face
	Tolerance      float64 `yaml:"tolerance"`
	DetectionModel string  `yaml:"detection_model"` // hog or cnn
	Downscale      float64 `yaml:"downscale"`       // frame scale factor before detection, (0, 1]
}

type CameraConfig struct {
	Device        int `yaml:"device"`
	UpdateDelayMs int `yaml:"update_delay_ms"`
}

// UpdateDelay returns the pause between two capture ticks.
func (c *CameraConfig) UpdateDelay() time.Duration {
	return time.Duration(c.UpdateDelayMs) * time.Millisecond
}

type WebConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"` // extra CORS origins besides localhost
}

// envString returns the environment variable or the default when unset or empty.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envInt reads an environment variable and parses it as a non-negative integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Values above max are rejected when max is positive.
func envFloat(key string, defaultVal, max float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 || (max > 0 && f > max) {
		return defaultVal
	}
	return f
}

// envClock reads an HH:MM[:SS] time of day, falling back to the default
// when the value does not parse.
func envClock(key, defaultVal string) string {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if !ValidClock(s) {
		return defaultVal
	}
	return s
}

// ValidClock reports whether s is a time of day in HH:MM or HH:MM:SS form.
func ValidClock(s string) bool {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// envList reads a comma-separated list, dropping empty items.
func envList(key string, defaultVal []string) []string {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	var out []string
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envDetectionModel(key, defaultVal string) string {
	switch m := strings.ToLower(os.Getenv(key)); m {
	case DetectionModelHOG, DetectionModelCNN:
		return m
	default:
		return defaultVal
	}
}

// Defaults returns the embedded default configuration, with missing or
// invalid values replaced by the built-in constants.
func Defaults() *Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	if cfg.Recognition.Tolerance <= 0 {
		cfg.Recognition.Tolerance = constants.DefaultTolerance
	}
	if cfg.Recognition.Downscale <= 0 || cfg.Recognition.Downscale > 1 {
		cfg.Recognition.Downscale = constants.DefaultDownscale
	}
	if !ValidClock(cfg.Ledger.LateAfter) {
		cfg.Ledger.LateAfter = constants.DefaultLateAfter
	}
	if cfg.Camera.UpdateDelayMs <= 0 {
		cfg.Camera.UpdateDelayMs = constants.DefaultUpdateDelayMs
	}
	return &cfg
}

// Load returns the embedded defaults overridden by environment variables.
func Load() *Config {
	d := Defaults()

	return &Config{
		Gallery: GalleryConfig{
			Dir: envString("ATTENDANCE_GALLERY_DIR", d.Gallery.Dir),
		},
		Ledger: LedgerConfig{
			Dir:       envString("ATTENDANCE_LOG_DIR", d.Ledger.Dir),
			LateAfter: envClock("ATTENDANCE_LATE_AFTER", d.Ledger.LateAfter),
		},
		Recognition: RecognitionConfig{
			ModelsDir:      envString("ATTENDANCE_MODELS_DIR", d.Recognition.ModelsDir),
			Tolerance:      envFloat("ATTENDANCE_TOLERANCE", d.Recognition.Tolerance, 0),
			DetectionModel: envDetectionModel("ATTENDANCE_DETECTION_MODEL", d.Recognition.DetectionModel),
			Downscale:      envFloat("ATTENDANCE_DOWNSCALE", d.Recognition.Downscale, 1),
		},
		Camera: CameraConfig{
			Device:        envInt("ATTENDANCE_CAMERA", d.Camera.Device),
			UpdateDelayMs: envInt("ATTENDANCE_UPDATE_DELAY", d.Camera.UpdateDelayMs),
		},
		Web: WebConfig{
			Host:           envString("WEB_HOST", d.Web.Host),
			Port:           envInt("WEB_PORT", d.Web.Port),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS", d.Web.AllowedOrigins),
		},
	}
}
