// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Face matching constants
const (
	// DefaultTolerance is the maximum Euclidean distance between an observed
	// face descriptor and its nearest gallery descriptor for a positive match.
	// Lower values = stricter matching
	DefaultTolerance = 0.45

	// UnknownName is the label given to faces that match no gallery entry
	UnknownName = "Unknown"

	// DescriptorSize is the length of a dlib face descriptor
	DescriptorSize = 128
)

// Attendance constants
const (
	// DefaultLateAfter is the time of day after which a first sighting is Late
	DefaultLateAfter = "08:15:00"

	// LedgerFilePrefix prefixes every daily ledger file name
	LedgerFilePrefix = "attendance_"

	// LedgerDateLayout is the date layout embedded in daily ledger file names
	LedgerDateLayout = "2006-01-02"

	// LedgerTimeLayout is the layout of the Time column
	LedgerTimeLayout = "15:04:05"
)

// Processing constants
const (
	// DefaultDownscale is the factor applied to camera frames before detection
	DefaultDownscale = 0.5

	// DefaultUpdateDelayMs is the pause between two capture ticks in milliseconds
	DefaultUpdateDelayMs = 10

	// MaxImageSize is the maximum dimension (width or height) for gallery images
	MaxImageSize = 1920

	// JPEGQuality is the quality used when encoding images for the recognizer
	// and the dashboard
	JPEGQuality = 90
)

// Event channel constants
const (
	// EventChannelBuffer is the buffer size for event channels
	EventChannelBuffer = 100
)
