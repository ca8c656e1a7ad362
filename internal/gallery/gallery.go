// Package gallery loads the registered reference photos into a face gallery.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/kozaktomas/face-attendance/internal/facematch"
	"github.com/kozaktomas/face-attendance/internal/vision"
	"github.com/schollz/progressbar/v3"
)

// ErrNotDirectory is returned when the gallery path is not a directory.
var ErrNotDirectory = errors.New("gallery path is not a directory")

var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// SupportedExtension reports whether a file name has a gallery image extension.
func SupportedExtension(name string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}

// Label returns the identity label for a gallery file: its base name without extension.
func Label(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SkippedFile is a gallery image that did not produce an entry.
type SkippedFile struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// Result is a loaded gallery along with the files it came from.
type Result struct {
	Gallery *facematch.Gallery
	Files   []string      // source file of each gallery entry, parallel to Gallery.Names
	Skipped []SkippedFile // files excluded from the gallery
}

// Options controls gallery loading.
type Options struct {
	ShowProgress bool // render a progress bar on stderr
	MaxImageSize int  // long-side limit before detection, defaults to constants.MaxImageSize
}

// Load reads every supported image in dir, in file name order, and stores the
// first detected face of each under the file's base name. Files that cannot
// be read or decoded, contain no face, or repeat an already loaded identity
// are skipped and reported, never fatal.
func Load(ctx context.Context, dir string, det vision.Detector, opts Options) (*Result, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("reading gallery directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading gallery directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !SupportedExtension(e.Name()) {
			continue
		}
		files = append(files, e.Name())
	}

	maxSize := opts.MaxImageSize
	if maxSize <= 0 {
		maxSize = constants.MaxImageSize
	}

	var bar *progressbar.ProgressBar
	if opts.ShowProgress {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("Loading gallery"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("faces"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionFullWidth(),
		)
	}

	result := &Result{Gallery: &facematch.Gallery{}}
	seen := make(map[string]string) // normalized label -> file

	skip := func(file, reason string) {
		log.Printf("Skipping gallery image %s: %s", file, reason)
		result.Skipped = append(result.Skipped, SkippedFile{File: file, Reason: reason})
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if bar != nil {
			_ = bar.Add(1)
		}

		label := Label(file)
		key := facematch.LabelKey(label)
		if key == "" {
			skip(file, "empty label")
			continue
		}
		if first, ok := seen[key]; ok {
			skip(file, "duplicate of "+first)
			continue
		}

		descriptor, err := loadDescriptor(filepath.Join(dir, file), det, maxSize)
		if err != nil {
			skip(file, err.Error())
			continue
		}

		seen[key] = file
		result.Gallery.Add(label, descriptor)
		result.Files = append(result.Files, file)
	}

	if bar != nil {
		_ = bar.Finish()
	}

	return result, nil
}

// loadDescriptor returns the descriptor of the first face in an image file.
func loadDescriptor(path string, det vision.Detector, maxSize int) ([]float32, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the gallery directory listing
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	img, err := vision.Decode(data)
	if err != nil {
		return nil, err
	}

	faces, err := det.Detect(vision.FitWithin(img, maxSize))
	if err != nil {
		return nil, err
	}
	if len(faces) == 0 {
		return nil, vision.ErrNoFace
	}

	return faces[0].Descriptor, nil
}
