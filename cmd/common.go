package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/kozaktomas/face-attendance/internal/vision/dlib"
)

// openRecognizer loads the dlib models configured in cfg.
func openRecognizer(cfg *config.Config) (*dlib.Recognizer, error) {
	return dlib.New(cfg.Recognition.ModelsDir, cfg.Recognition.DetectionModel == config.DetectionModelCNN)
}

// loadGallery loads the gallery directory. With showProgress it renders a
// progress bar and prints a summary.
func loadGallery(ctx context.Context, cfg *config.Config, rec *dlib.Recognizer, showProgress bool) (*gallery.Result, error) {
	result, err := gallery.Load(ctx, cfg.Gallery.Dir, rec, gallery.Options{ShowProgress: showProgress})
	if err != nil {
		return nil, fmt.Errorf("failed to load gallery: %w", err)
	}

	if !showProgress {
		return result, nil
	}

	fmt.Printf("Loaded %d registered faces from %s (%d skipped)\n",
		result.Gallery.Len(), cfg.Gallery.Dir, len(result.Skipped))
	if result.Gallery.Len() == 0 {
		fmt.Println("Warning: gallery is empty, every face will be Unknown")
	}
	return result, nil
}

func outputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}
