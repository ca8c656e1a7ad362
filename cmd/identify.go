package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/kozaktomas/face-attendance/internal/facematch"
	"github.com/kozaktomas/face-attendance/internal/vision"
	"github.com/spf13/cobra"
)

var identifyCmd = &cobra.Command{
	Use:   "identify <image>",
	Short: "Identify the faces in a still image",
	Long: `Detect every face in an image and match it against the gallery.
Nothing is written to the ledger.

Examples:
  face-attendance identify class-photo.jpg
  face-attendance identify door.png --tolerance 0.4 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)

	identifyCmd.Flags().String("gallery", "", "Directory of reference photos (default from config)")
	identifyCmd.Flags().Float64("tolerance", constants.DefaultTolerance, "Maximum descriptor distance for a match")
	identifyCmd.Flags().Bool("json", false, "Output as JSON")
}

// identifiedFace is one face found in the image.
type identifiedFace struct {
	Name     string  `json:"name"`
	Known    bool    `json:"known"`
	Distance float64 `json:"distance"`
	Left     int     `json:"left"`
	Top      int     `json:"top"`
	Right    int     `json:"right"`
	Bottom   int     `json:"bottom"`
}

// identifyFaces matches every detected face against the gallery.
func identifyFaces(faces []vision.Face, g *facematch.Gallery, tolerance float64) []identifiedFace {
	out := make([]identifiedFace, 0, len(faces))
	for _, f := range faces {
		m := facematch.Match(f.Descriptor, g, tolerance)
		out = append(out, identifiedFace{
			Name:     m.Name,
			Known:    m.Known,
			Distance: m.Distance,
			Left:     f.Rect.Min.X,
			Top:      f.Rect.Min.Y,
			Right:    f.Rect.Max.X,
			Bottom:   f.Rect.Max.Y,
		})
	}
	return out
}

func runIdentify(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	overrideString(cmd, "gallery", &cfg.Gallery.Dir)
	if err := overrideTolerance(cmd, "tolerance", &cfg.Recognition.Tolerance); err != nil {
		return err
	}
	jsonOutput := mustGetBool(cmd, "json")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	img, err := vision.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	rec, err := openRecognizer(cfg)
	if err != nil {
		return err
	}
	defer rec.Close()

	result, err := loadGallery(context.Background(), cfg, rec, !jsonOutput)
	if err != nil {
		return err
	}

	faces, err := rec.Detect(img)
	if err != nil {
		return fmt.Errorf("failed to detect faces: %w", err)
	}

	identified := identifyFaces(faces, result.Gallery, cfg.Recognition.Tolerance)
	if jsonOutput {
		return outputJSON(identified)
	}

	if len(identified) == 0 {
		fmt.Println("No face detected.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDISTANCE\tBOX")
	fmt.Fprintln(w, "----\t--------\t---")
	for _, f := range identified {
		fmt.Fprintf(w, "%s\t%.3f\t(%d,%d)-(%d,%d)\n", f.Name, f.Distance, f.Left, f.Top, f.Right, f.Bottom)
	}
	w.Flush()
	return nil
}
