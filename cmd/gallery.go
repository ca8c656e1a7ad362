package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/gallery"
	"github.com/spf13/cobra"
)

var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "List the registered faces",
	Long: `Load the gallery directory the same way "run" does and list every
registered person together with the files that were skipped.

Examples:
  face-attendance gallery
  face-attendance gallery --gallery ./staff --json`,
	RunE: runGallery,
}

func init() {
	rootCmd.AddCommand(galleryCmd)

	galleryCmd.Flags().String("gallery", "", "Directory of reference photos (default from config)")
	galleryCmd.Flags().Bool("json", false, "Output as JSON")
}

// galleryListing is the JSON form of a loaded gallery.
type galleryListing struct {
	Dir     string                `json:"dir"`
	People  []galleryPerson       `json:"people"`
	Skipped []gallery.SkippedFile `json:"skipped"`
}

type galleryPerson struct {
	Name string `json:"name"`
	File string `json:"file"`
}

func runGallery(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	overrideString(cmd, "gallery", &cfg.Gallery.Dir)
	jsonOutput := mustGetBool(cmd, "json")

	rec, err := openRecognizer(cfg)
	if err != nil {
		return err
	}
	defer rec.Close()

	result, err := loadGallery(context.Background(), cfg, rec, !jsonOutput)
	if err != nil {
		return err
	}

	listing := galleryListing{
		Dir:     cfg.Gallery.Dir,
		People:  make([]galleryPerson, 0, result.Gallery.Len()),
		Skipped: result.Skipped,
	}
	for i, name := range result.Gallery.Names {
		listing.People = append(listing.People, galleryPerson{Name: name, File: result.Files[i]})
	}
	if listing.Skipped == nil {
		listing.Skipped = []gallery.SkippedFile{}
	}

	if jsonOutput {
		return outputJSON(listing)
	}

	printGalleryListing(listing)
	return nil
}

func printGalleryListing(listing galleryListing) {
	if len(listing.People) == 0 {
		fmt.Println("No registered faces found.")
	} else {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tFILE")
		fmt.Fprintln(w, "----\t----")
		for _, p := range listing.People {
			fmt.Fprintf(w, "%s\t%s\n", p.Name, p.File)
		}
		w.Flush()
	}

	if len(listing.Skipped) > 0 {
		fmt.Println("\nSkipped:")
		for _, s := range listing.Skipped {
			fmt.Printf("  %s: %s\n", s.File, s.Reason)
		}
	}

	fmt.Printf("\nTotal: %d registered, %d skipped\n", len(listing.People), len(listing.Skipped))
}
