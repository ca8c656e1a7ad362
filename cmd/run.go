package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kozaktomas/face-attendance/internal/camera"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/kozaktomas/face-attendance/internal/session"
	"github.com/kozaktomas/face-attendance/internal/web"
	"github.com/kozaktomas/face-attendance/internal/web/handlers"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the camera and mark attendance",
	Long: `Open the camera, recognise faces against the gallery and write each
person's first sighting of the day to the daily ledger.

The dashboard at http://<host>:<port>/ shows the annotated camera frame and
today's attendance table. Press Ctrl+C to stop.

Examples:
  # Default gallery (./images), ledger (./logs) and camera 0
  face-attendance run

  # Second camera, stricter matching, late after 08:00
  face-attendance run --camera 1 --tolerance 0.4 --late-after 08:00:00

  # Native preview window instead of the dashboard
  face-attendance run --no-web --window`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String("gallery", "", "Directory of reference photos (default from config)")
	cmd.Flags().String("logs", "", "Directory for daily ledger files (default from config)")
	cmd.Flags().Int("camera", 0, "Video capture device index")
	cmd.Flags().Int("port", 8080, "Dashboard port")
	cmd.Flags().String("host", "127.0.0.1", "Dashboard host to bind to")
	cmd.Flags().Bool("no-web", false, "Do not start the dashboard")
	cmd.Flags().Bool("window", false, "Show a native preview window")
	cmd.Flags().Float64("tolerance", constants.DefaultTolerance, "Maximum descriptor distance for a match")
	cmd.Flags().String("late-after", constants.DefaultLateAfter, "Time of day after which a first sighting is Late")
}

// applyRunFlags overrides cfg with the flags set on the command line.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	overrideString(cmd, "gallery", &cfg.Gallery.Dir)
	overrideString(cmd, "logs", &cfg.Ledger.Dir)
	overrideInt(cmd, "camera", &cfg.Camera.Device)
	overrideInt(cmd, "port", &cfg.Web.Port)
	overrideString(cmd, "host", &cfg.Web.Host)

	if err := overrideTolerance(cmd, "tolerance", &cfg.Recognition.Tolerance); err != nil {
		return err
	}

	if cmd.Flags().Changed("late-after") {
		lateAfter := mustGetString(cmd, "late-after")
		if !config.ValidClock(lateAfter) {
			return fmt.Errorf("--late-after must be HH:MM or HH:MM:SS, got %q", lateAfter)
		}
		cfg.Ledger.LateAfter = lateAfter
	}
	return nil
}

// terminalPrinter prints ledger activity to stdout.
type terminalPrinter struct{}

func (terminalPrinter) DayOpened(day, path string, records []ledger.Record) {
	fmt.Printf("Ledger for %s: %s (%d already marked)\n", day, path, len(records))
}

func (terminalPrinter) Recorded(rec ledger.Record) {
	fmt.Printf("Marked %s at %s (%s)\n", rec.Name, rec.Time, rec.Status)
}

// windowDisplay shows frames in a native window and stops the run when the
// window is closed.
type windowDisplay struct {
	win  *camera.Window
	stop context.CancelFunc
}

func (d *windowDisplay) ShowFrame(f *session.Frame) {
	if f.Image == nil {
		return
	}
	open, err := d.win.Show(f.Image)
	if err != nil {
		log.Printf("WARNING: preview window: %v", err)
		return
	}
	if !open {
		d.stop()
	}
}

// waitWithoutCamera keeps the process alive after the camera failed to open
// until ctx is cancelled. The dashboard, when running, reports the error.
func waitWithoutCamera(ctx context.Context, dashboard bool) {
	if dashboard {
		fmt.Println("Camera unavailable, serving the dashboard only")
	} else {
		fmt.Println("Camera unavailable, nothing to capture until restarted")
	}
	<-ctx.Done()
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if err := applyRunFlags(cmd, cfg); err != nil {
		return err
	}
	noWeb := mustGetBool(cmd, "no-web")
	showWindow := mustGetBool(cmd, "window")

	cutoff, err := ledger.ParseCutoff(cfg.Ledger.LateAfter)
	if err != nil {
		return fmt.Errorf("invalid late cutoff: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	board := handlers.NewBoard(cutoff)

	book, err := ledger.Open(cfg.Ledger.Dir, ledger.Options{
		Cutoff:   cutoff,
		Observer: ledger.Observers{board, terminalPrinter{}},
	})
	if err != nil {
		return fmt.Errorf("failed to open attendance ledger: %w", err)
	}

	fmt.Printf("Loading face models from %s...\n", cfg.Recognition.ModelsDir)
	rec, err := openRecognizer(cfg)
	if err != nil {
		return err
	}
	defer rec.Close()

	result, err := loadGallery(ctx, cfg, rec, true)
	if err != nil {
		return err
	}
	board.SetGallerySize(result.Gallery.Len())

	var server *web.Server
	serverErr := make(chan error, 1)
	if !noWeb {
		server = web.NewServer(cfg, board)
		go func() {
			if err := server.Start(); err != nil {
				serverErr <- err
				stop()
			}
		}()
		fmt.Printf("Dashboard on http://%s\n", server.Addr())
	}

	webcam, camErr := camera.Open(cfg.Camera.Device)
	if camErr != nil {
		log.Printf("WARNING: %v", camErr)
		board.SetCameraError(camErr)
	} else {
		defer webcam.Close()
	}

	fmt.Println("Press Ctrl+C to stop")

	switch {
	case camErr == nil:
		displays := session.Displays{board}
		if showWindow {
			win := camera.NewWindow("Face Attendance")
			defer win.Close()
			displays = append(displays, &windowDisplay{win: win, stop: stop})
		}

		sess := session.New(result.Gallery, book, rec, webcam, displays, session.Options{
			Tolerance:   cfg.Recognition.Tolerance,
			Downscale:   cfg.Recognition.Downscale,
			UpdateDelay: cfg.Camera.UpdateDelay(),
		})
		board.SetStatsSource(sess)

		// The loop stays on this goroutine so the preview window is driven
		// from a single thread.
		if err := sess.Run(ctx); err != nil {
			return err
		}
	default:
		waitWithoutCamera(ctx, server != nil)
	}

	fmt.Println("\nShutting down...")

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}

	select {
	case err := <-serverErr:
		return err
	default:
	}

	fmt.Printf("Attendance for %s saved to %s (%d marked)\n", book.Day(), book.Path(), len(book.Records()))
	return nil
}
