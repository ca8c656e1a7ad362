package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/constants"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Show a day's attendance",
	Long: `Print the attendance ledger of one day. Defaults to today.

Examples:
  face-attendance ledger
  face-attendance ledger --date 2024-03-04 --json`,
	RunE: runLedger,
}

func init() {
	rootCmd.AddCommand(ledgerCmd)

	ledgerCmd.Flags().String("date", "", "Day to show as YYYY-MM-DD (default today)")
	ledgerCmd.Flags().String("logs", "", "Directory of daily ledger files (default from config)")
	ledgerCmd.Flags().Bool("json", false, "Output as JSON")
}

// ledgerDay is the JSON form of one day's ledger.
type ledgerDay struct {
	Day     string          `json:"day"`
	Path    string          `json:"path"`
	Present int             `json:"present"`
	Late    int             `json:"late"`
	Records []ledger.Record `json:"records"`
}

// parseLedgerDate parses the --date flag, defaulting to today.
func parseLedgerDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	t, err := time.ParseInLocation(constants.LedgerDateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("--date must be YYYY-MM-DD, got %q", s)
	}
	return t, nil
}

// summarizeLedger counts statuses of the given rows.
func summarizeLedger(day, path string, records []ledger.Record) ledgerDay {
	out := ledgerDay{Day: day, Path: path, Records: records}
	if out.Records == nil {
		out.Records = []ledger.Record{}
	}
	for _, rec := range records {
		if rec.Status == ledger.StatusLate {
			out.Late++
		} else {
			out.Present++
		}
	}
	return out
}

func runLedger(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	overrideString(cmd, "logs", &cfg.Ledger.Dir)
	jsonOutput := mustGetBool(cmd, "json")

	day, err := parseLedgerDate(mustGetString(cmd, "date"), time.Now())
	if err != nil {
		return err
	}

	path := ledger.FilePath(cfg.Ledger.Dir, day)
	var records []ledger.Record
	if ledger.Exists(cfg.Ledger.Dir, day) {
		records, err = ledger.Read(path)
		if err != nil {
			return fmt.Errorf("failed to read ledger: %w", err)
		}
	}

	out := summarizeLedger(day.Format(constants.LedgerDateLayout), path, records)
	if jsonOutput {
		return outputJSON(out)
	}

	if len(out.Records) == 0 {
		fmt.Printf("No attendance recorded for %s.\n", out.Day)
		return nil
	}

	fmt.Printf("Attendance for %s (%s)\n\n", out.Day, out.Path)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTIME\tSTATUS")
	fmt.Fprintln(w, "----\t----\t------")
	for _, rec := range out.Records {
		fmt.Fprintf(w, "%s\t%s\t%s\n", rec.Name, rec.Time, rec.Status)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d (%d present, %d late)\n", len(out.Records), out.Present, out.Late)
	return nil
}
