package ledger

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kozaktomas/face-attendance/internal/constants"
)

var header = []string{"Name", "Time", "Status"}

// maxRowSize bounds a single ledger line.
const maxRowSize = 1 << 20

// FileName returns the ledger file name for the day of t.
func FileName(t time.Time) string {
	return constants.LedgerFilePrefix + t.Format(constants.LedgerDateLayout) + ".csv"
}

// FilePath returns the ledger file path for the day of t inside dir.
func FilePath(dir string, t time.Time) string {
	return filepath.Join(dir, FileName(t))
}

// ensureFile creates dir and the ledger file with its header row when missing.
// An existing empty file also gets the header.
func ensureFile(dir, path string) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating attendance directory %s: %w", dir, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0640) //nolint:gosec // path is built from the configured log dir
	if err != nil {
		return fmt.Errorf("creating attendance file %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat attendance file %s: %w", path, err)
	}
	if info.Size() > 0 {
		return terminateLastLine(f, info.Size())
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header to %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing header to %s: %w", path, err)
	}
	return nil
}

// terminateLastLine adds a newline to a file whose last row lacks one, so the
// next appended row starts on its own line.
func terminateLastLine(f *os.File, size int64) error {
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, size-1); err != nil {
		return fmt.Errorf("reading attendance file %s: %w", f.Name(), err)
	}
	if last[0] == '\n' {
		return nil
	}
	if _, err := f.WriteAt([]byte("\n"), size); err != nil {
		return fmt.Errorf("terminating last row of %s: %w", f.Name(), err)
	}
	return nil
}

// appendRow appends one record to the ledger file.
func appendRow(path string, rec Record) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0640) //nolint:gosec // path is built from the configured log dir
	if err != nil {
		return fmt.Errorf("opening attendance file %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{rec.Name, rec.Time, string(rec.Status)}); err != nil {
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	return nil
}

// parseRows reads ledger rows after the header line.
// Rows with three or more fields are Name,Time,Status; two-field rows are
// the legacy Name,Time format and count as Present; shorter rows are skipped.
// Each line is parsed on its own, so a stray quote never swallows the rows
// that follow it.
func parseRows(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxRowSize)

	var records []Record
	first := true
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if first {
			first = false
			continue
		}

		row, err := parseLine(line)
		if err != nil {
			log.Printf("WARNING: skipping malformed attendance row %q: %v", line, err)
			continue
		}

		switch {
		case len(row) >= 3:
			records = append(records, Record{Name: row[0], Time: row[1], Status: parseStatus(row[2])})
		case len(row) == 2:
			records = append(records, Record{Name: row[0], Time: row[1], Status: StatusPresent})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading attendance rows: %w", err)
	}
	return records, nil
}

func parseLine(line string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(line))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr.Read()
}

// Read returns all rows of a ledger file.
func Read(path string) ([]Record, error) {
	f, err := os.Open(path) //nolint:gosec // user supplied ledger path
	if err != nil {
		return nil, fmt.Errorf("opening attendance file: %w", err)
	}
	defer f.Close()

	return parseRows(f)
}
