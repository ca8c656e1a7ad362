package ledger

import (
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/kozaktomas/face-attendance/internal/constants"
)

// Options configures a Ledger.
type Options struct {
	Cutoff   Cutoff
	Now      func() time.Time // defaults to time.Now
	Observer Observer         // optional
}

// Ledger is the attendance record for the current day.
// The marked set only grows while a day is open; a new calendar day starts
// a new file and an empty set.
type Ledger struct {
	dir      string
	cutoff   Cutoff
	now      func() time.Time
	observer Observer

	mu      sync.Mutex
	day     string
	path    string
	marked  map[string]struct{}
	records []Record
}

// Open opens today's ledger in dir, creating the directory and the file
// with its header when needed, and loads the rows already recorded today.
func Open(dir string, opts Options) (*Ledger, error) {
	l := &Ledger{
		dir:      dir,
		cutoff:   opts.Cutoff,
		now:      opts.Now,
		observer: opts.Observer,
	}
	if l.now == nil {
		l.now = time.Now
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.openDay(l.now()); err != nil {
		return nil, err
	}
	return l, nil
}

// openDay switches the ledger to the file of t's calendar day.
// Must be called with mu held.
func (l *Ledger) openDay(t time.Time) error {
	path := FilePath(l.dir, t)
	if err := ensureFile(l.dir, path); err != nil {
		return err
	}

	records, err := Read(path)
	if err != nil {
		return err
	}

	l.day = t.Format(constants.LedgerDateLayout)
	l.path = path
	l.records = records
	l.marked = make(map[string]struct{}, len(records))
	for _, rec := range records {
		l.marked[rec.Name] = struct{}{}
	}

	if l.observer != nil {
		l.observer.DayOpened(l.day, l.path, slices.Clone(records))
	}
	return nil
}

// Record writes a row for name unless it was already recorded today.
// It returns the new row and true, or a zero Record and false when name was
// already marked. The check and the insert happen under one lock.
func (l *Ledger) Record(name string) (Record, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if day := now.Format(constants.LedgerDateLayout); day != l.day {
		if err := l.openDay(now); err != nil {
			return Record{}, false, fmt.Errorf("rolling over to %s: %w", day, err)
		}
	}

	if _, ok := l.marked[name]; ok {
		return Record{}, false, nil
	}

	rec := Record{
		Name:   name,
		Time:   now.Format(constants.LedgerTimeLayout),
		Status: l.cutoff.StatusAt(now),
	}
	if err := appendRow(l.path, rec); err != nil {
		return Record{}, false, err
	}

	l.marked[name] = struct{}{}
	l.records = append(l.records, rec)

	if l.observer != nil {
		l.observer.Recorded(rec)
	}
	return rec, true, nil
}

// Marked reports whether name has a row in the open day's file.
func (l *Ledger) Marked(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.marked[name]
	return ok
}

// Records returns a copy of the open day's rows in file order.
func (l *Ledger) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.records)
}

// Day returns the open day as YYYY-MM-DD.
func (l *Ledger) Day() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.day
}

// Path returns the open day's file path.
func (l *Ledger) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// Cutoff returns the late cutoff.
func (l *Ledger) Cutoff() Cutoff {
	return l.cutoff
}

// Exists reports whether a ledger file exists for the day of t.
func Exists(dir string, t time.Time) bool {
	_, err := os.Stat(FilePath(dir, t))
	return err == nil
}
