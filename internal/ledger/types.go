// Package ledger keeps the daily attendance record: one append-only CSV file
// per calendar day, one row per person per day.
package ledger

import (
	"fmt"
	"slices"
	"time"
)

// Status is the attendance status frozen into a row when it is written.
type Status string

const (
	StatusPresent Status = "Present"
	StatusLate    Status = "Late"
)

// parseStatus maps a stored status column onto a Status.
// Anything other than Late is shown as Present.
func parseStatus(s string) Status {
	if s == string(StatusLate) {
		return StatusLate
	}
	return StatusPresent
}

// Record is one attendance row.
type Record struct {
	Name   string `json:"name"`
	Time   string `json:"time"` // HH:MM:SS local time
	Status Status `json:"status"`
}

// Cutoff is the time of day after which a first sighting counts as Late.
type Cutoff struct {
	Hour, Minute, Second int
}

// ParseCutoff parses HH:MM or HH:MM:SS.
func ParseCutoff(s string) (Cutoff, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Cutoff{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return Cutoff{}, fmt.Errorf("invalid cutoff %q, expected HH:MM[:SS]", s)
}

// String formats the cutoff as HH:MM:SS.
func (c Cutoff) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

func (c Cutoff) seconds() int {
	return c.Hour*3600 + c.Minute*60 + c.Second
}

// StatusAt returns Late when t's time of day, at second resolution, is
// strictly after the cutoff. The cutoff second itself is Present, so the
// status always agrees with the HH:MM:SS written next to it.
func (c Cutoff) StatusAt(t time.Time) Status {
	if t.Hour()*3600+t.Minute()*60+t.Second() > c.seconds() {
		return StatusLate
	}
	return StatusPresent
}

// Observer is told about the ledger's rows so a display can mirror them.
// Methods run with the ledger locked and must not call back into it.
type Observer interface {
	// DayOpened is called with every row already present when a day's file is opened.
	DayOpened(day, path string, records []Record)
	// Recorded is called after a new row has been appended.
	Recorded(rec Record)
}

// Observers fans ledger notifications out to several observers.
type Observers []Observer

func (o Observers) DayOpened(day, path string, records []Record) {
	for _, obs := range o {
		if obs != nil {
			obs.DayOpened(day, path, slices.Clone(records))
		}
	}
}

func (o Observers) Recorded(rec Record) {
	for _, obs := range o {
		if obs != nil {
			obs.Recorded(rec)
		}
	}
}
