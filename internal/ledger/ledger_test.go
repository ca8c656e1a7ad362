package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// fakeClock is a settable time source.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Set(hour, min, sec int) {
	c.t = time.Date(c.t.Year(), c.t.Month(), c.t.Day(), hour, min, sec, 0, time.Local)
}

func newClock(hour, min, sec int) *fakeClock {
	return &fakeClock{t: time.Date(2024, time.March, 4, hour, min, sec, 0, time.Local)}
}

// recordingObserver collects observer calls.
type recordingObserver struct {
	days     []string
	loaded   [][]Record
	recorded []Record
}

func (o *recordingObserver) DayOpened(day, path string, records []Record) {
	o.days = append(o.days, day)
	o.loaded = append(o.loaded, records)
}

func (o *recordingObserver) Recorded(rec Record) {
	o.recorded = append(o.recorded, rec)
}

var defaultCutoff = Cutoff{Hour: 8, Minute: 15}

func openTestLedger(t *testing.T, dir string, clock *fakeClock, obs Observer) *Ledger {
	t.Helper()
	l, err := Open(dir, Options{Cutoff: defaultCutoff, Now: clock.Now, Observer: obs})
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	return l
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestOpen_CreatesDirectoryAndHeader(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs", "nested")
	clock := newClock(7, 0, 0)

	l := openTestLedger(t, dir, clock, nil)

	expectedPath := filepath.Join(dir, "attendance_2024-03-04.csv")
	if l.Path() != expectedPath {
		t.Errorf("expected path %s, got %s", expectedPath, l.Path())
	}
	if l.Day() != "2024-03-04" {
		t.Errorf("expected day 2024-03-04, got %s", l.Day())
	}

	if content := readFile(t, expectedPath); content != "Name,Time,Status\n" {
		t.Errorf("expected header only, got %q", content)
	}
}

func TestOpen_DirectoryCreationFails(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := Open(filepath.Join(blocker, "logs"), Options{Cutoff: defaultCutoff, Now: newClock(7, 0, 0).Now})
	if err == nil {
		t.Fatal("expected error when the log directory cannot be created")
	}
}

func TestOpen_EmptyFileGetsHeader(t *testing.T) {
	dir := t.TempDir()
	clock := newClock(7, 0, 0)
	path := FilePath(dir, clock.Now())
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal(err)
	}

	openTestLedger(t, dir, clock, nil)

	if content := readFile(t, path); content != "Name,Time,Status\n" {
		t.Errorf("expected header to be written to empty file, got %q", content)
	}
}

func TestRecord_AppendsOnce(t *testing.T) {
	dir := t.TempDir()
	clock := newClock(8, 10, 0)
	obs := &recordingObserver{}
	l := openTestLedger(t, dir, clock, obs)

	rec, added, err := l.Record("Alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !added {
		t.Fatal("expected first sighting to be recorded")
	}
	if rec != (Record{Name: "Alice", Time: "08:10:00", Status: StatusPresent}) {
		t.Errorf("unexpected record %+v", rec)
	}

	clock.Set(8, 20, 0)
	_, added, err = l.Record("Alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added {
		t.Error("expected second sighting on the same day to be ignored")
	}

	expected := "Name,Time,Status\nAlice,08:10:00,Present\n"
	if content := readFile(t, l.Path()); content != expected {
		t.Errorf("expected %q, got %q", expected, content)
	}

	if len(obs.recorded) != 1 {
		t.Errorf("expected 1 observer notification, got %d", len(obs.recorded))
	}
	if !l.Marked("Alice") {
		t.Error("expected Alice to be marked")
	}
	if l.Marked("Bob") {
		t.Error("expected Bob not to be marked")
	}
}

func TestRecord_LateBoundary(t *testing.T) {
	tests := []struct {
		name           string
		hour, min, sec int
		expected       Status
	}{
		{name: "well before", hour: 7, min: 59, sec: 59, expected: StatusPresent},
		{name: "one second before", hour: 8, min: 14, sec: 59, expected: StatusPresent},
		{name: "exactly at cutoff", hour: 8, min: 15, sec: 0, expected: StatusPresent},
		{name: "one second after", hour: 8, min: 15, sec: 1, expected: StatusLate},
		{name: "afternoon", hour: 14, min: 0, sec: 0, expected: StatusLate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newClock(tt.hour, tt.min, tt.sec)
			l := openTestLedger(t, t.TempDir(), clock, nil)

			rec, _, err := l.Record("Alice")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Status != tt.expected {
				t.Errorf("expected %s at %s, got %s", tt.expected, rec.Time, rec.Status)
			}
		})
	}
}

func TestCutoff_SubSecondAtCutoffIsPresent(t *testing.T) {
	at := time.Date(2024, time.March, 4, 8, 15, 0, 900_000_000, time.Local)

	if status := defaultCutoff.StatusAt(at); status != StatusPresent {
		t.Errorf("expected Present for 08:15:00.9, got %s", status)
	}
}

func TestOpen_ReloadAfterRestart(t *testing.T) {
	dir := t.TempDir()
	clock := newClock(8, 0, 0)

	first := openTestLedger(t, dir, clock, nil)
	for _, name := range []string{"Alice", "Bob"} {
		if _, _, err := first.Record(name); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	clock.Set(9, 0, 0)
	obs := &recordingObserver{}
	second := openTestLedger(t, dir, clock, obs)

	for _, name := range []string{"Alice", "Bob"} {
		if !second.Marked(name) {
			t.Errorf("expected %s to be marked after restart", name)
		}
		if _, added, _ := second.Record(name); added {
			t.Errorf("expected no duplicate row for %s after restart", name)
		}
	}

	if len(obs.loaded) != 1 || len(obs.loaded[0]) != 2 {
		t.Fatalf("expected observer to receive 2 existing rows, got %v", obs.loaded)
	}

	lines := strings.Split(strings.TrimSpace(readFile(t, second.Path())), "\n")
	if len(lines) != 3 {
		t.Errorf("expected header + 2 rows, got %d lines: %v", len(lines), lines)
	}
}

func TestOpen_LegacyAndMalformedRows(t *testing.T) {
	dir := t.TempDir()
	clock := newClock(9, 0, 0)
	content := "Name,Time,Status\n" +
		"Alice,08:01:00\n" +
		"Bob,08:20:00,Late\n" +
		"Carol,08:05:00,Present\n" +
		"Stray\n" +
		"Dave,08:30:00,Whatever\n"
	if err := os.WriteFile(FilePath(dir, clock.Now()), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	l := openTestLedger(t, dir, clock, nil)

	expected := []Record{
		{Name: "Alice", Time: "08:01:00", Status: StatusPresent},
		{Name: "Bob", Time: "08:20:00", Status: StatusLate},
		{Name: "Carol", Time: "08:05:00", Status: StatusPresent},
		{Name: "Dave", Time: "08:30:00", Status: StatusPresent},
	}

	records := l.Records()
	if len(records) != len(expected) {
		t.Fatalf("expected %d records, got %d: %+v", len(expected), len(records), records)
	}
	for i := range expected {
		if records[i] != expected[i] {
			t.Errorf("record %d: expected %+v, got %+v", i, expected[i], records[i])
		}
	}

	if l.Marked("Stray") {
		t.Error("expected single-field row to be ignored")
	}
}

func TestOpen_RestoresMissingTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	clock := newClock(9, 0, 0)
	path := FilePath(dir, clock.Now())
	if err := os.WriteFile(path, []byte("Name,Time,Status\nAlice,08:00:00,Present"), 0600); err != nil {
		t.Fatal(err)
	}

	l := openTestLedger(t, dir, clock, nil)
	if _, added, err := l.Record("Bob"); err != nil || !added {
		t.Fatalf("expected Bob to be added, got added=%v err=%v", added, err)
	}

	expected := "Name,Time,Status\nAlice,08:00:00,Present\nBob,09:00:00,Late\n"
	if got := readFile(t, path); got != expected {
		t.Errorf("expected file %q, got %q", expected, got)
	}

	reopened := openTestLedger(t, dir, clock, nil)
	if !reopened.Marked("Bob") {
		t.Error("expected Bob to stay marked after restart")
	}
	if _, added, err := reopened.Record("Bob"); err != nil || added {
		t.Errorf("expected no second Bob row, got added=%v err=%v", added, err)
	}
	if got := len(reopened.Records()); got != 2 {
		t.Errorf("expected 2 records, got %d: %+v", got, reopened.Records())
	}
}

func TestOpen_BrokenQuotesDoNotSwallowRows(t *testing.T) {
	tests := []struct {
		name    string
		content string
		marked  []string
	}{
		{
			name:    "broken header",
			content: "Name,Time,\"Status\"x\nAlice,08:00:00,Present\n",
			marked:  []string{"Alice"},
		},
		{
			name:    "broken row",
			content: "Name,Time,Status\n\"Alice\"x,08:00:00,Present\nBob,08:10:00,Present\n",
			marked:  []string{"Bob"},
		},
		{
			name:    "blank lines and crlf",
			content: "\r\nName,Time,Status\r\n\r\nAlice,08:00:00,Present\r\n",
			marked:  []string{"Alice"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			clock := newClock(9, 0, 0)
			if err := os.WriteFile(FilePath(dir, clock.Now()), []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			l := openTestLedger(t, dir, clock, nil)
			for _, name := range tt.marked {
				if !l.Marked(name) {
					t.Errorf("expected %s to be marked, records: %+v", name, l.Records())
				}
			}
		})
	}
}

func TestRecord_RollsOverAtMidnight(t *testing.T) {
	dir := t.TempDir()
	clock := newClock(23, 59, 0)
	obs := &recordingObserver{}
	l := openTestLedger(t, dir, clock, obs)

	if _, _, err := l.Record("Alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clock.t = clock.t.Add(2 * time.Minute) // 00:01 the next day
	rec, added, err := l.Record("Alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !added {
		t.Fatal("expected Alice to be recorded again on the new day")
	}
	if rec.Time != "00:01:00" || rec.Status != StatusPresent {
		t.Errorf("unexpected record %+v", rec)
	}

	if l.Day() != "2024-03-05" {
		t.Errorf("expected day 2024-03-05, got %s", l.Day())
	}
	if len(l.Records()) != 1 {
		t.Errorf("expected the new day to hold 1 record, got %d", len(l.Records()))
	}

	previous, err := Read(filepath.Join(dir, "attendance_2024-03-04.csv"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(previous) != 1 {
		t.Errorf("expected previous day to keep 1 record, got %d", len(previous))
	}

	if len(obs.days) != 2 || obs.days[1] != "2024-03-05" {
		t.Errorf("expected observer to see both days, got %v", obs.days)
	}
}

func TestRecord_Scenario(t *testing.T) {
	dir := t.TempDir()
	clock := newClock(8, 10, 0)
	l := openTestLedger(t, dir, clock, nil)

	if _, added, _ := l.Record("Alice"); !added {
		t.Fatal("expected Alice to be recorded at 08:10:00")
	}

	clock.Set(8, 20, 0)
	if _, added, _ := l.Record("Alice"); added {
		t.Error("expected no new row for Alice at 08:20:00")
	}

	expected := "Name,Time,Status\nAlice,08:10:00,Present\n"
	if content := readFile(t, l.Path()); content != expected {
		t.Errorf("expected %q, got %q", expected, content)
	}
}

func TestRecord_QuotesNamesWithCommas(t *testing.T) {
	dir := t.TempDir()
	clock := newClock(8, 0, 0)
	l := openTestLedger(t, dir, clock, nil)

	if _, _, err := l.Record("Doe, Jane"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := Read(l.Path())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].Name != "Doe, Jane" {
		t.Errorf("expected name to round-trip, got %+v", records)
	}
}

func TestRead_MissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	clock := newClock(8, 0, 0)

	if Exists(dir, clock.Now()) {
		t.Error("expected no ledger before open")
	}

	openTestLedger(t, dir, clock, nil)

	if !Exists(dir, clock.Now()) {
		t.Error("expected ledger to exist after open")
	}
}

func TestObservers_FanOut(t *testing.T) {
	dir := t.TempDir()
	clock := newClock(8, 0, 0)
	first := &recordingObserver{}
	second := &recordingObserver{}

	l := openTestLedger(t, dir, clock, Observers{first, nil, second})

	if _, _, err := l.Record("alice"); err != nil {
		t.Fatalf("failed to record: %v", err)
	}

	for i, obs := range []*recordingObserver{first, second} {
		if len(obs.days) != 1 {
			t.Errorf("observer %d: expected 1 opened day, got %d", i, len(obs.days))
		}
		if len(obs.recorded) != 1 || obs.recorded[0].Name != "alice" {
			t.Errorf("observer %d: expected alice to be recorded, got %v", i, obs.recorded)
		}
	}
}
