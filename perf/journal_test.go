package perf

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// sessionFiles lists session journals in dir.
func sessionFiles(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), filePrefix) && strings.HasSuffix(e.Name(), fileSuffix) {
			names = append(names, e.Name())
		}
	}
	return names
}

// TestJournalWritesJSONLines tests the on-disk record format.
func TestJournalWritesJSONLines(t *testing.T) {
	dir := t.TempDir()

	j, err := OpenJournal(dir, nil)
	if err != nil {
		t.Fatalf("OpenJournal failed: %v", err)
	}

	j.Record("render_page", 42*time.Millisecond, nil)
	j.Record("extract_cover", 7*time.Millisecond, map[string]any{"format": "epub"})

	if err := j.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(j.Path())
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 records, got %d: %q", len(lines), string(data))
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("first record is not valid JSON: %v", err)
	}
	if first["event"] != "render_page" {
		t.Errorf("expected event render_page, got %v", first["event"])
	}
	if first["duration_ms"] != float64(42) {
		t.Errorf("expected duration_ms 42, got %v", first["duration_ms"])
	}
	if _, ok := first["ts"]; !ok {
		t.Error("expected ts key in record")
	}

	var second map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("second record is not valid JSON: %v", err)
	}
	if second["format"] != "epub" {
		t.Errorf("expected metadata key format=epub, got %v", second["format"])
	}
}

// TestSessionRotation tests that initialization keeps only the 10 newest sessions.
func TestSessionRotation(t *testing.T) {
	dir := t.TempDir()

	// Accumulate 12 prior session files with distinct, old mtimes.
	base := time.Now().Add(-24 * time.Hour)
	for i := 0; i < 12; i++ {
		name := filepath.Join(dir, fmt.Sprintf("%sold%02d%s", filePrefix, i, fileSuffix))
		if err := os.WriteFile(name, []byte("{}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(name, base.Add(time.Duration(i)*time.Minute), base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatal(err)
		}
	}

	// The next initialization creates the 13th file and prunes to 10.
	j, err := OpenJournal(dir, nil)
	if err != nil {
		t.Fatalf("OpenJournal failed: %v", err)
	}
	defer j.Close()

	names := sessionFiles(t, dir)
	if len(names) != 10 {
		t.Fatalf("expected exactly 10 session files, got %d: %v", len(names), names)
	}

	// The new session file is the most recent and must survive.
	found := false
	for _, n := range names {
		if filepath.Join(dir, n) == j.Path() {
			found = true
		}
	}
	if !found {
		t.Error("current session file was pruned")
	}

	// The three oldest prior sessions must be gone.
	for i := 0; i < 3; i++ {
		victim := fmt.Sprintf("%sold%02d%s", filePrefix, i, fileSuffix)
		for _, n := range names {
			if n == victim {
				t.Errorf("expected %s to be pruned", victim)
			}
		}
	}
}

// TestJournalUnaffectedByFewFiles tests that pruning leaves small directories alone.
func TestJournalUnaffectedByFewFiles(t *testing.T) {
	dir := t.TempDir()

	for i := 0; i < 3; i++ {
		name := filepath.Join(dir, fmt.Sprintf("%sold%02d%s", filePrefix, i, fileSuffix))
		if err := os.WriteFile(name, []byte("{}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	j, err := OpenJournal(dir, nil)
	if err != nil {
		t.Fatalf("OpenJournal failed: %v", err)
	}
	defer j.Close()

	if got := len(sessionFiles(t, dir)); got != 4 {
		t.Errorf("expected 4 session files, got %d", got)
	}
}

// TestRecordAfterClose tests that a late record is a silent no-op.
func TestRecordAfterClose(t *testing.T) {
	j, err := OpenJournal(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}

	j.Record("late", time.Millisecond, nil) // must not panic
}

// TestTrackPassesThroughResult tests that measurement never alters outcomes.
func TestTrackPassesThroughResult(t *testing.T) {
	Configure(t.TempDir())
	defer Shutdown()

	got, err := Track("op", func() (int, error) { return 42, nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}

	wantErr := errors.New("boom")
	_, err = Track("op", func() (int, error) { return 0, wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("expected the operation's own error, got %v", err)
	}

	if err := Do("op", func() error { return wantErr }); !errors.Is(err, wantErr) {
		t.Errorf("expected the operation's own error from Do, got %v", err)
	}
}

// TestMeasurementsReachJournal tests end-to-end package-level recording.
func TestMeasurementsReachJournal(t *testing.T) {
	dir := t.TempDir()
	Configure(dir)
	defer Shutdown()

	_ = Do("first", func() error { return nil })
	v := Time("second", func() string { return "ok" })
	if v != "ok" {
		t.Fatalf("Time altered the result: %q", v)
	}

	Shutdown() // flush

	names := sessionFiles(t, dir)
	if len(names) != 1 {
		t.Fatalf("expected 1 session file, got %d", len(names))
	}

	data, err := os.ReadFile(filepath.Join(dir, names[0]))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"event":"first"`) || !strings.Contains(string(data), `"event":"second"`) {
		t.Errorf("expected both events in journal, got %q", string(data))
	}
}

// TestLoggingFailureIsDiagnosticOnly tests that journal failures never reach callers.
func TestLoggingFailureIsDiagnosticOnly(t *testing.T) {
	// A plain file where the journal directory should be makes
	// initialization fail.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	var seen error
	SetDiagnostic(func(err error) { seen = err })
	defer SetDiagnostic(nil)

	Configure(filepath.Join(blocker, "perf"))
	defer Shutdown()

	err := Do("op", func() error { return nil })
	if err != nil {
		t.Errorf("journal failure leaked to the caller: %v", err)
	}
	if seen == nil {
		t.Error("expected the diagnostic hook to observe the failure")
	}
}

func TestDiagnosticHookMayReenter(t *testing.T) {
	// An unbuffered queue with no writer goroutine makes every enqueue
	// fail, so the hook fires on the first Record.
	j := &Journal{
		queue: make(chan []byte),
		done:  make(chan struct{}),
	}

	var reentered bool
	j.SetDiagnostic(func(error) {
		if reentered {
			return
		}
		reentered = true
		j.Record("reentrant", 0, nil)
	})

	finished := make(chan struct{})
	go func() {
		j.Record("dropped", 0, nil)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Record deadlocked invoking a re-entrant diagnostic hook")
	}
	if !reentered {
		t.Error("expected the hook to observe the dropped record")
	}
}
