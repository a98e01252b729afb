package perf

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Process-wide journal state. The handle initializes lazily on first use and
// is reused for the remainder of the process lifetime; a failed
// initialization leaves the state untouched so the next measurement retries.
var (
	mu         sync.Mutex
	journal    *Journal
	journalDir = filepath.Join(os.TempDir(), "readercore", "perf")

	diagMu sync.Mutex
	diag   func(error)
)

// Configure sets the directory holding session journals. It takes effect at
// the next journal initialization, so call it before the first measurement
// (or after Shutdown).
func Configure(dir string) {
	mu.Lock()
	journalDir = dir
	mu.Unlock()
}

// SetDiagnostic installs the hook that receives swallowed journal errors.
// Logging failures are never surfaced any other way.
func SetDiagnostic(fn func(error)) {
	diagMu.Lock()
	diag = fn
	diagMu.Unlock()
}

// Shutdown flushes and closes the process-wide journal. Measurements after
// Shutdown start a fresh session.
func Shutdown() {
	mu.Lock()
	j := journal
	journal = nil
	mu.Unlock()

	if j != nil {
		_ = j.Close()
	}
}

// Do measures fn and records the elapsed time under event. fn's error is
// returned unchanged.
func Do(event string, fn func() error) error {
	start := time.Now()
	err := fn()
	record(event, time.Since(start), nil)
	return err
}

// Track measures fn and records the elapsed time under event. fn's result
// and error are returned unchanged, on success and on failure alike.
func Track[T any](event string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	record(event, time.Since(start), nil)
	return v, err
}

// TrackWith is Track with extra metadata keys merged into the record.
func TrackWith[T any](event string, meta map[string]any, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	record(event, time.Since(start), meta)
	return v, err
}

// Time measures an operation that cannot fail.
func Time[T any](event string, fn func() T) T {
	start := time.Now()
	v := fn()
	record(event, time.Since(start), nil)
	return v
}

// record hands a measurement to the process-wide journal, initializing it if
// needed. Every failure ends at the diagnostic hook.
func record(event string, duration time.Duration, meta map[string]any) {
	if j := active(); j != nil {
		j.Record(event, duration, meta)
	}
}

// active returns the process-wide journal, opening it on first use.
func active() *Journal {
	mu.Lock()
	defer mu.Unlock()

	if journal == nil {
		j, err := OpenJournal(journalDir, report)
		if err != nil {
			report(err)
			return nil
		}
		journal = j
	}
	return journal
}

// report forwards an error to the package diagnostic hook.
func report(err error) {
	diagMu.Lock()
	fn := diag
	diagMu.Unlock()
	if fn != nil {
		fn(err)
	}
}
