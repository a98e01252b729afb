package perf

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	// keepSessions is how many session files survive a pruning pass.
	keepSessions = 10

	// queueDepth bounds the background write queue; when full, records are
	// dropped rather than blocking the measured operation.
	queueDepth = 256

	filePrefix = "perf_"
	fileSuffix = ".jsonl"
)

// Journal is an append-only JSON-Lines log covering one process session.
// Records are written by a single background goroutine; enqueueing never
// blocks and never fails the caller.
type Journal struct {
	path  string
	file  *os.File
	queue chan []byte
	done  chan struct{}

	mu     sync.Mutex
	closed bool
	diag   func(error)
}

// OpenJournal creates the session file for this process run inside dir,
// then deletes all but the most recently modified session files. diag
// receives swallowed I/O errors and may be nil.
func OpenJournal(dir string, diag func(error)) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	name := filePrefix + time.Now().Format("20060102_150405.000") + fileSuffix
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating session journal: %w", err)
	}

	j := &Journal{
		path:  path,
		file:  f,
		queue: make(chan []byte, queueDepth),
		done:  make(chan struct{}),
		diag:  diag,
	}

	j.pruneSessions(dir)

	go j.run()
	return j, nil
}

// Path returns the session file's location.
func (j *Journal) Path() string {
	return j.path
}

// SetDiagnostic installs the hook receiving swallowed I/O errors.
func (j *Journal) SetDiagnostic(fn func(error)) {
	j.mu.Lock()
	j.diag = fn
	j.mu.Unlock()
}

// Record enqueues one performance record. The ts, event, and duration_ms
// keys are written first; metadata keys are merged alongside them. Failures
// of any kind are reported through the diagnostic hook only.
func (j *Journal) Record(event string, duration time.Duration, meta map[string]any) {
	rec := make(map[string]any, len(meta)+3)
	for k, v := range meta {
		rec[k] = v
	}
	rec["ts"] = time.Now().UnixMilli()
	rec["event"] = event
	rec["duration_ms"] = duration.Milliseconds()

	line, err := json.Marshal(rec)
	if err != nil {
		j.report(fmt.Errorf("perf: encoding record for %q: %w", event, err))
		return
	}
	line = append(line, '\n')

	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return
	}
	var dropped error
	select {
	case j.queue <- line:
	default:
		dropped = errors.New("perf: journal queue full, record dropped")
	}
	fn := j.diag
	j.mu.Unlock()

	// The hook runs outside the lock so it may safely re-enter the journal.
	if dropped != nil && fn != nil {
		fn(dropped)
	}
}

// run drains the queue into the session file until Close.
func (j *Journal) run() {
	for line := range j.queue {
		if _, err := j.file.Write(line); err != nil {
			j.report(fmt.Errorf("perf: appending to session journal: %w", err))
		}
	}
	if err := j.file.Close(); err != nil {
		j.report(fmt.Errorf("perf: closing session journal: %w", err))
	}
	close(j.done)
}

// Close flushes queued records and closes the session file. It is safe to
// call more than once; later calls wait for the first to finish.
func (j *Journal) Close() error {
	j.mu.Lock()
	if !j.closed {
		j.closed = true
		close(j.queue)
	}
	j.mu.Unlock()

	<-j.done
	return nil
}

// pruneSessions deletes session files beyond the keepSessions most recently
// modified ones. All failures are diagnostic-only.
func (j *Journal) pruneSessions(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		j.report(fmt.Errorf("perf: listing journal directory: %w", err))
		return
	}

	type session struct {
		path string
		mod  time.Time
	}
	var sessions []session
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		sessions = append(sessions, session{path: filepath.Join(dir, name), mod: info.ModTime()})
	}

	if len(sessions) <= keepSessions {
		return
	}

	sort.Slice(sessions, func(a, b int) bool {
		return sessions[a].mod.After(sessions[b].mod)
	})
	for _, s := range sessions[keepSessions:] {
		if err := os.Remove(s.path); err != nil {
			j.report(fmt.Errorf("perf: pruning old session %s: %w", s.path, err))
		}
	}
}

// report forwards an error to the diagnostic hook.
func (j *Journal) report(err error) {
	j.mu.Lock()
	fn := j.diag
	j.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}
