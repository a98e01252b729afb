// Package perf measures the wall-clock latency of arbitrary operations and
// records it durably, without ever affecting the measured operation's
// outcome.
//
// The wrappers start a monotonic timer immediately before invoking the
// operation and stop it immediately after completion or failure. Results and
// errors pass through unchanged:
//
//	text, err := perf.Track("load_chapter", func() (string, error) {
//	    return loadChapter(path)
//	})
//
// Each record is appended as one JSON object per line to a rotating session
// journal: one file per process run, named from the session start time. At
// initialization only the 10 most recently modified session files are kept;
// older ones are deleted. Writes flow through a background queue and are
// best-effort - an I/O failure is reported through the diagnostic hook (see
// [SetDiagnostic]) and never surfaces to the measured operation's caller.
//
// The process-wide journal initializes lazily on first use. A failed
// initialization is retried on the next measurement; a successful one is
// permanent until [Shutdown].
package perf
