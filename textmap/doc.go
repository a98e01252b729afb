// Package textmap provides whitespace normalization with an exact,
// per-character mapping back to the original text.
//
// Document text extracted from structural markup carries artifacts that
// matching, search, and speech engines must never see: non-breaking spaces,
// zero-width characters, and runs of whitespace left behind by block
// boundaries. Normalize canonicalizes such text in a single O(n) scan and
// builds a [Map] that records, for every character of the canonical string,
// the offset in the raw text that produced it:
//
//	m := textmap.Normalize("Hello world​!")
//	m.Normalized() // "Hello world!"
//	m.RawIndex(5)  // 5, the offset of the original no-break space
//
// The mapping is forward-only (normalized position to raw offset). Whitespace
// collapsing is not invertible in general - many raw positions can fold into
// one normalized position - but consumers always start from a normalized span
// (a matched phrase, a spoken sentence) and need a raw anchor, never the
// reverse. [Map.RawRange] converts a half-open normalized range into a
// half-open raw range suitable for highlighting.
//
// All offsets are Unicode code points, not bytes. Out-of-range queries return
// sentinel values rather than errors, so callers running every animation
// frame never pay for error handling on a lookup.
package textmap
