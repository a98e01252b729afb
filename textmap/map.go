package textmap

import "unicode"

const (
	zeroWidthSpace = '​' // removed entirely during normalization
	noBreakSpace   = ' ' // folded to an ordinary space
)

// NoRawIndex is returned by RawIndex for positions outside the map.
const NoRawIndex = -1

// Map pairs a normalized string with a per-character index back into the raw
// text it was built from. A Map is an immutable value: construct it once per
// raw-text snapshot and copy it freely.
type Map struct {
	normalized string
	index      []int
}

// Normalize canonicalizes raw text and builds its position map.
//
// In a single left-to-right scan it removes zero-width spaces, folds
// no-break spaces to ordinary spaces, collapses every run of Unicode
// whitespace to a single space, and trims the result. Each retained
// character records the code-point offset of the raw character that
// produced it; for a collapsed run that is the offset of the run's first
// whitespace character.
//
// Empty or all-whitespace input yields an empty map. That is a defined
// fast path, not an error.
func Normalize(raw string) Map {
	out := make([]rune, 0, len(raw))
	index := make([]int, 0, len(raw))

	inRun := false // inside a whitespace run
	pos := 0       // code-point offset in raw

	for _, r := range raw {
		i := pos
		pos++

		if r == zeroWidthSpace {
			continue
		}
		if r == noBreakSpace {
			r = ' '
		}

		if unicode.IsSpace(r) {
			// Leading whitespace is dropped; runs collapse to one space.
			if len(out) == 0 || inRun {
				continue
			}
			out = append(out, ' ')
			index = append(index, i)
			inRun = true
			continue
		}

		out = append(out, r)
		index = append(index, i)
		inRun = false
	}

	// A trailing space survives only when nothing followed the final run;
	// collapsing guarantees there is at most one to remove.
	if n := len(out); n > 0 && out[n-1] == ' ' {
		out = out[:n-1]
		index = index[:n-1]
	}

	return Map{normalized: string(out), index: index}
}

// Normalized returns the canonical string.
func (m Map) Normalized() string {
	return m.normalized
}

// Len returns the length of the normalized string in code points, which is
// also the number of index entries.
func (m Map) Len() int {
	return len(m.index)
}

// RawIndex returns the raw code-point offset that produced the character at
// the given normalized position, or NoRawIndex when the position is negative
// or beyond the map.
func (m Map) RawIndex(p int) int {
	if p < 0 || p >= len(m.index) {
		return NoRawIndex
	}
	return m.index[p]
}

// RawRange converts the half-open normalized range [start, end) into the
// half-open raw range covering the same characters. The end position is
// clamped to the map's length. While the range ends inside the map, the raw
// end is the raw offset of the first character after it, so a range ending
// on a collapsed whitespace run spans the whole run, not just its first
// character; at the map's end it is one past the final included character's
// raw offset.
//
// The third result is false when start is negative, end <= start, or start
// is beyond the map.
func (m Map) RawRange(start, end int) (rawStart, rawEnd int, ok bool) {
	if start < 0 || end <= start || start >= len(m.index) {
		return 0, 0, false
	}
	if end >= len(m.index) {
		return m.index[start], m.index[len(m.index)-1] + 1, true
	}
	return m.index[start], m.index[end], true
}

// Offsets returns a copy of the raw-offset index, one entry per normalized
// character. The sequence is strictly increasing.
func (m Map) Offsets() []int {
	out := make([]int, len(m.index))
	copy(out, m.index)
	return out
}
