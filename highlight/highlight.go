// Package highlight precomputes word spans over normalized text so that
// speech-synchronized highlighting never does per-word work during playback.
//
// Spans are expressed in normalized code-point coordinates, the coordinate
// system speech engines and matchers report in. Anchoring a span back to the
// raw presentation goes through the position map:
//
//	d := highlight.Precompute(rawChapterText)
//	w, _ := d.WordAt(spokenOffset)
//	start, end, ok := d.RawRange(w)
//
// Sentence segmentation is deliberately not provided here; it belongs to a
// language-aware consumer of the normalized text.
package highlight

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/pagefold/readercore/perf"
	"github.com/pagefold/readercore/textmap"
)

// WordSpan is one word of the normalized text, in code-point offsets.
// End is exclusive.
type WordSpan struct {
	Start int
	End   int
	Text  string
}

// Data carries the precomputed spans together with the position map that
// anchors them to raw text. Like the map, it is an immutable value.
type Data struct {
	Words []WordSpan
	Map   textmap.Map
}

// Precompute normalizes raw text and computes its word spans in one pass.
func Precompute(raw string) Data {
	return perf.Time("precompute_text_highlights", func() Data {
		m := textmap.Normalize(raw)
		return Data{Words: Words(m.Normalized()), Map: m}
	})
}

// FromMap computes word spans for an already-normalized map.
func FromMap(m textmap.Map) Data {
	return Data{Words: Words(m.Normalized()), Map: m}
}

// Words splits normalized text on Unicode word boundaries and returns the
// non-whitespace spans in order.
func Words(normalized string) []WordSpan {
	words := make([]WordSpan, 0)

	pos := 0
	state := -1
	rest := normalized
	for len(rest) > 0 {
		var word string
		word, rest, state = uniseg.FirstWordInString(rest, state)

		n := utf8.RuneCountInString(word)
		if strings.TrimSpace(word) != "" {
			words = append(words, WordSpan{Start: pos, End: pos + n, Text: word})
		}
		pos += n
	}

	return words
}

// WordAt returns the span containing the given normalized offset. An offset
// past the last span falls back to the last span, matching how a highlighter
// keeps the final word lit while the engine drains. The second result is
// false only when there are no spans at all.
func (d Data) WordAt(offset int) (WordSpan, bool) {
	for _, w := range d.Words {
		if offset >= w.Start && offset < w.End {
			return w, true
		}
	}
	if len(d.Words) > 0 {
		return d.Words[len(d.Words)-1], true
	}
	return WordSpan{}, false
}

// RawRange anchors a span to raw-text coordinates through the position map.
func (d Data) RawRange(w WordSpan) (rawStart, rawEnd int, ok bool) {
	return d.Map.RawRange(w.Start, w.End)
}
