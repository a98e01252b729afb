package highlight

import (
	"testing"

	"github.com/pagefold/readercore/textmap"
)

// TestWordsBasic tests word-boundary splitting over plain text.
func TestWordsBasic(t *testing.T) {
	words := Words("Hello world!")

	if len(words) < 2 {
		t.Fatalf("expected at least 2 words, got %d: %+v", len(words), words)
	}
	if words[0].Text != "Hello" || words[0].Start != 0 || words[0].End != 5 {
		t.Errorf("unexpected first word: %+v", words[0])
	}
	if words[1].Text != "world" || words[1].Start != 6 || words[1].End != 11 {
		t.Errorf("unexpected second word: %+v", words[1])
	}
}

// TestWordsSkipWhitespace tests that whitespace segments produce no spans.
func TestWordsSkipWhitespace(t *testing.T) {
	for _, w := range Words("one two three") {
		if w.Text == " " {
			t.Errorf("whitespace span leaked: %+v", w)
		}
	}

	if got := Words(""); len(got) != 0 {
		t.Errorf("expected no spans for empty text, got %+v", got)
	}
}

// TestPrecomputeAnchorsToRaw tests the full normalize-then-anchor path.
func TestPrecomputeAnchorsToRaw(t *testing.T) {
	// NBSP and zero-width characters shift raw offsets relative to the
	// normalized text the spans are computed over.
	d := Precompute("Hello world​!")

	if d.Map.Normalized() != "Hello world!" {
		t.Fatalf("unexpected normalized text %q", d.Map.Normalized())
	}

	w, ok := d.WordAt(7) // inside "world"
	if !ok || w.Text != "world" {
		t.Fatalf("expected to land in 'world', got %+v (ok=%v)", w, ok)
	}

	start, end, ok := d.RawRange(w)
	if !ok {
		t.Fatal("expected a raw range")
	}
	// "world" starts at raw offset 6; the range runs up to the next
	// retained character, the '!' at raw offset 12, spanning the removed
	// zero-width space between them.
	if start != 6 || end != 12 {
		t.Errorf("expected raw range [6, 12), got [%d, %d)", start, end)
	}
}

// TestWordAtFallsBackToLast tests the past-the-end fallback.
func TestWordAtFallsBackToLast(t *testing.T) {
	d := FromMap(textmap.Normalize("alpha beta"))

	w, ok := d.WordAt(999)
	if !ok || w.Text != "beta" {
		t.Errorf("expected fallback to last word, got %+v (ok=%v)", w, ok)
	}

	empty := FromMap(textmap.Normalize("   "))
	if _, ok := empty.WordAt(0); ok {
		t.Error("expected no span for empty data")
	}
}
