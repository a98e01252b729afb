// Package readercore provides the text-normalization core of a document
// reader: it linearizes structural document content into raw text, then
// canonicalizes that text while preserving an exact mapping from every
// normalized character back to its raw origin.
//
// Basic usage:
//
//	text, err := readercore.FromHTML(chapterMarkup)
//	if err != nil {
//	    // handle error
//	}
//	normalized := text.Normalized()          // feed to search / speech
//	start, end, ok := text.Map.RawRange(s, e) // paint over the raw text
//
// The heavy lifting lives in the subpackages: content (structural
// extraction), textmap (normalization and position mapping), gate (bounded
// concurrency for expensive operations), perf (latency journaling),
// highlight (word spans for speech-synchronized highlighting), and
// epub/covers (a format collaborator and its thumbnail pipeline).
package readercore

import (
	"fmt"
	"io"

	"github.com/pagefold/readercore/content"
	"github.com/pagefold/readercore/highlight"
	"github.com/pagefold/readercore/textmap"
)

// Text is the prepared form of one document view (a chapter, a page): its
// fragment sequence and the position map built over the concatenated raw
// text. Construct it once per loaded view and discard it on unload.
type Text struct {
	Fragments []content.Fragment
	Map       textmap.Map
}

// FromHTML parses HTML or XHTML markup and prepares its text.
func FromHTML(r io.Reader) (*Text, error) {
	root, err := content.ParseHTML(r)
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}
	return FromTree(root), nil
}

// FromTree prepares the text of an already-built content tree.
func FromTree(root *content.Node) *Text {
	frags := content.Extract(root)
	return &Text{
		Fragments: frags,
		Map:       textmap.Normalize(content.RawText(frags)),
	}
}

// Raw returns the concatenated raw text the map was built from.
func (t *Text) Raw() string {
	return content.RawText(t.Fragments)
}

// Normalized returns the canonical text for matching, search, and speech.
func (t *Text) Normalized() string {
	return t.Map.Normalized()
}

// Highlights precomputes word spans over the normalized text.
func (t *Text) Highlights() highlight.Data {
	return highlight.FromMap(t.Map)
}
