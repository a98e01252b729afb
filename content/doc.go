// Package content provides the structural content tree and its linearization
// into text fragments.
//
// A [Node] is a closed variant over three kinds: text leaves, named elements,
// and generic containers. Format-specific collaborators (an HTML chapter
// parser, for example) build the tree; [Extract] walks it in document order
// and produces the flat fragment sequence that normalization consumes:
//
//	root, err := content.ParseHTML(r)
//	frags := content.Extract(root)
//	raw := content.RawText(frags)
//
// Non-content subtrees (script, style, and similar no-render elements) are
// skipped entirely. Elements in the block set - paragraphs, headings, list
// items, table rows - contribute one synthetic newline fragment after their
// children, so block structure survives concatenation. Synthetic fragments
// are marked as such: they are not backed by any source text, and downstream
// anchoring must never target them.
package content
