package content

import "strings"

// Fragment is one piece of linearized document text. Real fragments carry
// text taken verbatim from a text leaf; synthetic fragments are newlines
// inserted at structural boundaries and have no backing source text.
type Fragment struct {
	Text      string
	Synthetic bool
}

// blockTags is the closed set of elements that end a block of text. Each
// contributes one synthetic newline after its children; nested blocks each
// contribute their own (the resulting whitespace is collapsed later, during
// normalization).
var blockTags = map[string]bool{
	"p": true, "div": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "tr": true,
	"ul": true, "ol": true, "table": true,
	"blockquote": true, "pre": true,
	"article": true, "section": true, "header": true, "footer": true,
	"figure": true, "figcaption": true,
	"hr": true,
}

// skipTags is the closed set of non-content elements. Their entire subtree
// contributes zero fragments.
var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"head": true, "svg": true, "math": true,
	"iframe": true, "object": true, "embed": true,
}

// Extract linearizes a content tree into an ordered fragment sequence.
// Traversal is document order: children first, then the block-boundary
// newline for block elements. A <br> element contributes exactly one
// synthetic newline and does not recurse. A nil root yields an empty
// sequence. Concatenating the fragments' text in order reproduces the raw
// text of the tree's content.
func Extract(root *Node) []Fragment {
	frags := make([]Fragment, 0)
	walk(root, &frags)
	return frags
}

func walk(n *Node, frags *[]Fragment) {
	if n == nil {
		return
	}

	switch n.Kind {
	case TextNode:
		if n.Text != "" {
			*frags = append(*frags, Fragment{Text: n.Text})
		}

	case ElementNode:
		tag := strings.ToLower(n.Tag)
		if skipTags[tag] {
			return
		}
		if tag == "br" {
			*frags = append(*frags, Fragment{Text: "\n", Synthetic: true})
			return
		}
		for _, c := range n.Children {
			walk(c, frags)
		}
		if blockTags[tag] {
			*frags = append(*frags, Fragment{Text: "\n", Synthetic: true})
		}

	case ContainerNode:
		for _, c := range n.Children {
			walk(c, frags)
		}
	}
}

// RawText concatenates a fragment sequence into the raw text handed to
// normalization.
func RawText(frags []Fragment) string {
	var b strings.Builder
	for _, f := range frags {
		b.WriteString(f.Text)
	}
	return b.String()
}
