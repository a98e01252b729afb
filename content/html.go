package content

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// ParseHTML parses HTML or XHTML markup into a content tree. The input is
// assumed to be UTF-8; use ParseHTMLWithCharset for legacy encodings.
func ParseHTML(r io.Reader) (*Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return fromHTMLNode(doc), nil
}

// ParseHTMLWithCharset parses HTML whose encoding may be declared in a
// Content-Type header or a meta tag, decoding it to UTF-8 first.
// contentType may be empty.
func ParseHTMLWithCharset(r io.Reader, contentType string) (*Node, error) {
	cr, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("detecting charset: %w", err)
	}
	return ParseHTML(cr)
}

// fromHTMLNode converts a parsed HTML node into the content variant.
// Comments, doctypes, and other non-content node types are dropped.
func fromHTMLNode(n *html.Node) *Node {
	switch n.Type {
	case html.TextNode:
		return NewText(n.Data)

	case html.ElementNode:
		out := &Node{Kind: ElementNode, Tag: n.Data}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := fromHTMLNode(c); child != nil {
				out.Children = append(out.Children, child)
			}
		}
		return out

	case html.DocumentNode:
		out := &Node{Kind: ContainerNode}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := fromHTMLNode(c); child != nil {
				out.Children = append(out.Children, child)
			}
		}
		return out
	}

	return nil
}
