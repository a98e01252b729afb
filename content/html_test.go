package content

import (
	"strings"
	"testing"
)

// TestParseHTMLBuildsTree tests conversion of parsed markup into the content tree.
func TestParseHTMLBuildsTree(t *testing.T) {
	const page = `<html><head><title>T</title></head><body><p>Hello</p></body></html>`

	root, err := ParseHTML(strings.NewReader(page))
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}
	if root == nil {
		t.Fatal("expected non-nil root")
	}

	raw := RawText(Extract(root))
	if !strings.Contains(raw, "Hello") {
		t.Errorf("expected body text in %q", raw)
	}
	if strings.Contains(raw, "T</title>") || strings.HasPrefix(strings.TrimSpace(raw), "T") {
		t.Errorf("head content leaked into %q", raw)
	}
}

// TestParseHTMLDropsComments tests that comments contribute no fragments.
func TestParseHTMLDropsComments(t *testing.T) {
	const page = `<body><!-- secret --><p>text</p></body>`

	root, err := ParseHTML(strings.NewReader(page))
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}

	raw := RawText(Extract(root))
	if strings.Contains(raw, "secret") {
		t.Errorf("comment text leaked into %q", raw)
	}
}

// TestParseHTMLFragmentToRawText tests an end-to-end extraction with breaks.
func TestParseHTMLFragmentToRawText(t *testing.T) {
	const page = `<body><p>one<br/>two</p><p>three</p></body>`

	root, err := ParseHTML(strings.NewReader(page))
	if err != nil {
		t.Fatalf("ParseHTML failed: %v", err)
	}

	raw := RawText(Extract(root))
	if !strings.Contains(raw, "one\ntwo") {
		t.Errorf("expected explicit break in %q", raw)
	}
	if !strings.Contains(raw, "two\nthree") {
		t.Errorf("expected block boundary between paragraphs in %q", raw)
	}
}
