package content

// NodeKind identifies the variant of a Node.
type NodeKind int

const (
	// TextNode is a leaf carrying document text.
	TextNode NodeKind = iota
	// ElementNode is a named element; its tag is matched case-insensitively.
	ElementNode
	// ContainerNode groups children without contributing structure of its own.
	ContainerNode
)

// Node is one node of a content tree. Exactly one of Text or Tag is
// meaningful, selected by Kind; Children is empty for text leaves.
type Node struct {
	Kind     NodeKind
	Text     string // TextNode only
	Tag      string // ElementNode only
	Children []*Node
}

// NewText returns a text leaf.
func NewText(text string) *Node {
	return &Node{Kind: TextNode, Text: text}
}

// NewElement returns an element node with the given tag and children.
func NewElement(tag string, children ...*Node) *Node {
	return &Node{Kind: ElementNode, Tag: tag, Children: children}
}

// NewContainer returns a generic container node.
func NewContainer(children ...*Node) *Node {
	return &Node{Kind: ContainerNode, Children: children}
}
