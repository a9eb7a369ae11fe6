package syntax

import (
	"iter"
	"strings"
)

// Element is a child of a Node: exactly one of Token and Node is set.
type Element struct {
	Token *Token
	Node  *Node
}

// TokenElement wraps a token.
func TokenElement(t *Token) Element { return Element{Token: t} }

// NodeElement wraps a node.
func NodeElement(n *Node) Element { return Element{Node: n} }

// IsLeaf reports whether the element is a token.
func (e Element) IsLeaf() bool {
	return e.Token != nil
}

func (e Element) Kind() SyntaxKind {
	if e.Token != nil {
		return e.Token.Kind
	}
	if e.Node != nil {
		return e.Node.Kind
	}
	return Invalid
}

// FirstToken returns the element itself if it is a token, or the node's
// first token.
func (e Element) FirstToken() *Token {
	if e.Token != nil {
		return e.Token
	}
	return e.Node.FirstToken()
}

// LastToken is the counterpart of FirstToken.
func (e Element) LastToken() *Token {
	if e.Token != nil {
		return e.Token
	}
	return e.Node.LastToken()
}

// Text returns the element's full source text, trivia included.
func (e Element) Text() string {
	if e.Token != nil {
		return e.Token.FullText()
	}
	return e.Node.Text()
}

// Node is an interior node of the syntax tree. Its children are contiguous
// and together cover exactly the node's span.
type Node struct {
	Kind     SyntaxKind
	Children []Element
}

// FirstToken returns the first token below n in document order, including
// zero-width ones.
func (n *Node) FirstToken() *Token {
	for _, c := range n.Children {
		if c.Token != nil {
			return c.Token
		}
		if t := c.Node.FirstToken(); t != nil {
			return t
		}
	}
	return nil
}

func (n *Node) LastToken() *Token {
	for i := len(n.Children) - 1; i >= 0; i-- {
		c := n.Children[i]
		if c.Token != nil {
			return c.Token
		}
		if t := c.Node.LastToken(); t != nil {
			return t
		}
	}
	return nil
}

// Tokens yields every token below n in document order.
func (n *Node) Tokens() iter.Seq[*Token] {
	return func(yield func(*Token) bool) {
		n.eachToken(yield)
	}
}

func (n *Node) eachToken(yield func(*Token) bool) bool {
	for _, c := range n.Children {
		if c.Token != nil {
			if !yield(c.Token) {
				return false
			}
			continue
		}
		if !c.Node.eachToken(yield) {
			return false
		}
	}
	return true
}

// Span returns the node's full extent, trivia included.
func (n *Node) Span() (start, end int) {
	first, last := n.FirstToken(), n.LastToken()
	if first == nil {
		return 0, 0
	}
	return first.FullStart(), last.FullEnd()
}

// Text reconstructs the node's source text exactly.
func (n *Node) Text() string {
	var sb strings.Builder
	for t := range n.Tokens() {
		t.writeTo(&sb)
	}
	return sb.String()
}

// Child returns the first child of the given kind.
func (n *Node) Child(kind SyntaxKind) (Element, bool) {
	for _, c := range n.Children {
		if c.Kind() == kind {
			return c, true
		}
	}
	return Element{}, false
}

// ChildNode returns the first child node of the given kind, or nil.
func (n *Node) ChildNode(kind SyntaxKind) *Node {
	for _, c := range n.Children {
		if c.Node != nil && c.Node.Kind == kind {
			return c.Node
		}
	}
	return nil
}

// ChildToken returns the first child token of the given kind, or nil.
func (n *Node) ChildToken(kind SyntaxKind) *Token {
	for _, c := range n.Children {
		if c.Token != nil && c.Token.Kind == kind {
			return c.Token
		}
	}
	return nil
}

// ContainsErrors reports whether n holds an ErrorNode or a missing token.
func (n *Node) ContainsErrors() bool {
	if n.Kind == ErrorNode {
		return true
	}
	for _, c := range n.Children {
		if c.Token != nil {
			if c.Token.Missing {
				return true
			}
			continue
		}
		if c.Node.ContainsErrors() {
			return true
		}
	}
	return false
}
