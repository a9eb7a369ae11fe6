package syntax

import (
	"strings"
)

// TriviaKind classifies non-semantic source text.
type TriviaKind uint8

const (
	Whitespace TriviaKind = iota
	Newline
	LineComment
	BlockComment
	Shebang
)

func (k TriviaKind) String() string {
	switch k {
	case Whitespace:
		return "Whitespace"
	case Newline:
		return "Newline"
	case LineComment:
		return "LineComment"
	case BlockComment:
		return "BlockComment"
	case Shebang:
		return "Shebang"
	default:
		return "TriviaKind(?)"
	}
}

// Trivia is whitespace, a line break or a comment attached to a token.
type Trivia struct {
	Kind   TriviaKind
	Text   string
	Offset int
}

// IsComment reports whether the trivia is a line or block comment.
func (t Trivia) IsComment() bool {
	return t.Kind == LineComment || t.Kind == BlockComment
}

// Token is a leaf of the syntax tree.
//
// Tokens are never mutated once the parser hands them out.
type Token struct {
	Kind SyntaxKind
	// Text is the exact source text of the token, without trivia.
	Text string
	// Offset is the byte offset of Text in the source.
	Offset   int
	Leading  []Trivia
	Trailing []Trivia
	// Missing marks a zero-width token the parser synthesized in place of
	// one the source did not contain.
	Missing bool
}

// FullStart is the offset of the first byte of the token's leading trivia.
func (t *Token) FullStart() int {
	return t.Offset - triviaWidth(t.Leading)
}

// End is the offset just past the token's text.
func (t *Token) End() int {
	return t.Offset + len(t.Text)
}

// FullEnd is the offset just past the token's trailing trivia.
func (t *Token) FullEnd() int {
	return t.End() + triviaWidth(t.Trailing)
}

// FullText returns the leading trivia, text and trailing trivia.
func (t *Token) FullText() string {
	var sb strings.Builder
	t.writeTo(&sb)
	return sb.String()
}

// IsZeroWidth reports whether the token has no text, as with missing
// tokens and empty-block markers.
func (t *Token) IsZeroWidth() bool {
	return t.Text == "" && t.Kind != EndOfFile
}

// HasComments reports whether any comment is attached to the token.
func (t *Token) HasComments() bool {
	for _, tr := range t.Leading {
		if tr.IsComment() {
			return true
		}
	}
	for _, tr := range t.Trailing {
		if tr.IsComment() {
			return true
		}
	}
	return false
}

func (t *Token) writeTo(sb *strings.Builder) {
	for _, tr := range t.Leading {
		sb.WriteString(tr.Text)
	}
	sb.WriteString(t.Text)
	for _, tr := range t.Trailing {
		sb.WriteString(tr.Text)
	}
}

func (t *Token) String() string {
	if t.Missing {
		return "<missing " + t.Kind.String() + ">"
	}
	return t.Kind.String() + " " + quote(t.Text)
}

func triviaWidth(ts []Trivia) int {
	n := 0
	for _, t := range ts {
		n += len(t.Text)
	}
	return n
}

func quote(s string) string {
	if len(s) > 20 {
		s = s[:17] + "..."
	}
	return "'" + s + "'"
}
