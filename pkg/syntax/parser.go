package syntax

import (
	"github.com/pkg/errors"
)

// maxDepth bounds nesting of blocks and expressions.
const maxDepth = 200

// parser holds the state of one parse. Nothing in it outlives the call to
// Parse.
type parser struct {
	toks  []*Token
	pos   int
	lines *LineIndex
	diags []Diagnostic

	depth   int
	tooDeep bool
}

// Parse builds a syntax tree for src. It never fails: the returned root
// always spans the whole input, and every lexical and syntax problem is in
// the returned diagnostics, ordered by position.
func Parse(src string) (*Node, []Diagnostic) {
	toks, diags := Lex(src)
	p := &parser{
		toks:  toks,
		lines: NewLineIndex(src),
		diags: diags,
	}
	root := p.parseChunk()

	sortDiagnostics(p.diags)
	for i := range p.diags {
		loc := &p.diags[i].Location
		loc.Line, loc.Column = p.lines.Position(loc.Offset)
	}
	return root, p.diags
}

func (p *parser) cur() *Token {
	return p.toks[p.pos]
}

func (p *parser) peekKind(n int) SyntaxKind {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n].Kind
	}
	return EndOfFile
}

func (p *parser) at(kinds ...SyntaxKind) bool {
	k := p.cur().Kind
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// next consumes the current token. EndOfFile is never consumed.
func (p *parser) next() *Token {
	t := p.cur()
	if t.Kind != EndOfFile {
		p.pos++
	}
	return t
}

// missing synthesizes a zero-width token of the given kind at the current
// position.
func (p *parser) missing(kind SyntaxKind) *Token {
	return &Token{Kind: kind, Offset: p.cur().FullStart(), Missing: true}
}

func (p *parser) errorf(format string, args ...any) {
	t := p.cur()
	d := newDiagnostic(t.Offset, len(t.Text), format, args...)
	// Recovery can trip over the same token more than once.
	if n := len(p.diags); n > 0 && p.diags[n-1] == d {
		return
	}
	p.diags = append(p.diags, d)
}

// near describes the current token for diagnostics.
func (p *parser) near() string {
	t := p.cur()
	if t.Kind == EndOfFile {
		return "<eof>"
	}
	return "'" + t.Text + "'"
}

func describe(kind SyntaxKind) string {
	switch kind {
	case Identifier:
		return "<name>"
	case EndOfFile:
		return "<eof>"
	}
	if text := kind.Text(); text != "" {
		return "'" + text + "'"
	}
	return kind.String()
}

// expect consumes a token of the given kind, or reports it missing and
// synthesizes a placeholder without consuming anything.
func (p *parser) expect(kind SyntaxKind) *Token {
	if p.at(kind) {
		return p.next()
	}
	p.errorf("%s expected near %s", describe(kind), p.near())
	return p.missing(kind)
}

// expectClosing is expect for a token that closes opener, mentioning the
// opener's line when it is not the current one.
func (p *parser) expectClosing(kind SyntaxKind, opener *Token) *Token {
	if p.at(kind) {
		return p.next()
	}
	openLine, _ := p.lines.Position(opener.Offset)
	curLine, _ := p.lines.Position(p.cur().Offset)
	if openLine == curLine {
		p.errorf("%s expected near %s", describe(kind), p.near())
	} else {
		p.errorf("%s expected (to close %s at line %d) near %s",
			describe(kind), describe(opener.Kind), openLine, p.near())
	}
	return p.missing(kind)
}

// enter tracks nesting depth. It reports false once the limit is reached;
// the limit diagnostic is only reported once per parse.
func (p *parser) enter() bool {
	if p.depth >= maxDepth {
		if !p.tooDeep {
			p.tooDeep = true
			p.errorf("chunk has too many syntax levels")
		}
		return false
	}
	p.depth++
	return true
}

func (p *parser) leave() {
	p.depth--
}

func tok(t *Token) Element { return Element{Token: t} }
func nd(n *Node) Element   { return Element{Node: n} }

func newNode(kind SyntaxKind, children ...Element) *Node {
	return &Node{Kind: kind, Children: children}
}

// errorNode wraps elements the parser could not fit into a production.
func errorNode(children ...Element) *Node {
	return newNode(ErrorNode, children...)
}

func (p *parser) parseChunk() *Node {
	block := p.parseBlock(true)
	eof := p.cur()
	if eof.Kind != EndOfFile {
		panic(errors.Errorf("syntax: chunk ended at %s, not end of input", eof))
	}
	return newNode(Chunk, nd(block), tok(eof))
}

func blockFollow(kind SyntaxKind) bool {
	switch kind {
	case EndOfFile, EndKeyword, ElseKeyword, ElseIfKeyword, UntilKeyword:
		return true
	}
	return false
}

// parseBlock parses statements until a block terminator. The top-level
// block only stops at end of input; stray terminators there become errors.
func (p *parser) parseBlock(topLevel bool) *Node {
	var children []Element
	var ret *Node
	for {
		k := p.cur().Kind
		if k == EndOfFile || (!topLevel && blockFollow(k)) {
			break
		}
		if ret != nil {
			want := "'end'"
			if topLevel {
				want = "<eof>"
			}
			p.errorf("%s expected after 'return' near %s", want, p.near())
			ret = nil
		}
		if topLevel && blockFollow(k) {
			p.errorf("<eof> expected near %s", p.near())
			children = append(children, nd(errorNode(tok(p.next()))))
			continue
		}
		stmt := p.parseStatement()
		if stmt.Kind == ReturnStatement {
			ret = stmt
		}
		children = append(children, nd(stmt))
	}
	if len(children) == 0 {
		children = append(children, tok(&Token{Kind: Empty, Offset: p.cur().FullStart()}))
	}
	return newNode(Block, children...)
}
