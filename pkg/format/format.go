// Package format re-wraps and re-indents Lua source.
//
// The formatter walks a lossless syntax tree and re-emits every token. It
// only decides where lines break and how they are indented; token text is
// never changed, and the only token it adds is the trailing separator of
// tables it lays out one field per line.
package format

import (
	"strings"

	"github.com/vito/luafmt/pkg/indent"
	"github.com/vito/luafmt/pkg/syntax"
)

// Source parses and formats src.
func Source(src string, cfg Config) (string, error) {
	return Tree(syntax.CreateFromString(src), cfg)
}

// Tree formats a parsed tree. Syntax errors do not stop formatting:
// statements containing them are emitted as written. The error is only
// non-nil for an invalid configuration.
func Tree(tree *syntax.Tree, cfg Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	var buf strings.Builder
	f := newFormatter(tree, cfg, &buf)
	f.chunk(tree.Root)
	if err := f.w.Err(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type gapKind int

const (
	// gapKeep keeps the source layout between two tokens.
	gapKeep gapKind = iota
	// gapBreak starts a new line at the writer's indentation.
	gapBreak
	// gapJoin removes whitespace between two tokens on the same line.
	gapJoin
)

// request tells the next emitted token how to treat the gap before it.
type request struct {
	kind gapKind
	// noBlank drops blank lines from the gap.
	noBlank bool
	// closer marks a token that ends a body; own-line comments before it
	// are indented like the body.
	closer     bool
	bodyIndent string
}

// anchor is the statement or table field being laid out. Lines that start
// inside it without a rule placing them keep their indentation relative to
// the anchor's line.
type anchor struct {
	tok  *syntax.Token
	from string
	to   string
}

type formatter struct {
	cfg  Config
	tree *syntax.Tree
	src  string
	w    *indent.Writer

	// next maps each token with text to the following one.
	next map[*syntax.Token]*syntax.Token

	prev    *syntax.Token
	req     request
	started bool
	anchor  anchor

	// atLineStart is set when the output ends in a line break.
	atLineStart bool

	// asIs counts enclosing regions emitted without layout rules.
	asIs int
}

func newFormatter(tree *syntax.Tree, cfg Config, out *strings.Builder) *formatter {
	f := &formatter{
		cfg:  cfg,
		tree: tree,
		src:  tree.Source,
		w:    indent.New(out, cfg.IndentUnit),
		next: make(map[*syntax.Token]*syntax.Token),
	}
	var last *syntax.Token
	for t := range tree.Root.Tokens() {
		if t.IsZeroWidth() {
			continue
		}
		if last != nil {
			f.next[last] = t
		}
		last = t
	}
	return f
}

func (f *formatter) chunk(root *syntax.Node) {
	block := root.Children[0].Node
	// Top-level statements keep the indentation of the first one.
	for _, c := range block.Children {
		if c.Node == nil {
			continue
		}
		if tok := firstReal(c.Node); tok != nil {
			f.w.SetBase(f.sourceIndent(tok))
		}
		break
	}
	f.block(block, true, false)
	f.finish(root.Children[1].Token)
}

// block emits a block's statements. In an expanded block each statement
// starts its own line, except empty statements and statements with syntax
// errors, which stay where they are.
func (f *formatter) block(block *syntax.Node, expanded, body bool) {
	first := true
	for _, c := range block.Children {
		if c.Token != nil {
			f.token(c.Token)
			continue
		}
		stmt := c.Node
		switch {
		case !expanded || stmt.Kind == syntax.EmptyStatement:
			f.node(stmt)
		case hasOwnErrors(stmt):
			f.asWritten(c)
		default:
			f.request(request{kind: gapBreak, noBlank: body && first})
			restore := f.enterAnchor(stmt)
			f.node(stmt)
			restore()
		}
		first = false
	}
}

// hasOwnErrors reports whether n contains a syntax error outside the blocks
// nested in it. Those blocks handle their own errors.
func hasOwnErrors(n *syntax.Node) bool {
	found := false
	syntax.Inspect(n, func(e syntax.Element) bool {
		switch {
		case found:
			return false
		case e.Token != nil:
			found = e.Token.Missing
			return false
		case e.Node.Kind == syntax.ErrorNode:
			found = true
			return false
		}
		return e.Node == n || e.Node.Kind != syntax.Block
	})
	return found
}

func (f *formatter) node(n *syntax.Node) {
	if f.asIs > 0 {
		f.children(n)
		return
	}
	switch n.Kind {
	case syntax.FunctionBody:
		f.functionBody(n)
	case syntax.TableConstructor:
		f.table(n)
	case syntax.DoStatement, syntax.WhileStatement, syntax.NumericFor, syntax.GenericFor:
		f.loop(n)
	case syntax.RepeatStatement:
		f.repeat(n)
	case syntax.IfStatement:
		f.ifStatement(n)
	default:
		f.children(n)
	}
}

func (f *formatter) children(n *syntax.Node) {
	for _, c := range n.Children {
		f.element(c)
	}
}

func (f *formatter) element(e syntax.Element) {
	if e.Token != nil {
		f.token(e.Token)
	} else {
		f.node(e.Node)
	}
}

// asWritten emits e keeping its source layout.
func (f *formatter) asWritten(e syntax.Element) {
	f.asIs++
	f.element(e)
	f.asIs--
}

func (f *formatter) request(r request) {
	f.req = r
}

// enterBody indents by one level unless bodies are flush with their
// header. The returned func may be called more than once.
func (f *formatter) enterBody() func() {
	if f.cfg.BodyIndent == BodyIndentFlush {
		return func() {}
	}
	return f.w.Indent().Release
}

func (f *formatter) enterAnchor(n *syntax.Node) func() {
	saved := f.anchor
	if tok := firstReal(n); tok != nil {
		f.anchor = anchor{tok: tok, from: f.sourceIndent(tok), to: f.w.Prefix()}
	}
	return func() { f.anchor = saved }
}

// expands decides whether a construct is laid out over several lines. It
// must start on the anchor's line. A construct written on one line is
// expanded unless the same-line placement lets it stay; one already
// spanning several lines is kept expanded when its header ends its line.
func (f *formatter) expands(n *syntax.Node, headerEnd *syntax.Token, items int) bool {
	if hasOwnErrors(n) || f.anchor.tok == nil {
		return false
	}
	first, last := firstReal(n), lastReal(n)
	if first == nil || !f.sameLine(first, f.anchor.tok) {
		return false
	}
	if !strings.ContainsAny(f.src[first.Offset:last.End()], "\r\n") {
		return f.cfg.Placement == PlacementOwnLine || items > 1
	}
	next := f.next[headerEnd]
	return next != nil && hasNewline(next.Leading)
}

func (f *formatter) functionBody(n *syntax.Node) {
	params := n.Children[0].Node
	block := n.Children[1].Node
	end := n.Children[2].Token
	if !f.expands(n, params.LastToken(), countStatements(block)) {
		f.asWritten(syntax.NodeElement(n))
		return
	}
	f.request(request{kind: gapJoin})
	f.node(params)
	f.body(block, end)
}

// body lays out block below its header and puts closer on its own line.
func (f *formatter) body(block *syntax.Node, closer *syntax.Token) {
	leave := f.enterBody()
	defer leave()
	bodyIndent := f.w.Prefix()
	f.block(block, true, true)
	if f.cfg.CloserAlign == CloserAlignHeader {
		leave()
	}
	f.request(request{kind: gapBreak, noBlank: true, closer: true, bodyIndent: bodyIndent})
	f.token(closer)
}

func (f *formatter) table(n *syntax.Node) {
	open := n.Children[0].Token
	closeBrace := n.Children[len(n.Children)-1].Token
	inner := n.Children[1 : len(n.Children)-1]
	fields := 0
	for _, c := range inner {
		if c.Node != nil {
			fields++
		}
	}
	if !f.expands(n, open, fields) {
		f.asWritten(syntax.NodeElement(n))
		return
	}

	f.token(open)
	leave := f.enterBody()
	defer leave()
	bodyIndent := f.w.Prefix()
	for i, c := range inner {
		if c.Token != nil {
			f.request(request{kind: gapJoin})
			f.token(c.Token)
			continue
		}
		f.request(request{kind: gapBreak, noBlank: i == 0})
		restore := f.enterAnchor(c.Node)
		f.node(c.Node)
		restore()
		if i == len(inner)-1 && f.cfg.TrailingSeparator {
			f.write(",")
		}
	}
	if f.cfg.CloserAlign == CloserAlignHeader {
		leave()
	}
	f.request(request{kind: gapBreak, noBlank: true, closer: true, bodyIndent: bodyIndent})
	f.token(closeBrace)
}

// loop handles do, while and both for statements: a header ending in
// "do", a block, and "end".
func (f *formatter) loop(n *syntax.Node) {
	bi := blockIndex(n)
	block := n.Children[bi].Node
	if !f.expands(n, n.Children[bi-1].Token, countStatements(block)) {
		f.asWritten(syntax.NodeElement(n))
		return
	}
	f.header(n.Children[:bi])
	f.body(block, n.Children[bi+1].Token)
}

func (f *formatter) repeat(n *syntax.Node) {
	repeat := n.Children[0].Token
	block := n.Children[1].Node
	if !f.expands(n, repeat, countStatements(block)) {
		f.asWritten(syntax.NodeElement(n))
		return
	}
	f.token(repeat)
	f.body(block, n.Children[2].Token)
	f.header(n.Children[3:])
}

func (f *formatter) ifStatement(n *syntax.Node) {
	then := n.Children[2].Token
	block := n.Children[3].Node
	clauses := n.Children[4 : len(n.Children)-1]
	end := n.Children[len(n.Children)-1].Token

	items := countStatements(block) + len(clauses)
	for _, c := range clauses {
		items += countStatements(clauseBlock(c.Node))
	}
	if !f.expands(n, then, items) {
		f.asWritten(syntax.NodeElement(n))
		return
	}

	f.header(n.Children[:3])
	closers := make([]*syntax.Token, 0, len(clauses)+1)
	for _, c := range clauses {
		closers = append(closers, c.Node.FirstToken())
	}
	closers = append(closers, end)

	f.body(block, closers[0])
	for i, c := range clauses {
		// The clause keyword was emitted as the previous body's closer.
		bi := blockIndex(c.Node)
		f.header(c.Node.Children[1:bi])
		f.body(c.Node.Children[bi].Node, closers[i+1])
	}
}

// header emits the tokens and expressions before a body. Expressions in
// headers keep their source layout.
func (f *formatter) header(elems []syntax.Element) {
	for _, e := range elems {
		if e.Token != nil {
			f.token(e.Token)
		} else {
			f.asWritten(e)
		}
	}
}

func blockIndex(n *syntax.Node) int {
	for i, c := range n.Children {
		if c.Node != nil && c.Node.Kind == syntax.Block {
			return i
		}
	}
	return -1
}

func clauseBlock(n *syntax.Node) *syntax.Node {
	return n.Children[blockIndex(n)].Node
}

func countStatements(block *syntax.Node) int {
	n := 0
	for _, c := range block.Children {
		if c.Node != nil {
			n++
		}
	}
	return n
}

func firstReal(n *syntax.Node) *syntax.Token {
	for t := range n.Tokens() {
		if !t.IsZeroWidth() {
			return t
		}
	}
	return nil
}

func lastReal(n *syntax.Node) *syntax.Token {
	var last *syntax.Token
	for t := range n.Tokens() {
		if !t.IsZeroWidth() {
			last = t
		}
	}
	return last
}

func (f *formatter) sameLine(a, b *syntax.Token) bool {
	la, _ := f.tree.Position(a.Offset)
	lb, _ := f.tree.Position(b.Offset)
	return la == lb
}

// sourceIndent returns the leading whitespace of the source line holding t.
func (f *formatter) sourceIndent(t *syntax.Token) string {
	line, _ := f.tree.Position(t.Offset)
	start := f.tree.Lines().LineStart(line)
	end := start
	for end < len(f.src) && (f.src[end] == ' ' || f.src[end] == '\t') {
		end++
	}
	return f.src[start:end]
}
