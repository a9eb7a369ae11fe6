package syntax

type priority struct{ left, right int }

var binaryPriority = map[SyntaxKind]priority{
	OrKeyword:    {1, 1},
	AndKeyword:   {2, 2},
	Less:         {3, 3},
	Greater:      {3, 3},
	LessEqual:    {3, 3},
	GreaterEqual: {3, 3},
	TildeEqual:   {3, 3},
	EqualEqual:   {3, 3},
	Pipe:         {4, 4},
	Tilde:        {5, 5},
	Ampersand:    {6, 6},
	ShiftLeft:    {7, 7},
	ShiftRight:   {7, 7},
	DoubleDot:    {9, 8}, // right associative
	Plus:         {10, 10},
	Minus:        {10, 10},
	Star:         {11, 11},
	Slash:        {11, 11},
	DoubleSlash:  {11, 11},
	Percent:      {11, 11},
	Caret:        {14, 13}, // right associative
}

const unaryPriority = 12

func isUnaryOperator(kind SyntaxKind) bool {
	switch kind {
	case NotKeyword, Minus, Hash, Tilde:
		return true
	}
	return false
}

func (p *parser) parseExpr() *Node {
	return p.parseSubExpr(0)
}

// parseSubExpr parses an expression whose binary operators all bind tighter
// than limit.
func (p *parser) parseSubExpr(limit int) *Node {
	if !p.enter() {
		return p.missingExpr()
	}
	defer p.leave()

	var left *Node
	if isUnaryOperator(p.cur().Kind) {
		op := p.next()
		left = newNode(UnaryExpression, tok(op), nd(p.parseSubExpr(unaryPriority)))
	} else {
		left = p.parseSimpleExpr()
	}

	for {
		prio, ok := binaryPriority[p.cur().Kind]
		if !ok || prio.left <= limit {
			return left
		}
		op := p.next()
		right := p.parseSubExpr(prio.right)
		left = newNode(BinaryExpression, nd(left), tok(op), nd(right))
	}
}

// missingExpr stands in for an expression the source does not contain.
func (p *parser) missingExpr() *Node {
	return errorNode(tok(p.missing(Identifier)))
}

func (p *parser) parseSimpleExpr() *Node {
	switch p.cur().Kind {
	case Number, String, LongString, NilKeyword, TrueKeyword, FalseKeyword, Ellipsis:
		return newNode(LiteralExpression, tok(p.next()))
	case OpenBrace:
		return p.parseTable()
	case FunctionKeyword:
		fn := p.next()
		return newNode(FunctionExpression, tok(fn), nd(p.parseFunctionBody(fn)))
	default:
		return p.parseSuffixedExpr()
	}
}

func (p *parser) parsePrimaryExpr() *Node {
	switch p.cur().Kind {
	case Identifier:
		return newNode(NameExpression, tok(p.next()))
	case OpenParen:
		open := p.next()
		inner := p.parseExpr()
		return newNode(ParenExpression, tok(open), nd(inner), tok(p.expectClosing(CloseParen, open)))
	default:
		p.errorf("unexpected symbol near %s", p.near())
		return p.missingExpr()
	}
}

func (p *parser) parseSuffixedExpr() *Node {
	e := p.parsePrimaryExpr()
	if e.Kind == ErrorNode {
		return e
	}
	for {
		switch p.cur().Kind {
		case Dot:
			dot := p.next()
			e = newNode(FieldAccess, nd(e), tok(dot), tok(p.expect(Identifier)))
		case OpenBracket:
			open := p.next()
			key := p.parseExpr()
			e = newNode(IndexAccess, nd(e), tok(open), nd(key), tok(p.expectClosing(CloseBracket, open)))
		case Colon:
			colon := p.next()
			name := p.expect(Identifier)
			e = newNode(MethodCall, nd(e), tok(colon), tok(name), nd(p.parseArguments()))
		case OpenParen, String, LongString, OpenBrace:
			e = newNode(Call, nd(e), nd(p.parseArguments()))
		default:
			return e
		}
	}
}

func (p *parser) parseArguments() *Node {
	switch p.cur().Kind {
	case String, LongString:
		return newNode(Arguments, tok(p.next()))
	case OpenBrace:
		return newNode(Arguments, nd(p.parseTable()))
	case OpenParen:
		open := p.next()
		if p.at(CloseParen) {
			return newNode(Arguments, tok(open), tok(p.next()))
		}
		args := p.parseExpressionList()
		return newNode(Arguments, tok(open), nd(args), tok(p.expectClosing(CloseParen, open)))
	default:
		p.errorf("function arguments expected near %s", p.near())
		return newNode(Arguments, tok(p.missing(OpenParen)), tok(p.missing(CloseParen)))
	}
}

func (p *parser) parseExpressionList() *Node {
	children := []Element{nd(p.parseExpr())}
	for p.at(Comma) {
		children = append(children, tok(p.next()), nd(p.parseExpr()))
	}
	return newNode(ExpressionList, children...)
}

// parseTable parses a table constructor. Fields and their separators are
// direct children of the TableConstructor node.
func (p *parser) parseTable() *Node {
	open := p.next()
	children := []Element{tok(open)}
	for !p.at(CloseBrace, EndOfFile) {
		children = append(children, nd(p.parseField()))
		if !p.at(Comma, Semicolon) {
			break
		}
		children = append(children, tok(p.next()))
	}
	children = append(children, tok(p.expectClosing(CloseBrace, open)))
	return newNode(TableConstructor, children...)
}

func (p *parser) parseField() *Node {
	switch {
	case p.at(OpenBracket):
		open := p.next()
		key := p.parseExpr()
		closeTok := p.expectClosing(CloseBracket, open)
		assign := p.expect(Assign)
		return newNode(IndexedField, tok(open), nd(key), tok(closeTok), tok(assign), nd(p.parseExpr()))
	case p.at(Identifier) && p.peekKind(1) == Assign:
		name := p.next()
		assign := p.next()
		return newNode(NamedField, tok(name), tok(assign), nd(p.parseExpr()))
	default:
		return newNode(PositionalField, nd(p.parseExpr()))
	}
}
