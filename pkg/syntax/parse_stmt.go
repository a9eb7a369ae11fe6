package syntax

func (p *parser) parseStatement() *Node {
	if !p.enter() {
		return errorNode(tok(p.next()))
	}
	defer p.leave()

	switch p.cur().Kind {
	case Semicolon:
		return newNode(EmptyStatement, tok(p.next()))
	case IfKeyword:
		return p.parseIf()
	case WhileKeyword:
		return p.parseWhile()
	case DoKeyword:
		do := p.next()
		body := p.parseBlock(false)
		return newNode(DoStatement, tok(do), nd(body), tok(p.expectClosing(EndKeyword, do)))
	case ForKeyword:
		return p.parseFor()
	case RepeatKeyword:
		return p.parseRepeat()
	case FunctionKeyword:
		fn := p.next()
		name := p.parseFunctionName()
		return newNode(FunctionDeclaration, tok(fn), nd(name), nd(p.parseFunctionBody(fn)))
	case LocalKeyword:
		if p.peekKind(1) == FunctionKeyword {
			local := p.next()
			fn := p.next()
			name := p.expect(Identifier)
			return newNode(LocalFunction, tok(local), tok(fn), tok(name), nd(p.parseFunctionBody(fn)))
		}
		return p.parseLocal()
	case DoubleColon:
		open := p.next()
		name := p.expect(Identifier)
		return newNode(LabelStatement, tok(open), tok(name), tok(p.expect(DoubleColon)))
	case ReturnKeyword:
		return p.parseReturn()
	case BreakKeyword:
		return newNode(BreakStatement, tok(p.next()))
	case GotoKeyword:
		gt := p.next()
		return newNode(GotoStatement, tok(gt), tok(p.expect(Identifier)))
	case Identifier, OpenParen:
		return p.parseExpressionStatement()
	default:
		return p.skipToStatement()
	}
}

func startsStatement(kind SyntaxKind) bool {
	switch kind {
	case Semicolon, IfKeyword, WhileKeyword, DoKeyword, ForKeyword, RepeatKeyword,
		FunctionKeyword, LocalKeyword, DoubleColon, ReturnKeyword, BreakKeyword,
		GotoKeyword, Identifier, OpenParen:
		return true
	}
	return false
}

// skipToStatement wraps the run of tokens that cannot begin a statement in
// a single ErrorNode. At least one token is always consumed.
func (p *parser) skipToStatement() *Node {
	p.errorf("unexpected symbol near %s", p.near())
	skipped := []Element{tok(p.next())}
	for !startsStatement(p.cur().Kind) && !blockFollow(p.cur().Kind) {
		skipped = append(skipped, tok(p.next()))
	}
	return errorNode(skipped...)
}

func (p *parser) parseIf() *Node {
	ifTok := p.next()
	children := []Element{tok(ifTok), nd(p.parseExpr()), tok(p.expect(ThenKeyword)), nd(p.parseBlock(false))}
	for p.at(ElseIfKeyword) {
		elseif := p.next()
		clause := newNode(ElseIfClause,
			tok(elseif),
			nd(p.parseExpr()),
			tok(p.expect(ThenKeyword)),
			nd(p.parseBlock(false)),
		)
		children = append(children, nd(clause))
	}
	if p.at(ElseKeyword) {
		els := p.next()
		children = append(children, nd(newNode(ElseClause, tok(els), nd(p.parseBlock(false)))))
	}
	children = append(children, tok(p.expectClosing(EndKeyword, ifTok)))
	return newNode(IfStatement, children...)
}

func (p *parser) parseWhile() *Node {
	while := p.next()
	cond := p.parseExpr()
	do := p.expect(DoKeyword)
	body := p.parseBlock(false)
	return newNode(WhileStatement, tok(while), nd(cond), tok(do), nd(body), tok(p.expectClosing(EndKeyword, while)))
}

func (p *parser) parseRepeat() *Node {
	repeat := p.next()
	body := p.parseBlock(false)
	until := p.expectClosing(UntilKeyword, repeat)
	return newNode(RepeatStatement, tok(repeat), nd(body), tok(until), nd(p.parseExpr()))
}

func (p *parser) parseFor() *Node {
	forTok := p.next()
	name := p.expect(Identifier)

	switch p.cur().Kind {
	case Assign:
		children := []Element{tok(forTok), tok(name), tok(p.next()), nd(p.parseExpr()), tok(p.expect(Comma)), nd(p.parseExpr())}
		if p.at(Comma) {
			children = append(children, tok(p.next()), nd(p.parseExpr()))
		}
		children = append(children, tok(p.expect(DoKeyword)), nd(p.parseBlock(false)), tok(p.expectClosing(EndKeyword, forTok)))
		return newNode(NumericFor, children...)
	case Comma, InKeyword:
		names := []Element{tok(name)}
		for p.at(Comma) {
			names = append(names, tok(p.next()), tok(p.expect(Identifier)))
		}
		return newNode(GenericFor,
			tok(forTok),
			nd(newNode(NameList, names...)),
			tok(p.expect(InKeyword)),
			nd(p.parseExpressionList()),
			tok(p.expect(DoKeyword)),
			nd(p.parseBlock(false)),
			tok(p.expectClosing(EndKeyword, forTok)),
		)
	default:
		p.errorf("'=' or 'in' expected near %s", p.near())
		in := p.missing(InKeyword)
		return newNode(GenericFor,
			tok(forTok),
			nd(newNode(NameList, tok(name))),
			tok(in),
			nd(newNode(ExpressionList, nd(p.missingExpr()))),
			tok(p.missing(DoKeyword)),
			nd(newNode(Block, tok(&Token{Kind: Empty, Offset: p.cur().FullStart()}))),
			tok(p.missing(EndKeyword)),
		)
	}
}

func (p *parser) parseFunctionName() *Node {
	children := []Element{tok(p.expect(Identifier))}
	for p.at(Dot) {
		children = append(children, tok(p.next()), tok(p.expect(Identifier)))
	}
	if p.at(Colon) {
		children = append(children, tok(p.next()), tok(p.expect(Identifier)))
	}
	return newNode(FunctionName, children...)
}

// parseFunctionBody parses the parameter list, body and closing 'end'
// shared by every kind of function.
func (p *parser) parseFunctionBody(fn *Token) *Node {
	params := p.parseParameterList()
	body := p.parseBlock(false)
	return newNode(FunctionBody, nd(params), nd(body), tok(p.expectClosing(EndKeyword, fn)))
}

func (p *parser) parseParameterList() *Node {
	children := []Element{tok(p.expect(OpenParen))}
	if !p.at(CloseParen) {
	params:
		for {
			switch p.cur().Kind {
			case Identifier:
				children = append(children, tok(p.next()))
			case Ellipsis:
				children = append(children, tok(p.next()))
				break params
			default:
				children = append(children, tok(p.expect(Identifier)))
				break params
			}
			if !p.at(Comma) {
				break
			}
			children = append(children, tok(p.next()))
		}
	}
	children = append(children, tok(p.expect(CloseParen)))
	return newNode(ParameterList, children...)
}

func (p *parser) parseLocal() *Node {
	local := p.next()
	var names []Element
	for {
		names = append(names, tok(p.expect(Identifier)))
		if p.at(Less) {
			names = append(names, nd(p.parseAttribute()))
		}
		if !p.at(Comma) {
			break
		}
		names = append(names, tok(p.next()))
	}
	children := []Element{tok(local), nd(newNode(NameList, names...))}
	if p.at(Assign) {
		children = append(children, tok(p.next()), nd(p.parseExpressionList()))
	}
	return newNode(LocalAssignment, children...)
}

func (p *parser) parseAttribute() *Node {
	open := p.next()
	name := p.expect(Identifier)
	if !name.Missing && name.Text != "const" && name.Text != "close" {
		p.diags = append(p.diags, newDiagnostic(name.Offset, len(name.Text), "unknown attribute '%s'", name.Text))
	}
	return newNode(Attribute, tok(open), tok(name), tok(p.expect(Greater)))
}

func (p *parser) parseReturn() *Node {
	children := []Element{tok(p.next())}
	if !blockFollow(p.cur().Kind) && !p.at(Semicolon) {
		children = append(children, nd(p.parseExpressionList()))
	}
	if p.at(Semicolon) {
		children = append(children, tok(p.next()))
	}
	return newNode(ReturnStatement, children...)
}

func (p *parser) parseExpressionStatement() *Node {
	first := p.parseSuffixedExpr()
	if p.at(Assign, Comma) {
		p.checkAssignable(first)
		targets := []Element{nd(first)}
		for p.at(Comma) {
			targets = append(targets, tok(p.next()))
			target := p.parseSuffixedExpr()
			p.checkAssignable(target)
			targets = append(targets, nd(target))
		}
		return newNode(Assignment,
			nd(newNode(VariableList, targets...)),
			tok(p.expect(Assign)),
			nd(p.parseExpressionList()),
		)
	}
	switch first.Kind {
	case Call, MethodCall:
		return newNode(CallStatement, nd(first))
	case ErrorNode:
		return first
	}
	p.errorf("syntax error near %s", p.near())
	return errorNode(nd(first))
}

func (p *parser) checkAssignable(n *Node) {
	switch n.Kind {
	case NameExpression, FieldAccess, IndexAccess, ErrorNode:
		return
	}
	first := n.FirstToken()
	p.diags = append(p.diags, newDiagnostic(first.Offset, n.LastToken().End()-first.Offset, "cannot assign to this expression"))
}
