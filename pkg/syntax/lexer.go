package syntax

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// piece is one raw lexeme before trivia is attached to tokens.
type piece struct {
	trivia     bool
	triviaKind TriviaKind
	kind       SyntaxKind
	start, end int
}

type lexer struct {
	src    string
	pos    int
	pieces []piece
	diags  []Diagnostic
}

// Lex splits src into tokens with attached trivia. It never fails: text it
// cannot classify becomes Unknown tokens, and every problem is reported as
// a diagnostic. The last token is always EndOfFile.
func Lex(src string) ([]*Token, []Diagnostic) {
	l := &lexer{src: src}
	l.scan()
	return l.attach(), l.diags
}

func (l *lexer) errorf(start, end int, format string, args ...any) {
	l.diags = append(l.diags, newDiagnostic(start, end-start, format, args...))
}

func (l *lexer) peek(n int) byte {
	if l.pos+n < len(l.src) {
		return l.src[l.pos+n]
	}
	return 0
}

func (l *lexer) emitTrivia(kind TriviaKind, start int) {
	l.pieces = append(l.pieces, piece{trivia: true, triviaKind: kind, start: start, end: l.pos})
}

func (l *lexer) emit(kind SyntaxKind, start int) {
	l.pieces = append(l.pieces, piece{kind: kind, start: start, end: l.pos})
}

func (l *lexer) scan() {
	if strings.HasPrefix(l.src, "#!") {
		l.pos = lineEnd(l.src, 0)
		l.emitTrivia(Shebang, 0)
	}

	for l.pos < len(l.src) {
		start := l.pos
		c := l.src[l.pos]
		switch {
		case c == '\n' || c == '\r':
			l.pos++
			if c == '\r' && l.peek(0) == '\n' {
				l.pos++
			}
			l.emitTrivia(Newline, start)
		case isSpace(c):
			for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
				l.pos++
			}
			l.emitTrivia(Whitespace, start)
		case c == '-' && l.peek(1) == '-':
			l.scanComment()
		default:
			l.scanToken()
		}
	}

	l.pieces = append(l.pieces, piece{kind: EndOfFile, start: len(l.src), end: len(l.src)})
}

func (l *lexer) scanComment() {
	start := l.pos
	l.pos += 2
	if l.peek(0) == '[' {
		if level := longBracketLevel(l.src, l.pos); level >= 0 {
			if !l.skipLongBracket(level) {
				l.errorf(start, l.pos, "unfinished long comment")
			}
			l.emitTrivia(BlockComment, start)
			return
		}
	}
	l.pos = lineEnd(l.src, l.pos)
	l.emitTrivia(LineComment, start)
}

// skipLongBracket advances past a long bracket opened at l.pos with the
// given level. It reports false and stops at end of input when the bracket
// is never closed.
func (l *lexer) skipLongBracket(level int) bool {
	closer := "]" + strings.Repeat("=", level) + "]"
	body := l.pos + level + 2
	i := strings.Index(l.src[body:], closer)
	if i < 0 {
		l.pos = len(l.src)
		return false
	}
	l.pos = body + i + len(closer)
	return true
}

func (l *lexer) scanToken() {
	start := l.pos
	c := l.src[l.pos]

	switch {
	case isNameStart(c):
		for l.pos < len(l.src) && isNameChar(l.src[l.pos]) {
			l.pos++
		}
		if kw, ok := LookupKeyword(l.src[start:l.pos]); ok {
			l.emit(kw, start)
		} else {
			l.emit(Identifier, start)
		}
		return
	case isDigit(c) || (c == '.' && isDigit(l.peek(1))):
		l.scanNumber()
		return
	case c == '"' || c == '\'':
		l.scanString(c)
		return
	case c == '[':
		if level := longBracketLevel(l.src, l.pos); level >= 0 {
			if !l.skipLongBracket(level) {
				l.errorf(start, l.pos, "unfinished long string")
			}
			l.emit(LongString, start)
			return
		}
	}

	if kind, n := matchPunct(l.src[l.pos:]); n > 0 {
		l.pos += n
		l.emit(kind, start)
		return
	}

	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size
	l.errorf(start, l.pos, "unexpected character %q", r)
	l.emit(Unknown, start)
}

var (
	decimalNumeral = regexp.MustCompile(`^([0-9]+\.?[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?$`)
	hexNumeral     = regexp.MustCompile(`^0[xX]([0-9a-fA-F]+\.?[0-9a-fA-F]*|\.[0-9a-fA-F]+)([pP][+-]?[0-9]+)?$`)
)

// scanNumber reads a numeral the way Lua does: greedily over hex digits,
// dots and signed exponents, then any trailing name characters. The text is
// validated afterwards so a malformed numeral is still a single token.
func (l *lexer) scanNumber() {
	start := l.pos
	expo := "eE"
	if l.src[l.pos] == '0' && (l.peek(1) == 'x' || l.peek(1) == 'X') {
		expo = "pP"
		l.pos += 2
	}
scan:
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case strings.IndexByte(expo, c) >= 0:
			l.pos++
			if s := l.peek(0); s == '+' || s == '-' {
				l.pos++
			}
		case isHexDigit(c) || c == '.':
			l.pos++
		default:
			break scan
		}
	}
	for l.pos < len(l.src) && isNameChar(l.src[l.pos]) {
		l.pos++
	}
	text := l.src[start:l.pos]
	if !decimalNumeral.MatchString(text) && !hexNumeral.MatchString(text) {
		l.errorf(start, l.pos, "malformed number near '%s'", text)
	}
	l.emit(Number, start)
}

func (l *lexer) scanString(quote byte) {
	start := l.pos
	l.pos++
	for {
		if l.pos >= len(l.src) {
			l.errorf(start, l.pos, "unfinished string")
			break
		}
		c := l.src[l.pos]
		if c == quote {
			l.pos++
			break
		}
		if c == '\n' || c == '\r' {
			l.errorf(start, l.pos, "unfinished string")
			break
		}
		if c == '\\' {
			l.scanEscape()
			continue
		}
		l.pos++
	}
	l.emit(String, start)
}

func (l *lexer) scanEscape() {
	start := l.pos
	l.pos++
	if l.pos >= len(l.src) {
		return
	}
	c := l.src[l.pos]
	switch {
	case strings.IndexByte(`abfnrtv\"'`, c) >= 0:
		l.pos++
	case c == '\n' || c == '\r':
		l.pos++
		if next := l.peek(0); (next == '\n' || next == '\r') && next != c {
			l.pos++
		}
	case c == 'z':
		l.pos++
		for l.pos < len(l.src) && (isSpace(l.src[l.pos]) || l.src[l.pos] == '\n' || l.src[l.pos] == '\r') {
			l.pos++
		}
	case c == 'x':
		l.pos++
		n := 0
		for n < 2 && l.pos < len(l.src) && isHexDigit(l.src[l.pos]) {
			l.pos++
			n++
		}
		if n < 2 {
			l.errorf(start, l.pos, "hexadecimal digit expected near '%s'", l.src[start:l.pos])
		}
	case c == 'u':
		l.pos++
		if l.peek(0) != '{' {
			l.errorf(start, l.pos, "missing '{' in \\u{xxxx}")
			return
		}
		l.pos++
		n := 0
		for l.pos < len(l.src) && isHexDigit(l.src[l.pos]) {
			l.pos++
			n++
		}
		if n == 0 || l.peek(0) != '}' {
			l.errorf(start, l.pos, "invalid UTF-8 escape near '%s'", l.src[start:l.pos])
			return
		}
		l.pos++
	case isDigit(c):
		val := 0
		for n := 0; n < 3 && l.pos < len(l.src) && isDigit(l.src[l.pos]); n++ {
			val = val*10 + int(l.src[l.pos]-'0')
			l.pos++
		}
		if val > 255 {
			l.errorf(start, l.pos, "decimal escape too large near '%s'", l.src[start:l.pos])
		}
	default:
		_, size := utf8.DecodeRuneInString(l.src[l.pos:])
		l.pos += size
		l.errorf(start, l.pos, "invalid escape sequence '%s'", l.src[start:l.pos])
	}
}

// attach turns the raw piece stream into tokens. A token's trailing trivia
// is the whitespace after it on its line, plus a comment when that comment
// ends the line. Everything else leads the following token.
func (l *lexer) attach() []*Token {
	var toks []*Token
	var leading []Trivia
	for i := 0; i < len(l.pieces); i++ {
		p := l.pieces[i]
		if p.trivia {
			leading = append(leading, l.trivia(p))
			continue
		}
		tok := &Token{
			Kind:    p.kind,
			Text:    l.src[p.start:p.end],
			Offset:  p.start,
			Leading: leading,
		}
		leading = nil
		if p.kind != EndOfFile {
			n := l.trailingExtent(i + 1)
			for j := i + 1; j <= i+n; j++ {
				tok.Trailing = append(tok.Trailing, l.trivia(l.pieces[j]))
			}
			i += n
		}
		toks = append(toks, tok)
	}
	return toks
}

func (l *lexer) trailingExtent(from int) int {
	ps := l.pieces
	j := from
	for j < len(ps) && isTriviaKind(ps[j], Whitespace) {
		j++
	}
	ws := j - from
	if j < len(ps) && (isTriviaKind(ps[j], LineComment) || isTriviaKind(ps[j], BlockComment)) &&
		!strings.ContainsAny(l.src[ps[j].start:ps[j].end], "\r\n") {
		k := j + 1
		for k < len(ps) && isTriviaKind(ps[k], Whitespace) {
			k++
		}
		if isTriviaKind(ps[k], Newline) || (!ps[k].trivia && ps[k].kind == EndOfFile) {
			return k - from
		}
	}
	return ws
}

func (l *lexer) trivia(p piece) Trivia {
	return Trivia{Kind: p.triviaKind, Text: l.src[p.start:p.end], Offset: p.start}
}

func isTriviaKind(p piece, k TriviaKind) bool {
	return p.trivia && p.triviaKind == k
}

// longBracketLevel returns the level of a long bracket opening at pos
// ("[[" is 0, "[==[" is 2), or -1 if there is none.
func longBracketLevel(src string, pos int) int {
	if pos >= len(src) || src[pos] != '[' {
		return -1
	}
	i := pos + 1
	for i < len(src) && src[i] == '=' {
		i++
	}
	if i < len(src) && src[i] == '[' {
		return i - pos - 1
	}
	return -1
}

func lineEnd(src string, pos int) int {
	if i := strings.IndexAny(src[pos:], "\r\n"); i >= 0 {
		return pos + i
	}
	return len(src)
}

// punctuation in longest-match-first order.
var punctuation = []SyntaxKind{
	Ellipsis, DoubleDot, DoubleColon, DoubleSlash, ShiftLeft, ShiftRight,
	EqualEqual, TildeEqual, LessEqual, GreaterEqual,
	Plus, Minus, Star, Slash, Percent, Caret, Hash, Ampersand, Tilde, Pipe,
	Less, Greater, Assign, OpenParen, CloseParen, OpenBrace, CloseBrace,
	OpenBracket, CloseBracket, Semicolon, Colon, Comma, Dot,
}

func matchPunct(s string) (SyntaxKind, int) {
	for _, k := range punctuation {
		if text := k.Text(); strings.HasPrefix(s, text) {
			return k, len(text)
		}
	}
	return Invalid, 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || isDigit(c)
}
