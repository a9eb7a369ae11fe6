package format

import (
	"strings"

	"github.com/vito/luafmt/pkg/syntax"
)

// token writes t, first settling the gap between the previous token and t
// as the pending request asks. Zero-width tokens are skipped.
func (f *formatter) token(t *syntax.Token) {
	if t.IsZeroWidth() {
		return
	}
	req := f.req
	f.req = request{}
	f.gap(f.prev, t, req)
	f.write(t.Text)
	f.prev = t
}

// gap writes the trivia between prev and t. The trivia is split into
// lines: the first one ends prev's line, the last one starts t's line, and
// the ones between hold own-line comments or are blank.
func (f *formatter) gap(prev, t *syntax.Token, req request) {
	var items []syntax.Trivia
	if prev != nil {
		items = append(items, prev.Trailing...)
	}
	items = append(items, t.Leading...)
	segs := splitLines(items)

	if len(segs) == 1 && prev != nil {
		switch req.kind {
		case gapKeep:
			f.writeTrivia(segs[0])
		case gapJoin:
			if hasContent(segs[0]) {
				f.writeTrivia(segs[0])
			}
		case gapBreak:
			// prev's trailing trivia can only be whitespace here.
			f.newlines(1)
			f.write(f.w.Prefix())
			f.writeTrivia(trimLeft(t.Leading))
		}
		return
	}

	lines := segs
	if prev != nil {
		f.writeTrivia(trimRight(segs[0]))
		lines = segs[1:]
	}
	last := lines[len(lines)-1]
	blank := 0
	for _, seg := range lines[:len(lines)-1] {
		if !hasContent(seg) {
			blank++
			continue
		}
		f.newlines(breaks(blank, req.noBlank))
		blank = 0
		f.write(f.commentIndent(req, seg))
		f.writeTrivia(trim(seg))
	}
	f.newlines(breaks(blank, req.noBlank))
	if req.kind == gapBreak {
		f.write(f.w.Prefix())
	} else {
		f.write(f.shift(lineIndent(last)))
	}
	f.writeTrivia(trimLeft(last))
}

// finish writes the comments left before the end of file and the final
// line break, which is only kept when the source had one.
func (f *formatter) finish(eof *syntax.Token) {
	var items []syntax.Trivia
	if f.prev != nil {
		items = append(items, f.prev.Trailing...)
	}
	items = append(items, eof.Leading...)
	segs := splitLines(items)

	lines := segs
	if f.prev != nil {
		f.writeTrivia(trimRight(segs[0]))
		lines = segs[1:]
	}
	blank := 0
	for _, seg := range lines {
		if !hasContent(seg) {
			blank++
			continue
		}
		f.newlines(breaks(blank, false))
		blank = 0
		f.write(f.w.Prefix())
		f.writeTrivia(trim(seg))
	}
	// An unterminated long string or comment may already end the output
	// with its own line break.
	if f.started && !f.atLineStart && endsLine(f.src) {
		f.write("\n")
	}
}

func (f *formatter) commentIndent(req request, seg []syntax.Trivia) string {
	switch {
	case req.kind == gapBreak && req.closer:
		return req.bodyIndent
	case req.kind == gapBreak:
		return f.w.Prefix()
	default:
		return f.shift(lineIndent(seg))
	}
}

// shift moves a line that kept its source indentation along with its
// anchor.
func (f *formatter) shift(indent string) string {
	if rest, ok := strings.CutPrefix(indent, f.anchor.from); ok {
		return f.anchor.to + rest
	}
	return indent
}

func (f *formatter) write(s string) {
	if s == "" {
		return
	}
	f.w.WriteString(s)
	f.started = true
	f.atLineStart = endsLine(s)
}

// newlines ends the current line, leaving n-1 blank lines. Nothing is
// written before the first output so leading blank lines disappear.
func (f *formatter) newlines(n int) {
	if !f.started {
		return
	}
	f.w.WriteString(strings.Repeat("\n", n))
	f.atLineStart = n > 0
}

func endsLine(s string) bool {
	return strings.HasSuffix(s, "\n") || strings.HasSuffix(s, "\r")
}

func (f *formatter) writeTrivia(ts []syntax.Trivia) {
	for _, t := range ts {
		f.write(t.Text)
	}
}

func breaks(blank int, noBlank bool) int {
	if blank == 0 || noBlank {
		return 1
	}
	return 2
}

func splitLines(items []syntax.Trivia) [][]syntax.Trivia {
	segs := [][]syntax.Trivia{nil}
	for _, it := range items {
		if it.Kind == syntax.Newline {
			segs = append(segs, nil)
			continue
		}
		segs[len(segs)-1] = append(segs[len(segs)-1], it)
	}
	return segs
}

func hasContent(seg []syntax.Trivia) bool {
	for _, t := range seg {
		if t.Kind != syntax.Whitespace {
			return true
		}
	}
	return false
}

func hasNewline(ts []syntax.Trivia) bool {
	for _, t := range ts {
		if t.Kind == syntax.Newline {
			return true
		}
	}
	return false
}

func lineIndent(seg []syntax.Trivia) string {
	if len(seg) > 0 && seg[0].Kind == syntax.Whitespace {
		return seg[0].Text
	}
	return ""
}

func trimLeft(seg []syntax.Trivia) []syntax.Trivia {
	for len(seg) > 0 && seg[0].Kind == syntax.Whitespace {
		seg = seg[1:]
	}
	return seg
}

func trimRight(seg []syntax.Trivia) []syntax.Trivia {
	for len(seg) > 0 && seg[len(seg)-1].Kind == syntax.Whitespace {
		seg = seg[:len(seg)-1]
	}
	return seg
}

func trim(seg []syntax.Trivia) []syntax.Trivia {
	return trimRight(trimLeft(seg))
}
