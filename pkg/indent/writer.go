// Package indent provides a line-oriented writer that tracks a nesting
// depth and prefixes each line with that many copies of an indent unit.
package indent

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Writer writes indented lines to a sink. It is not safe for concurrent
// use; give each formatting pass its own Writer.
type Writer struct {
	out   io.Writer
	unit  string
	base  string
	depth int
	err   error
}

// New returns a Writer at depth zero.
func New(out io.Writer, unit string) *Writer {
	return &Writer{out: out, unit: unit}
}

// Guard undoes exactly one Indent.
type Guard struct {
	w        *Writer
	released bool
}

// Indent increases the depth by one until the returned guard is released.
//
//	g := w.Indent()
//	defer g.Release()
func (w *Writer) Indent() *Guard {
	w.depth++
	return &Guard{w: w}
}

// Release restores the depth. Calling it more than once has no further
// effect.
func (g *Guard) Release() {
	if g.released {
		return
	}
	g.released = true
	g.w.dedent()
}

// Indented runs fn one level deeper. The depth is restored however fn
// exits.
func (w *Writer) Indented(fn func() error) error {
	g := w.Indent()
	defer g.Release()
	return fn()
}

func (w *Writer) dedent() {
	if w.depth == 0 {
		panic(errors.New("indent: depth would become negative"))
	}
	w.depth--
}

// Depth returns the current nesting depth.
func (w *Writer) Depth() int {
	return w.depth
}

// Unit returns the text written per level.
func (w *Writer) Unit() string {
	return w.unit
}

// SetBase sets the indentation written before the units of every level,
// including depth zero.
func (w *Writer) SetBase(base string) {
	w.base = base
}

// Prefix returns the indentation for the current depth.
func (w *Writer) Prefix() string {
	return w.base + strings.Repeat(w.unit, w.depth)
}

// WriteLine writes the current indentation, text and a line break.
func (w *Writer) WriteLine(text string) {
	w.WriteString(w.Prefix())
	w.WriteString(text)
	w.WriteString("\n")
}

// WriteLinef is WriteLine with formatting.
func (w *Writer) WriteLinef(format string, args ...any) {
	w.WriteLine(fmt.Sprintf(format, args...))
}

// WriteString writes s as is. After the first failed write, later writes
// are dropped and the error is kept for Err.
func (w *Writer) WriteString(s string) {
	if w.err != nil || s == "" {
		return
	}
	_, w.err = io.WriteString(w.out, s)
}

// Err returns the first error the sink reported.
func (w *Writer) Err() error {
	return w.err
}

// String returns the sink's contents when the sink is a fmt.Stringer, such
// as a strings.Builder or bytes.Buffer.
func (w *Writer) String() string {
	if s, ok := w.out.(fmt.Stringer); ok {
		return s.String()
	}
	return ""
}
