package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/term"

	"github.com/vito/luafmt/pkg/syntax"
)

var (
	errorLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	messageStyle    = lipgloss.NewStyle().Bold(true)
	locationStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	gutterStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorLineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	underlineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// gutterWidth is the width of the line number column.
const gutterWidth = 3

// renderDiagnostic formats d with up to two lines of context on each side
// and a caret line under the offending span.
func renderDiagnostic(src string, lines *syntax.LineIndex, d syntax.Diagnostic) string {
	var out strings.Builder
	loc := d.Location

	out.WriteString(errorLabelStyle.Render("error:") + " " + messageStyle.Render(d.Message) + "\n")
	out.WriteString("  " + locationStyle.Render("--> "+loc.String()) + "\n")
	out.WriteString(gutterStyle.Render(" "+padLeft("", gutterWidth)+" |") + "\n")

	// A final line break does not start another line worth showing.
	n := lines.Lines()
	if n > 1 && lines.LineStart(n) == len(src) {
		n--
	}
	first := max(1, loc.Line-2)
	last := max(loc.Line, min(n, loc.Line+2))
	for i := first; i <= last; i++ {
		text := syntax.LineText(src, lines, i)
		num := padLeft(fmt.Sprintf("%d", i), gutterWidth)
		code := text
		if code != "" {
			code = " " + code
		}
		if i != loc.Line {
			out.WriteString(gutterStyle.Render(" "+num+" |") + code + "\n")
			continue
		}
		out.WriteString(errorLineStyle.Render(" "+num) + gutterStyle.Render(" |") + code + "\n")

		// Keep tabs so the caret lines up with the source.
		pad := caretPadding(text, loc.Column-1)
		width := max(1, min(loc.Length, len(text)-(loc.Column-1)))
		out.WriteString(strings.Repeat(" ", 1+gutterWidth+3) + pad + underlineStyle.Render(strings.Repeat("^", width)) + "\n")
	}

	out.WriteString(gutterStyle.Render(" "+padLeft("", gutterWidth)+" |") + "\n")
	return out.String()
}

func caretPadding(line string, col int) string {
	col = min(max(col, 0), len(line))
	var pad strings.Builder
	for _, r := range line[:col] {
		if r == '\t' {
			pad.WriteRune('\t')
		} else {
			pad.WriteByte(' ')
		}
	}
	return pad.String()
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// colorWriter strips styling unless w is a terminal and color is wanted.
func colorWriter(w io.Writer, noColor bool, lookupEnv func(string) (string, bool)) io.Writer {
	if noColor {
		return plainWriter{w}
	}
	if v, ok := lookupEnv("NO_COLOR"); ok && v != "" {
		return plainWriter{w}
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(f.Fd()) {
		return w
	}
	return plainWriter{w}
}

type plainWriter struct {
	w io.Writer
}

func (p plainWriter) Write(b []byte) (int, error) {
	if _, err := io.WriteString(p.w, ansi.Strip(string(b))); err != nil {
		return 0, err
	}
	return len(b), nil
}
