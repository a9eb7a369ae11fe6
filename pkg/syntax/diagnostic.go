package syntax

import (
	"fmt"
	"sort"
	"strings"
)

// SourceLocation represents a location in source code
type SourceLocation struct {
	Filename string
	Offset   int
	Line     int // 1-based
	Column   int // 1-based, in bytes
	Length   int // Length of the span that caused the diagnostic
}

func (loc SourceLocation) String() string {
	name := loc.Filename
	if name == "" {
		name = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", name, loc.Line, loc.Column)
}

// Diagnostic is a lexical or syntax error. Diagnostics never stop tree
// construction; they are collected on the Tree.
type Diagnostic struct {
	Location SourceLocation
	Message  string
}

func (d Diagnostic) Error() string {
	return d.Location.String() + ": " + d.Message
}

func newDiagnostic(offset, length int, format string, args ...any) Diagnostic {
	return Diagnostic{
		Location: SourceLocation{Offset: offset, Length: length},
		Message:  fmt.Sprintf(format, args...),
	}
}

// sortDiagnostics orders diagnostics by offset, keeping the order in which
// equal offsets were reported.
func sortDiagnostics(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		return ds[i].Location.Offset < ds[j].Location.Offset
	})
}

// LineIndex maps byte offsets to 1-based line and column numbers.
type LineIndex struct {
	starts []int
}

// NewLineIndex indexes the line starts of src. "\r\n" and a lone "\r"
// both end a line.
func NewLineIndex(src string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\n':
			starts = append(starts, i+1)
		case '\r':
			if i+1 < len(src) && src[i+1] == '\n' {
				i++
			}
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts}
}

// Position returns the 1-based line and column of offset.
func (idx *LineIndex) Position(offset int) (line, column int) {
	i := sort.Search(len(idx.starts), func(i int) bool {
		return idx.starts[i] > offset
	}) - 1
	if i < 0 {
		i = 0
	}
	return i + 1, offset - idx.starts[i] + 1
}

// LineStart returns the offset of the first byte of the 1-based line.
func (idx *LineIndex) LineStart(line int) int {
	if line < 1 {
		return 0
	}
	if line > len(idx.starts) {
		return idx.starts[len(idx.starts)-1]
	}
	return idx.starts[line-1]
}

// Lines returns the number of lines.
func (idx *LineIndex) Lines() int {
	return len(idx.starts)
}

// LineText returns the text of the 1-based line without its terminator.
func LineText(src string, idx *LineIndex, line int) string {
	start := idx.LineStart(line)
	end := len(src)
	if line < idx.Lines() {
		end = idx.LineStart(line + 1)
	}
	return strings.TrimRight(src[start:end], "\r\n")
}
