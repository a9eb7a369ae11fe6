package syntax

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// ErrSourceNotFound is returned by Create when the source cannot be read.
var ErrSourceNotFound = errors.New("source not found")

// Tree is a parsed source file. Root always spans the whole source, even
// when Errors is not empty.
type Tree struct {
	Path   string
	Source string
	Root   *Node
	// Errors holds every lexical and syntax diagnostic, ordered by
	// position.
	Errors []Diagnostic

	lines *LineIndex
}

// Create reads and parses the file at path. If the file cannot be read the
// error wraps ErrSourceNotFound and no tree is returned.
func Create(fs afero.Fs, path string) (*Tree, error) {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrSourceNotFound, "%s", path)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceNotFound, path, err)
	}
	return newTree(path, string(content)), nil
}

// CreateFromString parses text. It always succeeds.
func CreateFromString(text string) *Tree {
	return newTree("", text)
}

func newTree(path, src string) *Tree {
	root, diags := Parse(src)
	for i := range diags {
		diags[i].Location.Filename = path
	}
	t := &Tree{
		Path:   path,
		Source: src,
		Root:   root,
		Errors: diags,
		lines:  NewLineIndex(src),
	}
	if start, end := root.Span(); start != 0 || end != len(src) {
		panic(errors.Errorf("syntax: tree spans [%d, %d) of %d bytes", start, end, len(src)))
	}
	return t
}

// HasErrors reports whether parsing produced any diagnostics.
func (t *Tree) HasErrors() bool {
	return len(t.Errors) > 0
}

// Text reconstructs the source from the tree.
func (t *Tree) Text() string {
	return t.Root.Text()
}

// Position returns the 1-based line and column of a byte offset.
func (t *Tree) Position(offset int) (line, column int) {
	return t.lines.Position(offset)
}

// Lines returns the tree's line index.
func (t *Tree) Lines() *LineIndex {
	return t.lines
}

// Verify checks that the tree reproduces the source exactly and that every
// node's children are contiguous.
func (t *Tree) Verify() error {
	if text := t.Text(); text != t.Source {
		return errors.Errorf("round trip mismatch: got %d bytes, want %d", len(text), len(t.Source))
	}
	return verifyNode(t.Root)
}

func verifyNode(n *Node) error {
	if len(n.Children) == 0 {
		return errors.Errorf("%s has no children", n.Kind)
	}
	pos := -1
	for _, c := range n.Children {
		var start, end int
		if c.Token != nil {
			start, end = c.Token.FullStart(), c.Token.FullEnd()
		} else {
			if err := verifyNode(c.Node); err != nil {
				return err
			}
			start, end = c.Node.Span()
		}
		if pos >= 0 && start != pos {
			return errors.Errorf("%s: child %s starts at %d, previous child ended at %d", n.Kind, c.Kind(), start, pos)
		}
		pos = end
	}
	return nil
}
