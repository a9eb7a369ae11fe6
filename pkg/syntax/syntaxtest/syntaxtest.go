// Package syntaxtest checks the shape of a syntax tree element by element.
//
// Elements are visited in pre-order, so an expectation list reads like the
// output of syntax.Dump without the braces:
//
//	st := syntaxtest.New(t, tree)
//	st.N(syntax.Chunk)
//	st.N(syntax.Block)
//	st.N(syntax.Assignment)
//	...
//	st.Done()
package syntaxtest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vito/luafmt/pkg/syntax"
)

type T struct {
	t     testing.TB
	elems []syntax.Element
	next  int
}

func New(t testing.TB, tree *syntax.Tree) *T {
	t.Helper()
	st := &T{t: t}
	for e := range syntax.All(tree.Root) {
		st.elems = append(st.elems, e)
	}
	return st
}

// N asserts that the next element has the given kind and returns it.
func (st *T) N(kind syntax.SyntaxKind) syntax.Element {
	st.t.Helper()
	require.Less(st.t, st.next, len(st.elems), "expected %s, but the tree has no more elements", kind)
	e := st.elems[st.next]
	require.Equal(st.t, kind, e.Kind(), "element %d", st.next)
	st.next++
	return e
}

// Token asserts that the next element is a token with the given kind and
// text.
func (st *T) Token(kind syntax.SyntaxKind, text string) *syntax.Token {
	st.t.Helper()
	e := st.N(kind)
	require.True(st.t, e.IsLeaf(), "%s is not a token", kind)
	require.Equal(st.t, text, e.Token.Text)
	return e.Token
}

// Done asserts that every element was checked.
func (st *T) Done() {
	st.t.Helper()
	require.Equal(st.t, len(st.elems), st.next, "unchecked elements remain")
}
