package syntax_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vito/luafmt/pkg/syntax"
	"github.com/vito/luafmt/pkg/syntax/syntaxtest"
)

var validSources = []string{
	"",
	"local x = 1",
	"foo = function() end",
	"t1 = { t2 = { t3 = {} } }",
	"local a <const>, b <close> = 1, 2",
	"function a.b.c:d(x, ...) return x, ... end",
	"local function f() return end",
	"for i = 1, 10, 2 do break end",
	"for k, v in pairs(t) do goto continue ::continue:: end",
	"while x do x = x - 1 end",
	"repeat local y = 1 until y",
	"if a then elseif b then else end",
	"do ; ; end",
	"x = -2 ^ 2 .. 'a' .. 'b' or not y and #z >= 1",
	"a, b.c, d[1] = f(), g'x', h{1}",
	"obj:method().chain[1].field = (a)",
	"return",
	"return 1;",
	"local s = [==[\nlong]==] --[[ block ]] -- line",
	"#!/usr/bin/env lua\nprint(1 // 2 & 3 | 4 ~ 5 << 6 >> 7)",
	"x = {[1] = 'a'; b = 2, 3,}",
}

func TestParseValid(t *testing.T) {
	for _, src := range validSources {
		t.Run(src, func(t *testing.T) {
			tree := syntax.CreateFromString(src)
			require.Empty(t, tree.Errors)
			require.NoError(t, tree.Verify())
			require.Equal(t, src, tree.Text())
		})
	}
}

func TestParseShape(t *testing.T) {
	st := syntaxtest.New(t, syntax.CreateFromString("local x = {1}"))
	st.N(syntax.Chunk)
	st.N(syntax.Block)
	st.N(syntax.LocalAssignment)
	st.Token(syntax.LocalKeyword, "local")
	st.N(syntax.NameList)
	st.Token(syntax.Identifier, "x")
	st.Token(syntax.Assign, "=")
	st.N(syntax.ExpressionList)
	st.N(syntax.TableConstructor)
	st.Token(syntax.OpenBrace, "{")
	st.N(syntax.PositionalField)
	st.N(syntax.LiteralExpression)
	st.Token(syntax.Number, "1")
	st.Token(syntax.CloseBrace, "}")
	st.Token(syntax.EndOfFile, "")
	st.Done()
}

func TestParseFunctionsShareBodyShape(t *testing.T) {
	st := syntaxtest.New(t, syntax.CreateFromString("function f() end g = function() end"))
	st.N(syntax.Chunk)
	st.N(syntax.Block)
	st.N(syntax.FunctionDeclaration)
	st.Token(syntax.FunctionKeyword, "function")
	st.N(syntax.FunctionName)
	st.Token(syntax.Identifier, "f")
	st.N(syntax.FunctionBody)
	st.N(syntax.ParameterList)
	st.Token(syntax.OpenParen, "(")
	st.Token(syntax.CloseParen, ")")
	st.N(syntax.Block)
	st.N(syntax.Empty)
	st.Token(syntax.EndKeyword, "end")
	st.N(syntax.Assignment)
	st.N(syntax.VariableList)
	st.N(syntax.NameExpression)
	st.Token(syntax.Identifier, "g")
	st.Token(syntax.Assign, "=")
	st.N(syntax.ExpressionList)
	st.N(syntax.FunctionExpression)
	st.Token(syntax.FunctionKeyword, "function")
	st.N(syntax.FunctionBody)
	st.N(syntax.ParameterList)
	st.Token(syntax.OpenParen, "(")
	st.Token(syntax.CloseParen, ")")
	st.N(syntax.Block)
	st.N(syntax.Empty)
	st.Token(syntax.EndKeyword, "end")
	st.Token(syntax.EndOfFile, "")
	st.Done()
}

func TestParsePrecedence(t *testing.T) {
	tree := syntax.CreateFromString("x = 1 + 2 * 3 ^ 2 ^ 2")
	require.Empty(t, tree.Errors)

	var bins []string
	syntax.Inspect(tree.Root, func(e syntax.Element) bool {
		if e.Kind() == syntax.BinaryExpression {
			bins = append(bins, strings.TrimSpace(e.Text()))
		}
		return true
	})
	require.Equal(t, []string{
		"1 + 2 * 3 ^ 2 ^ 2",
		"2 * 3 ^ 2 ^ 2",
		"3 ^ 2 ^ 2",
		"2 ^ 2",
	}, bins)
}

func TestParseRecovery(t *testing.T) {
	for _, tt := range []struct {
		src      string
		messages []string
	}{
		{
			src:      "t = {1, 2",
			messages: []string{"'}' expected near <eof>"},
		},
		{
			src:      "t = {1,\n2",
			messages: []string{"'}' expected (to close '{' at line 1) near <eof>"},
		},
		{
			src:      "function f()\n  return",
			messages: []string{"'end' expected (to close 'function' at line 1) near <eof>"},
		},
		{
			src:      "local = 1",
			messages: []string{"<name> expected near '='"},
		},
		{
			src:      "x = ",
			messages: []string{"unexpected symbol near <eof>"},
		},
		{
			src:      "x",
			messages: []string{"syntax error near <eof>"},
		},
		{
			src:      "f() = 1",
			messages: []string{"cannot assign to this expression"},
		},
		{
			src:      "end x = 1",
			messages: []string{"<eof> expected near 'end'"},
		},
		{
			src:      "return 1 x = 2",
			messages: []string{"<eof> expected after 'return' near 'x'"},
		},
		{
			src:      "for x do end",
			messages: []string{"'=' or 'in' expected near 'do'"},
		},
		{
			src:      "local x <foo> = 1",
			messages: []string{"unknown attribute 'foo'"},
		},
		{
			src:      "x = 1 ) ) y = 2",
			messages: []string{"unexpected symbol near ')'"},
		},
		{
			src:      "if x then",
			messages: []string{"'end' expected near <eof>"},
		},
		{
			src:      "x = $ + 1",
			messages: []string{"unexpected character '$'", "unexpected symbol near '$'"},
		},
	} {
		t.Run(tt.src, func(t *testing.T) {
			tree := syntax.CreateFromString(tt.src)
			var got []string
			for _, d := range tree.Errors {
				got = append(got, d.Message)
			}
			require.Equal(t, tt.messages, got)
			require.Equal(t, tt.src, tree.Text())
			require.NoError(t, tree.Verify())
			start, end := tree.Root.Span()
			require.Equal(t, 0, start)
			require.Equal(t, len(tt.src), end)
		})
	}
}

func TestParseDiagnosticPositions(t *testing.T) {
	tree := syntax.CreateFromString("x = 1\ny = = 2\nz = $")
	require.Len(t, tree.Errors, 3)
	for i := 1; i < len(tree.Errors); i++ {
		require.LessOrEqual(t, tree.Errors[i-1].Location.Offset, tree.Errors[i].Location.Offset)
	}
	first := tree.Errors[0].Location
	require.Equal(t, 2, first.Line)
	require.Equal(t, 5, first.Column)
	require.Equal(t, "<input>:2:5: unexpected symbol near '='", tree.Errors[0].Error())
}

func TestParseDeepNesting(t *testing.T) {
	src := strings.Repeat("(", 500) + "1" + strings.Repeat(")", 500)
	tree := syntax.CreateFromString("x = " + src)
	require.NotEmpty(t, tree.Errors)
	require.Equal(t, "chunk has too many syntax levels", tree.Errors[0].Message)
	require.Equal(t, "x = "+src, tree.Text())
}

func TestParseNeverPanics(t *testing.T) {
	fragments := []string{
		"(", ")", "{", "}", "[", "]", "function", "end", "local", "=", ",", ";",
		"if", "then", "else", "for", "in", "do", "x", "1", "'s'", ".", ":", "::",
		"return", "repeat", "until", "--c\n", "\n", "$", "...", "<", ">",
	}
	for i := range fragments {
		for j := range fragments {
			for k := range fragments {
				src := fragments[i] + " " + fragments[j] + " " + fragments[k]
				tree := syntax.CreateFromString(src)
				require.Equal(t, src, tree.Text(), src)
				require.NoError(t, tree.Verify(), src)
			}
		}
	}
}

func TestParseKindNames(t *testing.T) {
	require.Equal(t, "FunctionBody", syntax.FunctionBody.String())
	require.Equal(t, "function_body", syntax.FunctionBody.SnakeName())
	for _, name := range []string{"ElseIfClause", "else_if_clause"} {
		k, ok := syntax.ParseKind(name)
		require.True(t, ok, name)
		require.Equal(t, syntax.ElseIfClause, k)
	}
	require.True(t, syntax.EndKeyword.IsKeyword())
	require.True(t, syntax.Comma.IsPunctuation())
	require.True(t, syntax.Identifier.IsToken())
	require.True(t, syntax.Block.IsNode())
	require.Equal(t, "elseif", syntax.ElseIfKeyword.Text())
}
