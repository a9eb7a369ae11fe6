package format

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/yuin/gopher-lua/parse"
	"gotest.tools/v3/golden"

	"github.com/vito/luafmt/pkg/syntax"
)

type formatCase struct {
	name     string
	input    string
	expected string
}

func runFormatCases(t *testing.T, cfg Config, tests []formatCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Source(tt.input, cfg)
			require.NoError(t, err)
			require.Equal(t, tt.expected, out)

			again, err := Source(out, cfg)
			require.NoError(t, err)
			require.Equal(t, out, again, "formatting is not idempotent")
		})
	}
}

func TestFormatFunctions(t *testing.T) {
	runFormatCases(t, DefaultConfig(), []formatCase{
		{
			name:     "empty function expression",
			input:    `foo = function() end`,
			expected: "foo = function()\nend",
		},
		{
			name:     "empty function declaration",
			input:    `function foo() end`,
			expected: "function foo()\nend",
		},
		{
			name:     "space before parameters is removed",
			input:    `foo = function () return end`,
			expected: "foo = function()\n    return\nend",
		},
		{
			name:     "one statement",
			input:    `foo = function() x = x + 1 end`,
			expected: "foo = function()\n    x = x + 1\nend",
		},
		{
			name:     "two statements",
			input:    `foo = function() x = 10 return end`,
			expected: "foo = function()\n    x = 10\n    return\nend",
		},
		{
			name:  "nested function expressions",
			input: `foo = function() bar = function() foobar = function() end end end`,
			expected: `foo = function()
    bar = function()
        foobar = function()
        end
    end
end`,
		},
		{
			name:  "nested function declarations",
			input: `function foo() function bar() function foobar() end end end`,
			expected: `function foo()
    function bar()
        function foobar()
        end
    end
end`,
		},
		{
			name:     "local function",
			input:    `local function f (a, b) return a + b end`,
			expected: "local function f(a, b)\n    return a + b\nend",
		},
		{
			name:     "method declaration",
			input:    `function M:get(k) return self[k] end`,
			expected: "function M:get(k)\n    return self[k]\nend",
		},
	})
}

func TestFormatTables(t *testing.T) {
	runFormatCases(t, DefaultConfig(), []formatCase{
		{
			name:     "empty table",
			input:    `t1 = {}`,
			expected: "t1 = {\n}",
		},
		{
			name:     "one element",
			input:    `t1 = {2}`,
			expected: "t1 = {\n    2,\n}",
		},
		{
			name:     "trailing comma is kept",
			input:    `t1 = {2,}`,
			expected: "t1 = {\n    2,\n}",
		},
		{
			name:     "more elements",
			input:    `t1 = {1, 2, 3}`,
			expected: "t1 = {\n    1,\n    2,\n    3,\n}",
		},
		{
			name:     "semicolon separators",
			input:    `t = {1; 2}`,
			expected: "t = {\n    1;\n    2,\n}",
		},
		{
			name:     "named and indexed fields",
			input:    `t = {a = 1, ["b"] = 2}`,
			expected: "t = {\n    a = 1,\n    [\"b\"] = 2,\n}",
		},
		{
			name:  "embedded tables",
			input: `t1 = { t2 = { t3 = {} } }`,
			expected: `t1 = {
    t2 = {
        t3 = {
        },
    },
}`,
		},
		{
			name:  "function in a table",
			input: `t = {f = function() return 1 end}`,
			expected: `t = {
    f = function()
        return 1
    end,
}`,
		},
		{
			name:     "table as call argument",
			input:    `setup({a = 1})`,
			expected: "setup({\n    a = 1,\n})",
		},
	})
}

func TestFormatBlocks(t *testing.T) {
	runFormatCases(t, DefaultConfig(), []formatCase{
		{
			name:     "empty numeric for",
			input:    `for i = 10,3 do end`,
			expected: "for i = 10,3 do\nend",
		},
		{
			name:  "numeric for",
			input: `for i = 10,3 do x = 10 y = 4 z = x + y end`,
			expected: `for i = 10,3 do
    x = 10
    y = 4
    z = x + y
end`,
		},
		{
			name:     "generic for",
			input:    `for k, v in pairs(t) do print(k, v) end`,
			expected: "for k, v in pairs(t) do\n    print(k, v)\nend",
		},
		{
			name:     "while",
			input:    `while x > 0 do x = x - 1 end`,
			expected: "while x > 0 do\n    x = x - 1\nend",
		},
		{
			name:     "do",
			input:    `do local x = 1 end`,
			expected: "do\n    local x = 1\nend",
		},
		{
			name:     "repeat",
			input:    `repeat x = x + 1 until x > 10`,
			expected: "repeat\n    x = x + 1\nuntil x > 10",
		},
		{
			name:  "if with every clause",
			input: `if a then x() elseif b then y() else z() end`,
			expected: `if a then
    x()
elseif b then
    y()
else
    z()
end`,
		},
		{
			name:     "tables in conditions are not expanded",
			input:    `if t == {} then return end`,
			expected: "if t == {} then\n    return\nend",
		},
		{
			name:     "function in a loop",
			input:    `while true do f = function() end end`,
			expected: "while true do\n    f = function()\n    end\nend",
		},
	})
}

func TestFormatComments(t *testing.T) {
	runFormatCases(t, DefaultConfig(), []formatCase{
		{
			name:     "comment before end",
			input:    `    foo = function() --[[ comment ]]end`,
			expected: "    foo = function()\n    --[[ comment ]]end",
		},
		{
			name:     "comment before first statement",
			input:    `foo = function () --[[ comment ]]return end`,
			expected: "foo = function()\n    --[[ comment ]]return\nend",
		},
		{
			name:     "comment in an empty table",
			input:    `t1 = {--[[ comment ]]}`,
			expected: "t1 = {\n--[[ comment ]]}",
		},
		{
			name:     "comment before a field",
			input:    `t1 = { --[[ comment ]]basic}`,
			expected: "t1 = {\n    --[[ comment ]]basic,\n}",
		},
		{
			name:     "trailing comment stays on its line",
			input:    "foo = function() -- hi\nreturn end",
			expected: "foo = function() -- hi\n    return\nend",
		},
		{
			name:     "own-line comment before closer is indented like the body",
			input:    "function f()\n  x()\n      -- done\nend",
			expected: "function f()\n    x()\n    -- done\nend",
		},
		{
			name:     "own-line comment between statements",
			input:    "function f()\nx()\n-- next\ny()\nend",
			expected: "function f()\n    x()\n    -- next\n    y()\nend",
		},
		{
			name:     "trailing comment after table field",
			input:    "t = {\n1, -- one\n2 -- two\n}",
			expected: "t = {\n    1, -- one\n    2, -- two\n}",
		},
		{
			name:     "file comments",
			input:    "-- header\n\nx = 1\n\n-- footer\n",
			expected: "-- header\n\nx = 1\n\n-- footer\n",
		},
	})
}

func TestFormatPassThrough(t *testing.T) {
	for _, src := range []string{
		"foo = function() return\nend",
		"foo =\nfunction() return end",
		"function foo()\nend",
		"t1 =\n{}",
		"t2 = {2,\n}",
		"t3 = {2\n,3}",
		"x = f(a,\n  function()\n    return 1\n  end)",
		"local s = [[\nlong\n  string]]",
		"    foo = function() return\n    end",
		"    foo =\n    function() return end",
		"    function foo()\n    end",
		"\tt2 = {2,\n\t}",
	} {
		t.Run(src, func(t *testing.T) {
			out, err := Source(src, DefaultConfig())
			require.NoError(t, err)
			require.Equal(t, src, out)
		})
	}
}

func TestFormatWhitespace(t *testing.T) {
	runFormatCases(t, DefaultConfig(), []formatCase{
		{
			name:     "blank lines collapse",
			input:    "x = 1\n\n\n\ny = 2\n",
			expected: "x = 1\n\ny = 2\n",
		},
		{
			name:     "leading blank lines are dropped",
			input:    "\n\nx = 1",
			expected: "x = 1",
		},
		{
			name:     "line endings are normalized",
			input:    "x = 1\r\ny = 2\r\n",
			expected: "x = 1\ny = 2\n",
		},
		{
			name:     "statements sharing a line are split",
			input:    "x = 1 y = 2",
			expected: "x = 1\ny = 2",
		},
		{
			name:     "empty statements stay in place",
			input:    "x = 1; y = 2",
			expected: "x = 1;\ny = 2",
		},
		{
			name:     "blank line after header is dropped",
			input:    "function f()\n\n  x()\n\nend",
			expected: "function f()\n    x()\nend",
		},
		{
			name:     "blank line between statements is kept",
			input:    "function f()\n  x()\n\n  y()\nend",
			expected: "function f()\n    x()\n\n    y()\nend",
		},
		{
			name:     "continuation lines move with their statement",
			input:    "function f()\n        local x = g(a,\n            b)\nend",
			expected: "function f()\n    local x = g(a,\n        b)\nend",
		},
		{
			name:     "shebang",
			input:    "#!/usr/bin/env lua\nprint(1)\n",
			expected: "#!/usr/bin/env lua\nprint(1)\n",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	})
}

func TestFormatBaseIndentation(t *testing.T) {
	runFormatCases(t, DefaultConfig(), []formatCase{
		{
			name:     "function",
			input:    "    function foo() return end",
			expected: "    function foo()\n        return\n    end",
		},
		{
			name:     "function expression",
			input:    "    foo = function() x = x + 1 end",
			expected: "    foo = function()\n        x = x + 1\n    end",
		},
		{
			name:     "empty table",
			input:    "    t1 = {}",
			expected: "    t1 = {\n    }",
		},
		{
			name:     "later statements follow the first",
			input:    "\n  x = 1\ny = 2\n      z = {1}\n",
			expected: "  x = 1\n  y = 2\n  z = {\n      1,\n  }\n",
		},
		{
			name:     "comments take the base indentation",
			input:    "-- header\n\tx = 1\n-- footer\n",
			expected: "\t-- header\n\tx = 1\n\t-- footer\n",
		},
	})

	flush := DefaultConfig()
	flush.BodyIndent = BodyIndentFlush
	runFormatCases(t, flush, []formatCase{
		{
			name:     "flush function",
			input:    "    function foo() return end",
			expected: "    function foo()\n    return\n    end",
		},
		{
			name:     "flush function expression",
			input:    "    foo = function() x = x + 1 end",
			expected: "    foo = function()\n    x = x + 1\n    end",
		},
	})

	body := DefaultConfig()
	body.CloserAlign = CloserAlignBody
	runFormatCases(t, body, []formatCase{
		{
			name:     "closer with the body",
			input:    "    t1 = {1, 2, 3}",
			expected: "    t1 = {\n        1,\n        2,\n        3,\n        }",
		},
	})
}

func TestFormatConfigs(t *testing.T) {
	t.Run("flush bodies", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.BodyIndent = BodyIndentFlush
		runFormatCases(t, cfg, []formatCase{
			{
				name:     "function",
				input:    `foo = function() x = x + 1 end`,
				expected: "foo = function()\nx = x + 1\nend",
			},
			{
				name:     "declaration",
				input:    `function foo() return end`,
				expected: "function foo()\nreturn\nend",
			},
			{
				name:     "comment before statement",
				input:    `foo = function () --[[ comment ]]return end`,
				expected: "foo = function()\n--[[ comment ]]return\nend",
			},
		})
	})

	t.Run("closers aligned with the body", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.CloserAlign = CloserAlignBody
		runFormatCases(t, cfg, []formatCase{
			{
				name:     "empty table",
				input:    `t1 = {}`,
				expected: "t1 = {\n    }",
			},
			{
				name:     "more elements",
				input:    `t1 = {1, 2, 3}`,
				expected: "t1 = {\n    1,\n    2,\n    3,\n    }",
			},
			{
				name:     "comment in an empty table",
				input:    `t1 = {--[[ comment ]]}`,
				expected: "t1 = {\n    --[[ comment ]]}",
			},
		})
	})

	t.Run("no trailing separator", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.TrailingSeparator = false
		runFormatCases(t, cfg, []formatCase{
			{
				name:  "embedded tables",
				input: `t1 = { t2 = { t3 = {} } }`,
				expected: `t1 = {
    t2 = {
        t3 = {
        }
    }
}`,
			},
			{
				name:     "existing separator is kept",
				input:    `t1 = {2,}`,
				expected: "t1 = {\n    2,\n}",
			},
		})
	})

	t.Run("same line", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Placement = PlacementSameLine
		runFormatCases(t, cfg, []formatCase{
			{
				name:     "empty function",
				input:    `foo = function() end`,
				expected: `foo = function() end`,
			},
			{
				name:     "single statement",
				input:    `foo = function() return x end`,
				expected: `foo = function() return x end`,
			},
			{
				name:     "two statements",
				input:    `foo = function() x = 1 return x end`,
				expected: "foo = function()\n    x = 1\n    return x\nend",
			},
			{
				name:     "one field",
				input:    `t = {1}`,
				expected: `t = {1}`,
			},
			{
				name:     "two fields",
				input:    `t = {1, 2}`,
				expected: "t = {\n    1,\n    2,\n}",
			},
			{
				name:     "if with else",
				input:    `if a then b() else c() end`,
				expected: "if a then\n    b()\nelse\n    c()\nend",
			},
		})
	})

	t.Run("tabs", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.IndentUnit = "\t"
		runFormatCases(t, cfg, []formatCase{
			{
				name:     "nested",
				input:    `function f() if x then return end end`,
				expected: "function f()\n\tif x then\n\t\treturn\n\tend\nend",
			},
		})
	})
}

func TestFormatSyntaxErrors(t *testing.T) {
	t.Run("unterminated table is kept as written", func(t *testing.T) {
		src := "t = {1, 2"
		tree := syntax.CreateFromString(src)
		require.NotEmpty(t, tree.Errors)
		out, err := Tree(tree, DefaultConfig())
		require.NoError(t, err)
		require.Equal(t, src, out)
	})

	t.Run("valid statements around an error are formatted", func(t *testing.T) {
		src := "local = 1\nfoo = function() end"
		tree := syntax.CreateFromString(src)
		require.NotEmpty(t, tree.Errors)
		out, err := Tree(tree, DefaultConfig())
		require.NoError(t, err)
		require.Equal(t, "local = 1\nfoo = function()\nend", out)
	})

	t.Run("garbage stays on its line", func(t *testing.T) {
		src := "x = = ) 1 $ end\nfunction f() return end"
		out, err := Source(src, DefaultConfig())
		require.NoError(t, err)
		require.Equal(t, "x = = ) 1 $ end\nfunction f()\n    return\nend", out)
	})

	t.Run("error inside a body only affects its statement", func(t *testing.T) {
		src := "function f() x = = 1 y = {1} end"
		out, err := Source(src, DefaultConfig())
		require.NoError(t, err)
		require.Equal(t, "function f() x = = 1\n    y = {\n        1,\n    }\nend", out)
	})
}

func TestFormatUnterminatedAtEOF(t *testing.T) {
	for _, src := range []string{
		"x = [[abc\n",
		"x = [==[\n]]\n",
		"x = 1 --[[abc\n",
		"--[[ open\n",
		"function f()\n  return [[\nend\n",
	} {
		t.Run(src, func(t *testing.T) {
			tree := syntax.CreateFromString(src)
			require.NotEmpty(t, tree.Errors)

			out, err := Source(src, DefaultConfig())
			require.NoError(t, err)
			require.Equal(t, src, out)

			again, err := Source(out, DefaultConfig())
			require.NoError(t, err)
			require.Equal(t, out, again, "formatting is not idempotent")
		})
	}
}

func TestFormatInvalidConfig(t *testing.T) {
	_, err := Source("x = 1", Config{})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "indent_unit", cfgErr.Field)
}

// corpus is valid Lua 5.1 so gopher-lua can check the output.
var corpus = []string{
	`foo = function() end`,
	`t1 = { t2 = { t3 = {} } }`,
	`local function fib(n) if n < 2 then return n end return fib(n - 1) + fib(n - 2) end`,
	"for i = 1, 10 do\n  if i % 2 == 0 then print(i) end -- even\nend\n",
	`local t = {1, 2, {3, 4; x = "y"}, ["k"] = function(...) return ... end}`,
	"-- leading\nlocal x = { -- open\n  a = 1,\n  -- own line\n  b = 2\n}\n",
	`repeat local done = step() until done`,
	`while true do if x then break end end`,
	"obj:method(function(a) return a end, {})\n",
	"local s = [==[\n]]\n]==] .. 'q' --[[ c ]] .. \"d\"",
	"do\n\n\n  local a = 1\n\n\nend",
	"if a then\nelseif b then\nelse\nend",
}

func TestFormatCorpusProperties(t *testing.T) {
	configs := map[string]Config{"default": DefaultConfig()}
	flush := DefaultConfig()
	flush.BodyIndent = BodyIndentFlush
	flush.CloserAlign = CloserAlignBody
	configs["flush"] = flush
	same := DefaultConfig()
	same.Placement = PlacementSameLine
	same.IndentUnit = "  "
	configs["same-line"] = same

	for name, cfg := range configs {
		for _, src := range corpus {
			t.Run(name+"/"+firstLine(src), func(t *testing.T) {
				out, err := Source(src, cfg)
				require.NoError(t, err)

				again, err := Source(out, cfg)
				require.NoError(t, err)
				require.Equal(t, out, again, "formatting is not idempotent")

				require.Empty(t, cmp.Diff(significant(t, src), significant(t, out)), "token sequence changed")
				require.Equal(t, comments(t, src), comments(t, out), "comments changed")

				_, err = parse.Parse(strings.NewReader(out), "formatted.lua")
				require.NoError(t, err, "output:\n%s", out)
			})
		}
	}
}

func TestFormatGolden(t *testing.T) {
	inputs, err := filepath.Glob(filepath.Join("testdata", "*.lua"))
	require.NoError(t, err)
	require.NotEmpty(t, inputs)
	for _, path := range inputs {
		name := filepath.Base(path)
		t.Run(name, func(t *testing.T) {
			src, err := os.ReadFile(path)
			require.NoError(t, err)
			out, err := Source(string(src), DefaultConfig())
			require.NoError(t, err)
			golden.Assert(t, out, strings.TrimSuffix(name, ".lua")+".golden")
		})
	}
}

type lexeme struct {
	Kind syntax.SyntaxKind
	Text string
}

// significant lexes src into its tokens, dropping separators that end a
// table since the formatter may add them.
func significant(t *testing.T, src string) []lexeme {
	t.Helper()
	toks, diags := syntax.Lex(src)
	require.Empty(t, diags)
	var out []lexeme
	for i, tok := range toks {
		if (tok.Kind == syntax.Comma || tok.Kind == syntax.Semicolon) &&
			i+1 < len(toks) && toks[i+1].Kind == syntax.CloseBrace {
			continue
		}
		out = append(out, lexeme{tok.Kind, tok.Text})
	}
	return out
}

func comments(t *testing.T, src string) []string {
	t.Helper()
	toks, _ := syntax.Lex(src)
	var out []string
	for _, tok := range toks {
		for _, tr := range append(append([]syntax.Trivia{}, tok.Leading...), tok.Trailing...) {
			if tr.IsComment() {
				out = append(out, tr.Text)
			}
		}
	}
	return out
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
