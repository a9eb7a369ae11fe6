package syntax

import (
	"fmt"

	"github.com/iancoleman/strcase"
)

// SyntaxKind identifies every token and node a tree can contain.
type SyntaxKind uint16

const (
	Invalid SyntaxKind = iota

	// Special tokens.
	EndOfFile
	Unknown
	Empty

	// Literal tokens.
	Identifier
	Number
	String
	LongString

	// Keywords.
	AndKeyword
	BreakKeyword
	DoKeyword
	ElseKeyword
	ElseIfKeyword
	EndKeyword
	FalseKeyword
	ForKeyword
	FunctionKeyword
	GotoKeyword
	IfKeyword
	InKeyword
	LocalKeyword
	NilKeyword
	NotKeyword
	OrKeyword
	RepeatKeyword
	ReturnKeyword
	ThenKeyword
	TrueKeyword
	UntilKeyword
	WhileKeyword

	// Punctuation.
	Plus
	Minus
	Star
	Slash
	DoubleSlash
	Percent
	Caret
	Hash
	Ampersand
	Tilde
	Pipe
	ShiftLeft
	ShiftRight
	EqualEqual
	TildeEqual
	LessEqual
	GreaterEqual
	Less
	Greater
	Assign
	OpenParen
	CloseParen
	OpenBrace
	CloseBrace
	OpenBracket
	CloseBracket
	DoubleColon
	Semicolon
	Colon
	Comma
	Dot
	DoubleDot
	Ellipsis

	// Nodes.
	Chunk
	Block
	EmptyStatement
	LocalAssignment
	LocalFunction
	FunctionDeclaration
	Assignment
	CallStatement
	DoStatement
	WhileStatement
	RepeatStatement
	IfStatement
	ElseIfClause
	ElseClause
	NumericFor
	GenericFor
	ReturnStatement
	BreakStatement
	GotoStatement
	LabelStatement
	NameList
	VariableList
	ExpressionList
	ParameterList
	FunctionName
	Attribute
	NameExpression
	LiteralExpression
	ParenExpression
	FieldAccess
	IndexAccess
	Call
	MethodCall
	Arguments
	FunctionExpression
	FunctionBody
	TableConstructor
	PositionalField
	NamedField
	IndexedField
	BinaryExpression
	UnaryExpression
	ErrorNode

	kindCount
)

const (
	firstKeyword = AndKeyword
	lastKeyword  = WhileKeyword
	firstPunct   = Plus
	lastPunct    = Ellipsis
	firstNode    = Chunk
)

var kindNames = [kindCount]string{
	Invalid:             "Invalid",
	EndOfFile:           "EndOfFile",
	Unknown:             "Unknown",
	Empty:               "Empty",
	Identifier:          "Identifier",
	Number:              "Number",
	String:              "String",
	LongString:          "LongString",
	AndKeyword:          "AndKeyword",
	BreakKeyword:        "BreakKeyword",
	DoKeyword:           "DoKeyword",
	ElseKeyword:         "ElseKeyword",
	ElseIfKeyword:       "ElseIfKeyword",
	EndKeyword:          "EndKeyword",
	FalseKeyword:        "FalseKeyword",
	ForKeyword:          "ForKeyword",
	FunctionKeyword:     "FunctionKeyword",
	GotoKeyword:         "GotoKeyword",
	IfKeyword:           "IfKeyword",
	InKeyword:           "InKeyword",
	LocalKeyword:        "LocalKeyword",
	NilKeyword:          "NilKeyword",
	NotKeyword:          "NotKeyword",
	OrKeyword:           "OrKeyword",
	RepeatKeyword:       "RepeatKeyword",
	ReturnKeyword:       "ReturnKeyword",
	ThenKeyword:         "ThenKeyword",
	TrueKeyword:         "TrueKeyword",
	UntilKeyword:        "UntilKeyword",
	WhileKeyword:        "WhileKeyword",
	Plus:                "Plus",
	Minus:               "Minus",
	Star:                "Star",
	Slash:               "Slash",
	DoubleSlash:         "DoubleSlash",
	Percent:             "Percent",
	Caret:               "Caret",
	Hash:                "Hash",
	Ampersand:           "Ampersand",
	Tilde:               "Tilde",
	Pipe:                "Pipe",
	ShiftLeft:           "ShiftLeft",
	ShiftRight:          "ShiftRight",
	EqualEqual:          "EqualEqual",
	TildeEqual:          "TildeEqual",
	LessEqual:           "LessEqual",
	GreaterEqual:        "GreaterEqual",
	Less:                "Less",
	Greater:             "Greater",
	Assign:              "Assign",
	OpenParen:           "OpenParen",
	CloseParen:          "CloseParen",
	OpenBrace:           "OpenBrace",
	CloseBrace:          "CloseBrace",
	OpenBracket:         "OpenBracket",
	CloseBracket:        "CloseBracket",
	DoubleColon:         "DoubleColon",
	Semicolon:           "Semicolon",
	Colon:               "Colon",
	Comma:               "Comma",
	Dot:                 "Dot",
	DoubleDot:           "DoubleDot",
	Ellipsis:            "Ellipsis",
	Chunk:               "Chunk",
	Block:               "Block",
	EmptyStatement:      "EmptyStatement",
	LocalAssignment:     "LocalAssignment",
	LocalFunction:       "LocalFunction",
	FunctionDeclaration: "FunctionDeclaration",
	Assignment:          "Assignment",
	CallStatement:       "CallStatement",
	DoStatement:         "DoStatement",
	WhileStatement:      "WhileStatement",
	RepeatStatement:     "RepeatStatement",
	IfStatement:         "IfStatement",
	ElseIfClause:        "ElseIfClause",
	ElseClause:          "ElseClause",
	NumericFor:          "NumericFor",
	GenericFor:          "GenericFor",
	ReturnStatement:     "ReturnStatement",
	BreakStatement:      "BreakStatement",
	GotoStatement:       "GotoStatement",
	LabelStatement:      "LabelStatement",
	NameList:            "NameList",
	VariableList:        "VariableList",
	ExpressionList:      "ExpressionList",
	ParameterList:       "ParameterList",
	FunctionName:        "FunctionName",
	Attribute:           "Attribute",
	NameExpression:      "NameExpression",
	LiteralExpression:   "LiteralExpression",
	ParenExpression:     "ParenExpression",
	FieldAccess:         "FieldAccess",
	IndexAccess:         "IndexAccess",
	Call:                "Call",
	MethodCall:          "MethodCall",
	Arguments:           "Arguments",
	FunctionExpression:  "FunctionExpression",
	FunctionBody:        "FunctionBody",
	TableConstructor:    "TableConstructor",
	PositionalField:     "PositionalField",
	NamedField:          "NamedField",
	IndexedField:        "IndexedField",
	BinaryExpression:    "BinaryExpression",
	UnaryExpression:     "UnaryExpression",
	ErrorNode:           "ErrorNode",
}

// fixedText holds the source spelling of keywords and punctuation.
var fixedText = map[SyntaxKind]string{
	AndKeyword:      "and",
	BreakKeyword:    "break",
	DoKeyword:       "do",
	ElseKeyword:     "else",
	ElseIfKeyword:   "elseif",
	EndKeyword:      "end",
	FalseKeyword:    "false",
	ForKeyword:      "for",
	FunctionKeyword: "function",
	GotoKeyword:     "goto",
	IfKeyword:       "if",
	InKeyword:       "in",
	LocalKeyword:    "local",
	NilKeyword:      "nil",
	NotKeyword:      "not",
	OrKeyword:       "or",
	RepeatKeyword:   "repeat",
	ReturnKeyword:   "return",
	ThenKeyword:     "then",
	TrueKeyword:     "true",
	UntilKeyword:    "until",
	WhileKeyword:    "while",
	Plus:            "+",
	Minus:           "-",
	Star:            "*",
	Slash:           "/",
	DoubleSlash:     "//",
	Percent:         "%",
	Caret:           "^",
	Hash:            "#",
	Ampersand:       "&",
	Tilde:           "~",
	Pipe:            "|",
	ShiftLeft:       "<<",
	ShiftRight:      ">>",
	EqualEqual:      "==",
	TildeEqual:      "~=",
	LessEqual:       "<=",
	GreaterEqual:    ">=",
	Less:            "<",
	Greater:         ">",
	Assign:          "=",
	OpenParen:       "(",
	CloseParen:      ")",
	OpenBrace:       "{",
	CloseBrace:      "}",
	OpenBracket:     "[",
	CloseBracket:    "]",
	DoubleColon:     "::",
	Semicolon:       ";",
	Colon:           ":",
	Comma:           ",",
	Dot:             ".",
	DoubleDot:       "..",
	Ellipsis:        "...",
}

var keywords = func() map[string]SyntaxKind {
	m := make(map[string]SyntaxKind, lastKeyword-firstKeyword+1)
	for k := firstKeyword; k <= lastKeyword; k++ {
		m[fixedText[k]] = k
	}
	return m
}()

var kindsByName = func() map[string]SyntaxKind {
	m := make(map[string]SyntaxKind, kindCount)
	for k := SyntaxKind(0); k < kindCount; k++ {
		m[kindNames[k]] = k
	}
	return m
}()

func (k SyntaxKind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("SyntaxKind(%d)", uint16(k))
}

// SnakeName returns the kind name in snake_case, e.g. "function_body".
func (k SyntaxKind) SnakeName() string {
	return strcase.ToSnake(k.String())
}

// Text returns the fixed source spelling of a keyword or punctuation kind,
// or "" for kinds whose text varies.
func (k SyntaxKind) Text() string {
	return fixedText[k]
}

func (k SyntaxKind) IsKeyword() bool {
	return k >= firstKeyword && k <= lastKeyword
}

func (k SyntaxKind) IsPunctuation() bool {
	return k >= firstPunct && k <= lastPunct
}

// IsToken reports whether k names a leaf.
func (k SyntaxKind) IsToken() bool {
	return k > Invalid && k < firstNode
}

// IsNode reports whether k names an interior node.
func (k SyntaxKind) IsNode() bool {
	return k >= firstNode && k < kindCount
}

// ParseKind looks a kind up by name. Both "FunctionBody" and
// "function_body" are accepted.
func ParseKind(name string) (SyntaxKind, bool) {
	if k, ok := kindsByName[name]; ok {
		return k, true
	}
	k, ok := kindsByName[strcase.ToCamel(name)]
	return k, ok
}

// LookupKeyword returns the keyword kind for name, if it is one.
func LookupKeyword(name string) (SyntaxKind, bool) {
	k, ok := keywords[name]
	return k, ok
}
