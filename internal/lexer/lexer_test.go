package lexer_test

import (
	"testing"

	"github.com/Maoyao233/ToyCC/internal/lexer"
	"github.com/kr/pretty"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	type testCase struct {
		name   string
		input  string
		output []lexer.Token
	}

	testCases := []testCase{
		{
			name:  "declaration",
			input: "int x = 10;",
			output: []lexer.Token{
				{Type: lexer.KW_INT, Lex: "int", Line: 1, Col: 1},
				{Type: lexer.IDENT, Lex: "x", Line: 1, Col: 5},
				{Type: lexer.ASSIGN, Lex: "=", Line: 1, Col: 7},
				{Type: lexer.INT, Lex: "10", Line: 1, Col: 9},
				{Type: lexer.SEMI, Lex: ";", Line: 1, Col: 11},
				{Type: lexer.EOF, Line: 2, Col: 0},
			},
		},
		{
			name:  "longest operator wins",
			input: "a<<=b>>c",
			output: []lexer.Token{
				{Type: lexer.IDENT, Lex: "a", Line: 1, Col: 1},
				{Type: lexer.SHL_ASSIGN, Lex: "<<=", Line: 1, Col: 2},
				{Type: lexer.IDENT, Lex: "b", Line: 1, Col: 5},
				{Type: lexer.SHR, Lex: ">>", Line: 1, Col: 6},
				{Type: lexer.IDENT, Lex: "c", Line: 1, Col: 8},
				{Type: lexer.EOF, Line: 2, Col: 0},
			},
		},
		{
			name:  "increment and logical",
			input: "++i && !j--",
			output: []lexer.Token{
				{Type: lexer.PLUSPLUS, Lex: "++", Line: 1, Col: 1},
				{Type: lexer.IDENT, Lex: "i", Line: 1, Col: 3},
				{Type: lexer.ANDAND, Lex: "&&", Line: 1, Col: 5},
				{Type: lexer.BANG, Lex: "!", Line: 1, Col: 8},
				{Type: lexer.IDENT, Lex: "j", Line: 1, Col: 9},
				{Type: lexer.MINUSMINUS, Lex: "--", Line: 1, Col: 10},
				{Type: lexer.EOF, Line: 2, Col: 0},
			},
		},
		{
			name:  "comments and lines",
			input: "// header\nreturn /* inline */ x;\n",
			output: []lexer.Token{
				{Type: lexer.KW_RETURN, Lex: "return", Line: 2, Col: 1},
				{Type: lexer.IDENT, Lex: "x", Line: 2, Col: 21},
				{Type: lexer.SEMI, Lex: ";", Line: 2, Col: 22},
				{Type: lexer.EOF, Line: 3, Col: 0},
			},
		},
		{
			name:  "hash ends input",
			input: "void f;\n# while\nint",
			output: []lexer.Token{
				{Type: lexer.KW_VOID, Lex: "void", Line: 1, Col: 1},
				{Type: lexer.IDENT, Lex: "f", Line: 1, Col: 6},
				{Type: lexer.SEMI, Lex: ";", Line: 1, Col: 7},
				{Type: lexer.EOF, Lex: "#", Line: 2, Col: 1},
			},
		},
		{
			name:  "illegal character",
			input: "a @",
			output: []lexer.Token{
				{Type: lexer.IDENT, Lex: "a", Line: 1, Col: 1},
				{Type: lexer.ILLEGAL, Lex: "@", Line: 1, Col: 3},
				{Type: lexer.EOF, Line: 2, Col: 0},
			},
		},
		{
			name:  "empty",
			input: "",
			output: []lexer.Token{
				{Type: lexer.EOF, Line: 1, Col: 0},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tokens := lexer.Tokenize(tc.input)

			t.Log("tokens:")
			t.Log(pretty.Sprint(tokens))

			require.Equal(t, tc.output, tokens)
		})
	}
}

func TestNextAfterEOF(t *testing.T) {
	l := lexer.New("x")

	require.Equal(t, lexer.IDENT, l.Next().Type)
	require.Equal(t, lexer.EOF, l.Next().Type)
	require.Equal(t, lexer.EOF, l.Next().Type)
}

func TestTokenTypeString(t *testing.T) {
	require.Equal(t, "l_paren", lexer.LPAREN.String())
	require.Equal(t, "greatergreaterequal", lexer.SHR_ASSIGN.String())
	require.Equal(t, "numeric_constant", lexer.INT.String())
}
