package lexer

import "fmt"

type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL

	// Identifiers + literals
	IDENT
	INT

	// Keywords
	KW_INT
	KW_VOID
	KW_RETURN
	KW_IF
	KW_ELSE
	KW_WHILE

	// Symbols
	LPAREN // (
	RPAREN // )
	LBRACE // {
	RBRACE // }
	SEMI   // ;
	COMMA  // ,

	// Arithmetic
	PLUS       // +
	MINUS      // -
	STAR       // *
	SLASH      // /
	PERCENT    // %
	PLUSPLUS   // ++
	MINUSMINUS // --

	// Shifts
	SHL // <<
	SHR // >>

	// Bitwise/logical
	AMP    // &
	ANDAND // &&
	OROR   // ||
	PIPE   // |
	CARET  // ^
	TILDE  // ~
	BANG   // !

	// Comparison
	EQEQ // ==
	NEQ  // !=
	LT   // <
	LE   // <=
	GT   // >
	GE   // >=

	// Assignment
	ASSIGN         // =
	PLUS_ASSIGN    // +=
	MINUS_ASSIGN   // -=
	STAR_ASSIGN    // *=
	SLASH_ASSIGN   // /=
	PERCENT_ASSIGN // %=
	SHL_ASSIGN     // <<=
	SHR_ASSIGN     // >>=
	AMP_ASSIGN     // &=
	CARET_ASSIGN   // ^=
	PIPE_ASSIGN    // |=
)

// kindNames are the names printed by the token dump.
var kindNames = map[TokenType]string{
	EOF:            "eof",
	ILLEGAL:        "unknown",
	IDENT:          "identifier",
	INT:            "numeric_constant",
	KW_INT:         "kw_int",
	KW_VOID:        "kw_void",
	KW_RETURN:      "kw_return",
	KW_IF:          "kw_if",
	KW_ELSE:        "kw_else",
	KW_WHILE:       "kw_while",
	LPAREN:         "l_paren",
	RPAREN:         "r_paren",
	LBRACE:         "l_brace",
	RBRACE:         "r_brace",
	SEMI:           "semi",
	COMMA:          "comma",
	PLUS:           "plus",
	MINUS:          "minus",
	STAR:           "star",
	SLASH:          "slash",
	PERCENT:        "percent",
	PLUSPLUS:       "plusplus",
	MINUSMINUS:     "minusminus",
	SHL:            "lessless",
	SHR:            "greatergreater",
	AMP:            "amp",
	ANDAND:         "ampamp",
	OROR:           "pipepipe",
	PIPE:           "pipe",
	CARET:          "caret",
	TILDE:          "tilde",
	BANG:           "exclaim",
	EQEQ:           "equalequal",
	NEQ:            "exclaimequal",
	LT:             "less",
	LE:             "lessequal",
	GT:             "greater",
	GE:             "greaterequal",
	ASSIGN:         "equal",
	PLUS_ASSIGN:    "plusequal",
	MINUS_ASSIGN:   "minusequal",
	STAR_ASSIGN:    "starequal",
	SLASH_ASSIGN:   "slashequal",
	PERCENT_ASSIGN: "percentequal",
	SHL_ASSIGN:     "lesslessequal",
	SHR_ASSIGN:     "greatergreaterequal",
	AMP_ASSIGN:     "ampequal",
	CARET_ASSIGN:   "caretequal",
	PIPE_ASSIGN:    "pipeequal",
}

func (t TokenType) String() string {
	if name, ok := kindNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

var keywords = map[string]TokenType{
	"int":    KW_INT,
	"void":   KW_VOID,
	"return": KW_RETURN,
	"if":     KW_IF,
	"else":   KW_ELSE,
	"while":  KW_WHILE,
}

// operators maps every operator spelling to its kind. The lexer matches the
// longest spelling first.
var operators = map[string]TokenType{
	"(":   LPAREN,
	")":   RPAREN,
	"{":   LBRACE,
	"}":   RBRACE,
	";":   SEMI,
	",":   COMMA,
	"+":   PLUS,
	"-":   MINUS,
	"*":   STAR,
	"/":   SLASH,
	"%":   PERCENT,
	"++":  PLUSPLUS,
	"--":  MINUSMINUS,
	"<<":  SHL,
	">>":  SHR,
	"&":   AMP,
	"&&":  ANDAND,
	"||":  OROR,
	"|":   PIPE,
	"^":   CARET,
	"~":   TILDE,
	"!":   BANG,
	"==":  EQEQ,
	"!=":  NEQ,
	"<":   LT,
	"<=":  LE,
	">":   GT,
	">=":  GE,
	"=":   ASSIGN,
	"+=":  PLUS_ASSIGN,
	"-=":  MINUS_ASSIGN,
	"*=":  STAR_ASSIGN,
	"/=":  SLASH_ASSIGN,
	"%=":  PERCENT_ASSIGN,
	"<<=": SHL_ASSIGN,
	">>=": SHR_ASSIGN,
	"&=":  AMP_ASSIGN,
	"^=":  CARET_ASSIGN,
	"|=":  PIPE_ASSIGN,
}

// Pos is a 1-based source location. Col is 0 for a synthesized end of input.
type Pos struct {
	Row int
	Col int
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Row, p.Col) }

type Token struct {
	Type TokenType
	Lex  string
	Line int
	Col  int
}

func (t Token) Is(op TokenType) bool { return t.Type == op }

func (t Token) Pos() Pos { return Pos{Row: t.Line, Col: t.Col} }
