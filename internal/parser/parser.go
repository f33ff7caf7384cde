package parser

import (
	"fmt"

	"github.com/Maoyao233/ToyCC/internal/ast"
	"github.com/Maoyao233/ToyCC/internal/lexer"
	"github.com/rs/zerolog"
)

type Parser struct {
	file string
	toks []lexer.Token
	pos  int
	tok  lexer.Token
	log  zerolog.Logger
}

type Option func(*Parser)

// WithLogger makes the parser report its diagnostics to log at debug level.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Parser) { p.log = log }
}

// New prepares a parser over tokens. A stream that does not already end in
// EOF gets one synthesized on the row after the last token.
func New(filename string, tokens []lexer.Token, opts ...Option) *Parser {
	toks := make([]lexer.Token, len(tokens), len(tokens)+1)
	copy(toks, tokens)
	if n := len(toks); n == 0 || toks[n-1].Type != lexer.EOF {
		row := 0
		if n > 0 {
			row = toks[n-1].Line
		}
		toks = append(toks, lexer.Token{Type: lexer.EOF, Line: row + 1, Col: 0})
	}

	p := &Parser{file: filename, toks: toks, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	p.tok = p.toks[0]
	return p
}

func ParseFile(filename, src string, opts ...Option) (*ast.TranslationUnitDecl, error) {
	return New(filename, lexer.Tokenize(src), opts...).Parse()
}

// Parse consumes the whole stream. The first syntax error aborts the parse
// and is returned as an *Error.
func (p *Parser) Parse() (*ast.TranslationUnitDecl, error) {
	tu := &ast.TranslationUnitDecl{}
	for p.tok.Type != lexer.EOF {
		decls, err := p.parseTopLevel()
		if err != nil {
			p.report(err)
			return nil, err
		}
		tu.Decls = append(tu.Decls, decls...)
	}
	return tu, nil
}

func (p *Parser) report(err *Error) {
	for _, d := range err.Diags {
		p.log.Debug().
			Str("file", p.file).
			Int("row", d.Pos.Row).
			Int("col", d.Pos.Col).
			Str("severity", d.Severity.String()).
			Msg(d.Msg)
	}
}

func (p *Parser) next() {
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	p.tok = p.toks[p.pos]
}

func (p *Parser) peek() lexer.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) errorf(kind error, tok lexer.Token, format string, args ...any) *Error {
	return &Error{
		File:  p.file,
		Kind:  kind,
		Diags: []Diagnostic{{Pos: tok.Pos(), Severity: SeverityError, Msg: fmt.Sprintf(format, args...)}},
	}
}

func (p *Parser) expect(tt lexer.TokenType, kind error, format string, args ...any) (lexer.Token, *Error) {
	if p.tok.Type != tt {
		return lexer.Token{}, p.errorf(kind, p.tok, format, args...)
	}
	t := p.tok
	p.next()
	return t, nil
}

// closing expects the delimiter matching open, pointing a note at open when
// it is missing.
func (p *Parser) closing(tt lexer.TokenType, open lexer.Token) *Error {
	want := ")"
	if tt == lexer.RBRACE {
		want = "}"
	}
	if _, err := p.expect(tt, ErrUnmatchedDelimiter, "expected '%s'", want); err != nil {
		return err.note(open, fmt.Sprintf("to match this '%s'", open.Lex))
	}
	return nil
}
