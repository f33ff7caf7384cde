package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Maoyao233/ToyCC/internal/lexer"
)

var (
	ErrUnexpectedToken    = errors.New("unexpected token")
	ErrMissingTerminator  = errors.New("missing terminator")
	ErrUnmatchedDelimiter = errors.New("unmatched delimiter")
	ErrNonConstantInit    = errors.New("non-constant global initializer")
	ErrUnknownType        = errors.New("unknown type name")
	ErrIncompleteType     = errors.New("incomplete type")
	ErrInvalidLiteral     = errors.New("invalid integer literal")
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityNote
)

func (s Severity) String() string {
	if s == SeverityNote {
		return "note"
	}
	return "error"
}

type Diagnostic struct {
	Pos      lexer.Pos
	Severity Severity
	Msg      string
}

// Error is the single syntax error that stopped a parse. Diags[0] is the
// error itself; any further entries are notes.
type Error struct {
	File  string
	Kind  error
	Diags []Diagnostic
}

func (e *Error) Error() string {
	var sb strings.Builder
	for i, d := range e.Diags {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if e.File != "" {
			sb.WriteString(e.File)
			sb.WriteByte(':')
		}
		fmt.Fprintf(&sb, "%s: %s: %s", d.Pos, d.Severity, d.Msg)
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Kind }

// Pos returns the location of the error itself.
func (e *Error) Pos() lexer.Pos {
	if len(e.Diags) == 0 {
		return lexer.Pos{}
	}
	return e.Diags[0].Pos
}

func (e *Error) note(tok lexer.Token, msg string) *Error {
	e.Diags = append(e.Diags, Diagnostic{Pos: tok.Pos(), Severity: SeverityNote, Msg: msg})
	return e
}

// describe spells a token the way diagnostics quote it.
func describe(tok lexer.Token) string {
	if tok.Type == lexer.EOF {
		return "end of file"
	}
	return "'" + tok.Lex + "'"
}
