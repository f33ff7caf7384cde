package lexer

import (
	"strings"
	"unicode"
)

type Lexer struct {
	src  []rune
	i    int
	ch   rune
	line int
	col  int
	rows int
	done bool
}

func New(src string) *Lexer {
	l := &Lexer{src: []rune(src), line: 1}
	l.rows = strings.Count(src, "\n")
	if len(src) > 0 && !strings.HasSuffix(src, "\n") {
		l.rows++
	}
	l.read()
	return l
}

// Tokenize scans src to the end and returns every token, the final one
// always being EOF.
func Tokenize(src string) []Token {
	l := New(src)
	var toks []Token
	for {
		t := l.Next()
		toks = append(toks, t)
		if t.Type == EOF {
			return toks
		}
	}
}

func (l *Lexer) read() {
	if l.i >= len(l.src) {
		l.ch = 0
		return
	}
	l.ch = l.src[l.i]
	l.i++
	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

func (l *Lexer) peek() rune {
	if l.i >= len(l.src) {
		return 0
	}
	return l.src[l.i]
}

// lookahead returns up to n runes starting at the current one.
func (l *Lexer) lookahead(n int) string {
	end := l.i - 1 + n
	if end > len(l.src) {
		end = len(l.src)
	}
	return string(l.src[l.i-1 : end])
}

func (l *Lexer) eof() Token {
	return Token{Type: EOF, Line: l.rows + 1, Col: 0}
}

func (l *Lexer) Next() Token {
	if l.done {
		return l.eof()
	}
	// skip spaces and comments
	for {
		for unicode.IsSpace(l.ch) {
			l.read()
		}
		if l.ch == '/' && l.peek() == '/' {
			for l.ch != 0 && l.ch != '\n' {
				l.read()
			}
			continue
		}
		if l.ch == '/' && l.peek() == '*' {
			l.read()
			l.read()
			for l.ch != 0 {
				if l.ch == '*' && l.peek() == '/' {
					l.read()
					l.read()
					break
				}
				l.read()
			}
			continue
		}
		break
	}
	tok := Token{Line: l.line, Col: l.col}
	ch := l.ch
	switch {
	case ch == 0 && l.i >= len(l.src):
		l.done = true
		return l.eof()
	case ch == '#':
		// explicit end of input; everything after it is ignored
		l.done = true
		tok.Type, tok.Lex = EOF, "#"
	case unicode.IsLetter(ch) || ch == '_':
		ident := []rune{ch}
		l.read()
		for unicode.IsLetter(l.ch) || unicode.IsDigit(l.ch) || l.ch == '_' {
			ident = append(ident, l.ch)
			l.read()
		}
		lex := string(ident)
		tok.Type = IDENT
		if kw, ok := keywords[lex]; ok {
			tok.Type = kw
		}
		tok.Lex = lex
	case unicode.IsDigit(ch):
		num := []rune{ch}
		l.read()
		for unicode.IsDigit(l.ch) {
			num = append(num, l.ch)
			l.read()
		}
		tok.Type, tok.Lex = INT, string(num)
	default:
		for n := 3; n > 0; n-- {
			s := l.lookahead(n)
			if tt, ok := operators[s]; ok && len([]rune(s)) == n {
				for range s {
					l.read()
				}
				tok.Type, tok.Lex = tt, s
				return tok
			}
		}
		tok.Type, tok.Lex = ILLEGAL, string(ch)
		l.read()
	}
	return tok
}
