package parser

import (
	"github.com/Maoyao233/ToyCC/internal/ast"
	"github.com/Maoyao233/ToyCC/internal/lexer"
)

func (p *Parser) parseCompound() (*ast.CompoundStmt, *Error) {
	lbrace := p.tok
	p.next()

	cs := &ast.CompoundStmt{}
	for p.tok.Type != lexer.RBRACE {
		if p.tok.Type == lexer.EOF {
			return nil, p.closing(lexer.RBRACE, lbrace)
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		cs.Body = append(cs.Body, s)
	}
	p.next()
	return cs, nil
}

func (p *Parser) parseStatement() (ast.Stmt, *Error) {
	switch p.tok.Type {
	case lexer.SEMI:
		p.next()
		return &ast.NullStmt{}, nil
	case lexer.LBRACE:
		return p.parseCompound()
	case lexer.KW_IF:
		return p.parseIf()
	case lexer.KW_WHILE:
		return p.parseWhile()
	case lexer.KW_RETURN:
		return p.parseReturn()
	case lexer.KW_INT, lexer.KW_VOID:
		decls, err := p.parseDeclarators(false)
		if err != nil {
			return nil, err
		}
		return &ast.DeclStmt{Decls: decls}, nil
	}

	if !startsExpression(p.tok.Type) {
		return nil, p.errorf(ErrUnexpectedToken, p.tok, "expected statement, got %s", describe(p.tok))
	}
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMI, ErrMissingTerminator, "expected ';' after expression"); err != nil {
		return nil, err
	}
	return &ast.ValueStmt{X: e}, nil
}

// parenCond parses `( expr )` and returns expr as an rvalue.
func (p *Parser) parenCond(keyword string) (ast.Expr, *Error) {
	lparen, err := p.expect(lexer.LPAREN, ErrUnexpectedToken, "expected '(' after '%s'", keyword)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.closing(lexer.RPAREN, lparen); err != nil {
		return nil, err
	}
	return ast.RValue(cond), nil
}

func (p *Parser) parseIf() (ast.Stmt, *Error) {
	p.next()
	cond, err := p.parenCond("if")
	if err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	is := &ast.IfStmt{Cond: cond, Then: then}
	if p.tok.Type == lexer.KW_ELSE {
		p.next()
		if is.Else, err = p.parseStatement(); err != nil {
			return nil, err
		}
	}
	return is, nil
}

func (p *Parser) parseWhile() (ast.Stmt, *Error) {
	p.next()
	cond, err := p.parenCond("while")
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Cond: cond, Body: body}, nil
}

func (p *Parser) parseReturn() (ast.Stmt, *Error) {
	p.next()
	rs := &ast.ReturnStmt{}
	if p.tok.Type != lexer.SEMI {
		v, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		rs.Value = ast.RValue(v)
	}
	if _, err := p.expect(lexer.SEMI, ErrMissingTerminator, "expected ';' after return statement"); err != nil {
		return nil, err
	}
	return rs, nil
}
