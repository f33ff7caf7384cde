package parser

import (
	"github.com/Maoyao233/ToyCC/internal/ast"
	"github.com/Maoyao233/ToyCC/internal/lexer"
)

func (p *Parser) parseTopLevel() ([]ast.Decl, *Error) {
	switch p.tok.Type {
	case lexer.KW_INT, lexer.KW_VOID:
		return p.parseDeclarators(true)
	case lexer.IDENT:
		return nil, p.errorf(ErrUnknownType, p.tok, "unknown type name '%s'", p.tok.Lex)
	}
	return nil, p.errorf(ErrUnexpectedToken, p.tok, "expected external declaration, got %s", describe(p.tok))
}

func basicType(tok lexer.Token) ast.BasicType {
	if tok.Type == lexer.KW_VOID {
		return ast.BTVoid
	}
	return ast.BTInt
}

// parseDeclarators parses `type d1, d2 = e, f(int a);`. A declarator
// followed by '(' is a function; a function with a body ends the list.
func (p *Parser) parseDeclarators(topLevel bool) ([]ast.Decl, *Error) {
	bt := basicType(p.tok)
	p.next()

	var decls []ast.Decl
	for {
		nameTok, err := p.expect(lexer.IDENT, ErrUnexpectedToken, "expected identifier, got %s", describe(p.tok))
		if err != nil {
			return nil, err
		}

		if p.tok.Type == lexer.LPAREN {
			if !topLevel {
				return nil, p.errorf(ErrUnexpectedToken, p.tok, "function declaration is not allowed here")
			}
			fd, err := p.parseFunction(bt, nameTok.Lex)
			if err != nil {
				return nil, err
			}
			decls = append(decls, fd)
			if fd.Body != nil {
				return decls, nil
			}
		} else {
			vd, err := p.parseVar(bt, nameTok, topLevel)
			if err != nil {
				return nil, err
			}
			decls = append(decls, vd)
		}

		if p.tok.Type == lexer.COMMA {
			p.next()
			continue
		}
		if _, err := p.expect(lexer.SEMI, ErrMissingTerminator, "expected ';' after declaration"); err != nil {
			return nil, err
		}
		return decls, nil
	}
}

func (p *Parser) parseVar(bt ast.BasicType, nameTok lexer.Token, topLevel bool) (*ast.VarDecl, *Error) {
	if bt == ast.BTVoid {
		return nil, p.errorf(ErrIncompleteType, nameTok, "variable has incomplete type 'void'")
	}
	vd := &ast.VarDecl{Name: nameTok.Lex, Type: bt}
	if p.tok.Type != lexer.ASSIGN {
		return vd, nil
	}
	p.next()

	start := p.tok
	init, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if topLevel && !init.IsConst() {
		return nil, p.errorf(ErrNonConstantInit, start, "initializer element is not a compile-time constant")
	}
	vd.HasInit = true
	vd.Init = ast.RValue(init)
	return vd, nil
}

// parseFunction parses the parameter list and the optional body. The
// current token is the opening parenthesis.
func (p *Parser) parseFunction(ret ast.BasicType, name string) (*ast.FunctionDecl, *Error) {
	lparen := p.tok
	p.next()

	fd := &ast.FunctionDecl{ReturnType: ret, Name: name}
	switch {
	case p.tok.Type == lexer.KW_VOID && p.peek().Type == lexer.RPAREN:
		p.next()
	case p.tok.Type != lexer.RPAREN:
		for {
			param, err := p.parseParam()
			if err != nil {
				return nil, err
			}
			fd.Params = append(fd.Params, param)
			if p.tok.Type != lexer.COMMA {
				break
			}
			p.next()
		}
	}
	if err := p.closing(lexer.RPAREN, lparen); err != nil {
		return nil, err
	}

	if p.tok.Type == lexer.LBRACE {
		body, err := p.parseCompound()
		if err != nil {
			return nil, err
		}
		fd.Body = body
	}
	return fd, nil
}

func (p *Parser) parseParam() (*ast.ParmVarDecl, *Error) {
	switch p.tok.Type {
	case lexer.KW_INT:
		p.next()
	case lexer.KW_VOID:
		return nil, p.errorf(ErrIncompleteType, p.tok, "parameter has incomplete type 'void'")
	case lexer.IDENT:
		return nil, p.errorf(ErrUnknownType, p.tok, "unknown type name '%s'", p.tok.Lex)
	default:
		return nil, p.errorf(ErrUnexpectedToken, p.tok, "expected parameter declarator, got %s", describe(p.tok))
	}

	param := &ast.ParmVarDecl{VarDecl: ast.VarDecl{Type: ast.BTInt}}
	if p.tok.Type == lexer.IDENT {
		param.Name = p.tok.Lex
		p.next()
	}
	return param, nil
}
