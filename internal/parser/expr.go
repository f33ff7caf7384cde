package parser

import (
	"math"
	"strconv"

	"github.com/Maoyao233/ToyCC/internal/ast"
	"github.com/Maoyao233/ToyCC/internal/lexer"
)

type precLevel int

const (
	precUnknown precLevel = iota
	precComma
	precAssignment
	precLogicalOr
	precLogicalAnd
	precInclusiveOr
	precExclusiveOr
	precAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
)

type binInfo struct {
	prec precLevel
	op   ast.BinOp
}

var binaryOps = map[lexer.TokenType]binInfo{
	lexer.STAR:    {precMultiplicative, ast.OpMul},
	lexer.SLASH:   {precMultiplicative, ast.OpDiv},
	lexer.PERCENT: {precMultiplicative, ast.OpRem},
	lexer.PLUS:    {precAdditive, ast.OpAdd},
	lexer.MINUS:   {precAdditive, ast.OpSub},
	lexer.SHL:     {precShift, ast.OpShl},
	lexer.SHR:     {precShift, ast.OpShr},
	lexer.LT:      {precRelational, ast.OpLT},
	lexer.GT:      {precRelational, ast.OpGT},
	lexer.LE:      {precRelational, ast.OpLE},
	lexer.GE:      {precRelational, ast.OpGE},
	lexer.EQEQ:    {precEquality, ast.OpEQ},
	lexer.NEQ:     {precEquality, ast.OpNE},
	lexer.AMP:     {precAnd, ast.OpAnd},
	lexer.CARET:   {precExclusiveOr, ast.OpXor},
	lexer.PIPE:    {precInclusiveOr, ast.OpOr},
	lexer.ANDAND:  {precLogicalAnd, ast.OpLAnd},
	lexer.OROR:    {precLogicalOr, ast.OpLOr},

	lexer.ASSIGN:         {precAssignment, ast.OpAssign},
	lexer.STAR_ASSIGN:    {precAssignment, ast.OpMulAssign},
	lexer.SLASH_ASSIGN:   {precAssignment, ast.OpDivAssign},
	lexer.PERCENT_ASSIGN: {precAssignment, ast.OpRemAssign},
	lexer.PLUS_ASSIGN:    {precAssignment, ast.OpAddAssign},
	lexer.MINUS_ASSIGN:   {precAssignment, ast.OpSubAssign},
	lexer.SHL_ASSIGN:     {precAssignment, ast.OpShlAssign},
	lexer.SHR_ASSIGN:     {precAssignment, ast.OpShrAssign},
	lexer.AMP_ASSIGN:     {precAssignment, ast.OpAndAssign},
	lexer.CARET_ASSIGN:   {precAssignment, ast.OpXorAssign},
	lexer.PIPE_ASSIGN:    {precAssignment, ast.OpOrAssign},
}

// precedence of tok as a binary operator. The comma only delimits lists, so it
// ranks below every level an expression is parsed at.
func precedence(tok lexer.TokenType) precLevel {
	if tok == lexer.COMMA {
		return precComma
	}
	return binaryOps[tok].prec
}

var prefixOps = map[lexer.TokenType]ast.UnOp{
	lexer.PLUSPLUS:   ast.OpPreInc,
	lexer.MINUSMINUS: ast.OpPreDec,
	lexer.PLUS:       ast.OpPlus,
	lexer.MINUS:      ast.OpNeg,
	lexer.TILDE:      ast.OpBitNot,
	lexer.BANG:       ast.OpLNot,
}

func startsExpression(tt lexer.TokenType) bool {
	if _, ok := prefixOps[tt]; ok {
		return true
	}
	return tt == lexer.IDENT || tt == lexer.INT || tt == lexer.LPAREN
}

// parseExpression parses an assignment expression. Commas are left for the
// enclosing list.
func (p *Parser) parseExpression() (ast.Expr, *Error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return p.parseRHS(lhs, precAssignment)
}

// parseRHS folds binary operators of at least minPrec onto lhs. Every tier
// is left-associative except assignment.
func (p *Parser) parseRHS(lhs ast.Expr, minPrec precLevel) (ast.Expr, *Error) {
	nextPrec := precedence(p.tok.Type)
	for nextPrec >= minPrec {
		op := binaryOps[p.tok.Type].op
		thisPrec := nextPrec
		p.next()

		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		rightAssoc := thisPrec == precAssignment
		nextPrec = precedence(p.tok.Type)
		if thisPrec < nextPrec || (thisPrec == nextPrec && rightAssoc) {
			sub := thisPrec + 1
			if rightAssoc {
				sub = thisPrec
			}
			if rhs, err = p.parseRHS(rhs, sub); err != nil {
				return nil, err
			}
			nextPrec = precedence(p.tok.Type)
		}
		lhs = ast.NewBinaryOperator(op, lhs, rhs)
	}
	return lhs, nil
}

func (p *Parser) parseUnary() (ast.Expr, *Error) {
	if op, ok := prefixOps[p.tok.Type]; ok {
		p.next()
		// The magnitude of INT_MIN only fits once negated.
		if op == ast.OpNeg && p.tok.Type == lexer.INT && isMinMagnitude(p.tok.Lex) {
			p.next()
			return &ast.IntegerLiteral{Value: math.MinInt32}, nil
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryOperator(op, operand), nil
	}

	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	switch p.tok.Type {
	case lexer.PLUSPLUS:
		p.next()
		return ast.NewUnaryOperator(ast.OpPostInc, e), nil
	case lexer.MINUSMINUS:
		p.next()
		return ast.NewUnaryOperator(ast.OpPostDec, e), nil
	}
	return e, nil
}

func isMinMagnitude(lex string) bool {
	v, err := strconv.ParseInt(lex, 10, 64)
	return err == nil && v == -math.MinInt32
}

func (p *Parser) parsePrimary() (ast.Expr, *Error) {
	tok := p.tok
	switch tok.Type {
	case lexer.IDENT:
		p.next()
		if p.tok.Type == lexer.LPAREN {
			return p.parseCall(tok.Lex)
		}
		return &ast.DeclRefExpr{Name: tok.Lex}, nil
	case lexer.INT:
		v, err := strconv.ParseInt(tok.Lex, 10, 32)
		if err != nil {
			return nil, p.errorf(ErrInvalidLiteral, tok, "integer literal %s is too large", tok.Lex)
		}
		p.next()
		return &ast.IntegerLiteral{Value: int32(v)}, nil
	case lexer.LPAREN:
		p.next()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.closing(lexer.RPAREN, tok); err != nil {
			return nil, err
		}
		return &ast.ParenExpr{Inner: inner}, nil
	}
	return nil, p.errorf(ErrUnexpectedToken, tok, "expected expression, got %s", describe(tok))
}

func (p *Parser) parseCall(name string) (ast.Expr, *Error) {
	lparen := p.tok
	p.next()

	var args []ast.Expr
	if p.tok.Type != lexer.RPAREN {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.tok.Type != lexer.COMMA {
				break
			}
			p.next()
		}
	}
	if err := p.closing(lexer.RPAREN, lparen); err != nil {
		return nil, err
	}
	return ast.NewCallExpr(name, args), nil
}
