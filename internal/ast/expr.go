package ast

type BinOp int

const (
	OpMul BinOp = iota
	OpDiv
	OpRem
	OpAdd
	OpSub
	OpShl
	OpShr
	OpLT
	OpGT
	OpLE
	OpGE
	OpEQ
	OpNE
	OpAnd
	OpXor
	OpOr
	OpLAnd
	OpLOr
	OpAssign
	OpMulAssign
	OpDivAssign
	OpRemAssign
	OpAddAssign
	OpSubAssign
	OpShlAssign
	OpShrAssign
	OpAndAssign
	OpXorAssign
	OpOrAssign
)

var binOpSpelling = [...]string{
	OpMul:       "*",
	OpDiv:       "/",
	OpRem:       "%",
	OpAdd:       "+",
	OpSub:       "-",
	OpShl:       "<<",
	OpShr:       ">>",
	OpLT:        "<",
	OpGT:        ">",
	OpLE:        "<=",
	OpGE:        ">=",
	OpEQ:        "==",
	OpNE:        "!=",
	OpAnd:       "&",
	OpXor:       "^",
	OpOr:        "|",
	OpLAnd:      "&&",
	OpLOr:       "||",
	OpAssign:    "=",
	OpMulAssign: "*=",
	OpDivAssign: "/=",
	OpRemAssign: "%=",
	OpAddAssign: "+=",
	OpSubAssign: "-=",
	OpShlAssign: "<<=",
	OpShrAssign: ">>=",
	OpAndAssign: "&=",
	OpXorAssign: "^=",
	OpOrAssign:  "|=",
}

func (op BinOp) String() string {
	if op < 0 || int(op) >= len(binOpSpelling) {
		return ""
	}
	return binOpSpelling[op]
}

// IsAssignment reports whether op is = or one of the compound assignments.
func (op BinOp) IsAssignment() bool { return op >= OpAssign }

// Base returns the arithmetic operator a compound assignment applies,
// e.g. OpAdd for OpAddAssign. Other operators are returned unchanged.
func (op BinOp) Base() BinOp {
	switch op {
	case OpMulAssign:
		return OpMul
	case OpDivAssign:
		return OpDiv
	case OpRemAssign:
		return OpRem
	case OpAddAssign:
		return OpAdd
	case OpSubAssign:
		return OpSub
	case OpShlAssign:
		return OpShl
	case OpShrAssign:
		return OpShr
	case OpAndAssign:
		return OpAnd
	case OpXorAssign:
		return OpXor
	case OpOrAssign:
		return OpOr
	}
	return op
}

type UnOp int

const (
	OpPostInc UnOp = iota
	OpPostDec
	OpPreInc
	OpPreDec
	OpPlus
	OpNeg
	OpBitNot
	OpLNot
)

func (op UnOp) String() string {
	switch op {
	case OpPostInc, OpPreInc:
		return "++"
	case OpPostDec, OpPreDec:
		return "--"
	case OpPlus:
		return "+"
	case OpNeg:
		return "-"
	case OpBitNot:
		return "~"
	case OpLNot:
		return "!"
	}
	return ""
}

func (op UnOp) IsIncDec() bool  { return op <= OpPreDec }
func (op UnOp) IsPostfix() bool { return op == OpPostInc || op == OpPostDec }

const CastLValueToRValue = "LValueToRValue"

type (
	IntegerLiteral struct {
		Value int32
	}

	// DeclRefExpr names a variable, or a function when IsCall is set.
	DeclRefExpr struct {
		Name   string
		IsCall bool
	}

	BinaryOperator struct {
		Op  BinOp
		LHS Expr
		RHS Expr
	}

	UnaryOperator struct {
		Op      UnOp
		Operand Expr
	}

	ParenExpr struct {
		Inner Expr
	}

	CallExpr struct {
		Callee *DeclRefExpr
		Args   []Expr
	}

	ImplicitCastExpr struct {
		Operand  Expr
		CastKind string
	}
)

// RValue wraps e in an LValueToRValue cast if it denotes storage.
func RValue(e Expr) Expr {
	if e.IsLvalue() {
		return &ImplicitCastExpr{Operand: e, CastKind: CastLValueToRValue}
	}
	return e
}

// NewBinaryOperator builds a binary expression, materializing both operands
// as rvalues except the target of an assignment.
func NewBinaryOperator(op BinOp, lhs, rhs Expr) *BinaryOperator {
	if !op.IsAssignment() {
		lhs = RValue(lhs)
	}
	return &BinaryOperator{Op: op, LHS: lhs, RHS: RValue(rhs)}
}

// NewUnaryOperator builds a unary expression. Increments and decrements keep
// their operand as an lvalue.
func NewUnaryOperator(op UnOp, operand Expr) *UnaryOperator {
	if !op.IsIncDec() {
		operand = RValue(operand)
	}
	return &UnaryOperator{Op: op, Operand: operand}
}

func NewCallExpr(name string, args []Expr) *CallExpr {
	rargs := make([]Expr, len(args))
	for i, a := range args {
		rargs[i] = RValue(a)
	}
	return &CallExpr{Callee: &DeclRefExpr{Name: name, IsCall: true}, Args: rargs}
}

func (*IntegerLiteral) IsConst() bool  { return true }
func (*IntegerLiteral) IsLvalue() bool { return false }

func (*DeclRefExpr) IsConst() bool    { return false }
func (e *DeclRefExpr) IsLvalue() bool { return !e.IsCall }

func (e *BinaryOperator) IsConst() bool {
	return !e.Op.IsAssignment() && e.LHS.IsConst() && e.RHS.IsConst()
}
func (*BinaryOperator) IsLvalue() bool { return false }

func (e *UnaryOperator) IsConst() bool {
	return !e.Op.IsIncDec() && e.Operand.IsConst()
}
func (*UnaryOperator) IsLvalue() bool { return false }

func (e *ParenExpr) IsConst() bool  { return e.Inner.IsConst() }
func (e *ParenExpr) IsLvalue() bool { return e.Inner.IsLvalue() }

func (*CallExpr) IsConst() bool  { return false }
func (*CallExpr) IsLvalue() bool { return false }

func (e *ImplicitCastExpr) IsConst() bool { return e.Operand.IsConst() }
func (*ImplicitCastExpr) IsLvalue() bool  { return false }

func (*IntegerLiteral) isExpr()   {}
func (*DeclRefExpr) isExpr()      {}
func (*BinaryOperator) isExpr()   {}
func (*UnaryOperator) isExpr()    {}
func (*ParenExpr) isExpr()        {}
func (*CallExpr) isExpr()         {}
func (*ImplicitCastExpr) isExpr() {}

func (*IntegerLiteral) Kind() string   { return "IntegerLiteral" }
func (*DeclRefExpr) Kind() string      { return "DeclRefExpr" }
func (*BinaryOperator) Kind() string   { return "BinaryOperator" }
func (*UnaryOperator) Kind() string    { return "UnaryOperator" }
func (*ParenExpr) Kind() string        { return "ParenExpr" }
func (*CallExpr) Kind() string         { return "CallExpr" }
func (*ImplicitCastExpr) Kind() string { return "ImplicitCastExpr" }
