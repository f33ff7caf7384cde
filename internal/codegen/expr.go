package codegen

import (
	"errors"
	"fmt"

	"github.com/Maoyao233/ToyCC/internal/ast"
	"github.com/Maoyao233/ToyCC/internal/ir"
	"github.com/Maoyao233/ToyCC/internal/types"
)

var arithOps = map[ast.BinOp]ir.Op{
	ast.OpMul: ir.OpMul,
	ast.OpDiv: ir.OpSDiv,
	ast.OpRem: ir.OpSRem,
	ast.OpAdd: ir.OpAdd,
	ast.OpSub: ir.OpSub,
	ast.OpShl: ir.OpShl,
	ast.OpShr: ir.OpAShr,
	ast.OpAnd: ir.OpAnd,
	ast.OpXor: ir.OpXor,
	ast.OpOr:  ir.OpOr,
}

var compareOps = map[ast.BinOp]ir.Op{
	ast.OpLT: ir.OpLt,
	ast.OpGT: ir.OpGt,
	ast.OpLE: ir.OpLe,
	ast.OpGE: ir.OpGe,
	ast.OpEQ: ir.OpEq,
	ast.OpNE: ir.OpNe,
}

// lookup resolves a variable name in the local table, then among globals.
func (fc *funcCtx) lookup(name string) (*ir.Value, error) {
	if slot, ok := fc.locals[name]; ok {
		return slot, nil
	}
	if g := fc.g.m.Global(name); g != nil {
		return g.Addr, nil
	}
	return nil, fmt.Errorf("%w '%s'", ErrUnknownVariable, name)
}

// expr lowers e. A name yields the address of its storage; everything else
// yields a value, or a void result for calls to void functions.
func (fc *funcCtx) expr(e ast.Expr) (*ir.Value, error) {
	switch e := e.(type) {
	case *ast.IntegerLiteral:
		return fc.b.Const(e.Value), nil
	case *ast.DeclRefExpr:
		if e.IsCall {
			return nil, fmt.Errorf("%w: function '%s' used as a value", ErrUnsupported, e.Name)
		}
		return fc.lookup(e.Name)
	case *ast.ParenExpr:
		return fc.expr(e.Inner)
	case *ast.ImplicitCastExpr:
		addr, err := fc.expr(e.Operand)
		if err != nil {
			return nil, err
		}
		if !addr.Type.IsPointer() {
			return addr, nil
		}
		return fc.b.Load(addr, ""), nil
	case *ast.UnaryOperator:
		return fc.unary(e)
	case *ast.BinaryOperator:
		if e.Op.IsAssignment() {
			return fc.assign(e)
		}
		return fc.binary(e)
	case *ast.CallExpr:
		return fc.call(e)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, e.Kind())
}

// value lowers e where its result is consumed.
func (fc *funcCtx) value(e ast.Expr) (*ir.Value, error) {
	v, err := fc.expr(e)
	if err != nil {
		return nil, err
	}
	if v.Type.IsVoid() {
		name := "expression"
		if call, ok := e.(*ast.CallExpr); ok {
			name = "'" + call.Callee.Name + "'"
		}
		return nil, fmt.Errorf("%w: result of %s", ErrVoidValue, name)
	}
	return v, nil
}

func (fc *funcCtx) sext32(v *ir.Value) *ir.Value {
	if v.Type.Bits() < 32 {
		return fc.b.SExt(v, types.Int32T(), "")
	}
	return v
}

func (fc *funcCtx) zext32(v *ir.Value) *ir.Value {
	if v.Type.Bits() < 32 {
		return fc.b.ZExt(v, types.Int32T(), "")
	}
	return v
}

func (fc *funcCtx) toBool(v *ir.Value) *ir.Value {
	if v.Type.K == types.Int1 {
		return v
	}
	return fc.b.Cmp(ir.OpNe, v, fc.b.Const(0), "")
}

func (fc *funcCtx) unary(e *ast.UnaryOperator) (*ir.Value, error) {
	if e.Op.IsIncDec() {
		return fc.incDec(e)
	}

	v, err := fc.value(e.Operand)
	if err != nil {
		return nil, err
	}
	v = fc.zext32(v)
	switch e.Op {
	case ast.OpPlus:
		return v, nil
	case ast.OpNeg:
		return fc.b.Binary(ir.OpSub, fc.b.Const(0), v, ""), nil
	case ast.OpBitNot:
		return fc.b.Binary(ir.OpXor, v, fc.b.Const(-1), ""), nil
	case ast.OpLNot:
		return fc.b.Cmp(ir.OpEq, v, fc.b.Const(0), ""), nil
	}
	return nil, fmt.Errorf("%w: unary '%s'", ErrUnsupported, e.Op)
}

// incDec stores operand±1 back; prefix forms yield the new value, postfix
// forms the old one.
func (fc *funcCtx) incDec(e *ast.UnaryOperator) (*ir.Value, error) {
	ref, ok := e.Operand.(*ast.DeclRefExpr)
	if !ok || ref.IsCall {
		return nil, fmt.Errorf("%w as operand of '%s'", ErrLvalueRequired, e.Op)
	}
	addr, err := fc.lookup(ref.Name)
	if err != nil {
		return nil, err
	}

	op := ir.OpAdd
	if e.Op == ast.OpPreDec || e.Op == ast.OpPostDec {
		op = ir.OpSub
	}
	old := fc.b.Load(addr, "")
	updated := fc.b.Binary(op, old, fc.b.Const(1), "")
	fc.b.Store(updated, addr)
	if e.Op.IsPostfix() {
		return old, nil
	}
	return updated, nil
}

func (fc *funcCtx) operands(e *ast.BinaryOperator) (*ir.Value, *ir.Value, error) {
	l, lerr := fc.value(e.LHS)
	r, rerr := fc.value(e.RHS)
	if err := errors.Join(lerr, rerr); err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

func (fc *funcCtx) binary(e *ast.BinaryOperator) (*ir.Value, error) {
	l, r, err := fc.operands(e)
	if err != nil {
		return nil, err
	}

	// && and || evaluate both sides.
	switch e.Op {
	case ast.OpLAnd:
		return fc.b.Binary(ir.OpAnd, fc.toBool(l), fc.toBool(r), ""), nil
	case ast.OpLOr:
		return fc.b.Binary(ir.OpOr, fc.toBool(l), fc.toBool(r), ""), nil
	}
	return fc.arith(e.Op, l, r)
}

// arith applies a non-logical binary operator after widening both operands.
func (fc *funcCtx) arith(op ast.BinOp, l, r *ir.Value) (*ir.Value, error) {
	l, r = fc.sext32(l), fc.sext32(r)
	if iop, ok := arithOps[op]; ok {
		return fc.b.Binary(iop, l, r, ""), nil
	}
	if iop, ok := compareOps[op]; ok {
		return fc.b.Cmp(iop, l, r, ""), nil
	}
	return nil, fmt.Errorf("%w: binary '%s'", ErrUnsupported, op)
}

// assign stores into a bare name. Compound forms load the current value
// and apply the underlying operator first.
func (fc *funcCtx) assign(e *ast.BinaryOperator) (*ir.Value, error) {
	rhs, rerr := fc.value(e.RHS)

	ref, ok := e.LHS.(*ast.DeclRefExpr)
	if !ok || ref.IsCall {
		return nil, errors.Join(rerr, fmt.Errorf("%w as left operand of '%s'", ErrLvalueRequired, e.Op))
	}
	addr, aerr := fc.lookup(ref.Name)
	if err := errors.Join(rerr, aerr); err != nil {
		return nil, err
	}

	result := fc.zext32(rhs)
	if e.Op != ast.OpAssign {
		cur := fc.b.Load(addr, "")
		v, err := fc.arith(e.Op.Base(), cur, rhs)
		if err != nil {
			return nil, err
		}
		result = v
	}
	fc.b.Store(result, addr)
	return result, nil
}

func (fc *funcCtx) call(e *ast.CallExpr) (*ir.Value, error) {
	name := e.Callee.Name
	f := fc.g.m.Func(name)
	if f == nil {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownFunction, name)
	}
	if len(e.Args) != len(f.Params) {
		return nil, fmt.Errorf("%w: function '%s' requires %d arguments, but %d were given",
			ErrArgumentCount, name, len(f.Params), len(e.Args))
	}

	args := make([]*ir.Value, 0, len(e.Args))
	var errs []error
	for _, a := range e.Args {
		v, err := fc.value(a)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		args = append(args, fc.zext32(v))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return fc.b.Call(f, args, ""), nil
}
