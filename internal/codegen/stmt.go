package codegen

import (
	"fmt"
	"maps"

	"github.com/Maoyao233/ToyCC/internal/ast"
	"github.com/Maoyao233/ToyCC/internal/ir"
)

// funcCtx is the state of lowering one function body.
type funcCtx struct {
	g       *Generator
	fn      *ir.Function
	b       *ir.Builder
	ret     *ir.BasicBlock
	retSlot *ir.Value // nil for void functions
	locals  map[string]*ir.Value
}

func (fc *funcCtx) fail(err error) { fc.g.fail(err) }

// compound lowers a block against a copy of the local table, so names
// declared inside are gone once it ends.
func (fc *funcCtx) compound(cs *ast.CompoundStmt) {
	saved := fc.locals
	fc.locals = maps.Clone(saved)
	for _, s := range cs.Body {
		fc.stmt(s)
	}
	fc.locals = saved
}

func (fc *funcCtx) stmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.CompoundStmt:
		fc.compound(s)
	case *ast.DeclStmt:
		for _, d := range s.Decls {
			fc.localDecl(d)
		}
	case *ast.ValueStmt:
		if _, err := fc.expr(s.X); err != nil {
			fc.fail(err)
		}
	case *ast.ReturnStmt:
		fc.returnStmt(s)
	case *ast.IfStmt:
		fc.ifStmt(s)
	case *ast.WhileStmt:
		fc.whileStmt(s)
	case *ast.NullStmt:
	default:
		fc.fail(fmt.Errorf("%w: %s", ErrUnsupported, s.Kind()))
	}
}

func (fc *funcCtx) localDecl(d ast.Decl) {
	vd, ok := d.(*ast.VarDecl)
	if !ok {
		fc.fail(fmt.Errorf("%w: local %s", ErrUnsupported, d.Kind()))
		return
	}
	if _, ok := fc.locals[vd.Name]; ok {
		fc.fail(fmt.Errorf("%w '%s'", ErrRedefined, vd.Name))
		return
	}

	slot := fc.b.Alloca(vd.Name)
	fc.locals[vd.Name] = slot
	if !vd.HasInit {
		return
	}
	v, err := fc.value(vd.Init)
	if err != nil {
		fc.fail(err)
		return
	}
	fc.b.Store(fc.zext32(v), slot)
}

func (fc *funcCtx) returnStmt(s *ast.ReturnStmt) {
	if s.Value != nil {
		v, err := fc.value(s.Value)
		switch {
		case err != nil:
			fc.fail(err)
		case fc.retSlot == nil:
			fc.fail(fmt.Errorf("%w: void function '%s' should not return a value", ErrReturnValue, fc.fn.Name))
		default:
			fc.b.Store(fc.zext32(v), fc.retSlot)
		}
	}
	fc.b.Jmp(fc.ret)
}

// condition lowers e to an i1. A failed condition is recorded and replaced
// by false so the branches are still lowered.
func (fc *funcCtx) condition(e ast.Expr) *ir.Value {
	v, err := fc.value(e)
	if err != nil {
		fc.fail(err)
		return fc.b.Bool(false)
	}
	return fc.toBool(v)
}

func (fc *funcCtx) ifStmt(s *ast.IfStmt) {
	cond := fc.condition(s.Cond)

	then := fc.fn.NewBlock("if.then")
	var els *ir.BasicBlock
	if s.Else != nil {
		els = fc.fn.NewBlock("if.else")
	}
	end := fc.fn.NewBlock("if.end")

	if els != nil {
		fc.b.Jnz(cond, then, els)
	} else {
		fc.b.Jnz(cond, then, end)
	}

	fc.fn.AppendBlock(then)
	fc.b.SetInsertPoint(then)
	fc.stmt(s.Then)
	fc.b.Jmp(end)

	if els != nil {
		fc.fn.AppendBlock(els)
		fc.b.SetInsertPoint(els)
		fc.stmt(s.Else)
		fc.b.Jmp(end)
	}

	fc.fn.AppendBlock(end)
	fc.b.SetInsertPoint(end)
}

func (fc *funcCtx) whileStmt(s *ast.WhileStmt) {
	cond := fc.fn.NewBlock("while.cond")
	body := fc.fn.NewBlock("while.body")
	after := fc.fn.NewBlock("while.end")

	fc.b.Jmp(cond)
	fc.fn.AppendBlock(cond)
	fc.b.SetInsertPoint(cond)
	fc.b.Jnz(fc.condition(s.Cond), body, after)

	fc.fn.AppendBlock(body)
	fc.b.SetInsertPoint(body)
	fc.stmt(s.Body)
	fc.b.Jmp(cond)

	fc.fn.AppendBlock(after)
	fc.b.SetInsertPoint(after)
}
