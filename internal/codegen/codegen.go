package codegen

import (
	"fmt"

	"github.com/Maoyao233/ToyCC/internal/ast"
	"github.com/Maoyao233/ToyCC/internal/ir"
	"github.com/Maoyao233/ToyCC/internal/types"
	"github.com/rs/zerolog"
)

// Generator lowers one translation unit into an ir.Module. Semantic errors
// do not stop lowering: each one is recorded and the generator moves on to
// the next declaration or statement. The module is only usable when Errors
// is empty.
type Generator struct {
	m    *ir.Module
	log  zerolog.Logger
	errs []error
}

type Option func(*Generator)

func WithLogger(log zerolog.Logger) Option {
	return func(g *Generator) { g.log = log }
}

func New(name string, opts ...Option) *Generator {
	g := &Generator{m: ir.NewModule(name), log: zerolog.Nop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Lower runs a fresh Generator over tu.
func Lower(name string, tu *ast.TranslationUnitDecl, opts ...Option) (*ir.Module, []error) {
	g := New(name, opts...)
	m := g.Generate(tu)
	return m, g.Errors()
}

func (g *Generator) Generate(tu *ast.TranslationUnitDecl) *ir.Module {
	for _, d := range tu.Decls {
		switch d := d.(type) {
		case *ast.VarDecl:
			g.globalVar(d)
		case *ast.FunctionDecl:
			g.function(d)
		default:
			g.fail(fmt.Errorf("%w: top-level %s", ErrUnsupported, d.Kind()))
		}
	}
	return g.m
}

func (g *Generator) Module() *ir.Module { return g.m }

// Errors returns the semantic errors recorded so far, in source order.
func (g *Generator) Errors() []error { return g.errs }

func (g *Generator) fail(err error) {
	for _, e := range flatten(err) {
		g.log.Debug().Err(e).Msg("semantic error")
		g.errs = append(g.errs, e)
	}
}

func irType(bt ast.BasicType) types.Type {
	if bt == ast.BTVoid {
		return types.VoidT()
	}
	return types.Int32T()
}

func (g *Generator) globalVar(d *ast.VarDecl) {
	if g.m.Global(d.Name) != nil {
		g.fail(fmt.Errorf("%w '%s'", ErrRedefined, d.Name))
		return
	}
	if g.m.Func(d.Name) != nil {
		g.fail(fmt.Errorf("%w '%s' as a different kind of symbol", ErrRedefined, d.Name))
		return
	}

	// An initializer that does not fold leaves the cell zero.
	var init int32
	if d.HasInit {
		k, err := g.constant(d.Init)
		if err != nil {
			g.log.Debug().Err(err).Str("global", d.Name).Msg("initializer not folded")
		} else {
			init = k
		}
	}
	g.m.NewGlobal(d.Name, init)
}

// constant evaluates e with a builder that has no function, so only
// expressions that fold completely succeed.
func (g *Generator) constant(e ast.Expr) (int32, error) {
	fc := &funcCtx{g: g, b: ir.NewBuilder(nil)}
	v, err := fc.value(e)
	if err != nil {
		return 0, err
	}
	v = fc.zext32(v)
	if !v.IsConst() {
		return 0, fmt.Errorf("%s cannot be evaluated at compile time", v.Op)
	}
	return v.Const, nil
}

func (g *Generator) function(d *ast.FunctionDecl) {
	ret := irType(d.ReturnType)
	names := make([]string, len(d.Params))
	for i, p := range d.Params {
		names[i] = p.Name
	}

	if g.m.Global(d.Name) != nil {
		g.fail(fmt.Errorf("%w '%s' as a different kind of symbol", ErrRedefined, d.Name))
		return
	}

	f := g.m.Func(d.Name)
	if f == nil {
		f = g.m.NewFunction(d.Name, ret, names)
	} else {
		switch {
		case d.Body != nil && !f.IsDeclaration():
			g.fail(fmt.Errorf("%w '%s'", ErrRedefinedFunction, d.Name))
			return
		case len(f.Params) != len(d.Params):
			g.fail(fmt.Errorf("%w: '%s' declared with %d parameters, now %d", ErrParamCount, d.Name, len(f.Params), len(d.Params)))
			return
		case !f.Ret.Equal(ret):
			g.fail(fmt.Errorf("%w '%s': %s vs %s", ErrConflictingTypes, d.Name, f.Ret, ret))
			return
		}
		if d.Body != nil {
			f.NameParams(names)
		}
	}

	if d.Body == nil {
		return
	}
	g.define(f, d)
}

// define lowers the body of d into f. Every return branches to one shared
// return block which is laid out last.
func (g *Generator) define(f *ir.Function, d *ast.FunctionDecl) {
	entry := f.NewBlock("entry")
	f.AppendBlock(entry)
	retBlk := f.NewBlock("return")

	fc := &funcCtx{
		g:      g,
		fn:     f,
		b:      ir.NewBuilder(f),
		ret:    retBlk,
		locals: map[string]*ir.Value{},
	}
	b := fc.b

	b.SetInsertPoint(entry)
	if !f.Ret.IsVoid() {
		fc.retSlot = b.Alloca("retval")
	}
	b.SetInsertPoint(retBlk)
	if fc.retSlot != nil {
		b.Ret(b.Load(fc.retSlot, ""))
	} else {
		b.RetVoid()
	}

	b.SetInsertPoint(entry)
	for i, p := range d.Params {
		if p.Name == "" {
			continue
		}
		if _, ok := fc.locals[p.Name]; ok {
			g.fail(fmt.Errorf("%w '%s'", ErrRedefined, p.Name))
			continue
		}
		slot := b.Alloca(p.Name + ".addr")
		b.Store(f.Params[i], slot)
		fc.locals[p.Name] = slot
	}

	fc.compound(d.Body)
	b.Jmp(retBlk)
	f.AppendBlock(retBlk)

	stripped := ir.StripDeadCode(f)
	if err := ir.Verify(f); err != nil {
		for _, e := range flatten(err) {
			g.fail(fmt.Errorf("%w '%s': %v", ErrVerify, f.Name, e))
		}
	}

	g.log.Debug().
		Str("function", f.Name).
		Int("blocks", len(f.Blocks)).
		Int("stripped", stripped).
		Msg("lowered function")
}
