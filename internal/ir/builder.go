package ir

import (
	"math"

	"github.com/Maoyao233/ToyCC/internal/types"
)

// Builder appends instructions at the end of its current block. Operations
// on constant operands fold to constants instead of emitting code. A Builder
// without a function only folds; anything it cannot fold is returned
// detached from any block.
type Builder struct {
	fn  *Function
	blk *BasicBlock
}

func NewBuilder(fn *Function) *Builder { return &Builder{fn: fn} }

func (b *Builder) Function() *Function { return b.fn }

func (b *Builder) Block() *BasicBlock { return b.blk }

func (b *Builder) SetInsertPoint(blk *BasicBlock) { b.blk = blk }

func (b *Builder) emit(v *Value, name string) *Value {
	if b.fn != nil {
		v.ID = b.fn.nextID
		b.fn.nextID++
		v.Name = b.fn.uniqueName(name)
	}
	if b.blk != nil {
		v.Block = b.blk
		b.blk.Instrs = append(b.blk.Instrs, v)
	}
	return v
}

func (b *Builder) Const(k int32) *Value {
	return &Value{Op: OpConst, Type: types.Int32T(), Const: k}
}

func (b *Builder) Bool(t bool) *Value {
	v := &Value{Op: OpConst, Type: types.Int1T()}
	if t {
		v.Const = 1
	}
	return v
}

// Alloca reserves an i32 stack slot in the entry block, after any slots
// already there, whatever the current insertion point is.
func (b *Builder) Alloca(name string) *Value {
	v := &Value{Op: OpAlloca, Type: types.PointerTo(types.Int32T())}
	entry := b.fn.Entry()
	if entry == nil {
		return b.emit(v, name)
	}
	saved := b.blk
	b.blk = nil
	b.emit(v, name)
	b.blk = saved

	at := 0
	for at < len(entry.Instrs) && entry.Instrs[at].Op == OpAlloca {
		at++
	}
	v.Block = entry
	entry.Instrs = append(entry.Instrs, nil)
	copy(entry.Instrs[at+1:], entry.Instrs[at:])
	entry.Instrs[at] = v
	return v
}

func (b *Builder) Load(ptr *Value, name string) *Value {
	return b.emit(&Value{Op: OpLoad, Type: ptr.Type.ElemType(), Args: []*Value{ptr}}, name)
}

func (b *Builder) Store(val, ptr *Value) *Value {
	return b.emit(&Value{Op: OpStore, Type: types.VoidT(), Args: []*Value{val, ptr}}, "")
}

// Binary emits an integer operation of two operands of the same type.
func (b *Builder) Binary(op Op, l, r *Value, name string) *Value {
	if l.IsConst() && r.IsConst() {
		if k, ok := foldBinary(op, l.Const, r.Const); ok {
			return &Value{Op: OpConst, Type: l.Type, Const: k}
		}
	}
	return b.emit(&Value{Op: op, Type: l.Type, Args: []*Value{l, r}}, name)
}

// Cmp emits a signed comparison producing i1.
func (b *Builder) Cmp(op Op, l, r *Value, name string) *Value {
	if l.IsConst() && r.IsConst() {
		return b.Bool(foldCompare(op, l.Const, r.Const))
	}
	return b.emit(&Value{Op: op, Type: types.Int1T(), Args: []*Value{l, r}}, name)
}

func (b *Builder) SExt(v *Value, to types.Type, name string) *Value {
	if v.IsConst() {
		k := v.Const
		if v.Type.K == types.Int1 && k != 0 {
			k = -1
		}
		return &Value{Op: OpConst, Type: to, Const: k}
	}
	return b.emit(&Value{Op: OpSExt, Type: to, Args: []*Value{v}}, name)
}

func (b *Builder) ZExt(v *Value, to types.Type, name string) *Value {
	if v.IsConst() {
		return &Value{Op: OpConst, Type: to, Const: v.Const}
	}
	return b.emit(&Value{Op: OpZExt, Type: to, Args: []*Value{v}}, name)
}

func (b *Builder) Call(fn *Function, args []*Value, name string) *Value {
	if fn.Ret.IsVoid() {
		name = ""
	}
	return b.emit(&Value{Op: OpCall, Type: fn.Ret, Args: args, Callee: fn}, name)
}

func (b *Builder) terminate(v *Value) *Value {
	b.emit(v, "")
	if b.blk != nil {
		for _, t := range v.Targets {
			addEdge(b.blk, t)
		}
	}
	return v
}

func (b *Builder) Jmp(dest *BasicBlock) *Value {
	return b.terminate(&Value{Op: OpJmp, Type: types.VoidT(), Targets: []*BasicBlock{dest}})
}

func (b *Builder) Jnz(cond *Value, then, els *BasicBlock) *Value {
	return b.terminate(&Value{Op: OpJnz, Type: types.VoidT(), Args: []*Value{cond}, Targets: []*BasicBlock{then, els}})
}

func (b *Builder) Ret(v *Value) *Value {
	return b.terminate(&Value{Op: OpRet, Type: types.VoidT(), Args: []*Value{v}})
}

func (b *Builder) RetVoid() *Value {
	return b.terminate(&Value{Op: OpRet, Type: types.VoidT()})
}

// foldBinary evaluates op with two's complement wrap-around. Division by
// zero, INT_MIN / -1 and shifts outside [0, 31] are left to run time.
func foldBinary(op Op, a, c int32) (int32, bool) {
	switch op {
	case OpAdd:
		return a + c, true
	case OpSub:
		return a - c, true
	case OpMul:
		return a * c, true
	case OpSDiv, OpSRem:
		if c == 0 || (a == math.MinInt32 && c == -1) {
			return 0, false
		}
		if op == OpSDiv {
			return a / c, true
		}
		return a % c, true
	case OpShl, OpAShr:
		if c < 0 || c > 31 {
			return 0, false
		}
		if op == OpShl {
			return a << uint(c), true
		}
		return a >> uint(c), true
	case OpAnd:
		return a & c, true
	case OpOr:
		return a | c, true
	case OpXor:
		return a ^ c, true
	}
	return 0, false
}

func foldCompare(op Op, a, c int32) bool {
	switch op {
	case OpEq:
		return a == c
	case OpNe:
		return a != c
	case OpLt:
		return a < c
	case OpLe:
		return a <= c
	case OpGt:
		return a > c
	case OpGe:
		return a >= c
	}
	return false
}
