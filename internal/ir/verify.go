package ir

import (
	"errors"
	"fmt"

	"github.com/Maoyao233/ToyCC/internal/types"
)

var ErrMalformed = errors.New("malformed IR")

type verifier struct {
	f     *Function
	index map[*BasicBlock]int
	pos   map[*Value]int
	reach []bool
	dom   [][]bool // dom[b][d]: block d dominates block b
	errs  []error
}

// Verify checks that f is well formed: every block ends in exactly one
// terminator, branches stay inside f, operands are defined before every use
// and operand types agree with each operation. All problems are reported,
// joined into one error.
func Verify(f *Function) error {
	if f.IsDeclaration() {
		return nil
	}
	v := &verifier{f: f, index: map[*BasicBlock]int{}, pos: map[*Value]int{}}
	for i, b := range f.Blocks {
		v.index[b] = i
	}
	v.checkLayout()
	v.computeDominators()
	for i, b := range f.Blocks {
		v.checkBlock(i, b)
	}
	return errors.Join(v.errs...)
}

// VerifyModule verifies every function and checks that module-level names
// are unique.
func VerifyModule(m *Module) error {
	var errs []error
	seen := map[string]bool{}
	for _, g := range m.Globals {
		if seen[g.Name] {
			errs = append(errs, fmt.Errorf("%w: duplicate symbol @%s", ErrMalformed, g.Name))
		}
		seen[g.Name] = true
	}
	for _, f := range m.Funcs {
		if seen[f.Name] {
			errs = append(errs, fmt.Errorf("%w: duplicate symbol @%s", ErrMalformed, f.Name))
		}
		seen[f.Name] = true
		if err := Verify(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (v *verifier) errorf(b *BasicBlock, format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf("%w: @%s, block %%%s: %s", ErrMalformed, v.f.Name, b.Name, fmt.Sprintf(format, args...)))
}

func (v *verifier) checkLayout() {
	for _, b := range v.f.Blocks {
		if len(b.Instrs) == 0 {
			v.errorf(b, "empty block")
			continue
		}
		for i, ins := range b.Instrs {
			v.pos[ins] = i
			if ins.Block != b {
				v.errorf(b, "instruction %d (%s) belongs to another block", i, ins.Op)
			}
			if ins.Op.IsTerminator() && i != len(b.Instrs)-1 {
				v.errorf(b, "terminator %s in the middle of the block", ins.Op)
			}
		}
		if !b.Terminated() {
			v.errorf(b, "block does not end in a terminator")
		}
		for _, ins := range b.Instrs {
			for _, t := range ins.Targets {
				if _, ok := v.index[t]; !ok {
					v.errorf(b, "branch to a block outside the function")
				}
			}
		}
	}
}

func (v *verifier) successors(b *BasicBlock) []int {
	t := b.Terminator()
	if t == nil {
		return nil
	}
	var out []int
	for _, s := range t.Targets {
		if i, ok := v.index[s]; ok {
			out = append(out, i)
		}
	}
	return out
}

func (v *verifier) computeDominators() {
	n := len(v.f.Blocks)
	v.reach = make([]bool, n)
	preds := make([][]int, n)

	var rpo []int
	var visit func(i int)
	visit = func(i int) {
		v.reach[i] = true
		for _, s := range v.successors(v.f.Blocks[i]) {
			if !v.reach[s] {
				visit(s)
			}
		}
		rpo = append(rpo, i)
	}
	visit(0)
	for i, j := 0, len(rpo)-1; i < j; i, j = i+1, j-1 {
		rpo[i], rpo[j] = rpo[j], rpo[i]
	}
	for i, b := range v.f.Blocks {
		if v.reach[i] {
			for _, s := range v.successors(b) {
				preds[s] = append(preds[s], i)
			}
		}
	}

	v.dom = make([][]bool, n)
	for i := range v.dom {
		v.dom[i] = make([]bool, n)
		for d := range v.dom[i] {
			v.dom[i][d] = i != 0 || d == 0
		}
	}
	for changed := true; changed; {
		changed = false
		for _, b := range rpo[1:] {
			for d := 0; d < n; d++ {
				in := d == b
				if !in {
					in = true
					for _, p := range preds[b] {
						in = in && v.dom[p][d]
					}
				}
				if in != v.dom[b][d] {
					v.dom[b][d] = in
					changed = true
				}
			}
		}
	}
}

func (v *verifier) checkBlock(bi int, b *BasicBlock) {
	for i, ins := range b.Instrs {
		if v.reach[bi] {
			for _, a := range ins.Args {
				v.checkOperand(bi, b, i, a)
			}
		}
		v.checkTypes(b, ins)
	}
}

func (v *verifier) checkOperand(bi int, b *BasicBlock, at int, a *Value) {
	if a == nil {
		v.errorf(b, "missing operand")
		return
	}
	switch a.Op {
	case OpConst:
		return
	case OpGlobal:
		if a.Global == nil {
			v.errorf(b, "global reference @%s without a global", a.Name)
		}
		return
	case OpParam:
		for _, p := range v.f.Params {
			if p == a {
				return
			}
		}
		v.errorf(b, "parameter %%%s of another function", a.Name)
		return
	}

	di, ok := v.index[a.Block]
	if a.Block == nil || !ok {
		v.errorf(b, "operand %s is not defined in this function", a.Op)
		return
	}
	if di == bi {
		if v.pos[a] >= at {
			v.errorf(b, "operand %s used before its definition", a.Op)
		}
		return
	}
	if !v.dom[bi][di] {
		v.errorf(b, "operand %s defined in %%%s does not dominate its use", a.Op, a.Block.Name)
	}
}

func (v *verifier) arity(b *BasicBlock, ins *Value, n int) bool {
	if len(ins.Args) != n {
		v.errorf(b, "%s takes %d operands, has %d", ins.Op, n, len(ins.Args))
		return false
	}
	for _, a := range ins.Args {
		if a == nil {
			return false
		}
	}
	return true
}

func (v *verifier) checkTypes(b *BasicBlock, ins *Value) {
	switch op := ins.Op; {
	case op == OpAlloca:
		if !ins.Type.IsPointer() {
			v.errorf(b, "alloca of non-pointer type %s", ins.Type)
		}
	case op == OpLoad:
		if v.arity(b, ins, 1) {
			ptr := ins.Args[0]
			if !ptr.Type.IsPointer() || !ptr.Type.ElemType().Equal(ins.Type) {
				v.errorf(b, "load of %s through %s", ins.Type, ptr.Type)
			}
		}
	case op == OpStore:
		if v.arity(b, ins, 2) {
			val, ptr := ins.Args[0], ins.Args[1]
			if !ptr.Type.IsPointer() || !ptr.Type.ElemType().Equal(val.Type) {
				v.errorf(b, "store of %s through %s", val.Type, ptr.Type)
			}
		}
	case op.IsBinary():
		if v.arity(b, ins, 2) {
			l, r := ins.Args[0], ins.Args[1]
			if !l.Type.IsInteger() || !l.Type.Equal(r.Type) || !l.Type.Equal(ins.Type) {
				v.errorf(b, "%s on %s and %s", op, l.Type, r.Type)
			}
		}
	case op.IsCompare():
		if v.arity(b, ins, 2) {
			l, r := ins.Args[0], ins.Args[1]
			if !l.Type.IsInteger() || !l.Type.Equal(r.Type) || ins.Type.K != types.Int1 {
				v.errorf(b, "icmp %s on %s and %s", op, l.Type, r.Type)
			}
		}
	case op == OpSExt || op == OpZExt:
		if v.arity(b, ins, 1) {
			from := ins.Args[0].Type
			if !from.IsInteger() || !ins.Type.IsInteger() || from.Bits() >= ins.Type.Bits() {
				v.errorf(b, "%s from %s to %s", op, from, ins.Type)
			}
		}
	case op == OpCall:
		v.checkCall(b, ins)
	case op == OpJmp:
		if len(ins.Targets) != 1 {
			v.errorf(b, "unconditional branch with %d targets", len(ins.Targets))
		}
	case op == OpJnz:
		if v.arity(b, ins, 1) && ins.Args[0].Type.K != types.Int1 {
			v.errorf(b, "branch condition of type %s", ins.Args[0].Type)
		}
		if len(ins.Targets) != 2 {
			v.errorf(b, "conditional branch with %d targets", len(ins.Targets))
		}
	case op == OpRet:
		if v.f.Ret.IsVoid() {
			if len(ins.Args) != 0 {
				v.errorf(b, "value returned from void function")
			}
		} else if v.arity(b, ins, 1) && !ins.Args[0].Type.Equal(v.f.Ret) {
			v.errorf(b, "ret %s in function returning %s", ins.Args[0].Type, v.f.Ret)
		}
	default:
		v.errorf(b, "%s is not an instruction", op)
	}
}

func (v *verifier) checkCall(b *BasicBlock, ins *Value) {
	callee := ins.Callee
	if callee == nil {
		v.errorf(b, "call without a callee")
		return
	}
	if len(ins.Args) != len(callee.Params) {
		v.errorf(b, "call to @%s with %d arguments, want %d", callee.Name, len(ins.Args), len(callee.Params))
		return
	}
	for i, a := range ins.Args {
		if a != nil && !a.Type.Equal(callee.Params[i].Type) {
			v.errorf(b, "argument %d of @%s has type %s, want %s", i+1, callee.Name, a.Type, callee.Params[i].Type)
		}
	}
	if !ins.Type.Equal(callee.Ret) {
		v.errorf(b, "call to @%s typed %s, returns %s", callee.Name, ins.Type, callee.Ret)
	}
}
