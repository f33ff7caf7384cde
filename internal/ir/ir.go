package ir

import (
	"strconv"

	"github.com/Maoyao233/ToyCC/internal/types"
)

type Module struct {
	Name    string
	Globals []*Global
	Funcs   []*Function
}

func NewModule(name string) *Module { return &Module{Name: name} }

// Global is a module-level i32 cell. Addr is the pointer value code refers to.
type Global struct {
	Name string
	Init int32
	Addr *Value
}

func (m *Module) NewGlobal(name string, init int32) *Global {
	g := &Global{Name: name, Init: init}
	g.Addr = &Value{Op: OpGlobal, Type: types.PointerTo(types.Int32T()), Name: name, Global: g}
	m.Globals = append(m.Globals, g)
	return g
}

func (m *Module) Global(name string) *Global {
	for _, g := range m.Globals {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// NewFunction adds a function taking len(params) i32 arguments. Empty
// parameter names are numbered when printed.
func (m *Module) NewFunction(name string, ret types.Type, params []string) *Function {
	f := &Function{Name: name, Ret: ret, names: map[string]bool{}}
	for i, p := range params {
		f.Params = append(f.Params, &Value{
			ID:   ValueID(i),
			Op:   OpParam,
			Type: types.Int32T(),
			Name: f.uniqueName(p),
		})
	}
	f.nextID = ValueID(len(params))
	m.Funcs = append(m.Funcs, f)
	return f
}

func (m *Module) Func(name string) *Function {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

type Function struct {
	Name   string
	Ret    types.Type
	Params []*Value
	Blocks []*BasicBlock

	names  map[string]bool
	nextID ValueID
}

// IsDeclaration reports whether f has no body.
func (f *Function) IsDeclaration() bool { return len(f.Blocks) == 0 }

// NameParams renames the parameters of a function that has no body yet, as
// when a definition follows a forward declaration.
func (f *Function) NameParams(names []string) {
	f.names = map[string]bool{}
	for i, p := range f.Params {
		if i < len(names) {
			p.Name = f.uniqueName(names[i])
		}
	}
}

func (f *Function) Entry() *BasicBlock {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// NewBlock creates a block that is not yet part of f's layout; AppendBlock
// places it. The first block appended is the entry.
func (f *Function) NewBlock(name string) *BasicBlock {
	return &BasicBlock{Name: f.uniqueName(name), parent: f}
}

func (f *Function) AppendBlock(b *BasicBlock) {
	b.parent = f
	f.Blocks = append(f.Blocks, b)
}

// uniqueName returns name, or name with a numeric suffix if it is taken in f.
func (f *Function) uniqueName(name string) string {
	if name == "" {
		return ""
	}
	if f.names == nil {
		f.names = map[string]bool{}
	}
	candidate := name
	for n := 1; f.names[candidate]; n++ {
		candidate = name + strconv.Itoa(n)
	}
	f.names[candidate] = true
	return candidate
}

func addEdge(pred, succ *BasicBlock) {
	for _, s := range pred.Succs {
		if s == succ {
			return
		}
	}
	pred.Succs = append(pred.Succs, succ)
	succ.Preds = append(succ.Preds, pred)
}

type BasicBlock struct {
	Name   string
	Instrs []*Value
	Preds  []*BasicBlock
	Succs  []*BasicBlock

	parent *Function
}

func (b *BasicBlock) Parent() *Function { return b.parent }

func (b *BasicBlock) Terminator() *Value {
	if len(b.Instrs) == 0 {
		return nil
	}
	if last := b.Instrs[len(b.Instrs)-1]; last.Op.IsTerminator() {
		return last
	}
	return nil
}

func (b *BasicBlock) Terminated() bool { return b.Terminator() != nil }

type ValueID int

// Value is both an instruction and the result it produces. Constants,
// parameters and global addresses have no Block.
type Value struct {
	ID    ValueID
	Op    Op
	Type  types.Type
	Args  []*Value
	Const int32
	Name  string

	Global  *Global
	Callee  *Function
	Targets []*BasicBlock // jmp: [dest]; jnz: [then, else]
	Block   *BasicBlock
}

func (v *Value) IsConst() bool { return v.Op == OpConst }

type Op int

const (
	OpConst Op = iota
	OpParam
	OpGlobal
	OpAlloca
	OpLoad
	OpStore
	OpAdd
	OpSub
	OpMul
	OpSDiv
	OpSRem
	OpShl
	OpAShr
	OpAnd
	OpOr
	OpXor
	// comparisons produce i1
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpSExt
	OpZExt
	OpCall
	OpJmp // unconditional branch to Targets[0]
	OpJnz // Args[0] selects Targets[0] when true, Targets[1] otherwise
	OpRet // Args is empty for a void return
)

var opNames = [...]string{
	OpConst:  "const",
	OpParam:  "param",
	OpGlobal: "global",
	OpAlloca: "alloca",
	OpLoad:   "load",
	OpStore:  "store",
	OpAdd:    "add",
	OpSub:    "sub",
	OpMul:    "mul",
	OpSDiv:   "sdiv",
	OpSRem:   "srem",
	OpShl:    "shl",
	OpAShr:   "ashr",
	OpAnd:    "and",
	OpOr:     "or",
	OpXor:    "xor",
	OpEq:     "eq",
	OpNe:     "ne",
	OpLt:     "slt",
	OpLe:     "sle",
	OpGt:     "sgt",
	OpGe:     "sge",
	OpSExt:   "sext",
	OpZExt:   "zext",
	OpCall:   "call",
	OpJmp:    "br",
	OpJnz:    "br",
	OpRet:    "ret",
}

func (op Op) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return "Op(" + strconv.Itoa(int(op)) + ")"
	}
	return opNames[op]
}

func (op Op) IsTerminator() bool { return op == OpJmp || op == OpJnz || op == OpRet }
func (op Op) IsBinary() bool     { return op >= OpAdd && op <= OpXor }
func (op Op) IsCompare() bool    { return op >= OpEq && op <= OpGe }
