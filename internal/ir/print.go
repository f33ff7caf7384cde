package ir

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Fprint writes m as LLVM-style assembly.
func Fprint(w io.Writer, m *Module) error {
	_, err := io.WriteString(w, m.String())
	return err
}

func (m *Module) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "; ModuleID = '%s'\n", m.Name)
	if len(m.Globals) > 0 {
		sb.WriteByte('\n')
	}
	for _, g := range m.Globals {
		fmt.Fprintf(&sb, "@%s = global i32 %d\n", g.Name, g.Init)
	}
	for _, f := range m.Funcs {
		sb.WriteByte('\n')
		sb.WriteString(f.String())
	}
	return sb.String()
}

// slots numbers the unnamed values of a function in definition order.
type slots map[*Value]int

func (s slots) ref(v *Value) string {
	switch {
	case v == nil:
		return "<nil>"
	case v.Op == OpConst:
		if v.Type.Bits() == 1 {
			return strconv.FormatBool(v.Const != 0)
		}
		return strconv.FormatInt(int64(v.Const), 10)
	case v.Op == OpGlobal:
		return "@" + v.Name
	case v.Name != "":
		return "%" + v.Name
	}
	if n, ok := s[v]; ok {
		return "%" + strconv.Itoa(n)
	}
	return "%<badref>"
}

func (s slots) typed(v *Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.Type.String() + " " + s.ref(v)
}

func (f *Function) String() string {
	var sb strings.Builder
	if f.IsDeclaration() {
		params := make([]string, len(f.Params))
		for i, p := range f.Params {
			params[i] = p.Type.String()
		}
		fmt.Fprintf(&sb, "declare %s @%s(%s)\n", f.Ret, f.Name, strings.Join(params, ", "))
		return sb.String()
	}

	s := slots{}
	next := 0
	for _, p := range f.Params {
		if p.Name == "" {
			s[p] = next
			next++
		}
	}
	for _, b := range f.Blocks {
		for _, ins := range b.Instrs {
			if ins.Name == "" && !ins.Type.IsVoid() {
				s[ins] = next
				next++
			}
		}
	}

	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = s.typed(p)
	}
	fmt.Fprintf(&sb, "define %s @%s(%s) {\n", f.Ret, f.Name, strings.Join(params, ", "))
	for i, b := range f.Blocks {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(b.Name + ":\n")
		for _, ins := range b.Instrs {
			sb.WriteString("  " + s.instr(ins) + "\n")
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

func (s slots) instr(v *Value) string {
	var text string
	arg := func(i int) *Value {
		if i < len(v.Args) {
			return v.Args[i]
		}
		return nil
	}
	target := func(i int) string {
		if i < len(v.Targets) && v.Targets[i] != nil {
			return "label %" + v.Targets[i].Name
		}
		return "label <nil>"
	}

	switch op := v.Op; {
	case op == OpAlloca:
		text = "alloca " + v.Type.ElemType().String()
	case op == OpLoad:
		text = fmt.Sprintf("load %s, %s", v.Type, s.typed(arg(0)))
	case op == OpStore:
		return fmt.Sprintf("store %s, %s", s.typed(arg(0)), s.typed(arg(1)))
	case op.IsBinary():
		text = fmt.Sprintf("%s %s, %s", op, s.typed(arg(0)), s.ref(arg(1)))
	case op.IsCompare():
		text = fmt.Sprintf("icmp %s %s, %s", op, s.typed(arg(0)), s.ref(arg(1)))
	case op == OpSExt || op == OpZExt:
		text = fmt.Sprintf("%s %s to %s", op, s.typed(arg(0)), v.Type)
	case op == OpCall:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = s.typed(a)
		}
		name := "<nil>"
		if v.Callee != nil {
			name = v.Callee.Name
		}
		text = fmt.Sprintf("call %s @%s(%s)", v.Type, name, strings.Join(args, ", "))
		if v.Type.IsVoid() {
			return text
		}
	case op == OpJmp:
		return "br " + target(0)
	case op == OpJnz:
		return fmt.Sprintf("br %s, %s, %s", s.typed(arg(0)), target(0), target(1))
	case op == OpRet:
		if len(v.Args) == 0 {
			return "ret void"
		}
		return "ret " + s.typed(arg(0))
	default:
		return "; unknown " + op.String()
	}
	return s.ref(v) + " = " + text
}
