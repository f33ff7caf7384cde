package codegen_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Maoyao233/ToyCC/internal/codegen"
	"github.com/Maoyao233/ToyCC/internal/ir"
	"github.com/Maoyao233/ToyCC/internal/parser"
	"github.com/kr/pretty"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lower(t *testing.T, src string, opts ...codegen.Option) (*ir.Module, []error) {
	t.Helper()
	tu, err := parser.ParseFile("t.c", src)
	require.NoError(t, err)
	return codegen.Lower("t.c", tu, opts...)
}

func lowerOK(t *testing.T, src string) *ir.Module {
	t.Helper()
	m, errs := lower(t, src)
	require.Empty(t, errs, "%v", errs)
	require.NoError(t, ir.VerifyModule(m))
	return m
}

func messages(errs []error) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

func TestLowerConstantExpression(t *testing.T) {
	m := lowerOK(t, "int main(){ int x = 2 + 3 * 4; return x; }")
	require.Len(t, m.Funcs, 1)

	expected := `define i32 @main() {
entry:
  %retval = alloca i32
  %x = alloca i32
  store i32 14, i32* %x
  %0 = load i32, i32* %x
  store i32 %0, i32* %retval
  br label %return

return:
  %1 = load i32, i32* %retval
  ret i32 %1
}
`
	require.Equal(t, expected, m.Funcs[0].String())
}

func TestLowerWhileLoop(t *testing.T) {
	m := lowerOK(t, `
int sum(int n) {
	int s = 0;
	while (n > 0) {
		s += n;
		n--;
	}
	return s;
}`)

	expected := `define i32 @sum(i32 %n) {
entry:
  %retval = alloca i32
  %n.addr = alloca i32
  %s = alloca i32
  store i32 %n, i32* %n.addr
  store i32 0, i32* %s
  br label %while.cond

while.cond:
  %0 = load i32, i32* %n.addr
  %1 = icmp sgt i32 %0, 0
  br i1 %1, label %while.body, label %while.end

while.body:
  %2 = load i32, i32* %n.addr
  %3 = load i32, i32* %s
  %4 = add i32 %3, %2
  store i32 %4, i32* %s
  %5 = load i32, i32* %n.addr
  %6 = sub i32 %5, 1
  store i32 %6, i32* %n.addr
  br label %while.cond

while.end:
  %7 = load i32, i32* %s
  store i32 %7, i32* %retval
  br label %return

return:
  %8 = load i32, i32* %retval
  ret i32 %8
}
`
	require.Equal(t, expected, m.Func("sum").String())
}

func TestSingleReturnBlock(t *testing.T) {
	m := lowerOK(t, "int f(){ if (1) return 1; return 2; }")
	f := m.Func("f")

	var names []string
	var rets []*ir.BasicBlock
	for _, b := range f.Blocks {
		names = append(names, b.Name)
		terminators := 0
		for _, ins := range b.Instrs {
			if ins.Op.IsTerminator() {
				terminators++
			}
		}
		require.Equal(t, 1, terminators, "block %s", b.Name)
		if b.Terminator().Op == ir.OpRet {
			rets = append(rets, b)
		}
	}

	require.Equal(t, []string{"entry", "if.then", "if.end", "return"}, names)
	require.Len(t, rets, 1)

	var preds []string
	for _, p := range rets[0].Preds {
		preds = append(preds, p.Name)
	}
	require.Equal(t, []string{"if.then", "if.end"}, preds)
}

func TestIfElseLayout(t *testing.T) {
	m := lowerOK(t, "int f(int a){ if (a) return 1; else return 2; }")

	var names []string
	for _, b := range m.Func("f").Blocks {
		names = append(names, b.Name)
	}
	require.Equal(t, []string{"entry", "if.then", "if.else", "if.end", "return"}, names)
	assert.Empty(t, m.Func("f").Blocks[3].Preds)
}

func TestEagerLogicalOperators(t *testing.T) {
	m := lowerOK(t, "int f(int a, int b){ return a && b; }")
	text := m.Func("f").String()
	t.Log(text)

	assert.Contains(t, text, "  %2 = icmp ne i32 %0, 0\n  %3 = icmp ne i32 %1, 0\n  %4 = and i1 %2, %3\n  %5 = zext i1 %4 to i32\n")
}

func TestComparisonOperandsAreSignExtended(t *testing.T) {
	m := lowerOK(t, "int f(int a, int b){ return (a < b) + 1; }")
	text := m.Func("f").String()
	t.Log(text)

	assert.Contains(t, text, "sext i1")
}

func TestIncrementDecrement(t *testing.T) {
	m := lowerOK(t, "int main(){ int i = 5; int j = i++; int k = --i; return j + k; }")
	text := m.Func("main").String()
	t.Log(text)

	lines := strings.Split(text, "\n")
	assert.Contains(t, lines, "  %0 = load i32, i32* %i")
	assert.Contains(t, lines, "  %1 = add i32 %0, 1")
	assert.Contains(t, lines, "  store i32 %1, i32* %i")
	assert.Contains(t, lines, "  store i32 %0, i32* %j")
	assert.Contains(t, lines, "  %3 = sub i32 %2, 1")
	assert.Contains(t, lines, "  store i32 %3, i32* %k")
}

func TestGlobals(t *testing.T) {
	m := lowerOK(t, "int g = 2 * 3; int h; int z = 1 < 2; int main(){ g += 1; return g + h; }")

	require.Len(t, m.Globals, 3)
	assert.Equal(t, int32(6), m.Global("g").Init)
	assert.Equal(t, int32(0), m.Global("h").Init)
	assert.Equal(t, int32(1), m.Global("z").Init)
	assert.Contains(t, m.String(), "@g = global i32 6\n")
	assert.Contains(t, m.Func("main").String(), "load i32, i32* @g")
}

func TestUnfoldedGlobalInitializerIsZero(t *testing.T) {
	for _, init := range []string{"1 / 0", "1 << 40", "-2147483648 / -1"} {
		t.Run(init, func(t *testing.T) {
			m, errs := lower(t, "int g = "+init+"; int main(){ return g; }")
			require.Empty(t, messages(errs))
			require.NoError(t, ir.VerifyModule(m))

			require.NotNil(t, m.Global("g"))
			assert.Equal(t, int32(0), m.Global("g").Init)
			assert.Contains(t, m.String(), "@g = global i32 0\n")
			assert.Contains(t, m.Func("main").String(), "load i32, i32* @g")
		})
	}
}

func TestForwardDeclaration(t *testing.T) {
	m := lowerOK(t, "int f(int); int main(){ return f(1); } int f(int a){ return a; } int f(int b);")

	require.Len(t, m.Funcs, 2)
	f := m.Func("f")
	require.False(t, f.IsDeclaration())
	assert.Equal(t, "a", f.Params[0].Name)
	assert.Contains(t, m.Func("main").String(), "call i32 @f(i32 1)")
}

func TestExternalDeclarationIsPrinted(t *testing.T) {
	m := lowerOK(t, "void put(int); void main(){ put(3); }")

	assert.Contains(t, m.String(), "declare void @put(i32)\n")
	assert.Contains(t, m.Func("main").String(), "  call void @put(i32 3)\n")
	assert.Contains(t, m.Func("main").String(), "  ret void\n")
}

func TestScopes(t *testing.T) {
	t.Run("block locals vanish on exit", func(t *testing.T) {
		_, errs := lower(t, "int main(){ { int y = 1; } return y; }")
		require.Equal(t, []string{"unknown variable 'y'"}, messages(errs))
	})

	t.Run("sibling blocks may reuse a name", func(t *testing.T) {
		m := lowerOK(t, "int main(){ { int y = 1; } { int y = 2; } return 0; }")
		assert.Contains(t, m.Func("main").String(), "%y1 = alloca i32")
	})

	t.Run("outer names are visible and redeclaring them fails", func(t *testing.T) {
		_, errs := lower(t, "int main(){ int x = 1; { x = 2; int x; } return x; }")
		require.Equal(t, []string{"redefinition of 'x'"}, messages(errs))
	})

	t.Run("locals shadow globals", func(t *testing.T) {
		m := lowerOK(t, "int g = 1; int main(){ int g = 2; return g; }")
		assert.NotContains(t, m.Func("main").String(), "@g")
	})

	t.Run("parameters share the body scope", func(t *testing.T) {
		_, errs := lower(t, "int f(int a){ int a; return a; }")
		require.Equal(t, []string{"redefinition of 'a'"}, messages(errs))
	})
}

func TestRedefinitionKeepsOneSlot(t *testing.T) {
	m, errs := lower(t, "int main(){ int a = 1; int a = 2; return a; }")

	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], codegen.ErrRedefined)

	allocas := 0
	for _, ins := range m.Func("main").Entry().Instrs {
		if ins.Op == ir.OpAlloca && strings.HasPrefix(ins.Name, "a") {
			allocas++
		}
	}
	require.Equal(t, 1, allocas)
}

func TestArgumentCount(t *testing.T) {
	type testCase struct {
		name string
		call string
		msg  string
	}

	testCases := []testCase{
		{name: "too few", call: "f(1)", msg: "wrong number of arguments: function 'f' requires 2 arguments, but 1 were given"},
		{name: "too many", call: "f(1, 2, 3)", msg: "wrong number of arguments: function 'f' requires 2 arguments, but 3 were given"},
		{name: "exact", call: "f(1, 2)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, errs := lower(t, "int f(int a, int b){ return a + b; } int main(){ return "+tc.call+"; }")
			if tc.msg == "" {
				require.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			require.ErrorIs(t, errs[0], codegen.ErrArgumentCount)
			require.Equal(t, tc.msg, errs[0].Error())
		})
	}
}

func TestSemanticErrors(t *testing.T) {
	type testCase struct {
		name   string
		input  string
		kinds  []error
		output []string
	}

	testCases := []testCase{
		{
			name:   "unknown variable",
			input:  "int main(){ return y; }",
			kinds:  []error{codegen.ErrUnknownVariable},
			output: []string{"unknown variable 'y'"},
		},
		{
			name:   "unknown function",
			input:  "int main(){ return g(); }",
			kinds:  []error{codegen.ErrUnknownFunction},
			output: []string{"unknown function 'g'"},
		},
		{
			name:   "lowering continues past failed statements",
			input:  "int main(){ x = 1; y = 2; return z; }",
			kinds:  []error{codegen.ErrUnknownVariable, codegen.ErrUnknownVariable, codegen.ErrUnknownVariable},
			output: []string{"unknown variable 'x'", "unknown variable 'y'", "unknown variable 'z'"},
		},
		{
			name:   "both operands fail",
			input:  "int main(){ return a + b; }",
			kinds:  []error{codegen.ErrUnknownVariable, codegen.ErrUnknownVariable},
			output: []string{"unknown variable 'a'", "unknown variable 'b'"},
		},
		{
			name:   "several arguments fail",
			input:  "int f(int a, int b); int main(){ return f(p, q); }",
			kinds:  []error{codegen.ErrUnknownVariable, codegen.ErrUnknownVariable},
			output: []string{"unknown variable 'p'", "unknown variable 'q'"},
		},
		{
			name:   "assignment to a non lvalue",
			input:  "int main(){ int a; a + 1 = 2; ++3; return 0; }",
			kinds:  []error{codegen.ErrLvalueRequired, codegen.ErrLvalueRequired},
			output: []string{"lvalue required as left operand of '='", "lvalue required as operand of '++'"},
		},
		{
			name:   "redefined function",
			input:  "int f(){ return 1; } int f(){ return 2; }",
			kinds:  []error{codegen.ErrRedefinedFunction},
			output: []string{"redefinition of function 'f'"},
		},
		{
			name:   "parameter count mismatch",
			input:  "int f(int); int f(int a, int b);",
			kinds:  []error{codegen.ErrParamCount},
			output: []string{"parameter count mismatch: 'f' declared with 1 parameters, now 2"},
		},
		{
			name:   "conflicting return type",
			input:  "int f(); void f();",
			kinds:  []error{codegen.ErrConflictingTypes},
			output: []string{"conflicting types for 'f': i32 vs void"},
		},
		{
			name:   "global redefined",
			input:  "int g; int g = 1;",
			kinds:  []error{codegen.ErrRedefined},
			output: []string{"redefinition of 'g'"},
		},
		{
			name:   "function and global clash",
			input:  "int f; int f(); int g(); int g;",
			kinds:  []error{codegen.ErrRedefined, codegen.ErrRedefined},
			output: []string{"redefinition of 'f' as a different kind of symbol", "redefinition of 'g' as a different kind of symbol"},
		},
		{
			name:   "void value used",
			input:  "void g(); int main(){ int x = g(); return x; }",
			kinds:  []error{codegen.ErrVoidValue},
			output: []string{"void value not ignored as it ought to be: result of 'g'"},
		},
		{
			name:   "value returned from void function",
			input:  "void h(){ return 1; }",
			kinds:  []error{codegen.ErrReturnValue},
			output: []string{"return value mismatch: void function 'h' should not return a value"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, errs := lower(t, tc.input)
			t.Log(pretty.Sprint(messages(errs)))

			require.Equal(t, tc.output, messages(errs))
			for i, kind := range tc.kinds {
				require.True(t, errors.Is(errs[i], kind), "error %d: %v", i, errs[i])
			}
		})
	}
}

func TestFailedConditionStillLowersBranches(t *testing.T) {
	_, errs := lower(t, "int main(){ if (c) return d; while (e) f = 1; return 0; }")
	require.Equal(t, []string{
		"unknown variable 'c'",
		"unknown variable 'd'",
		"unknown variable 'e'",
		"unknown variable 'f'",
	}, messages(errs))
}

func TestGeneratorLogs(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	_, errs := lower(t, "int main(){ return y; }", codegen.WithLogger(log))
	require.Len(t, errs, 1)

	out := buf.String()
	t.Log(out)
	assert.Contains(t, out, `"message":"semantic error"`)
	assert.Contains(t, out, `"function":"main"`)
	assert.Contains(t, out, `"message":"lowered function"`)
}
