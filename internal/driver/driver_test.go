package driver_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Maoyao233/ToyCC/internal/driver"
	"github.com/Maoyao233/ToyCC/internal/parser"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	res, err := driver.Compile("src/t.c", "int main(){ return 0; }")
	require.NoError(t, err)
	require.True(t, res.OK())

	var buf bytes.Buffer
	n, err := res.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)

	expected := `; ModuleID = 't.c'

define i32 @main() {
entry:
  %retval = alloca i32
  store i32 0, i32* %retval
  br label %return

return:
  %0 = load i32, i32* %retval
  ret i32 %0
}
`
	require.Equal(t, expected, buf.String())
}

func TestCompileSemanticErrors(t *testing.T) {
	res, err := driver.Compile("t.c", "int main(){ x = 1; return f(y); }")
	require.NoError(t, err)
	require.False(t, res.OK())

	var buf bytes.Buffer
	_, err = res.WriteTo(&buf)
	require.NoError(t, err)

	expected := "#ERR\nunknown variable 'x'\nunknown function 'f'\n"
	require.Equal(t, expected, buf.String())
}

func TestCompileParseError(t *testing.T) {
	res, err := driver.Compile("t.c", "int main() { return 0 }")
	require.Nil(t, res)

	var perr *parser.Error
	require.True(t, errors.As(err, &perr))
	require.ErrorIs(t, err, parser.ErrMissingTerminator)
	require.Equal(t, "t.c:1:23: error: expected ';' after return statement", err.Error())
}

func TestCompileLogs(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	_, err := driver.Compile("t.c", "int g; int main(){ return g; }", driver.WithLogger(log))
	require.NoError(t, err)

	out := buf.String()
	t.Log(out)
	assert.Contains(t, out, `"message":"compiled"`)
	assert.Contains(t, out, `"functions":1`)
	assert.Contains(t, out, `"globals":1`)
	assert.Contains(t, out, `"file":"t.c"`)
}

func TestDumpTokens(t *testing.T) {
	out, err := driver.DumpTokens("int x;")
	require.NoError(t, err)

	expected := `[
    {
        "id": 1,
        "content": "int",
        "prop": "kw_int",
        "loc": "1,1"
    },
    {
        "id": 2,
        "content": "x",
        "prop": "identifier",
        "loc": "1,5"
    },
    {
        "id": 3,
        "content": ";",
        "prop": "semi",
        "loc": "1,6"
    },
    {
        "id": 4,
        "content": "",
        "prop": "eof",
        "loc": "2,0"
    }
]`
	require.Equal(t, expected, string(out))
}

func TestDumpTokensKeepsOperatorSpelling(t *testing.T) {
	out, err := driver.DumpTokens("a<b&&c>>=1")
	require.NoError(t, err)
	t.Log(string(out))

	assert.Contains(t, string(out), `"content": "<",`)
	assert.Contains(t, string(out), `"content": "&&",`)
	assert.Contains(t, string(out), `"content": ">>=",`)
	assert.NotContains(t, string(out), `\u00`)
}

func TestDumpASTKeepsOperatorSpelling(t *testing.T) {
	out, err := driver.DumpAST("t.c", "int main(){ return 1<2 && 3>>1; }")
	require.NoError(t, err)

	assert.Contains(t, string(out), `"opcode": "<",`)
	assert.Contains(t, string(out), `"opcode": "&&",`)
	assert.Contains(t, string(out), `"opcode": ">>",`)
}

func TestDumpAST(t *testing.T) {
	out, err := driver.DumpAST("t.c", "int g = 3;")
	require.NoError(t, err)

	expected := `{
    "kind": "TranslationUnitDecl",
    "inner": [
        {
            "kind": "VarDecl",
            "name": "g",
            "type": "int",
            "hasInit": true,
            "inner": [
                {
                    "kind": "IntegerLiteral",
                    "type": "int",
                    "value": "3"
                }
            ]
        }
    ]
}`
	require.Equal(t, expected, string(out))

	_, err = driver.DumpAST("t.c", "int g = ;")
	require.ErrorIs(t, err, parser.ErrUnexpectedToken)
}
