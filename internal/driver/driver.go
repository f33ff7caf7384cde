// Package driver runs one compilation: tokenize, parse, lower and render.
package driver

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Maoyao233/ToyCC/internal/ast"
	"github.com/Maoyao233/ToyCC/internal/codegen"
	"github.com/Maoyao233/ToyCC/internal/ir"
	"github.com/Maoyao233/ToyCC/internal/lexer"
	"github.com/Maoyao233/ToyCC/internal/parser"
	"github.com/rs/zerolog"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrorBanner is the first line of an artifact whose lowering failed.
const ErrorBanner = "#ERR"

type options struct {
	log zerolog.Logger
}

type Option func(*options)

func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

func newOptions(opts []Option) options {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Result is the outcome of lowering a file that parsed.
type Result struct {
	Module *ir.Module
	Errors []error
}

func (r *Result) OK() bool { return len(r.Errors) == 0 }

// WriteTo renders the artifact: the module text when lowering succeeded,
// otherwise the error banner followed by one error per line.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	if r.OK() {
		sb.WriteString(r.Module.String())
	} else {
		sb.WriteString(ErrorBanner + "\n")
		for _, err := range r.Errors {
			sb.WriteString(err.Error())
			sb.WriteByte('\n')
		}
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

// Compile parses and lowers src. The returned error is the parse error, if
// any; semantic errors are reported through Result.Errors.
func Compile(filename, src string, opts ...Option) (*Result, error) {
	o := newOptions(opts)
	tu, err := parser.ParseFile(filename, src, parser.WithLogger(o.log))
	if err != nil {
		return nil, err
	}

	log := o.log.With().Str("file", filename).Logger()

	m, errs := codegen.Lower(filepath.Base(filename), tu, codegen.WithLogger(log))
	if len(errs) == 0 {
		if err := ir.VerifyModule(m); err != nil {
			errs = append(errs, err)
		}
	}

	log.Debug().
		Int("functions", len(m.Funcs)).
		Int("globals", len(m.Globals)).
		Int("errors", len(errs)).
		Msg("compiled")

	return &Result{Module: m, Errors: errs}, nil
}

// DumpTokens renders the token stream of src as a JSON array of
// {id, content, prop, loc} objects, ids starting at 1.
func DumpTokens(src string) ([]byte, error) {
	toks := lexer.Tokenize(src)
	items := make([]*orderedmap.OrderedMap[string, any], 0, len(toks))
	for i, tok := range toks {
		item := orderedmap.New[string, any]()
		item.Set("id", i+1)
		item.Set("content", tok.Lex)
		item.Set("prop", tok.Type.String())
		item.Set("loc", fmt.Sprintf("%d,%d", tok.Line, tok.Col))
		items = append(items, item)
	}
	return ast.EncodeIndent(items)
}

// DumpAST parses src and renders its tree.
func DumpAST(filename, src string, opts ...Option) ([]byte, error) {
	o := newOptions(opts)
	tu, err := parser.ParseFile(filename, src, parser.WithLogger(o.log))
	if err != nil {
		return nil, err
	}
	return ast.MarshalIndent(tu)
}
