package ast

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Document is one node of the debug dump. Keys keep insertion order so the
// same tree always serializes to the same bytes.
type Document = *orderedmap.OrderedMap[string, any]

// MarshalIndent renders the dump of n as indented JSON. Operator spellings
// are written verbatim, without HTML escaping.
func MarshalIndent(n Node) ([]byte, error) {
	return EncodeIndent(Dump(n))
}

// EncodeIndent encodes v with four-space indentation and no HTML escaping.
// Documents and lists of documents are walked in key order; every other
// value is encoded as a JSON scalar.
func EncodeIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, v, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encode(buf *bytes.Buffer, v any, depth int) error {
	switch v := v.(type) {
	case Document:
		if v == nil {
			buf.WriteString("null")
			return nil
		}
		if v.Len() == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteByte('{')
		for pair := v.Oldest(); pair != nil; pair = pair.Next() {
			if pair != v.Oldest() {
				buf.WriteByte(',')
			}
			newline(buf, depth+1)
			if err := encodeScalar(buf, pair.Key); err != nil {
				return err
			}
			buf.WriteString(": ")
			if err := encode(buf, pair.Value, depth+1); err != nil {
				return err
			}
		}
		newline(buf, depth)
		buf.WriteByte('}')
		return nil
	case []Document:
		if len(v) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			newline(buf, depth+1)
			if err := encode(buf, item, depth+1); err != nil {
				return err
			}
		}
		newline(buf, depth)
		buf.WriteByte(']')
		return nil
	}
	return encodeScalar(buf, v)
}

func encodeScalar(buf *bytes.Buffer, v any) error {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(b.Bytes(), "\n"))
	return nil
}

func newline(buf *bytes.Buffer, depth int) {
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat("    ", depth))
}

// Dump builds the structural document of n: {kind, ...attributes, inner?}.
func Dump(n Node) Document {
	doc := orderedmap.New[string, any]()
	doc.Set("kind", n.Kind())

	switch n := n.(type) {
	case *TranslationUnitDecl:
		setInner(doc, dumpDecls(n.Decls))
	case *VarDecl:
		doc.Set("name", n.Name)
		doc.Set("type", n.Type.String())
		doc.Set("hasInit", n.HasInit)
		if n.HasInit && n.Init != nil {
			setInner(doc, []Document{Dump(n.Init)})
		}
	case *ParmVarDecl:
		doc.Set("name", n.Name)
		doc.Set("type", n.Type.String())
		doc.Set("hasDefault", n.HasInit)
	case *FunctionDecl:
		doc.Set("name", n.Name)
		doc.Set("type", functionType(n))
		var inner []Document
		for _, p := range n.Params {
			inner = append(inner, Dump(p))
		}
		if n.Body != nil {
			inner = append(inner, Dump(n.Body))
		}
		setInner(doc, inner)

	case *CompoundStmt:
		setInner(doc, dumpStmts(n.Body))
	case *IfStmt:
		doc.Set("hasElse", n.Else != nil)
		inner := []Document{Dump(n.Cond), Dump(n.Then)}
		if n.Else != nil {
			inner = append(inner, Dump(n.Else))
		}
		setInner(doc, inner)
	case *WhileStmt:
		setInner(doc, []Document{Dump(n.Cond), Dump(n.Body)})
	case *ReturnStmt:
		if n.Value != nil {
			setInner(doc, []Document{Dump(n.Value)})
		}
	case *DeclStmt:
		setInner(doc, dumpDecls(n.Decls))
	case *ValueStmt:
		setInner(doc, []Document{Dump(n.X)})
	case *NullStmt:

	case *IntegerLiteral:
		doc.Set("type", "int")
		doc.Set("value", strconv.FormatInt(int64(n.Value), 10))
	case *DeclRefExpr:
		doc.Set("name", n.Name)
	case *BinaryOperator:
		doc.Set("opcode", n.Op.String())
		setInner(doc, []Document{Dump(n.LHS), Dump(n.RHS)})
	case *UnaryOperator:
		doc.Set("opcode", n.Op.String())
		doc.Set("isPostfix", n.Op.IsPostfix())
		setInner(doc, []Document{Dump(n.Operand)})
	case *ParenExpr:
		setInner(doc, []Document{Dump(n.Inner)})
	case *CallExpr:
		inner := []Document{Dump(n.Callee)}
		for _, a := range n.Args {
			inner = append(inner, Dump(a))
		}
		setInner(doc, inner)
	case *ImplicitCastExpr:
		doc.Set("valueCategory", "rvalue")
		doc.Set("castKind", n.CastKind)
		setInner(doc, []Document{Dump(n.Operand)})
	}
	return doc
}

func setInner(doc Document, inner []Document) {
	if len(inner) > 0 {
		doc.Set("inner", inner)
	}
}

func dumpDecls(decls []Decl) []Document {
	var out []Document
	for _, d := range decls {
		out = append(out, Dump(d))
	}
	return out
}

func dumpStmts(stmts []Stmt) []Document {
	var out []Document
	for _, s := range stmts {
		out = append(out, Dump(s))
	}
	return out
}

// functionType spells a signature the way the dump shows it, e.g. "int(int, int)".
func functionType(fd *FunctionDecl) string {
	params := make([]string, len(fd.Params))
	for i, p := range fd.Params {
		params[i] = p.Type.String()
	}
	return fd.ReturnType.String() + "(" + strings.Join(params, ", ") + ")"
}
