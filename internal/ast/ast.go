package ast

// Node is implemented by every declaration, statement and expression.
// The set of node kinds is closed: consumers switch over the concrete types.
type Node interface {
	Kind() string
}

type Decl interface {
	Node
	isDecl()
}

type Stmt interface {
	Node
	isStmt()
}

// Expr carries the value category of an expression. Both flags are a pure
// function of the (immutable) subtree.
type Expr interface {
	Node
	IsConst() bool
	IsLvalue() bool
	isExpr()
}

var (
	_ Decl = (*TranslationUnitDecl)(nil)
	_ Decl = (*VarDecl)(nil)
	_ Decl = (*ParmVarDecl)(nil)
	_ Decl = (*FunctionDecl)(nil)

	_ Stmt = (*CompoundStmt)(nil)
	_ Stmt = (*IfStmt)(nil)
	_ Stmt = (*WhileStmt)(nil)
	_ Stmt = (*ReturnStmt)(nil)
	_ Stmt = (*DeclStmt)(nil)
	_ Stmt = (*ValueStmt)(nil)
	_ Stmt = (*NullStmt)(nil)

	_ Expr = (*IntegerLiteral)(nil)
	_ Expr = (*DeclRefExpr)(nil)
	_ Expr = (*BinaryOperator)(nil)
	_ Expr = (*UnaryOperator)(nil)
	_ Expr = (*ParenExpr)(nil)
	_ Expr = (*CallExpr)(nil)
	_ Expr = (*ImplicitCastExpr)(nil)
)

type BasicType int

const (
	BTInt BasicType = iota
	BTVoid
)

func (t BasicType) String() string {
	if t == BTVoid {
		return "void"
	}
	return "int"
}

// Declarations

// TranslationUnitDecl is the root of every tree.
type TranslationUnitDecl struct {
	Decls []Decl
}

type VarDecl struct {
	Name    string
	Type    BasicType
	HasInit bool
	Init    Expr
}

type ParmVarDecl struct {
	VarDecl
}

// FunctionDecl without a Body is a forward declaration.
type FunctionDecl struct {
	ReturnType BasicType
	Name       string
	Params     []*ParmVarDecl
	Body       *CompoundStmt
}

func (*TranslationUnitDecl) isDecl() {}
func (*VarDecl) isDecl()             {}
func (*ParmVarDecl) isDecl()         {}
func (*FunctionDecl) isDecl()        {}

func (*TranslationUnitDecl) Kind() string { return "TranslationUnitDecl" }
func (*VarDecl) Kind() string             { return "VarDecl" }
func (*ParmVarDecl) Kind() string         { return "ParmVarDecl" }
func (*FunctionDecl) Kind() string        { return "FunctionDecl" }

// Statements

type (
	CompoundStmt struct {
		Body []Stmt
	}

	IfStmt struct {
		Cond Expr
		Then Stmt
		Else Stmt // may be nil
	}

	WhileStmt struct {
		Cond Expr
		Body Stmt
	}

	ReturnStmt struct {
		Value Expr // may be nil
	}

	DeclStmt struct {
		Decls []Decl
	}

	// ValueStmt evaluates X for its side effects.
	ValueStmt struct {
		X Expr
	}

	NullStmt struct{}
)

func (*CompoundStmt) isStmt() {}
func (*IfStmt) isStmt()       {}
func (*WhileStmt) isStmt()    {}
func (*ReturnStmt) isStmt()   {}
func (*DeclStmt) isStmt()     {}
func (*ValueStmt) isStmt()    {}
func (*NullStmt) isStmt()     {}

func (*CompoundStmt) Kind() string { return "CompoundStmt" }
func (*IfStmt) Kind() string       { return "IfStmt" }
func (*WhileStmt) Kind() string    { return "WhileStmt" }
func (*ReturnStmt) Kind() string   { return "ReturnStmt" }
func (*DeclStmt) Kind() string     { return "DeclStmt" }
func (*ValueStmt) Kind() string    { return "ValueStmt" }
func (*NullStmt) Kind() string     { return "NullStmt" }
