// Package ast defines the tagged-variant AST produced by the parser and
// walked by the evaluator.
//
// Implements this grammar:
//
//	program     := declaration* EOF
//	declaration := varDecl | funDecl | statement
//	varDecl     := "var" IDENT ("=" expression)? ";"
//	funDecl     := "fun" IDENT "(" params? ")" block
//	params      := IDENT ("," IDENT)*
//	statement   := printStmt | block | ifStmt | whileStmt | forStmt
//	             | "break" ";" | "continue" ";" | "return" expression? ";"
//	             | exprStmt
//	block       := "{" declaration* "}"
//	ifStmt      := "if" "(" expression ")" statement ("else" statement)?
//	whileStmt   := "while" "(" expression ")" statement
//	forStmt     := "for" "(" (varDecl | exprStmt | ";")
//	                       expression? ";" expression? ")" statement
//	exprStmt    := expression ";"
//
// Node text (identifier/parameter names, string contents, number text) is
// materialized from the source once, at parse time, by slicing Token.Start/
// Len — nodes themselves never re-slice the source. Tokens are kept
// alongside for diagnostics (line/col) and for dispatch on Kind.
package ast

import (
	"strings"

	"github.com/sam-decook/loxi/internal/token"
)

// Node is the common ancestor of every AST shape.
type Node interface {
	String() string
}

// Expr is any node that produces a Value when evaluated.
type Expr interface {
	Node
	exprNode()
}

// Stmt is any node that has effects (possibly including non-local control)
// when executed.
type Stmt interface {
	Node
	stmtNode()
}

// Param is a function parameter: its declared name plus the token it came
// from, for duplicate/arity diagnostics.
type Param struct {
	Tok  token.Token
	Name string
}

// ---------------- Expressions ----------------

// Literal covers number, string, true, false, and nil constants. Text holds
// the materialized lexeme for Number/String; it is unused for true/false/nil,
// which are identified by Tok.Kind alone.
type Literal struct {
	Tok  token.Token
	Text string
}

func (*Literal) exprNode() {}
func (l *Literal) String() string {
	switch l.Tok.Kind {
	case token.True:
		return "true"
	case token.False:
		return "false"
	case token.Nil:
		return "nil"
	case token.String:
		return "\"" + l.Text + "\""
	default:
		return l.Text
	}
}

type Grouping struct {
	Inner Expr
}

func (*Grouping) exprNode()        {}
func (g *Grouping) String() string { return "(group " + g.Inner.String() + ")" }

type Unary struct {
	Op    token.Token
	Right Expr
}

func (*Unary) exprNode() {}
func (u *Unary) String() string {
	return "(" + opLexeme(u.Op) + " " + u.Right.String() + ")"
}

type Binary struct {
	Left  Expr
	Op    token.Token
	Right Expr
}

func (*Binary) exprNode() {}
func (b *Binary) String() string {
	return "(" + opLexeme(b.Op) + " " + b.Left.String() + " " + b.Right.String() + ")"
}

// Identifier is a bare name reference. It is the only valid lvalue shape
// for Assignment.
type Identifier struct {
	Tok  token.Token
	Name string
}

func (*Identifier) exprNode()        {}
func (i *Identifier) String() string { return i.Name }

type Assignment struct {
	Target *Identifier
	Value  Expr
}

func (*Assignment) exprNode()        {}
func (a *Assignment) String() string { return a.Target.String() + " = " + a.Value.String() }

type LogicOr struct {
	Left, Right Expr
}

func (*LogicOr) exprNode()        {}
func (l *LogicOr) String() string { return "(or " + l.Left.String() + " " + l.Right.String() + ")" }

type LogicAnd struct {
	Left, Right Expr
}

func (*LogicAnd) exprNode() {}
func (l *LogicAnd) String() string {
	return "(and " + l.Left.String() + " " + l.Right.String() + ")"
}

// Call is a function call expression. Loc is the opening '(' token, kept
// for call-site error locations (arity mismatches, non-callable callees).
type Call struct {
	Loc    token.Token
	Callee Expr
	Args   []Expr
}

func (*Call) exprNode() {}
func (c *Call) String() string {
	sb := strings.Builder{}
	sb.WriteString(c.Callee.String())
	sb.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

func opLexeme(t token.Token) string {
	switch t.Kind {
	case token.Bang:
		return "!"
	case token.Minus:
		return "-"
	case token.Plus:
		return "+"
	case token.Star:
		return "*"
	case token.Slash:
		return "/"
	case token.Greater:
		return ">"
	case token.GreaterEqual:
		return ">="
	case token.Less:
		return "<"
	case token.LessEqual:
		return "<="
	case token.EqualEqual:
		return "=="
	case token.BangEqual:
		return "!="
	default:
		return t.Kind.String()
	}
}

// ---------------- Statements ----------------

type ExprStmt struct {
	Expr Expr
}

func (*ExprStmt) stmtNode()        {}
func (e *ExprStmt) String() string { return e.Expr.String() + ";" }

type Print struct {
	Expr Expr
}

func (*Print) stmtNode()        {}
func (p *Print) String() string { return "print " + p.Expr.String() + ";" }

type Block struct {
	Decls []Stmt
}

func (*Block) stmtNode() {}
func (b *Block) String() string {
	sb := strings.Builder{}
	sb.WriteString("{\n")
	for _, d := range b.Decls {
		sb.WriteString("  " + d.String() + "\n")
	}
	sb.WriteByte('}')
	return sb.String()
}

type If struct {
	Cond Expr
	Then Stmt
	Else Stmt // nil if absent
}

func (*If) stmtNode() {}
func (i *If) String() string {
	sb := strings.Builder{}
	sb.WriteString("if (" + i.Cond.String() + ") " + i.Then.String())
	if i.Else != nil {
		sb.WriteString(" else " + i.Else.String())
	}
	return sb.String()
}

// For models both `for` and `while` (while desugars to For with Init/Incr
// nil). A nil Cond means "always true".
type For struct {
	Init Stmt // nil if absent
	Cond Expr // nil if absent
	Incr Expr // nil if absent
	Body Stmt
}

func (*For) stmtNode() {}
func (f *For) String() string {
	cond := "true"
	if f.Cond != nil {
		cond = f.Cond.String()
	}
	return "for (...; " + cond + "; ...) " + f.Body.String()
}

type Break struct {
	Keyword token.Token
}

func (*Break) stmtNode()      {}
func (*Break) String() string { return "break;" }

type Continue struct {
	Keyword token.Token
}

func (*Continue) stmtNode()      {}
func (*Continue) String() string { return "continue;" }

type Return struct {
	Keyword token.Token
	Value   Expr // nil if absent (treated as nil)
}

func (*Return) stmtNode() {}
func (r *Return) String() string {
	if r.Value == nil {
		return "return;"
	}
	return "return " + r.Value.String() + ";"
}

// ---------------- Declarations ----------------

type VarDecl struct {
	NameTok     token.Token
	Name        string
	Initializer Expr // nil if absent
}

func (*VarDecl) stmtNode() {}
func (v *VarDecl) String() string {
	if v.Initializer == nil {
		return "var " + v.Name + ";"
	}
	return "var " + v.Name + " = " + v.Initializer.String() + ";"
}

type FunDecl struct {
	NameTok token.Token
	Name    string
	Params  []Param
	Body    *Block
}

func (*FunDecl) stmtNode() {}
func (f *FunDecl) String() string {
	sb := strings.Builder{}
	sb.WriteString("fun " + f.Name + "(")
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Name)
	}
	sb.WriteString(") ")
	sb.WriteString(f.Body.String())
	return sb.String()
}

// ParamCount satisfies value.FunDeclNode, letting the value package
// describe a user function's arity without importing ast.
func (f *FunDecl) ParamCount() int { return len(f.Params) }

// Program is the root node: an ordered sequence of top-level declarations.
type Program struct {
	Decls []Stmt
}

func (p *Program) String() string {
	sb := strings.Builder{}
	for _, d := range p.Decls {
		sb.WriteString(d.String() + "\n")
	}
	return sb.String()
}
