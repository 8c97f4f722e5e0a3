// Package interp implements the tree-walking evaluator: a stack of lexical
// Environment frames plus a recursive evaluator that threads a Result sum
// type through every statement to carry break/continue/return/error
// without a separate exception mechanism.
package interp

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sam-decook/loxi/internal/ast"
	"github.com/sam-decook/loxi/internal/token"
	"github.com/sam-decook/loxi/internal/value"
)

// Interpreter owns the global environment and the sink for `print` output.
type Interpreter struct {
	env *Environment
	out io.Writer
}

// New constructs an Interpreter with a fresh global environment bound to
// the single built-in, clock.
func New(out io.Writer) *Interpreter {
	it := &Interpreter{env: NewEnvironment(), out: out}
	it.env.Define("clock", value.NativeFunctionValue("clock", nativeClock))
	return it
}

func nativeClock() value.Value {
	return value.NumberValue(float64(time.Now().UnixNano()) / 1e9)
}

// Run executes every top-level declaration in order and returns the first
// non-Ok Result, or an Ok(nil) if the whole program completed normally.
func (it *Interpreter) Run(prog *ast.Program) Result {
	for _, d := range prog.Decls {
		r := it.execStmt(d)
		if r.Kind != ResOk {
			return r
		}
	}
	return okResult(value.NilValue())
}

// ---------------- Statements ----------------

func (it *Interpreter) execStmt(s ast.Stmt) Result {
	switch n := s.(type) {
	case *ast.ExprStmt:
		_, err := it.evalExpr(n.Expr)
		if err != nil {
			return errResult(err)
		}
		return okResult(value.NilValue())

	case *ast.Print:
		v, err := it.evalExpr(n.Expr)
		if err != nil {
			return errResult(err)
		}
		fmt.Fprintln(it.out, value.Format(v))
		return okResult(value.NilValue())

	case *ast.VarDecl:
		v := value.NilValue()
		if n.Initializer != nil {
			var err *RuntimeError
			v, err = it.evalExpr(n.Initializer)
			if err != nil {
				return errResult(err)
			}
		}
		it.env.Define(n.Name, v)
		return okResult(value.NilValue())

	case *ast.FunDecl:
		it.env.Define(n.Name, value.UserFunctionValue(n.Name, n))
		return okResult(value.NilValue())

	case *ast.Block:
		return it.execBlock(n)

	case *ast.If:
		return it.execIf(n)

	case *ast.For:
		return it.execFor(n)

	case *ast.Break:
		return breakResult()

	case *ast.Continue:
		return continueResult()

	case *ast.Return:
		v := value.NilValue()
		if n.Value != nil {
			var err *RuntimeError
			v, err = it.evalExpr(n.Value)
			if err != nil {
				return errResult(err)
			}
		}
		return returnResult(v)

	default:
		panic(fmt.Sprintf("interp: unhandled statement kind %T", s))
	}
}

// execBlock pushes a fresh frame, runs each statement in order, and pops —
// on every exit path, including an early non-Ok result.
func (it *Interpreter) execBlock(b *ast.Block) Result {
	it.env.Push()
	defer it.env.Pop()

	for _, d := range b.Decls {
		r := it.execStmt(d)
		if r.Kind != ResOk {
			return r
		}
	}
	return okResult(value.NilValue())
}

func (it *Interpreter) execIf(n *ast.If) Result {
	cond, err := it.evalExpr(n.Cond)
	if err != nil {
		return errResult(err)
	}
	if value.IsTruthy(cond) {
		return it.execStmt(n.Then)
	}
	if n.Else != nil {
		return it.execStmt(n.Else)
	}
	return okResult(value.NilValue())
}

// execFor covers both `for` and `while` (the parser desugars `while` into a
// For with nil Init/Incr). The increment runs on the Continue path as well
// as on normal completion; Break ends the loop with Ok(nil); Error and
// Return propagate immediately.
func (it *Interpreter) execFor(n *ast.For) Result {
	if n.Init != nil {
		if r := it.execStmt(n.Init); r.Kind != ResOk {
			return r
		}
	}

	for {
		if n.Cond != nil {
			cond, err := it.evalExpr(n.Cond)
			if err != nil {
				return errResult(err)
			}
			if !value.IsTruthy(cond) {
				break
			}
		}

		r := it.execStmt(n.Body)
		switch r.Kind {
		case ResError, ResReturn:
			return r
		case ResBreak:
			return okResult(value.NilValue())
		case ResContinue, ResOk:
			// fall through to the increment
		}

		if n.Incr != nil {
			if _, err := it.evalExpr(n.Incr); err != nil {
				return errResult(err)
			}
		}
	}
	return okResult(value.NilValue())
}

// ---------------- Expressions ----------------

func (it *Interpreter) evalExpr(e ast.Expr) (value.Value, *RuntimeError) {
	switch n := e.(type) {
	case *ast.Literal:
		return it.evalLiteral(n)
	case *ast.Grouping:
		return it.evalExpr(n.Inner)
	case *ast.Unary:
		return it.evalUnary(n)
	case *ast.Binary:
		return it.evalBinary(n)
	case *ast.Identifier:
		v, ok := it.env.Get(n.Name)
		if !ok {
			return value.NilValue(), runtimeErr(n.Tok, "Undefined variable '%s'.", n.Name)
		}
		return v, nil
	case *ast.Assignment:
		return it.evalAssignment(n)
	case *ast.LogicOr:
		left, err := it.evalExpr(n.Left)
		if err != nil {
			return value.NilValue(), err
		}
		if value.IsTruthy(left) {
			return value.BoolValue(true), nil
		}
		right, err := it.evalExpr(n.Right)
		if err != nil {
			return value.NilValue(), err
		}
		return value.BoolValue(value.IsTruthy(right)), nil
	case *ast.LogicAnd:
		left, err := it.evalExpr(n.Left)
		if err != nil {
			return value.NilValue(), err
		}
		if !value.IsTruthy(left) {
			return value.BoolValue(false), nil
		}
		right, err := it.evalExpr(n.Right)
		if err != nil {
			return value.NilValue(), err
		}
		return value.BoolValue(value.IsTruthy(right)), nil
	case *ast.Call:
		return it.evalCall(n)
	default:
		panic(fmt.Sprintf("interp: unhandled expression kind %T", e))
	}
}

func (it *Interpreter) evalLiteral(n *ast.Literal) (value.Value, *RuntimeError) {
	switch n.Tok.Kind {
	case token.True:
		return value.BoolValue(true), nil
	case token.False:
		return value.BoolValue(false), nil
	case token.Nil:
		return value.NilValue(), nil
	case token.String:
		return value.StringValue(n.Text), nil
	case token.Number:
		f, _ := strconv.ParseFloat(n.Text, 64)
		return value.NumberValue(f), nil
	default:
		panic("interp: unhandled literal token kind")
	}
}

func (it *Interpreter) evalUnary(n *ast.Unary) (value.Value, *RuntimeError) {
	right, err := it.evalExpr(n.Right)
	if err != nil {
		return value.NilValue(), err
	}
	switch n.Op.Kind {
	case token.Bang:
		return value.BoolValue(!value.IsTruthy(right)), nil
	case token.Minus:
		if right.Kind != value.Number {
			return value.NilValue(), runtimeErr(n.Op, "Operand must be a number, got %s.", right.Kind)
		}
		return value.NumberValue(-right.Num), nil
	default:
		panic("interp: unhandled unary operator")
	}
}

func (it *Interpreter) evalBinary(n *ast.Binary) (value.Value, *RuntimeError) {
	left, err := it.evalExpr(n.Left)
	if err != nil {
		return value.NilValue(), err
	}
	right, err := it.evalExpr(n.Right)
	if err != nil {
		return value.NilValue(), err
	}

	switch n.Op.Kind {
	case token.Plus:
		if left.Kind == value.String && right.Kind == value.String {
			return value.StringValue(left.Str + right.Str), nil
		}
		if left.Kind == value.Number && right.Kind == value.Number {
			return value.NumberValue(left.Num + right.Num), nil
		}
		return value.NilValue(), runtimeErr(n.Op,
			"Operands to '+' must be two numbers or two strings; got %s and %s.", left.Kind, right.Kind)

	case token.Minus, token.Star, token.Slash, token.Greater, token.GreaterEqual, token.Less, token.LessEqual:
		if left.Kind != value.Number || right.Kind != value.Number {
			side := "left"
			bad := left.Kind
			if left.Kind == value.Number {
				side = "right"
				bad = right.Kind
			}
			return value.NilValue(), runtimeErr(n.Op, "Operand on the %s must be a number, got %s.", side, bad)
		}
		return evalNumericBinary(n.Op.Kind, left.Num, right.Num), nil

	case token.EqualEqual:
		return value.BoolValue(value.Equal(left, right)), nil
	case token.BangEqual:
		return value.BoolValue(!value.Equal(left, right)), nil

	default:
		panic("interp: unhandled binary operator")
	}
}

func evalNumericBinary(k token.Kind, a, b float64) value.Value {
	switch k {
	case token.Minus:
		return value.NumberValue(a - b)
	case token.Star:
		return value.NumberValue(a * b)
	case token.Slash:
		return value.NumberValue(a / b)
	case token.Greater:
		return value.BoolValue(a > b)
	case token.GreaterEqual:
		return value.BoolValue(a >= b)
	case token.Less:
		return value.BoolValue(a < b)
	case token.LessEqual:
		return value.BoolValue(a <= b)
	default:
		panic("interp: unhandled numeric binary operator")
	}
}

// evalAssignment evaluates the right side only if the target name is bound
// somewhere on the environment stack; an unbound name is an error and the
// right side is never evaluated.
func (it *Interpreter) evalAssignment(n *ast.Assignment) (value.Value, *RuntimeError) {
	if _, ok := it.env.Get(n.Target.Name); !ok {
		return value.NilValue(), runtimeErr(n.Target.Tok, "Undefined variable '%s'.", n.Target.Name)
	}
	v, err := it.evalExpr(n.Value)
	if err != nil {
		return value.NilValue(), err
	}
	it.env.Assign(n.Target.Name, v)
	return v, nil
}

// evalCall evaluates the callee and, for a UserFunction, pushes a new frame,
// checks arity exactly, binds each argument left-to-right, then evaluates
// the body block (which pushes its own nested frame per ordinary Block
// semantics). For a NativeFunction, arguments are still evaluated
// left-to-right for their side effects and ordering, but are not passed to
// the native call (arity is unchecked for natives; see DESIGN.md).
func (it *Interpreter) evalCall(n *ast.Call) (value.Value, *RuntimeError) {
	callee, err := it.evalExpr(n.Callee)
	if err != nil {
		return value.NilValue(), err
	}
	if callee.Kind != value.Callable {
		return value.NilValue(), runtimeErr(n.Loc, "Can only call functions.")
	}

	switch callee.CallKd {
	case value.UserFunction:
		decl := callee.Decl.(*ast.FunDecl)
		if arity := value.Arity(callee); len(n.Args) != arity {
			return value.NilValue(), runtimeErr(n.Loc,
				"Expected %d argument(s) to call function \"%s\". %d argument(s) given.",
				arity, callee.Name, len(n.Args))
		}

		args := make([]value.Value, len(n.Args))
		for i, a := range n.Args {
			v, err := it.evalExpr(a)
			if err != nil {
				return value.NilValue(), err
			}
			args[i] = v
		}

		it.env.Push()
		defer it.env.Pop()
		for i, p := range decl.Params {
			it.env.Define(p.Name, args[i])
		}
		r := it.execStmt(decl.Body)

		switch r.Kind {
		case ResError:
			return value.NilValue(), r.Err
		case ResReturn:
			return r.Value, nil
		default: // reaching the end of a function body returns nil
			return value.NilValue(), nil
		}

	case value.NativeFunction:
		for _, a := range n.Args {
			if _, err := it.evalExpr(a); err != nil {
				return value.NilValue(), err
			}
		}
		return callee.Fn(), nil

	default:
		panic("interp: unhandled callable kind")
	}
}
