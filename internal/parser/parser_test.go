package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sam-decook/loxi/internal/ast"
	"github.com/sam-decook/loxi/internal/parser"
)

func parse(t *testing.T, src string) (*ast.Program, []parser.Diagnostic) {
	t.Helper()
	p := parser.New("test.lox", []byte(src))
	return p.Parse()
}

func parseOK(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, diags := parse(t, src)
	require.Empty(t, diags, "unexpected diagnostics for %q", src)
	return prog
}

func TestTermLeftAssociative(t *testing.T) {
	prog := parseOK(t, "a - b - c;")
	require.Len(t, prog.Decls, 1)
	es := prog.Decls[0].(*ast.ExprStmt)
	outer := es.Expr.(*ast.Binary)
	inner, ok := outer.Left.(*ast.Binary)
	require.True(t, ok, "left operand of outer binary should itself be a binary (a-b)")
	require.IsType(t, &ast.Identifier{}, inner.Left)
	require.IsType(t, &ast.Identifier{}, inner.Right)
	require.IsType(t, &ast.Identifier{}, outer.Right)
}

func TestAssignmentRightAssociative(t *testing.T) {
	prog := parseOK(t, "a = b = c;")
	es := prog.Decls[0].(*ast.ExprStmt)
	outer := es.Expr.(*ast.Assignment)
	require.Equal(t, "a", outer.Target.Name)
	inner, ok := outer.Value.(*ast.Assignment)
	require.True(t, ok, "value of outer assignment should itself be an assignment (b=c)")
	require.Equal(t, "b", inner.Target.Name)
}

func TestLogicOrRightAssociative(t *testing.T) {
	prog := parseOK(t, "a or b or c;")
	es := prog.Decls[0].(*ast.ExprStmt)
	outer := es.Expr.(*ast.LogicOr)
	require.IsType(t, &ast.Identifier{}, outer.Left)
	_, ok := outer.Right.(*ast.LogicOr)
	require.True(t, ok, "right operand should itself be a LogicOr (b or c)")
}

func TestDanglingElseBindsToNearestIf(t *testing.T) {
	prog := parseOK(t, "if (a) if (b) c; else d;")
	outer := prog.Decls[0].(*ast.If)
	inner, ok := outer.Then.(*ast.If)
	require.True(t, ok)
	require.NotNil(t, inner.Else, "else should bind to the inner if")
	require.Nil(t, outer.Else)
}

func TestWhileDesugarsToFor(t *testing.T) {
	prog := parseOK(t, "while (true) print 1;")
	f, ok := prog.Decls[0].(*ast.For)
	require.True(t, ok)
	require.Nil(t, f.Init)
	require.Nil(t, f.Incr)
}

func TestForDesugarsIntoBlockWithSingleFor(t *testing.T) {
	prog := parseOK(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	block, ok := prog.Decls[0].(*ast.Block)
	require.True(t, ok)
	require.Len(t, block.Decls, 1)
	f, ok := block.Decls[0].(*ast.For)
	require.True(t, ok)
	require.NotNil(t, f.Init)
	require.NotNil(t, f.Cond)
	require.NotNil(t, f.Incr)
}

func TestForMissingClausesBecomeNil(t *testing.T) {
	prog := parseOK(t, "for (;;) print 1;")
	block := prog.Decls[0].(*ast.Block)
	f := block.Decls[0].(*ast.For)
	require.Nil(t, f.Init)
	require.Nil(t, f.Cond)
	require.Nil(t, f.Incr)
}

func TestBreakOutsideLoopIsParseError(t *testing.T) {
	_, diags := parse(t, "break;")
	require.NotEmpty(t, diags)
	require.Contains(t, diags[0].Message, "break must be inside a loop")
}

func TestContinueOutsideLoopIsParseError(t *testing.T) {
	_, diags := parse(t, "continue;")
	require.NotEmpty(t, diags)
	require.Contains(t, diags[0].Message, "continue must be inside a loop")
}

func TestReturnOutsideFunctionIsParseError(t *testing.T) {
	_, diags := parse(t, "return 1;")
	require.NotEmpty(t, diags)
	require.Contains(t, diags[0].Message, "return must be inside a function")
}

func TestBreakInsideLoopIsAllowed(t *testing.T) {
	_, diags := parse(t, "while (true) { break; }")
	require.Empty(t, diags)
}

func TestReturnInsideFunctionIsAllowed(t *testing.T) {
	_, diags := parse(t, "fun f() { return 1; }")
	require.Empty(t, diags)
}

func TestDuplicateParameterNameIsParseError(t *testing.T) {
	_, diags := parse(t, "fun f(a, a) {}")
	require.NotEmpty(t, diags)
	require.Contains(t, diags[0].Message, "Duplicated parameter name")
}

func TestAssignmentToNonVariableIsParseError(t *testing.T) {
	_, diags := parse(t, "1 = 2;")
	require.NotEmpty(t, diags)
	require.Contains(t, diags[0].Message, "Cannot assign value")
}

func TestParserStopsAtFirstError(t *testing.T) {
	prog, diags := parse(t, "break; print 1;")
	require.Len(t, diags, 1)
	require.Empty(t, prog.Decls, "no declarations should be collected after the first error")
}

func TestCallExpression(t *testing.T) {
	prog := parseOK(t, "f(1, 2, 3);")
	es := prog.Decls[0].(*ast.ExprStmt)
	call := es.Expr.(*ast.Call)
	require.Len(t, call.Args, 3)
}
