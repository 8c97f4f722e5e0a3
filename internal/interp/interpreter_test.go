package interp_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sam-decook/loxi/internal/interp"
	"github.com/sam-decook/loxi/internal/parser"
)

func run(t *testing.T, src string) (stdout string, result interp.Result) {
	t.Helper()
	p := parser.New("test.lox", []byte(src))
	prog, diags := p.Parse()
	require.Empty(t, diags, "unexpected parse diagnostics for %q", src)

	var buf bytes.Buffer
	it := interp.New(&buf)
	res := it.Run(prog)
	return buf.String(), res
}

func TestHelloWorld(t *testing.T) {
	out, res := run(t, `print "Hello, world!";`)
	require.Equal(t, interp.ResOk, res.Kind)
	require.Equal(t, "Hello, world!\n", out)
}

func TestArithmeticPrecedence(t *testing.T) {
	out, res := run(t, `print 2 + 3*10;`)
	require.Equal(t, interp.ResOk, res.Kind)
	require.Equal(t, "32\n", out)
}

func TestBlockScoping(t *testing.T) {
	out, res := run(t, `var x = 1; { var x = 2; print x; } print x;`)
	require.Equal(t, interp.ResOk, res.Kind)
	require.Equal(t, "2\n1\n", out)
}

func TestRecursiveFibonacci(t *testing.T) {
	out, res := run(t, `fun f(n){ if(n<2) return n; return f(n-1)+f(n-2); } print f(10);`)
	require.Equal(t, interp.ResOk, res.Kind)
	require.Equal(t, "55\n", out)
}

func TestForLoopWithContinue(t *testing.T) {
	out, res := run(t, `for (var i=0; i<3; i=i+1) { if (i==1) continue; print i; }`)
	require.Equal(t, interp.ResOk, res.Kind)
	require.Equal(t, "0\n2\n", out)
}

func TestStringConcatenation(t *testing.T) {
	out, res := run(t, `var s = "a"; s = s + "b"; print s;`)
	require.Equal(t, interp.ResOk, res.Kind)
	require.Equal(t, "ab\n", out)
}

func TestAddingNumberAndStringIsRuntimeError(t *testing.T) {
	_, res := run(t, `1 + "x";`)
	require.Equal(t, interp.ResError, res.Kind)
	require.Contains(t, res.Err.Message, "number")
	require.Contains(t, res.Err.Message, "string")
}

func TestUndefinedVariableIsRuntimeError(t *testing.T) {
	_, res := run(t, `print undefinedThing;`)
	require.Equal(t, interp.ResError, res.Kind)
	require.Contains(t, res.Err.Message, "Undefined variable")
}

func TestCallingNonCallableIsRuntimeError(t *testing.T) {
	_, res := run(t, `var x = 1; x();`)
	require.Equal(t, interp.ResError, res.Kind)
	require.Contains(t, res.Err.Message, "call")
}

func TestArityMismatchIsRuntimeError(t *testing.T) {
	_, res := run(t, `fun f(a, b) { return a; } f(1);`)
	require.Equal(t, interp.ResError, res.Kind)
	require.Contains(t, res.Err.Message, "Expected 2 argument")
}

func TestShortCircuitAndDoesNotEvaluateRight(t *testing.T) {
	out, res := run(t, `fun sideEffect() { print "called"; return true; } print false and sideEffect();`)
	require.Equal(t, interp.ResOk, res.Kind)
	require.Equal(t, "false\n", out)
}

func TestShortCircuitOrDoesNotEvaluateRight(t *testing.T) {
	out, res := run(t, `fun sideEffect() { print "called"; return true; } print true or sideEffect();`)
	require.Equal(t, interp.ResOk, res.Kind)
	require.Equal(t, "true\n", out)
}

func TestBreakEndsLoop(t *testing.T) {
	out, res := run(t, `for (var i=0; i<5; i=i+1) { if (i==2) break; print i; }`)
	require.Equal(t, interp.ResOk, res.Kind)
	require.Equal(t, "0\n1\n", out)
}

func TestAssignmentToUndeclaredVariableDoesNotEvaluateRightSide(t *testing.T) {
	out, res := run(t, `fun sideEffect() { print "called"; return 1; } undeclared = sideEffect();`)
	require.Equal(t, interp.ResError, res.Kind)
	require.Empty(t, out, "right side of an assignment to an unbound name must not be evaluated")
}

func TestClockReturnsNumber(t *testing.T) {
	out, res := run(t, `print clock() > 0;`)
	require.Equal(t, interp.ResOk, res.Kind)
	require.Equal(t, "true\n", out)
}

func TestNoClosureAcrossEscapedFunctionValue(t *testing.T) {
	// Functions don't capture their defining environment: once the frame
	// that declared a nested function is popped (its enclosing call
	// returned), the nested function can no longer see that frame's
	// locals, even though it could while still nested inside the live
	// call (see TestDirectlyNestedCallSeesCallersCurrentFrames).
	out, res := run(t, `
		fun makeGetter() {
			var secret = "trapped";
			fun getter() { return secret; }
			return getter;
		}
		var g = makeGetter();
		print g();
	`)
	require.Equal(t, interp.ResError, res.Kind)
	require.Contains(t, res.Err.Message, "Undefined variable")
	require.Empty(t, out)
}

func TestDirectlyNestedCallSeesCallersCurrentFrames(t *testing.T) {
	// A call pushes its fresh frame onto the caller's *current* stack
	// (spec.md §5), so a nested function called synchronously, before its
	// enclosing call returns, still sees the enclosing call's locals —
	// this is the shared-stack model's consequence, distinct from (and not
	// the same defect as) capturing a declaration-site closure.
	out, res := run(t, `
		fun outer() {
			var local = "visible";
			fun inner() { return local; }
			return inner();
		}
		print outer();
	`)
	require.Equal(t, interp.ResOk, res.Kind)
	require.Equal(t, "visible\n", out)
}
