package interp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sam-decook/loxi/internal/value"
)

func TestGlobalFrameIsPresentAtConstruction(t *testing.T) {
	env := NewEnvironment()
	require.Equal(t, 1, env.Depth())
}

func TestPushPopSymmetry(t *testing.T) {
	env := NewEnvironment()
	before := env.Depth()
	env.Push()
	env.Define("x", value.NumberValue(1))
	env.Pop()
	require.Equal(t, before, env.Depth())
}

func TestAssignWritesToNearestBindingFrame(t *testing.T) {
	env := NewEnvironment()
	env.Define("x", value.NumberValue(1))
	env.Push()
	ok := env.Assign("x", value.NumberValue(2))
	require.True(t, ok)

	v, found := env.Get("x")
	require.True(t, found)
	require.Equal(t, 2.0, v.Num)
	require.Equal(t, 2, env.Depth(), "Assign must not create a new binding in the current frame")
}

func TestAssignToUnboundNameFails(t *testing.T) {
	env := NewEnvironment()
	require.False(t, env.Assign("neverDeclared", value.NumberValue(1)))
}

func TestBlockLocalNotVisibleAfterPop(t *testing.T) {
	env := NewEnvironment()
	env.Push()
	env.Define("local", value.NumberValue(1))
	env.Pop()

	_, found := env.Get("local")
	require.False(t, found)
}
