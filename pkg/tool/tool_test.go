package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type echoTool struct{ name string }

func (e *echoTool) Name() string           { return e.name }
func (e *echoTool) Description() string    { return "echoes its arguments" }
func (e *echoTool) Schema() map[string]any { return map[string]any{"type": "object"} }
func (e *echoTool) Invoke(_ context.Context, args map[string]any) Result {
	return Success(map[string]any{"echo": args})
}

func TestRegistryRegisterAndInvoke(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&echoTool{name: "echo"}))

	res := reg.Invoke(context.Background(), "echo", map[string]any{"x": 1})
	require.True(t, res.OK)

	require.Contains(t, res.Data, "echo")
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&echoTool{name: "echo"}))
	require.Error(t, reg.Register(&echoTool{name: "echo"}))
}

func TestRegistryUnknownToolFails(t *testing.T) {
	reg := NewRegistry()
	res := reg.Invoke(context.Background(), "missing", nil)
	require.False(t, res.OK)
	require.Contains(t, res.Reason, "missing")
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&echoTool{name: "b"}))
	require.NoError(t, reg.Register(&echoTool{name: "a"}))

	names := make([]string, 0, 2)
	for _, tl := range reg.List() {
		names = append(names, tl.Name())
	}
	require.ElementsMatch(t, []string{"a", "b"}, names)
}

func TestResultJSON(t *testing.T) {
	ok := Success(map[string]any{"value": 42})
	require.Contains(t, ok.JSON(), `"ok":true`)

	bad := Failure("boom %d", 7)
	require.Contains(t, bad.JSON(), `"ok":false`)
	require.Contains(t, bad.JSON(), "boom 7")
}
