package testutil

import (
	"testing"

	"github.com/specialistvlad/symlib/internal/symtab"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// RequireLib returns the named library of a successful run.
func RequireLib(t *testing.T, result *HarnessResult, name string) *symtab.Lib {
	t.Helper()
	require.NoError(t, result.Err)
	lib, ok := result.App.Lib(name)
	require.True(t, ok, "library '%s' was not opened; have %v", name, result.App.Libraries())
	return lib
}

// RequireValue gets a typed constant or variable and compares it with want.
func RequireValue(t *testing.T, lib *symtab.Lib, name string, want cty.Value) {
	t.Helper()
	got, err := lib.Get(name)
	require.NoError(t, err)
	v, ok := got.(cty.Value)
	require.True(t, ok, "%s is a %T, not a cty.Value", name, got)
	require.True(t, want.RawEquals(v), "%s: want %#v, got %#v", name, want, v)
}

// RequireCall calls a function symbol and returns its result.
func RequireCall(t *testing.T, lib *symtab.Lib, name string, args ...cty.Value) cty.Value {
	t.Helper()
	got, err := lib.Get(name)
	require.NoError(t, err)
	fn, ok := got.(*symtab.Function)
	require.True(t, ok, "%s is a %T, not a function", name, got)
	v, err := fn.Call(args...)
	require.NoError(t, err)
	return v
}
