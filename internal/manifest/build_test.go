package manifest

import (
	"errors"
	"math"
	"math/big"
	"testing"
	"unsafe"

	"github.com/specialistvlad/symlib/internal/ctype"
	"github.com/specialistvlad/symlib/internal/symtab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func buildDemo(t *testing.T, counter *int32) *symtab.Lib {
	t.Helper()
	libs, err := ParseHCL([]byte(demoHCL), "demo.hcl")
	require.NoError(t, err)

	table, err := Build(libs[0], demoBindings(counter))
	require.NoError(t, err)

	lib, err := symtab.New(table, "demo")
	require.NoError(t, err)
	return lib
}

func TestBuild_Demo(t *testing.T) {
	counter := int32(7)
	lib := buildDemo(t, &counter)

	names, err := lib.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"BUILD", "HUGE", "MAX", "ORIGIN", "counter", "neg", "sum", "version"}, names)

	got, err := lib.Get("MAX")
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	got, err = lib.Get("HUGE")
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).SetUint64(math.MaxUint64), got)

	got, err = lib.Get("ORIGIN")
	require.NoError(t, err)
	want := cty.ObjectVal(map[string]cty.Value{"x": cty.NumberIntVal(1), "y": cty.NumberIntVal(-2)})
	assert.True(t, want.RawEquals(got.(cty.Value)), "got %#v", got)

	got, err = lib.Get("BUILD")
	require.NoError(t, err)
	assert.True(t, cty.StringVal("v1.2").RawEquals(got.(cty.Value)), "got %#v", got)
}

func TestBuild_Functions(t *testing.T) {
	counter := int32(0)
	lib := buildDemo(t, &counter)

	call := func(name string, args ...cty.Value) cty.Value {
		t.Helper()
		x, err := lib.Get(name)
		require.NoError(t, err)
		fn, ok := x.(*symtab.Function)
		require.True(t, ok, "%s is a %T", name, x)
		v, err := fn.Call(args...)
		require.NoError(t, err)
		return v
	}

	assert.True(t, cty.StringVal("1.0").RawEquals(call("version")))
	assert.True(t, cty.NumberIntVal(-5).RawEquals(call("neg", cty.NumberIntVal(5))))
	assert.True(t, cty.NumberIntVal(6).RawEquals(call("sum", cty.NumberIntVal(1), cty.NumberIntVal(2), cty.NumberIntVal(3))))

	x, err := lib.Get("version")
	require.NoError(t, err)
	_, err = x.(*symtab.Function).Call(cty.True)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "takes no arguments")
}

func TestBuild_VariableSharesMemory(t *testing.T) {
	counter := int32(7)
	lib := buildDemo(t, &counter)

	got, err := lib.Get("counter")
	require.NoError(t, err)
	assert.True(t, cty.NumberIntVal(7).RawEquals(got.(cty.Value)))

	require.NoError(t, lib.Set("counter", cty.NumberIntVal(-9)))
	assert.Equal(t, int32(-9), counter)

	counter = 11
	got, err = lib.Get("counter")
	require.NoError(t, err)
	assert.True(t, cty.NumberIntVal(11).RawEquals(got.(cty.Value)))

	err = lib.Set("counter", cty.NumberIntVal(math.MaxInt64))
	var convErr *ctype.ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, int32(11), counter)
}

func TestBuild_IntegerConstants(t *testing.T) {
	cases := []struct {
		name  string
		typ   string
		value cty.Value
		want  any
	}{
		{"untyped", "", cty.NumberIntVal(-1), -1},
		{"untyped string", "", cty.StringVal("12"), 12},
		{"min int64", "", cty.NumberIntVal(math.MinInt64), math.MinInt64},
		{"signed typed", "short", cty.NumberIntVal(-300), -300},
		{"unsigned typed", "unsigned char", cty.NumberIntVal(255), 255},
		{"typedef", "size_t", cty.NumberIntVal(4096), 4096},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			lib := &Library{Name: "l", Constants: []*Constant{{Name: "C", Type: tc.typ, Value: tc.value}}}
			table, err := Build(lib, nil)
			require.NoError(t, err)
			require.Len(t, table.Globals, 1)
			assert.Equal(t, symtab.KindIntConstant, table.Globals[0].Kind)
			assert.Equal(t, symtab.NoType, table.Globals[0].Type)

			l, err := symtab.New(table, "l")
			require.NoError(t, err)
			got, err := l.Get("C")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBuild_CharConstantIsTyped(t *testing.T) {
	lib := &Library{Name: "l", Constants: []*Constant{{Name: "SEP", Type: "char", Value: cty.StringVal("/")}}}
	table, err := Build(lib, nil)
	require.NoError(t, err)
	assert.Equal(t, symtab.KindConstant, table.Globals[0].Kind)

	l, err := symtab.New(table, "l")
	require.NoError(t, err)
	got, err := l.Get("SEP")
	require.NoError(t, err)
	assert.True(t, cty.StringVal("/").RawEquals(got.(cty.Value)))
}

func TestBuild_SharedTypeEntries(t *testing.T) {
	var a, b int64
	bindings := NewBindings()
	bindings.RegisterVariable("a", unsafe.Pointer(&a))
	bindings.RegisterVariable("b", unsafe.Pointer(&b))
	lib := &Library{Name: "l", Variables: []*Variable{
		{Name: "a", Type: "long"},
		{Name: "b", Type: "signed long int"},
	}}

	table, err := Build(lib, bindings)
	require.NoError(t, err)
	assert.Equal(t, table.Globals[0].Type, table.Globals[1].Type)
}

func TestBuild_Errors(t *testing.T) {
	fn := func(args ...cty.Value) (cty.Value, error) { return cty.NilVal, nil }

	cases := []struct {
		name    string
		lib     *Library
		wantErr string
	}{
		{
			name:    "duplicate name",
			lib:     &Library{Name: "l", Constants: []*Constant{{Name: "A", Value: cty.NumberIntVal(1)}, {Name: "A", Value: cty.NumberIntVal(2)}}},
			wantErr: "already declared",
		},
		{
			name:    "bad args",
			lib:     &Library{Name: "l", Functions: []*Function{{Name: "f", Args: "two"}}},
			wantErr: "invalid args",
		},
		{
			name:    "missing binding",
			lib:     &Library{Name: "l", Functions: []*Function{{Name: "g"}}},
			wantErr: "no function registered as 'g'",
		},
		{
			name:    "wrong binding kind",
			lib:     &Library{Name: "l", Constants: []*Constant{{Name: "f"}}},
			wantErr: "binding 'f' has kind function",
		},
		{
			name:    "fractional integer constant",
			lib:     &Library{Name: "l", Constants: []*Constant{{Name: "A", Value: cty.NumberFloatVal(1.5)}}},
			wantErr: "not a whole number",
		},
		{
			name:    "integer constant out of range",
			lib:     &Library{Name: "l", Constants: []*Constant{{Name: "A", Value: cty.MustParseNumberVal("18446744073709551616")}}},
			wantErr: "outside the range",
		},
		{
			name:    "value does not fit type",
			lib:     &Library{Name: "l", Constants: []*Constant{{Name: "A", Type: "unsigned char", Value: cty.NumberIntVal(256)}}},
			wantErr: "unsigned char",
		},
		{
			name:    "unknown type",
			lib:     &Library{Name: "l", Constants: []*Constant{{Name: "A", Type: "widget", Value: cty.NumberIntVal(1)}}},
			wantErr: "unknown type 'widget'",
		},
		{
			name:    "unknown struct",
			lib:     &Library{Name: "l", Constants: []*Constant{{Name: "A", Type: "struct nope"}}},
			wantErr: "unknown struct 'nope'",
		},
		{
			name:    "variable without type",
			lib:     &Library{Name: "l", Variables: []*Variable{{Name: "v"}}},
			wantErr: "missing type",
		},
		{
			name:    "void constant",
			lib:     &Library{Name: "l", Constants: []*Constant{{Name: "A", Type: "void"}}},
			wantErr: "zero-sized",
		},
		{
			name: "recursive struct",
			lib: &Library{
				Name:      "l",
				Structs:   []*Struct{{Name: "node", Fields: []*StructField{{Name: "next", Type: "node"}}}},
				Constants: []*Constant{{Name: "A", Type: "node"}},
			},
			wantErr: "contains itself",
		},
		{
			name:    "struct shadows primitive",
			lib:     &Library{Name: "l", Structs: []*Struct{{Name: "int"}}},
			wantErr: "shadows a primitive",
		},
		{
			name:    "oversized array",
			lib:     &Library{Name: "l", Constants: []*Constant{{Name: "A", Type: "int[3000000000000000000]", Value: cty.EmptyTupleVal}}},
			wantErr: "too large",
		},
		{
			name:    "oversized variable",
			lib:     &Library{Name: "l", Variables: []*Variable{{Name: "v", Type: "double[2000000000000000000]"}}},
			wantErr: "too large",
		},
		{
			name:    "struct declared twice",
			lib:     &Library{Name: "l", Structs: []*Struct{{Name: "s"}, {Name: "s"}}},
			wantErr: "declared twice",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			bindings := NewBindings()
			bindings.RegisterFunc("f", fn)

			_, err := Build(tc.lib, bindings)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
			assert.Contains(t, err.Error(), "library 'l'")
		})
	}
}

func TestBuild_ValueOutOfRangeIsConversionError(t *testing.T) {
	lib := &Library{Name: "l", Constants: []*Constant{{Name: "A", Type: "struct p", Value: cty.ObjectVal(map[string]cty.Value{
		"v": cty.NumberIntVal(1 << 40),
	})}}, Structs: []*Struct{{Name: "p", Fields: []*StructField{{Name: "v", Type: "int"}}}}}

	_, err := Build(lib, nil)
	var convErr *ctype.ConversionError
	require.True(t, errors.As(err, &convErr), "got %v", err)
}
