package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const demoHCL = `
library "demo" {
  struct "point" {
    field "x" { type = "int" }
    field "y" { type = "int" }
  }

  function "version" { args = "none" }
  function "neg" { args = "one" }
  function "sum" {}

  constant "MAX" { value = 42 }
  constant "HUGE" {
    type  = "unsigned long"
    value = 18446744073709551615
  }
  constant "ORIGIN" {
    type  = "struct point"
    value = { x = 1, y = -2 }
  }
  constant "BUILD" {
    type   = "char[8]"
    symbol = "demo_build"
  }

  variable "counter" { type = "int" }
}
`

const demoYAML = `
libraries:
  - name: demo
    structs:
      - name: point
        fields:
          - { name: x, type: int }
          - { name: y, type: int }
    functions:
      - { name: version, args: none }
      - { name: neg, args: one }
      - { name: sum }
    constants:
      - { name: MAX, value: 42 }
      - { name: HUGE, type: unsigned long, value: 18446744073709551615 }
      - name: ORIGIN
        type: struct point
        value: { x: 1, y: -2 }
      - { name: BUILD, type: "char[8]", symbol: demo_build }
    variables:
      - { name: counter, type: int }
`

// demoLibrary is the model both demo manifests decode to.
func demoLibrary() *Library {
	return &Library{
		Name: "demo",
		Structs: []*Struct{{
			Name:   "point",
			Fields: []*StructField{{Name: "x", Type: "int"}, {Name: "y", Type: "int"}},
		}},
		Functions: []*Function{
			{Name: "version", Args: ArgsNone},
			{Name: "neg", Args: ArgsOne},
			{Name: "sum"},
		},
		Constants: []*Constant{
			{Name: "MAX", Value: cty.NumberIntVal(42)},
			{Name: "HUGE", Type: "unsigned long", Value: cty.MustParseNumberVal("18446744073709551615")},
			{Name: "ORIGIN", Type: "struct point", Value: cty.ObjectVal(map[string]cty.Value{
				"x": cty.NumberIntVal(1),
				"y": cty.NumberIntVal(-2),
			})},
			{Name: "BUILD", Type: "char[8]", Symbol: "demo_build", Value: cty.NullVal(cty.DynamicPseudoType)},
		},
		Variables: []*Variable{{Name: "counter", Type: "int"}},
	}
}

// modelOptions compares decoded models, ignoring where declarations came from.
var modelOptions = cmp.Options{
	cmp.Comparer(func(a, b cty.Value) bool { return a.RawEquals(b) }),
	cmpopts.IgnoreFields(Library{}, "Origin"),
	cmpopts.IgnoreFields(Struct{}, "Origin"),
	cmpopts.IgnoreFields(Function{}, "Origin"),
	cmpopts.IgnoreFields(Constant{}, "Origin"),
	cmpopts.IgnoreFields(Variable{}, "Origin"),
}

// demoBindings registers the Go side of the demo library. counter backs the
// "counter" variable.
func demoBindings(counter *int32) *Bindings {
	b := NewBindings()
	b.RegisterFunc("version", func(args ...cty.Value) (cty.Value, error) {
		return cty.StringVal("1.0"), nil
	})
	b.RegisterFunc("neg", func(args ...cty.Value) (cty.Value, error) {
		return args[0].Negate(), nil
	})
	b.RegisterFunc("sum", func(args ...cty.Value) (cty.Value, error) {
		total := cty.Zero
		for _, a := range args {
			total = total.Add(a)
		}
		return total, nil
	})
	b.RegisterConstant("demo_build", func(buf []byte) {
		copy(buf, "v1.2")
	})
	b.RegisterVariable("counter", unsafe.Pointer(counter))
	return b
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
