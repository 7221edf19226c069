package manifest

import "github.com/zclconf/go-cty/cty"

// Library is the format-agnostic representation of one library manifest.
type Library struct {
	Name   string
	Origin string

	Structs   []*Struct
	Functions []*Function
	Constants []*Constant
	Variables []*Variable
}

// Struct declares a C struct type usable by name in type spellings.
type Struct struct {
	Name   string
	Fields []*StructField
	Origin string
}

// StructField is one member of a declared struct.
type StructField struct {
	Name string
	Type string
}

// Args values of Function.
const (
	ArgsNone    = "none"
	ArgsOne     = "one"
	ArgsVarArgs = "varargs"
)

// Function declares a callable symbol.
type Function struct {
	Name   string
	Symbol string
	Args   string
	Origin string
}

// Constant declares a constant. Constants without a Type, or with a signed
// or unsigned integer type, are integer constants. A constant without a
// Value takes its reader or filler from the bindings.
type Constant struct {
	Name   string
	Symbol string
	Type   string
	Value  cty.Value
	Origin string
}

// HasValue reports whether the manifest supplies the constant's value.
func (c *Constant) HasValue() bool {
	return !c.Value.IsNull()
}

// Variable declares a mutable global variable.
type Variable struct {
	Name   string
	Symbol string
	Type   string
	Origin string
}

// bindingKey returns the registry name a declaration binds to.
func bindingKey(name, symbol string) string {
	if symbol != "" {
		return symbol
	}
	return name
}
