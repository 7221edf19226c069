package symtab

import (
	"fmt"
	"slices"
	"strings"
	"unsafe"

	"github.com/specialistvlad/symlib/internal/ctype"
	"github.com/zclconf/go-cty/cty"
)

// Kind tags a descriptor with how its symbol is materialized.
type Kind int

const (
	KindFuncVarArgs Kind = iota + 1
	KindFuncNoArgs
	KindFuncOneArg
	KindIntConstant
	KindConstant
	KindVariable
)

var kindNames = map[Kind]string{
	KindFuncVarArgs: "function (varargs)",
	KindFuncNoArgs:  "function (no args)",
	KindFuncOneArg:  "function (one arg)",
	KindIntConstant: "integer constant",
	KindConstant:    "constant",
	KindVariable:    "global variable",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Typed reports whether descriptors of this kind carry a type reference.
func (k Kind) Typed() bool {
	return k == KindConstant || k == KindVariable
}

// TypeRef indexes the type table of a Table.
type TypeRef int

// NoType marks descriptors that carry no type reference.
const NoType TypeRef = -1

// Func is the address of a callable symbol.
type Func func(args ...cty.Value) (cty.Value, error)

// IntReader is the address of an integer constant. It stores the constant's
// bits in out and reports whether they are to be read as a negative two's
// complement number.
type IntReader func(out *uint64) (negative bool)

// Filler is the address of a typed constant. It writes the constant's memory
// representation into buf, which is exactly the size of the constant's type.
type Filler func(buf []byte)

// Descriptor describes one exported symbol. Descriptors are never mutated.
type Descriptor struct {
	Name    string
	Kind    Kind
	Type    TypeRef
	Address any
}

// Realizer turns a type table index into a realized type.
type Realizer interface {
	Realize(index int) (*ctype.Type, error)
}

// Table is the static descriptor table of one library.
type Table struct {
	// Globals is sorted by name; names are unique.
	Globals []Descriptor

	// Types realizes the type references of typed descriptors.
	Types Realizer
}

// NewTable returns a Table over a sorted copy of globals.
func NewTable(globals []Descriptor, types Realizer) *Table {
	sorted := slices.Clone(globals)
	slices.SortStableFunc(sorted, func(a, b Descriptor) int {
		return strings.Compare(a.Name, b.Name)
	})
	return &Table{Globals: sorted, Types: types}
}

// Validate checks the invariants a Lib relies on: names are non-empty,
// sorted and unique, and typed descriptors have a realizer to resolve them.
func (t *Table) Validate() error {
	for i, d := range t.Globals {
		if d.Name == "" {
			return fmt.Errorf("descriptor %d has an empty name", i)
		}
		if i > 0 {
			switch prev := t.Globals[i-1].Name; {
			case prev == d.Name:
				return fmt.Errorf("duplicate descriptor %q", d.Name)
			case prev > d.Name:
				return fmt.Errorf("descriptors are not sorted: %q comes after %q", d.Name, prev)
			}
		}
		if d.Kind.Typed() && t.Types == nil {
			return fmt.Errorf("descriptor %q is a %s but the table has no type realizer", d.Name, d.Kind)
		}
	}
	return nil
}

// LookupFunc finds a name in a sorted descriptor slice and returns its
// index, or -1 if the name is absent.
type LookupFunc func(globals []Descriptor, name string) int

// BinarySearch is the default LookupFunc.
func BinarySearch(globals []Descriptor, name string) int {
	i, found := slices.BinarySearchFunc(globals, name, func(d Descriptor, name string) int {
		return strings.Compare(d.Name, name)
	})
	if !found {
		return -1
	}
	return i
}

func asFunc(addr any) (Func, bool) {
	switch f := addr.(type) {
	case Func:
		return f, f != nil
	case func(...cty.Value) (cty.Value, error):
		return f, f != nil
	}
	return nil, false
}

func asIntReader(addr any) (IntReader, bool) {
	switch f := addr.(type) {
	case IntReader:
		return f, f != nil
	case func(*uint64) bool:
		return f, f != nil
	}
	return nil, false
}

func asFiller(addr any) (Filler, bool) {
	switch f := addr.(type) {
	case Filler:
		return f, f != nil
	case func([]byte):
		return f, f != nil
	}
	return nil, false
}

func asPointer(addr any) (unsafe.Pointer, bool) {
	p, ok := addr.(unsafe.Pointer)
	return p, ok && p != nil
}
