package ctype

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Kind classifies a realized type.
type Kind int

const (
	KindVoid Kind = iota
	KindSigned
	KindUnsigned
	KindFloat
	KindBool
	KindChar
	KindArray
	KindStruct
)

var kindNames = [...]string{
	KindVoid:     "void",
	KindSigned:   "signed",
	KindUnsigned: "unsigned",
	KindFloat:    "float",
	KindBool:     "bool",
	KindChar:     "char",
	KindArray:    "array",
	KindStruct:   "struct",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Type is a realized C type. Types are immutable once returned by a Realizer.
type Type struct {
	Kind  Kind
	Name  string
	Size  int
	Align int

	// Elem and Len describe arrays.
	Elem *Type
	Len  int

	// Fields describe structs, in declaration order.
	Fields []Field

	cty cty.Type
}

// Field is one member of a struct type.
type Field struct {
	Name   string
	Type   *Type
	Offset int
}

// String returns the C spelling of the type.
func (t *Type) String() string {
	return t.Name
}

// IsInteger reports whether values of t are C integers. char counts as an
// integer type, as it does in C.
func (t *Type) IsInteger() bool {
	switch t.Kind {
	case KindSigned, KindUnsigned, KindChar:
		return true
	}
	return false
}

// IsCharArray reports whether t is an array of plain char, which converts
// to and from strings.
func (t *Type) IsCharArray() bool {
	return t.Kind == KindArray && t.Elem.Kind == KindChar
}

// CtyType returns the cty type values of t convert to.
func (t *Type) CtyType() cty.Type {
	return t.cty
}

func impliedCtyType(t *Type) cty.Type {
	switch t.Kind {
	case KindSigned, KindUnsigned, KindFloat:
		return cty.Number
	case KindBool:
		return cty.Bool
	case KindChar:
		return cty.String
	case KindArray:
		if t.IsCharArray() {
			return cty.String
		}
		return cty.List(t.Elem.cty)
	case KindStruct:
		attrs := make(map[string]cty.Type, len(t.Fields))
		for _, f := range t.Fields {
			attrs[f.Name] = f.Type.cty
		}
		return cty.Object(attrs)
	default:
		return cty.DynamicPseudoType
	}
}
