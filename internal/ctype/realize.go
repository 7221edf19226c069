package ctype

import (
	"fmt"
	"math"
	"strings"
	"sync"
)

// DeclKind classifies an entry of the type table.
type DeclKind int

const (
	DeclPrimitive DeclKind = iota
	DeclArray
	DeclStruct
)

// Decl is one unrealized entry of a type table.
type Decl struct {
	Kind DeclKind

	// Name is the primitive spelling for DeclPrimitive and the struct tag
	// for DeclStruct.
	Name string

	// Elem and Len describe DeclArray entries.
	Elem int
	Len  int

	Fields []FieldDecl
}

// FieldDecl names a struct member and the table index of its type.
type FieldDecl struct {
	Name string
	Type int
}

// RealizeError reports a type table entry that cannot be realized.
type RealizeError struct {
	Index  int
	Reason string
}

func (e *RealizeError) Error() string {
	return fmt.Sprintf("cannot realize type %d: %s", e.Index, e.Reason)
}

// Realizer lazily realizes the entries of a type table. It is safe for
// concurrent use.
type Realizer struct {
	decls []Decl

	mu   sync.Mutex
	done []*Type
	busy []bool
}

// NewRealizer returns a Realizer over decls. The slice is not copied and
// must not be modified afterwards.
func NewRealizer(decls []Decl) *Realizer {
	return &Realizer{
		decls: decls,
		done:  make([]*Type, len(decls)),
		busy:  make([]bool, len(decls)),
	}
}

// Len returns the number of entries in the type table.
func (r *Realizer) Len() int {
	return len(r.decls)
}

// Realize returns the realized type for a table index. Repeated calls for
// the same index return the same *Type.
func (r *Realizer) Realize(index int) (*Type, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.realizeLocked(index)
}

func (r *Realizer) realizeLocked(index int) (*Type, error) {
	if index < 0 || index >= len(r.decls) {
		return nil, &RealizeError{Index: index, Reason: fmt.Sprintf("index out of range [0, %d)", len(r.decls))}
	}
	if t := r.done[index]; t != nil {
		return t, nil
	}
	if r.busy[index] {
		return nil, &RealizeError{Index: index, Reason: "type contains itself by value"}
	}
	r.busy[index] = true
	defer func() { r.busy[index] = false }()

	var (
		t   *Type
		err error
	)
	d := r.decls[index]
	switch d.Kind {
	case DeclPrimitive:
		t, err = realizePrimitive(index, d.Name)
	case DeclArray:
		t, err = r.realizeArray(index, d)
	case DeclStruct:
		t, err = r.realizeStruct(index, d)
	default:
		err = &RealizeError{Index: index, Reason: fmt.Sprintf("unknown declaration kind %d", d.Kind)}
	}
	if err != nil {
		return nil, err
	}

	t.cty = impliedCtyType(t)
	r.done[index] = t
	return t, nil
}

func realizePrimitive(index int, name string) (*Type, error) {
	canonical, err := NormalizeName(name)
	if err != nil {
		return nil, &RealizeError{Index: index, Reason: err.Error()}
	}
	p, ok := primitives[canonical]
	if !ok {
		return nil, &RealizeError{Index: index, Reason: fmt.Sprintf("unsupported primitive type %q", name)}
	}
	align := p.size
	if align == 0 {
		align = 1
	}
	return &Type{Kind: p.kind, Name: canonical, Size: p.size, Align: align}, nil
}

func (r *Realizer) realizeArray(index int, d Decl) (*Type, error) {
	if d.Len < 0 {
		return nil, &RealizeError{Index: index, Reason: fmt.Sprintf("negative array length %d", d.Len)}
	}
	elem, err := r.realizeLocked(d.Elem)
	if err != nil {
		return nil, err
	}
	if elem.Size == 0 {
		return nil, &RealizeError{Index: index, Reason: fmt.Sprintf("array of zero-sized type %s", elem)}
	}
	if d.Len > math.MaxInt/elem.Size {
		return nil, &RealizeError{Index: index, Reason: fmt.Sprintf("array of %d %s is too large", d.Len, elem)}
	}
	return &Type{
		Kind:  KindArray,
		Name:  arrayName(elem, d.Len),
		Size:  elem.Size * d.Len,
		Align: elem.Align,
		Elem:  elem,
		Len:   d.Len,
	}, nil
}

func (r *Realizer) realizeStruct(index int, d Decl) (*Type, error) {
	t := &Type{Kind: KindStruct, Name: "struct " + d.Name, Align: 1}
	seen := make(map[string]struct{}, len(d.Fields))
	offset := 0
	for _, fd := range d.Fields {
		if _, dup := seen[fd.Name]; dup {
			return nil, &RealizeError{Index: index, Reason: fmt.Sprintf("duplicate field %q in %s", fd.Name, t.Name)}
		}
		seen[fd.Name] = struct{}{}

		ft, err := r.realizeLocked(fd.Type)
		if err != nil {
			return nil, err
		}
		if ft.Size == 0 {
			return nil, &RealizeError{Index: index, Reason: fmt.Sprintf("field %q of %s has zero-sized type %s", fd.Name, t.Name, ft)}
		}
		if offset > math.MaxInt-ft.Size-ft.Align {
			return nil, &RealizeError{Index: index, Reason: fmt.Sprintf("%s is too large", t.Name)}
		}
		offset = alignUp(offset, ft.Align)
		t.Fields = append(t.Fields, Field{Name: fd.Name, Type: ft, Offset: offset})
		offset += ft.Size
		t.Align = max(t.Align, ft.Align)
	}
	if offset > math.MaxInt-t.Align {
		return nil, &RealizeError{Index: index, Reason: fmt.Sprintf("%s is too large", t.Name)}
	}
	t.Size = alignUp(offset, t.Align)
	return t, nil
}

// arrayName spells an array of n elem values the way C does, with the
// outermost dimension first.
func arrayName(elem *Type, n int) string {
	dim := fmt.Sprintf("[%d]", n)
	if elem.Kind == KindArray {
		if i := strings.IndexByte(elem.Name, '['); i >= 0 {
			return elem.Name[:i] + dim + elem.Name[i:]
		}
	}
	return elem.Name + dim
}

func alignUp(n, align int) int {
	return (n + align - 1) / align * align
}
