package manifest

import (
	"fmt"
	"log/slog"
	"slices"
	"unsafe"

	"github.com/specialistvlad/symlib/internal/symtab"
)

// BindingKind classifies a registered address.
type BindingKind int

const (
	BindFunc BindingKind = iota
	BindIntConstant
	BindConstant
	BindVariable
)

func (k BindingKind) String() string {
	switch k {
	case BindFunc:
		return "function"
	case BindIntConstant:
		return "integer constant reader"
	case BindConstant:
		return "constant filler"
	case BindVariable:
		return "variable address"
	}
	return fmt.Sprintf("BindingKind(%d)", int(k))
}

// Binding is one registered address.
type Binding struct {
	Kind    BindingKind
	Address any
}

// Bindings holds the Go side of every library: the addresses that manifest
// declarations bind to by name.
type Bindings struct {
	all map[string]*Binding
}

// NewBindings creates an empty registry.
func NewBindings() *Bindings {
	return &Bindings{all: make(map[string]*Binding)}
}

// RegisterFunc registers the implementation of a function symbol.
func (b *Bindings) RegisterFunc(name string, fn symtab.Func) {
	b.register(name, BindFunc, fn)
}

// RegisterIntConstant registers the reader of an integer constant.
func (b *Bindings) RegisterIntConstant(name string, read symtab.IntReader) {
	b.register(name, BindIntConstant, read)
}

// RegisterConstant registers the filler of a typed constant.
func (b *Bindings) RegisterConstant(name string, fill symtab.Filler) {
	b.register(name, BindConstant, fill)
}

// RegisterVariable registers the memory of a global variable. The memory
// must stay reachable for as long as any table built from these bindings.
func (b *Bindings) RegisterVariable(name string, addr unsafe.Pointer) {
	b.register(name, BindVariable, addr)
}

func (b *Bindings) register(name string, kind BindingKind, addr any) {
	if _, exists := b.all[name]; exists {
		panic(fmt.Sprintf("binding with name '%s' already registered", name))
	}
	slog.Debug("Registering binding.", "name", name, "kind", kind)
	b.all[name] = &Binding{Kind: kind, Address: addr}
}

// Lookup returns the binding registered under name.
func (b *Bindings) Lookup(name string) (*Binding, bool) {
	if b == nil {
		return nil, false
	}
	binding, ok := b.all[name]
	return binding, ok
}

// Names returns the registered names in sorted order.
func (b *Bindings) Names() []string {
	if b == nil {
		return nil
	}
	names := make([]string, 0, len(b.all))
	for name := range b.all {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
