package symtab

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/specialistvlad/symlib/internal/ctype"
	"github.com/zclconf/go-cty/cty"
)

// Converter converts between raw memory of a realized type and cty values.
// ctype.Codec is the default implementation.
type Converter interface {
	Decode(data []byte, t *ctype.Type) (cty.Value, error)
	Encode(v cty.Value, t *ctype.Type, dst []byte) error
}

// Variable is a live binding to a global variable's memory. Every Read
// converts the current contents; every Write converts and stores a new
// value.
type Variable struct {
	name string
	typ  *ctype.Type
	addr unsafe.Pointer
	conv Converter

	mu sync.Mutex
}

func newVariable(name string, typ *ctype.Type, addr unsafe.Pointer, conv Converter) *Variable {
	return &Variable{name: name, typ: typ, addr: addr, conv: conv}
}

// Name returns the symbol name.
func (v *Variable) Name() string { return v.name }

// Type returns the variable's realized type.
func (v *Variable) Type() *ctype.Type { return v.typ }

// Read returns the variable's current value.
func (v *Variable) Read() (cty.Value, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	val, err := v.conv.Decode(v.memory(), v.typ)
	if err != nil {
		return cty.NilVal, fmt.Errorf("reading global variable '%s': %w", v.name, err)
	}
	return val, nil
}

// Write converts val to the variable's type and stores it. If the
// conversion fails the variable is left untouched.
func (v *Variable) Write(val cty.Value) error {
	scratch := make([]byte, v.typ.Size)
	if err := v.conv.Encode(val, v.typ, scratch); err != nil {
		return fmt.Errorf("writing global variable '%s': %w", v.name, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	copy(v.memory(), scratch)
	return nil
}

func (v *Variable) memory() []byte {
	return unsafe.Slice((*byte)(v.addr), v.typ.Size)
}

func (v *Variable) String() string {
	return fmt.Sprintf("<global variable %s of type %s>", v.name, v.typ)
}
