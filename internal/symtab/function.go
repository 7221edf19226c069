package symtab

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// CallConv is the calling convention of a wrapped function.
type CallConv int

const (
	ConvVarArgs CallConv = iota
	ConvNoArgs
	ConvOneArg
)

func (c CallConv) String() string {
	switch c {
	case ConvVarArgs:
		return "varargs"
	case ConvNoArgs:
		return "noargs"
	case ConvOneArg:
		return "onearg"
	}
	return fmt.Sprintf("CallConv(%d)", int(c))
}

// Function is the callable object a Lib hands out for a function symbol.
// A Lib builds at most one Function per name and keeps it for its own
// lifetime, so the pointer identifies the symbol.
type Function struct {
	lib  string
	name string
	conv CallConv
	fn   Func
}

// Name returns the symbol name.
func (f *Function) Name() string { return f.name }

// Module returns the name of the library the function belongs to.
func (f *Function) Module() string { return f.lib }

// CallConv returns the calling convention the function was wrapped with.
func (f *Function) CallConv() CallConv { return f.conv }

// Call invokes the bound function after checking the argument count against
// the calling convention.
func (f *Function) Call(args ...cty.Value) (cty.Value, error) {
	switch f.conv {
	case ConvNoArgs:
		if len(args) != 0 {
			return cty.NilVal, fmt.Errorf("%s() takes no arguments (%d given)", f.name, len(args))
		}
	case ConvOneArg:
		if len(args) != 1 {
			return cty.NilVal, fmt.Errorf("%s() takes exactly one argument (%d given)", f.name, len(args))
		}
	}
	return f.fn(args...)
}

func (f *Function) String() string {
	return fmt.Sprintf("<built-in function %s>", f.name)
}

func callConvOf(k Kind) (CallConv, bool) {
	switch k {
	case KindFuncVarArgs:
		return ConvVarArgs, true
	case KindFuncNoArgs:
		return ConvNoArgs, true
	case KindFuncOneArg:
		return ConvOneArg, true
	}
	return 0, false
}
