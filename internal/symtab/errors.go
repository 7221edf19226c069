package symtab

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrClosed        = errors.New("library is closed")
	ErrUnknownSymbol = errors.New("unknown symbol")
	ErrImmutable     = errors.New("attribute is immutable")
	ErrInternal      = errors.New("internal error")
)

// ClosedError is returned when a symbol must be resolved after the
// library's descriptor table was detached.
type ClosedError struct {
	Lib string
}

func (e *ClosedError) Error() string {
	return fmt.Sprintf("lib '%s' is already closed", e.Lib)
}

func (e *ClosedError) Is(target error) bool { return target == ErrClosed }

// UnknownSymbolError is returned for names the descriptor table does not
// contain.
type UnknownSymbolError struct {
	Lib        string
	Name       string
	Suggestion string
}

func (e *UnknownSymbolError) Error() string {
	msg := fmt.Sprintf("lib '%s' has no function, global variable or constant named '%s'", e.Lib, e.Name)
	if e.Suggestion != "" {
		msg += fmt.Sprintf("; did you mean '%s'?", e.Suggestion)
	}
	return msg
}

func (e *UnknownSymbolError) Is(target error) bool { return target == ErrUnknownSymbol }

// ImmutableError is returned when writing to a function or constant, and
// for every attempt to delete a symbol.
type ImmutableError struct {
	Lib      string
	Name     string
	Deletion bool
}

func (e *ImmutableError) Error() string {
	if e.Deletion {
		return fmt.Sprintf("lib '%s': C attribute '%s' cannot be deleted", e.Lib, e.Name)
	}
	return fmt.Sprintf("lib '%s': cannot write to function or constant '%s'", e.Lib, e.Name)
}

func (e *ImmutableError) Is(target error) bool { return target == ErrImmutable }

// InternalError reports a descriptor table that violates its own
// invariants: an unknown kind, an address of the wrong Go type or a
// zero-sized constant. It signals a bug in whatever built the table, not a
// caller mistake.
type InternalError struct {
	Lib    string
	Name   string
	Reason string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error in lib '%s', symbol '%s': %s", e.Lib, e.Name, e.Reason)
}

func (e *InternalError) Is(target error) bool { return target == ErrInternal }

// IsInternal reports whether err is, or wraps, an InternalError.
func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}
