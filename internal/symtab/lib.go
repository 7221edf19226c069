package symtab

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/symlib/internal/ctype"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/sync/singleflight"
)

// Lib is the symbol table of one library.
type Lib struct {
	name   string
	table  atomic.Pointer[Table]
	conv   Converter
	lookup LookupFunc
	logger *slog.Logger

	// cache maps symbol names to resolved values: *Function, int, *big.Int,
	// cty.Value or *Variable. Entries are never replaced or removed.
	cache  sync.Map
	flight singleflight.Group
}

// Option configures a Lib.
type Option func(*Lib)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lib) { l.logger = logger }
}

// WithConverter sets the converter used for typed constants and variables.
// The default is ctype.Native.
func WithConverter(conv Converter) Option {
	return func(l *Lib) { l.conv = conv }
}

// WithLookup replaces the binary search used to find names in the table.
func WithLookup(lookup LookupFunc) Option {
	return func(l *Lib) { l.lookup = lookup }
}

// New returns a Lib named name over table. The table is borrowed, not
// copied; it must stay unchanged for as long as the Lib can resolve from it.
func New(table *Table, name string, opts ...Option) (*Lib, error) {
	if table == nil {
		return nil, errors.New("symtab: nil descriptor table")
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("symtab: invalid descriptor table for lib '%s': %w", name, err)
	}

	l := &Lib{
		name:   name,
		conv:   ctype.Native,
		lookup: BinarySearch,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("lib", name)
	l.table.Store(table)

	l.logger.Debug("Symbol table created.", "symbols", len(table.Globals))
	return l, nil
}

// Name returns the library name.
func (l *Lib) Name() string { return l.name }

func (l *Lib) String() string {
	return fmt.Sprintf("<Lib object for '%s'>", l.name)
}

// Get returns the value of a symbol: the *Function of a function, the value
// of a constant, or the current value of a global variable.
func (l *Lib) Get(name string) (any, error) {
	x, err := l.resolve(name)
	if err != nil {
		return nil, err
	}
	if v, ok := x.(*Variable); ok {
		return v.Read()
	}
	return x, nil
}

// Resolve returns the cached resolved value of a symbol without reading
// through variables: global variables yield their *Variable accessor.
func (l *Lib) Resolve(name string) (any, error) {
	return l.resolve(name)
}

// Set writes value to a global variable. Functions and constants cannot be
// written.
func (l *Lib) Set(name string, value cty.Value) error {
	x, err := l.resolve(name)
	if err != nil {
		return err
	}
	v, ok := x.(*Variable)
	if !ok {
		return &ImmutableError{Lib: l.name, Name: name}
	}
	return v.Write(value)
}

// Delete always fails: symbols cannot be deleted. Resolution errors take
// precedence, so deleting an unknown name reports the name as unknown.
func (l *Lib) Delete(name string) error {
	if _, err := l.resolve(name); err != nil {
		return err
	}
	return &ImmutableError{Lib: l.name, Name: name, Deletion: true}
}

// Names returns every symbol name in table order without resolving any of
// them. It fails once the library is closed.
func (l *Lib) Names() ([]string, error) {
	table := l.table.Load()
	if table == nil {
		return nil, &ClosedError{Lib: l.name}
	}
	names := make([]string, len(table.Globals))
	for i := range table.Globals {
		names[i] = table.Globals[i].Name
	}
	return names, nil
}

// Close detaches the descriptor table. It is idempotent and cannot be
// undone. Already resolved symbols stay available.
func (l *Lib) Close() {
	if l.table.Swap(nil) != nil {
		l.logger.Info("Library closed.")
	}
}

// Closed reports whether Close has been called.
func (l *Lib) Closed() bool {
	return l.table.Load() == nil
}
