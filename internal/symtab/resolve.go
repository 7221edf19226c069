package symtab

import (
	"fmt"

	"github.com/agext/levenshtein"
)

// resolve returns the cached value for name, materializing and caching it
// on first use.
func (l *Lib) resolve(name string) (any, error) {
	if x, ok := l.cache.Load(name); ok {
		return x, nil
	}

	x, err, _ := l.flight.Do(name, func() (any, error) {
		// Another caller may have finished while we waited for the group.
		if x, ok := l.cache.Load(name); ok {
			return x, nil
		}

		table := l.table.Load()
		if table == nil {
			return nil, &ClosedError{Lib: l.name}
		}

		index := l.lookup(table.Globals, name)
		if index < 0 {
			return nil, &UnknownSymbolError{Lib: l.name, Name: name, Suggestion: suggest(table, name)}
		}

		d := &table.Globals[index]
		x, err := l.build(table, d)
		if err != nil {
			l.logger.Debug("Symbol materialization failed.", "symbol", name, "kind", d.Kind, "error", err)
			return nil, err
		}
		l.cache.Store(name, x)
		l.logger.Debug("Symbol materialized.", "symbol", name, "kind", d.Kind)
		return x, nil
	})
	return x, err
}

// build materializes one descriptor.
func (l *Lib) build(table *Table, d *Descriptor) (any, error) {
	switch d.Kind {
	case KindFuncVarArgs, KindFuncNoArgs, KindFuncOneArg:
		fn, ok := asFunc(d.Address)
		if !ok {
			return nil, l.internal(d, fmt.Sprintf("function address has type %T", d.Address))
		}
		conv, _ := callConvOf(d.Kind)
		return &Function{lib: l.name, name: d.Name, conv: conv, fn: fn}, nil

	case KindIntConstant:
		read, ok := asIntReader(d.Address)
		if !ok {
			return nil, l.internal(d, fmt.Sprintf("integer constant address has type %T", d.Address))
		}
		return readIntConstant(read), nil

	case KindConstant:
		fill, ok := asFiller(d.Address)
		if !ok {
			return nil, l.internal(d, fmt.Sprintf("constant address has type %T", d.Address))
		}
		typ, err := table.Types.Realize(int(d.Type))
		if err != nil {
			return nil, fmt.Errorf("lib '%s': constant '%s': %w", l.name, d.Name, err)
		}
		if typ.Size <= 0 {
			return nil, l.internal(d, fmt.Sprintf("constant of zero-sized type %s", typ))
		}
		buf := make([]byte, typ.Size)
		fill(buf)
		v, err := l.conv.Decode(buf, typ)
		if err != nil {
			return nil, fmt.Errorf("lib '%s': constant '%s': %w", l.name, d.Name, err)
		}
		return v, nil

	case KindVariable:
		addr, ok := asPointer(d.Address)
		if !ok {
			return nil, l.internal(d, fmt.Sprintf("global variable address has type %T", d.Address))
		}
		typ, err := table.Types.Realize(int(d.Type))
		if err != nil {
			return nil, fmt.Errorf("lib '%s': global variable '%s': %w", l.name, d.Name, err)
		}
		return newVariable(d.Name, typ, addr, l.conv), nil

	default:
		return nil, l.internal(d, fmt.Sprintf("unimplemented symbol kind %s", d.Kind))
	}
}

func (l *Lib) internal(d *Descriptor, reason string) error {
	l.logger.Error("Inconsistent descriptor table.", "symbol", d.Name, "reason", reason)
	return &InternalError{Lib: l.name, Name: d.Name, Reason: reason}
}

// suggest returns the table name closest to name, if any is within edit
// distance 2. Ties go to the earlier name.
func suggest(table *Table, name string) string {
	best, bestDist := "", 3
	for i := range table.Globals {
		candidate := table.Globals[i].Name
		if d := levenshtein.Distance(name, candidate, nil); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}
