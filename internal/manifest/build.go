package manifest

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/specialistvlad/symlib/internal/ctype"
	"github.com/specialistvlad/symlib/internal/symtab"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

var (
	minIntConstant = big.NewInt(math.MinInt64)
	maxIntConstant = new(big.Int).SetUint64(math.MaxUint64)
)

// Build turns a library manifest into a descriptor table. Declarations
// without a literal value take their address from bindings. Every typed
// declaration is realized up front, so type errors surface here rather than
// on first access.
func Build(lib *Library, bindings *Bindings) (*symtab.Table, error) {
	types, err := newTypeTable(lib.Structs)
	if err != nil {
		return nil, fmt.Errorf("library '%s': %w", lib.Name, err)
	}

	b := &builder{lib: lib, bindings: bindings, types: types}
	if err := b.collect(); err != nil {
		return nil, err
	}

	table := symtab.NewTable(b.globals, b.types.realizer)
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("library '%s': %w", lib.Name, err)
	}
	return table, nil
}

type builder struct {
	lib      *Library
	bindings *Bindings
	types    *typeTable
	globals  []symtab.Descriptor
	names    map[string]string
}

func (b *builder) collect() error {
	b.names = make(map[string]string)

	// Every spelling is resolved before the realizer takes over the table.
	for _, c := range b.lib.Constants {
		if c.Type == "" {
			continue
		}
		if _, err := b.types.resolve(c.Type); err != nil {
			return fmt.Errorf("library '%s': constant '%s': %w", b.lib.Name, c.Name, err)
		}
	}
	for _, v := range b.lib.Variables {
		if v.Type == "" {
			return fmt.Errorf("library '%s': variable '%s': missing type", b.lib.Name, v.Name)
		}
		if _, err := b.types.resolve(v.Type); err != nil {
			return fmt.Errorf("library '%s': variable '%s': %w", b.lib.Name, v.Name, err)
		}
	}
	b.types.seal()

	for _, f := range b.lib.Functions {
		if err := b.addFunction(f); err != nil {
			return fmt.Errorf("library '%s': function '%s': %w", b.lib.Name, f.Name, err)
		}
	}
	for _, c := range b.lib.Constants {
		if err := b.addConstant(c); err != nil {
			return fmt.Errorf("library '%s': constant '%s': %w", b.lib.Name, c.Name, err)
		}
	}
	for _, v := range b.lib.Variables {
		if err := b.addVariable(v); err != nil {
			return fmt.Errorf("library '%s': variable '%s': %w", b.lib.Name, v.Name, err)
		}
	}
	return nil
}

func (b *builder) add(d symtab.Descriptor, origin string) error {
	if d.Name == "" {
		return fmt.Errorf("%s: empty name", origin)
	}
	if prev, dup := b.names[d.Name]; dup {
		return fmt.Errorf("%s: name already declared at %s", origin, prev)
	}
	b.names[d.Name] = origin
	b.globals = append(b.globals, d)
	return nil
}

func (b *builder) binding(key string, want BindingKind) (any, error) {
	binding, ok := b.bindings.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("no %s registered as '%s'", want, key)
	}
	if binding.Kind != want {
		return nil, fmt.Errorf("binding '%s' has kind %s, want %s", key, binding.Kind, want)
	}
	return binding.Address, nil
}

func (b *builder) addFunction(f *Function) error {
	kind, err := functionKind(f.Args)
	if err != nil {
		return err
	}
	addr, err := b.binding(bindingKey(f.Name, f.Symbol), BindFunc)
	if err != nil {
		return err
	}
	return b.add(symtab.Descriptor{Name: f.Name, Kind: kind, Type: symtab.NoType, Address: addr}, f.Origin)
}

func functionKind(args string) (symtab.Kind, error) {
	switch args {
	case "", ArgsVarArgs:
		return symtab.KindFuncVarArgs, nil
	case ArgsNone:
		return symtab.KindFuncNoArgs, nil
	case ArgsOne:
		return symtab.KindFuncOneArg, nil
	}
	return 0, fmt.Errorf("invalid args %q: must be one of %q, %q or %q", args, ArgsNone, ArgsOne, ArgsVarArgs)
}

func (b *builder) addConstant(c *Constant) error {
	var (
		typ *ctype.Type
		ref = symtab.NoType
	)
	if c.Type != "" {
		index, err := b.types.resolve(c.Type)
		if err != nil {
			return err
		}
		if typ, err = b.types.realizer.Realize(index); err != nil {
			return err
		}
		ref = symtab.TypeRef(index)
	}

	if typ == nil || isIntegerKind(typ.Kind) {
		d := symtab.Descriptor{Name: c.Name, Kind: symtab.KindIntConstant, Type: symtab.NoType}
		if c.HasValue() {
			read, err := intReader(c.Value, typ)
			if err != nil {
				return err
			}
			d.Address = read
		} else {
			addr, err := b.binding(bindingKey(c.Name, c.Symbol), BindIntConstant)
			if err != nil {
				return err
			}
			d.Address = addr
		}
		return b.add(d, c.Origin)
	}

	if typ.Size == 0 {
		return fmt.Errorf("constant of zero-sized type %s", typ)
	}
	d := symtab.Descriptor{Name: c.Name, Kind: symtab.KindConstant, Type: ref}
	if c.HasValue() {
		fill, err := filler(c.Value, typ)
		if err != nil {
			return err
		}
		d.Address = fill
	} else {
		addr, err := b.binding(bindingKey(c.Name, c.Symbol), BindConstant)
		if err != nil {
			return err
		}
		d.Address = addr
	}
	return b.add(d, c.Origin)
}

func (b *builder) addVariable(v *Variable) error {
	index, err := b.types.resolve(v.Type)
	if err != nil {
		return err
	}
	typ, err := b.types.realizer.Realize(index)
	if err != nil {
		return err
	}
	if typ.Size == 0 {
		return fmt.Errorf("variable of zero-sized type %s", typ)
	}
	addr, err := b.binding(bindingKey(v.Name, v.Symbol), BindVariable)
	if err != nil {
		return err
	}
	return b.add(symtab.Descriptor{Name: v.Name, Kind: symtab.KindVariable, Type: symtab.TypeRef(index), Address: addr}, v.Origin)
}

func isIntegerKind(k ctype.Kind) bool {
	return k == ctype.KindSigned || k == ctype.KindUnsigned
}

// intReader synthesizes the reader of an integer constant from a literal.
// With a type, the literal must also fit that type.
func intReader(v cty.Value, typ *ctype.Type) (symtab.IntReader, error) {
	n, err := convert.Convert(v, cty.Number)
	if err != nil {
		return nil, fmt.Errorf("value must be a whole number: %w", err)
	}
	if !n.IsKnown() || n.IsNull() {
		return nil, fmt.Errorf("value must be a known whole number")
	}
	f := n.AsBigFloat()
	if !f.IsInt() {
		return nil, fmt.Errorf("value %s is not a whole number", f.Text('g', -1))
	}
	i, _ := f.Int(nil)
	if i.Cmp(minIntConstant) < 0 || i.Cmp(maxIntConstant) > 0 {
		return nil, fmt.Errorf("value %s is outside the range of an integer constant", i)
	}
	if typ != nil {
		if err := ctype.Native.Encode(n, typ, make([]byte, typ.Size)); err != nil {
			return nil, err
		}
	}

	negative := i.Sign() < 0
	var bits uint64
	if negative {
		bits = uint64(i.Int64())
	} else {
		bits = i.Uint64()
	}
	return func(out *uint64) bool {
		*out = bits
		return negative
	}, nil
}

// filler synthesizes the filler of a typed constant from a literal. The
// literal is encoded once; the filler copies the result.
func filler(v cty.Value, typ *ctype.Type) (symtab.Filler, error) {
	mem := make([]byte, typ.Size)
	if err := ctype.Native.Encode(v, typ, mem); err != nil {
		return nil, err
	}
	return func(buf []byte) {
		copy(buf, mem)
	}, nil
}

// typeTable assigns type table indices to the type spellings of one
// library. Equal spellings share an index.
type typeTable struct {
	decls    []ctype.Decl
	structs  map[string]int
	index    map[string]int
	realizer *ctype.Realizer
}

func newTypeTable(structs []*Struct) (*typeTable, error) {
	t := &typeTable{
		structs: make(map[string]int),
		index:   make(map[string]int),
	}

	// Struct indices are reserved first so fields may refer to any struct.
	for _, s := range structs {
		if s.Name == "" {
			return nil, fmt.Errorf("%s: struct with empty name", s.Origin)
		}
		if _, dup := t.structs[s.Name]; dup {
			return nil, fmt.Errorf("%s: struct '%s' declared twice", s.Origin, s.Name)
		}
		if ctype.IsPrimitive(s.Name) {
			return nil, fmt.Errorf("%s: struct '%s' shadows a primitive type", s.Origin, s.Name)
		}
		t.structs[s.Name] = len(t.decls)
		t.decls = append(t.decls, ctype.Decl{Kind: ctype.DeclStruct, Name: s.Name})
	}
	for _, s := range structs {
		fields := make([]ctype.FieldDecl, 0, len(s.Fields))
		for _, f := range s.Fields {
			index, err := t.resolve(f.Type)
			if err != nil {
				return nil, fmt.Errorf("%s: struct '%s': field '%s': %w", s.Origin, s.Name, f.Name, err)
			}
			fields = append(fields, ctype.FieldDecl{Name: f.Name, Type: index})
		}
		t.decls[t.structs[s.Name]].Fields = fields
	}
	return t, nil
}

// seal hands the table to a realizer. Spellings resolved after sealing
// must already be in the table.
func (t *typeTable) seal() {
	t.realizer = ctype.NewRealizer(t.decls)
}

// resolve returns the table index of a type spelling, adding entries for
// it as needed.
func (t *typeTable) resolve(spelling string) (int, error) {
	base, dims, err := ctype.ParseSpelling(spelling)
	if err != nil {
		return 0, err
	}
	index, err := t.base(base)
	if err != nil {
		return 0, err
	}
	for i := len(dims) - 1; i >= 0; i-- {
		index = t.intern(fmt.Sprintf("%d[%d]", index, dims[i]), ctype.Decl{Kind: ctype.DeclArray, Elem: index, Len: dims[i]})
	}
	return index, nil
}

func (t *typeTable) base(name string) (int, error) {
	tag, isStruct := strings.CutPrefix(name, "struct ")
	if isStruct {
		tag = strings.TrimSpace(tag)
	}
	if index, ok := t.structs[tag]; ok {
		return index, nil
	}
	if isStruct {
		return 0, fmt.Errorf("unknown struct '%s'", tag)
	}

	canonical, err := ctype.NormalizeName(name)
	if err != nil {
		return 0, err
	}
	if !ctype.IsPrimitive(canonical) {
		return 0, fmt.Errorf("unknown type '%s'", name)
	}
	return t.intern(canonical, ctype.Decl{Kind: ctype.DeclPrimitive, Name: canonical}), nil
}

func (t *typeTable) intern(key string, d ctype.Decl) int {
	if index, ok := t.index[key]; ok {
		return index
	}
	if t.realizer != nil {
		panic(fmt.Sprintf("type table is sealed; cannot add %q", key))
	}
	index := len(t.decls)
	t.decls = append(t.decls, d)
	t.index[key] = index
	return index
}
