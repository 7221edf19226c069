package manifest

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/symlib/internal/ctxlog"
	"github.com/specialistvlad/symlib/internal/ctype"
)

// ValidationError aggregates every mismatch between manifests and bindings.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("manifest validation failed:\n- %s", strings.Join(e.Issues, "\n- "))
}

// Validate performs a strict parity check between manifests and Go code:
// every declaration without a literal value has a binding of the right
// kind, and every binding is used by some declaration.
func Validate(ctx context.Context, libs []*Library, bindings *Bindings) error {
	logger := ctxlog.FromContext(ctx)
	var issues []string
	used := make(map[string]struct{})

	expect := func(lib *Library, what, name, symbol string, want BindingKind) {
		key := bindingKey(name, symbol)
		used[key] = struct{}{}
		binding, ok := bindings.Lookup(key)
		switch {
		case !ok:
			issues = append(issues, fmt.Sprintf("library '%s': %s '%s' has no %s registered as '%s'", lib.Name, what, name, want, key))
		case binding.Kind != want:
			issues = append(issues, fmt.Sprintf("library '%s': %s '%s': binding '%s' has kind %s, want %s", lib.Name, what, name, key, binding.Kind, want))
		}
	}

	for _, lib := range libs {
		for _, f := range lib.Functions {
			if _, err := functionKind(f.Args); err != nil {
				issues = append(issues, fmt.Sprintf("library '%s': function '%s': %v", lib.Name, f.Name, err))
			}
			expect(lib, "function", f.Name, f.Symbol, BindFunc)
		}
		for _, c := range lib.Constants {
			if c.HasValue() {
				key := bindingKey(c.Name, c.Symbol)
				if _, ok := bindings.Lookup(key); ok {
					used[key] = struct{}{}
					issues = append(issues, fmt.Sprintf("library '%s': constant '%s' has a literal value but '%s' is also registered", lib.Name, c.Name, key))
				}
				continue
			}
			want := BindConstant
			if c.Type == "" || isIntegerSpelling(c.Type) {
				want = BindIntConstant
			}
			expect(lib, "constant", c.Name, c.Symbol, want)
		}
		for _, v := range lib.Variables {
			expect(lib, "variable", v.Name, v.Symbol, BindVariable)
		}
	}

	for _, name := range bindings.Names() {
		if _, ok := used[name]; !ok {
			issues = append(issues, fmt.Sprintf("binding '%s' is not declared in any manifest", name))
		}
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	logger.Debug("Manifest validation passed.", "libraries", len(libs), "bindings", len(bindings.Names()))
	return nil
}

// isIntegerSpelling reports whether a type spelling names a signed or
// unsigned integer primitive. Struct names never shadow primitives, so the
// answer does not depend on the library's structs.
func isIntegerSpelling(spelling string) bool {
	base, dims, err := ctype.ParseSpelling(spelling)
	if err != nil || len(dims) > 0 {
		return false
	}
	typ, err := ctype.NewRealizer([]ctype.Decl{{Kind: ctype.DeclPrimitive, Name: base}}).Realize(0)
	return err == nil && isIntegerKind(typ.Kind)
}
