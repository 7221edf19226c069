package ctype

import (
	"fmt"
	"strconv"
	"strings"
)

type primitive struct {
	kind Kind
	size int
}

// primitives lists the supported primitive types under their canonical
// spelling, sized for LP64.
var primitives = map[string]primitive{
	"void":               {KindVoid, 0},
	"_Bool":              {KindBool, 1},
	"char":               {KindChar, 1},
	"signed char":        {KindSigned, 1},
	"unsigned char":      {KindUnsigned, 1},
	"short":              {KindSigned, 2},
	"unsigned short":     {KindUnsigned, 2},
	"int":                {KindSigned, 4},
	"unsigned int":       {KindUnsigned, 4},
	"long":               {KindSigned, 8},
	"unsigned long":      {KindUnsigned, 8},
	"long long":          {KindSigned, 8},
	"unsigned long long": {KindUnsigned, 8},
	"float":              {KindFloat, 4},
	"double":             {KindFloat, 8},
	"int8_t":             {KindSigned, 1},
	"uint8_t":            {KindUnsigned, 1},
	"int16_t":            {KindSigned, 2},
	"uint16_t":           {KindUnsigned, 2},
	"int32_t":            {KindSigned, 4},
	"uint32_t":           {KindUnsigned, 4},
	"int64_t":            {KindSigned, 8},
	"uint64_t":           {KindUnsigned, 8},
	"size_t":             {KindUnsigned, 8},
	"ssize_t":            {KindSigned, 8},
	"intptr_t":           {KindSigned, 8},
	"uintptr_t":          {KindUnsigned, 8},
	"ptrdiff_t":          {KindSigned, 8},
}

// IsPrimitive reports whether name, after normalization, is a supported
// primitive type.
func IsPrimitive(name string) bool {
	canonical, err := NormalizeName(name)
	if err != nil {
		return false
	}
	_, ok := primitives[canonical]
	return ok
}

// NormalizeName rewrites the many spellings of a C primitive type to its
// canonical one: "signed long int" becomes "long", "unsigned" becomes
// "unsigned int", "long unsigned int" becomes "unsigned long". Names that
// are not built from C type keywords (typedef names such as "size_t") are
// returned unchanged.
func NormalizeName(name string) (string, error) {
	words := strings.Fields(name)
	switch len(words) {
	case 0:
		return "", fmt.Errorf("empty type name")
	case 1:
		switch words[0] {
		case "signed":
			return "int", nil
		case "unsigned":
			return "unsigned int", nil
		case "bool":
			return "_Bool", nil
		}
		return words[0], nil
	}

	var signed, unsigned, short, long, integer, char, double int
	for _, w := range words {
		switch w {
		case "signed":
			signed++
		case "unsigned":
			unsigned++
		case "short":
			short++
		case "long":
			long++
		case "int":
			integer++
		case "char":
			char++
		case "double":
			double++
		default:
			return "", fmt.Errorf("invalid type name %q: unexpected %q", name, w)
		}
	}

	switch {
	case signed+unsigned > 1:
		return "", fmt.Errorf("invalid type name %q: conflicting signedness", name)
	case double > 0:
		if double == 1 && long == 1 && len(words) == 2 {
			return "long double", nil
		}
		return "", fmt.Errorf("invalid type name %q", name)
	case char > 0:
		if char > 1 || short+long+integer > 0 {
			return "", fmt.Errorf("invalid type name %q", name)
		}
		if unsigned > 0 {
			return "unsigned char", nil
		}
		if signed > 0 {
			return "signed char", nil
		}
		return "char", nil
	case short > 1, long > 2, integer > 1, short > 0 && long > 0:
		return "", fmt.Errorf("invalid type name %q", name)
	}

	base := "int"
	switch {
	case short == 1:
		base = "short"
	case long == 1:
		base = "long"
	case long == 2:
		base = "long long"
	}
	if unsigned > 0 {
		return "unsigned " + base, nil
	}
	return base, nil
}

// ParseSpelling splits a type spelling such as "unsigned int[4][2]" into
// its base name and array dimensions, outermost first.
func ParseSpelling(spelling string) (string, []int, error) {
	s := strings.TrimSpace(spelling)
	open := strings.IndexByte(s, '[')
	if open < 0 {
		if s == "" {
			return "", nil, fmt.Errorf("empty type spelling")
		}
		return s, nil, nil
	}

	base := strings.TrimSpace(s[:open])
	if base == "" {
		return "", nil, fmt.Errorf("invalid type spelling %q: missing element type", spelling)
	}

	var dims []int
	rest := s[open:]
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, fmt.Errorf("invalid type spelling %q", spelling)
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return "", nil, fmt.Errorf("invalid type spelling %q: unterminated '['", spelling)
		}
		n, err := strconv.Atoi(strings.TrimSpace(rest[1:end]))
		if err != nil || n < 0 {
			return "", nil, fmt.Errorf("invalid type spelling %q: bad array length %q", spelling, rest[1:end])
		}
		dims = append(dims, n)
		rest = strings.TrimSpace(rest[end+1:])
	}
	return base, dims, nil
}
