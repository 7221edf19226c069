package manifest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"os"

	"github.com/specialistvlad/symlib/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	Libraries []yamlLibrary `yaml:"libraries"`
}

type yamlLibrary struct {
	Name      string         `yaml:"name"`
	Structs   []yamlStruct   `yaml:"structs"`
	Functions []yamlFunction `yaml:"functions"`
	Constants []yamlConstant `yaml:"constants"`
	Variables []yamlVariable `yaml:"variables"`
}

type yamlStruct struct {
	Name   string      `yaml:"name"`
	Fields []yamlField `yaml:"fields"`
}

type yamlField struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type yamlFunction struct {
	Name   string `yaml:"name"`
	Args   string `yaml:"args"`
	Symbol string `yaml:"symbol"`
}

type yamlConstant struct {
	Name   string    `yaml:"name"`
	Type   string    `yaml:"type"`
	Symbol string    `yaml:"symbol"`
	Value  yaml.Node `yaml:"value"`
}

type yamlVariable struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Symbol string `yaml:"symbol"`
}

// YAMLLoader reads manifests written in YAML.
type YAMLLoader struct{}

// NewYAMLLoader creates a new YAML manifest loader.
func NewYAMLLoader() *YAMLLoader {
	return &YAMLLoader{}
}

// Load parses the manifest file at path.
func (l *YAMLLoader) Load(ctx context.Context, path string) ([]*Library, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML manifest %s: %w", path, err)
	}
	libs, err := ParseYAML(src, path)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("YAML manifest loaded.", "libraries", len(libs))
	return libs, nil
}

// ParseYAML parses manifest source. Unknown keys are rejected. An empty
// document declares no libraries.
func ParseYAML(src []byte, filename string) ([]*Library, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(src))
	decoder.KnownFields(true)

	var raw yamlFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", filename, err)
	}

	lines := declarationLines(src)
	libs := make([]*Library, 0, len(raw.Libraries))
	for i, yl := range raw.Libraries {
		var pos yamlLines
		if i < len(lines) {
			pos = lines[i]
		}
		lib, err := yl.toLibrary(filename, pos)
		if err != nil {
			return nil, err
		}
		libs = append(libs, lib)
	}
	return libs, nil
}

func (yl *yamlLibrary) toLibrary(filename string, pos yamlLines) (*Library, error) {
	lib := &Library{Name: yl.Name, Origin: pos.origin(filename, "", 0)}
	for i, ys := range yl.Structs {
		s := &Struct{Name: ys.Name, Origin: pos.origin(filename, "structs", i)}
		for _, f := range ys.Fields {
			s.Fields = append(s.Fields, &StructField{Name: f.Name, Type: f.Type})
		}
		lib.Structs = append(lib.Structs, s)
	}
	for i, yf := range yl.Functions {
		lib.Functions = append(lib.Functions, &Function{
			Name:   yf.Name,
			Symbol: yf.Symbol,
			Args:   yf.Args,
			Origin: pos.origin(filename, "functions", i),
		})
	}
	for i, yc := range yl.Constants {
		origin := pos.origin(filename, "constants", i)
		value, err := nodeValue(&yc.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: constant '%s': %w", origin, yc.Name, err)
		}
		lib.Constants = append(lib.Constants, &Constant{
			Name:   yc.Name,
			Symbol: yc.Symbol,
			Type:   yc.Type,
			Value:  value,
			Origin: origin,
		})
	}
	for i, yv := range yl.Variables {
		lib.Variables = append(lib.Variables, &Variable{
			Name:   yv.Name,
			Symbol: yv.Symbol,
			Type:   yv.Type,
			Origin: pos.origin(filename, "variables", i),
		})
	}
	return lib, nil
}

// yamlLines records where a library and each of its declarations start.
type yamlLines struct {
	library  int
	sections map[string][]int
}

// origin formats the position of the i-th entry of section, or of the
// library itself when section is empty.
func (p yamlLines) origin(filename, section string, i int) string {
	line := p.library
	if lines := p.sections[section]; i < len(lines) {
		line = lines[i]
	}
	if line == 0 {
		return filename
	}
	return fmt.Sprintf("%s:%d", filename, line)
}

// declarationLines returns the positions of every entry of the top-level
// "libraries" sequence and of the declarations nested in it.
func declarationLines(src []byte) []yamlLines {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil || len(doc.Content) == 0 {
		return nil
	}
	seq := mappingValue(doc.Content[0], "libraries")
	if seq == nil {
		return nil
	}
	out := make([]yamlLines, 0, len(seq.Content))
	for _, item := range seq.Content {
		pos := yamlLines{library: item.Line, sections: make(map[string][]int)}
		for _, section := range []string{"structs", "functions", "constants", "variables"} {
			if entries := mappingValue(item, section); entries != nil {
				for _, entry := range entries.Content {
					pos.sections[section] = append(pos.sections[section], entry.Line)
				}
			}
		}
		out = append(out, pos)
	}
	return out
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

// nodeValue converts a YAML node into the value HCL would produce for the
// same literal. An absent node is a null value.
func nodeValue(n *yaml.Node) (cty.Value, error) {
	switch n.Kind {
	case 0:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return cty.NullVal(cty.DynamicPseudoType), nil
		}
		return nodeValue(n.Content[0])
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.ScalarNode:
		return scalarValue(n)
	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeValue(c)
			if err != nil {
				return cty.NilVal, err
			}
			elems = append(elems, v)
		}
		return cty.TupleVal(elems), nil
	case yaml.MappingNode:
		if len(n.Content) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			if key.Kind != yaml.ScalarNode {
				return cty.NilVal, fmt.Errorf("line %d: object keys must be strings", key.Line)
			}
			if _, dup := attrs[key.Value]; dup {
				return cty.NilVal, fmt.Errorf("line %d: duplicate key %q", key.Line, key.Value)
			}
			v, err := nodeValue(n.Content[i+1])
			if err != nil {
				return cty.NilVal, err
			}
			attrs[key.Value] = v
		}
		return cty.ObjectVal(attrs), nil
	}
	return cty.NilVal, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
}

func scalarValue(n *yaml.Node) (cty.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return cty.NullVal(cty.DynamicPseudoType), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return cty.NilVal, err
		}
		return cty.BoolVal(b), nil
	case "!!int":
		i, ok := new(big.Int).SetString(n.Value, 0)
		if !ok {
			return cty.NilVal, fmt.Errorf("line %d: invalid integer %q", n.Line, n.Value)
		}
		return cty.NumberVal(new(big.Float).SetInt(i)), nil
	case "!!float":
		if v, err := cty.ParseNumberVal(n.Value); err == nil {
			return v, nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return cty.NilVal, err
		}
		if math.IsNaN(f) {
			return cty.NilVal, fmt.Errorf("line %d: NaN is not a valid constant", n.Line)
		}
		return cty.NumberFloatVal(f), nil
	}
	return cty.StringVal(n.Value), nil
}
