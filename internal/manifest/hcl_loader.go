package manifest

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/symlib/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// hclFile decodes every top-level block of a manifest file.
type hclFile struct {
	Libraries []*hclLibrary `hcl:"library,block"`
}

type hclLibrary struct {
	Name      string         `hcl:"name,label"`
	Structs   []*hclStruct   `hcl:"struct,block"`
	Functions []*hclFunction `hcl:"function,block"`
	Constants []*hclConstant `hcl:"constant,block"`
	Variables []*hclVariable `hcl:"variable,block"`
	DeclRange hcl.Range      `hcl:",def_range"`
}

type hclStruct struct {
	Name      string      `hcl:"name,label"`
	Fields    []*hclField `hcl:"field,block"`
	DeclRange hcl.Range   `hcl:",def_range"`
}

type hclField struct {
	Name string `hcl:"name,label"`
	Type string `hcl:"type"`
}

type hclFunction struct {
	Name      string    `hcl:"name,label"`
	Args      string    `hcl:"args,optional"`
	Symbol    string    `hcl:"symbol,optional"`
	DeclRange hcl.Range `hcl:",def_range"`
}

type hclConstant struct {
	Name      string         `hcl:"name,label"`
	Type      string         `hcl:"type,optional"`
	Symbol    string         `hcl:"symbol,optional"`
	Value     hcl.Expression `hcl:"value,optional"`
	DeclRange hcl.Range      `hcl:",def_range"`
}

type hclVariable struct {
	Name      string    `hcl:"name,label"`
	Type      string    `hcl:"type"`
	Symbol    string    `hcl:"symbol,optional"`
	DeclRange hcl.Range `hcl:",def_range"`
}

// HCLLoader reads manifests written in HCL.
type HCLLoader struct{}

// NewHCLLoader creates a new HCL manifest loader.
func NewHCLLoader() *HCLLoader {
	return &HCLLoader{}
}

// Load parses the manifest file at path.
func (l *HCLLoader) Load(ctx context.Context, path string) ([]*Library, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read HCL manifest %s: %w", path, err)
	}
	libs, err := ParseHCL(src, path)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("HCL manifest loaded.", "libraries", len(libs))
	return libs, nil
}

// ParseHCL parses manifest source. filename is used in diagnostics and in
// the Origin of every declaration.
func ParseHCL(src []byte, filename string) ([]*Library, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var root hclFile
	diags = gohcl.DecodeBody(file.Body, nil, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	libs := make([]*Library, 0, len(root.Libraries))
	for _, hl := range root.Libraries {
		lib, err := translateLibrary(hl)
		if err != nil {
			return nil, err
		}
		libs = append(libs, lib)
	}
	return libs, nil
}

func translateLibrary(hl *hclLibrary) (*Library, error) {
	lib := &Library{Name: hl.Name, Origin: hl.DeclRange.String()}

	for _, hs := range hl.Structs {
		s := &Struct{Name: hs.Name, Origin: hs.DeclRange.String()}
		for _, f := range hs.Fields {
			s.Fields = append(s.Fields, &StructField{Name: f.Name, Type: f.Type})
		}
		lib.Structs = append(lib.Structs, s)
	}
	for _, hf := range hl.Functions {
		lib.Functions = append(lib.Functions, &Function{
			Name:   hf.Name,
			Symbol: hf.Symbol,
			Args:   hf.Args,
			Origin: hf.DeclRange.String(),
		})
	}
	for _, hc := range hl.Constants {
		value := cty.NullVal(cty.DynamicPseudoType)
		if hc.Value != nil {
			v, diags := hc.Value.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("%s: constant '%s': %w", hc.DeclRange, hc.Name, diags)
			}
			value = v
		}
		lib.Constants = append(lib.Constants, &Constant{
			Name:   hc.Name,
			Symbol: hc.Symbol,
			Type:   hc.Type,
			Value:  value,
			Origin: hc.DeclRange.String(),
		})
	}
	for _, hv := range hl.Variables {
		lib.Variables = append(lib.Variables, &Variable{
			Name:   hv.Name,
			Symbol: hv.Symbol,
			Type:   hv.Type,
			Origin: hv.DeclRange.String(),
		})
	}
	return lib, nil
}
