package manifest

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

func TestParseYAML_MatchesHCL(t *testing.T) {
	fromYAML, err := ParseYAML([]byte(demoYAML), "demo.yaml")
	require.NoError(t, err)
	fromHCL, err := ParseHCL([]byte(demoHCL), "demo.hcl")
	require.NoError(t, err)

	if diff := cmp.Diff(demoLibrary(), fromYAML[0], modelOptions); diff != "" {
		t.Errorf("decoded model mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(fromHCL, fromYAML, modelOptions); diff != "" {
		t.Errorf("formats disagree (-hcl +yaml):\n%s", diff)
	}
}

func TestParseYAML_Origins(t *testing.T) {
	src := `libraries:
  - name: a
  - name: b
    functions:
      - { name: f }
      - name: g
        args: one
    structs:
      - name: s
        fields: []
    constants:
      - { name: A, value: 1 }
    variables:
      - { name: v, type: int }
`
	libs, err := ParseYAML([]byte(src), "two.yaml")
	require.NoError(t, err)
	require.Len(t, libs, 2)
	assert.Equal(t, "two.yaml:2", libs[0].Origin)
	assert.Equal(t, "two.yaml:3", libs[1].Origin)
	assert.Equal(t, "two.yaml:5", libs[1].Functions[0].Origin)
	assert.Equal(t, "two.yaml:6", libs[1].Functions[1].Origin)
	assert.Equal(t, "two.yaml:9", libs[1].Structs[0].Origin)
	assert.Equal(t, "two.yaml:12", libs[1].Constants[0].Origin)
	assert.Equal(t, "two.yaml:14", libs[1].Variables[0].Origin)
}

func TestParseYAML_ValueErrorNamesDeclarationLine(t *testing.T) {
	src := `libraries:
  - name: a
    constants:
      - { name: OK, value: 1 }
      - name: BAD
        value: .nan
`
	_, err := ParseYAML([]byte(src), "bad.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml:5: constant 'BAD'")
}

func TestParseYAML_Empty(t *testing.T) {
	libs, err := ParseYAML(nil, "empty.yaml")
	require.NoError(t, err)
	assert.Empty(t, libs)
}

func TestParseYAML_Errors(t *testing.T) {
	cases := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"unknown key", "libraries:\n  - name: a\n    widgets: []\n", "failed to decode YAML file"},
		{"not a mapping", "- a\n- b\n", "failed to decode YAML file"},
		{"duplicate value key", "libraries:\n  - name: a\n    constants:\n      - name: C\n        value: {x: 1, x: 2}\n", `"x"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseYAML([]byte(tc.src), "bad.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestNodeValue(t *testing.T) {
	cases := []struct {
		src  string
		want cty.Value
	}{
		{"42", cty.NumberIntVal(42)},
		{"-7", cty.NumberIntVal(-7)},
		{"0x10", cty.NumberIntVal(16)},
		{"18446744073709551615", cty.MustParseNumberVal("18446744073709551615")},
		{"2.5", cty.NumberFloatVal(2.5)},
		{".inf", cty.NumberFloatVal(math.Inf(1))},
		{"true", cty.True},
		{"hello", cty.StringVal("hello")},
		{"'42'", cty.StringVal("42")},
		{"null", cty.NullVal(cty.DynamicPseudoType)},
		{"[]", cty.EmptyTupleVal},
		{"{}", cty.EmptyObjectVal},
		{"[1, a]", cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.StringVal("a")})},
		{"{a: [true]}", cty.ObjectVal(map[string]cty.Value{"a": cty.TupleVal([]cty.Value{cty.True})})},
	}

	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			t.Parallel()
			var doc yaml.Node
			require.NoError(t, yaml.Unmarshal([]byte(tc.src), &doc))

			got, err := nodeValue(&doc)
			require.NoError(t, err)
			assert.True(t, tc.want.RawEquals(got), "want %#v, got %#v", tc.want, got)
		})
	}
}

func TestNodeValue_RejectsNaN(t *testing.T) {
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(".nan"), &doc))

	_, err := nodeValue(&doc)
	require.Error(t, err)
}

func TestYAMLLoader_Load(t *testing.T) {
	path := writeFile(t, t.TempDir(), "demo.yml", demoYAML)

	libs, err := NewYAMLLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, libs, 1)
	assert.Equal(t, "demo", libs[0].Name)
}
