package manifest

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/specialistvlad/symlib/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestLoadFiles_MixedFormats(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a/one.hcl", `library "one" {
  constant "A" { value = 1 }
}
`)
	writeFile(t, dir, "b/two.yaml", "libraries:\n  - name: two\n    constants:\n      - { name: B, value: 2 }\n")
	writeFile(t, dir, "b/three.yml", "libraries:\n  - name: three\n")
	writeFile(t, dir, "notes.txt", "not a manifest")

	libs, err := LoadFiles(context.Background(), dir)
	require.NoError(t, err)

	var names []string
	for _, lib := range libs {
		names = append(names, lib.Name)
	}
	assert.Equal(t, []string{"one", "three", "two"}, names)
}

func TestLoadFiles_LogsCarryFilePath(t *testing.T) {
	dir := t.TempDir()
	hclPath := writeFile(t, dir, "one.hcl", `library "one" {}`)
	yamlPath := writeFile(t, dir, "two.yaml", "libraries:\n  - name: two\n")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	_, err := LoadFiles(ctx, dir)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `msg="HCL manifest loaded." path=`+hclPath)
	assert.Contains(t, out, `msg="YAML manifest loaded." path=`+yamlPath)
	assert.Contains(t, out, `msg="Library declared." path=`+yamlPath+" lib=two")
}

func TestLoadFiles_DuplicateLibrary(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "first.hcl", `library "dup" {}`)
	second := writeFile(t, dir, "second.yaml", "libraries:\n  - name: dup\n")

	_, err := LoadFiles(context.Background(), first, second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "library 'dup' declared twice")
}

func TestLoadFiles_MissingPathIsSkipped(t *testing.T) {
	libs, err := LoadFiles(context.Background(), filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, libs)
}

func TestLoadFiles_PropagatesParseErrors(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.hcl", `library "x" {`)

	_, err := LoadFiles(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.hcl")
}

func TestLoaderFor(t *testing.T) {
	for path, want := range map[string]Loader{
		"m.hcl":  &HCLLoader{},
		"m.yaml": &YAMLLoader{},
		"m.yml":  &YAMLLoader{},
	} {
		got, ok := LoaderFor(path)
		require.True(t, ok, path)
		assert.IsType(t, want, got, path)
	}

	_, ok := LoaderFor("m.json")
	assert.False(t, ok)
}

func TestBindings(t *testing.T) {
	var x int32
	b := NewBindings()
	b.RegisterFunc("f", func(args ...cty.Value) (cty.Value, error) { return cty.NilVal, nil })
	b.RegisterVariable("x", unsafe.Pointer(&x))

	assert.Equal(t, []string{"f", "x"}, b.Names())

	got, ok := b.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, BindVariable, got.Kind)
	assert.Equal(t, unsafe.Pointer(&x), got.Address)

	_, ok = b.Lookup("y")
	assert.False(t, ok)

	assert.PanicsWithValue(t, "binding with name 'f' already registered", func() {
		b.RegisterConstant("f", func(buf []byte) {})
	})
}

func TestBindingKind_String(t *testing.T) {
	assert.Equal(t, "function", BindFunc.String())
	assert.Equal(t, "variable address", BindVariable.String())
	assert.Equal(t, "BindingKind(9)", BindingKind(9).String())
}
