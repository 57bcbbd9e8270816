package emitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesper-lang/bootstrap/pkg/ctype"
	"github.com/vesper-lang/bootstrap/pkg/decl"
	"github.com/vesper-lang/bootstrap/pkg/omap"
)

func sampleModule() Module {
	types := ctype.NewContext()
	globals := omap.New[string, decl.Declaration]()
	globals.Set("MAX", &decl.Const{Name: "MAX", Type: ctype.Primitives["int"], Value: "10"})
	globals.Set("widget_new", &decl.Func{Name: "widget_new", Ret: ctype.Primitives["int"]})
	globals.Set("errno", &decl.Var{Name: "errno", Type: ctype.Primitives["int"]})
	return Module{Globals: globals, Types: types}
}

func TestWriteDeclarationsOrdersConstsThenFuncsThenVars(t *testing.T) {
	m := sampleModule()
	var buf strings.Builder
	require.NoError(t, WriteDeclarations(&buf, m))

	out := buf.String()
	constIdx := strings.Index(out, "export const MAX")
	funcIdx := strings.Index(out, "export import def")
	varIdx := strings.Index(out, "export import var")
	require.True(t, constIdx >= 0 && funcIdx >= 0 && varIdx >= 0)
	assert.Less(t, constIdx, funcIdx)
	assert.Less(t, funcIdx, varIdx)
}

func TestWriteSymbolsSizesArrayToFuncsAndVars(t *testing.T) {
	m := sampleModule()
	var buf strings.Builder
	require.NoError(t, WriteSymbols(&buf, "widgets", m, nil))

	out := buf.String()
	assert.Contains(t, out, "import widgets")
	assert.Contains(t, out, "export var __SYMBOLS: [2; symbol::Symbol]")
	assert.Contains(t, out, "__SYMBOLS[0]")
	assert.Contains(t, out, "__SYMBOLS[1]")
}

func TestWriteDeclarationsPrintsTypeClosureExactlyOnce(t *testing.T) {
	// A record registered under both its tag and a typedef must emit a
	// single "export type" line, under the typedef name.
	types := ctype.NewContext()
	rec := ctype.NewStruct("Point", []ctype.Field{
		{Type: ctype.Primitives["int"], Name: "x"},
		{Type: ctype.Primitives["int"], Name: "y"},
	})
	rec.Typename = "point_t"
	types.Tagged.Set("Point", rec)
	types.Typedefs.Set("point_t", rec)

	globals := omap.New[string, decl.Declaration]()
	globals.Set("origin", &decl.Var{Name: "origin", Type: rec})

	var buf strings.Builder
	require.NoError(t, WriteDeclarations(&buf, Module{Globals: globals, Types: types}))

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "export type point_t"))
	assert.NotContains(t, out, "export type s_Point")
	assert.Contains(t, out, "export import var #extern origin: point_t")
}

func TestWriteDeclarationsEmitsTypedefAliases(t *testing.T) {
	// `typedef unsigned long long u64;` and a function-pointer typedef
	// both get explicit alias lines; neither is a record, so nothing else
	// would print them.
	types := ctype.NewContext()
	types.Typedefs.Set("u64", ctype.Primitives["unsigned llong"])
	types.Typedefs.Set("cmp_t", &ctype.Function{
		Args: []ctype.Type{&ctype.Pointer{Elem: ctype.Void}, &ctype.Pointer{Elem: ctype.Void}},
		Ret:  ctype.Primitives["int"],
	})

	var buf strings.Builder
	require.NoError(t, WriteDeclarations(&buf, Module{Globals: omap.New[string, decl.Declaration](), Types: types}))

	out := buf.String()
	assert.Contains(t, out, "export type u64 = uint64")
	assert.Contains(t, out, "export type cmp_t = def (*, *) -> (int)")
}

func TestWriteDeclarationsSkipsPreludeTypedefs(t *testing.T) {
	types := ctype.NewContext()
	types.SeedTypedef("bool", ctype.Primitives["_Bool"])
	types.Typedefs.Set("u8", ctype.Primitives["_Bool"])

	var buf strings.Builder
	require.NoError(t, WriteDeclarations(&buf, Module{Globals: omap.New[string, decl.Declaration](), Types: types}))

	out := buf.String()
	assert.NotContains(t, out, "export type bool")
	assert.Contains(t, out, "export type u8 = uint8")
}

func TestWriteDeclarationsInlinesAnonymousAggregates(t *testing.T) {
	// An anonymous struct nested in a named one appears only inline at
	// its field site, never as its own top-level export.
	types := ctype.NewContext()
	inner := ctype.NewStruct("", []ctype.Field{{Type: ctype.Primitives["int"], Name: "x"}})
	outer := ctype.NewStruct("Outer", []ctype.Field{{Type: inner, Name: "inner"}})
	types.Tagged.Set("Outer", outer)

	var buf strings.Builder
	require.NoError(t, WriteDeclarations(&buf, Module{Globals: omap.New[string, decl.Declaration](), Types: types}))

	out := buf.String()
	assert.Contains(t, out, "export type s_Outer = struct { inner: struct { x: int; }; }")
	assert.Equal(t, 1, strings.Count(out, "export type"))
}

func TestWriteDeclarationsTaglessEnumEmitsOnlyConsts(t *testing.T) {
	// `enum { A, B = 5, C };` produces three constants and no type line.
	types := ctype.NewContext()
	globals := omap.New[string, decl.Declaration]()
	globals.Set("A", &decl.Const{Name: "A", Type: ctype.Primitives["int"], Value: "0"})
	globals.Set("B", &decl.Const{Name: "B", Type: ctype.Primitives["int"], Value: "5"})
	globals.Set("C", &decl.Const{Name: "C", Type: ctype.Primitives["int"], Value: "B + 1"})

	var buf strings.Builder
	require.NoError(t, WriteDeclarations(&buf, Module{Globals: globals, Types: types}))

	out := buf.String()
	assert.Contains(t, out, "export const A: int = 0")
	assert.Contains(t, out, "export const B: int = 5")
	assert.Contains(t, out, "export const C: int = B + 1")
	assert.NotContains(t, out, "export type")
}

func TestWriteSymbolsDLLImportEntryOmitsAddressSlot(t *testing.T) {
	types := ctype.NewContext()
	globals := omap.New[string, decl.Declaration]()
	globals.Set("GetLastError", &decl.Func{Name: "GetLastError", Ret: ctype.Primitives["unsigned int"], DLLImport: true})
	globals.Set("close", &decl.Func{Name: "close", Ret: ctype.Primitives["int"]})

	var buf strings.Builder
	require.NoError(t, WriteSymbols(&buf, "win", Module{Globals: globals, Types: types}, nil))

	out := buf.String()
	assert.Contains(t, out, `dllimport = true, name = "GetLastError"`)
	assert.NotContains(t, out, `name = "GetLastError", function`)
	assert.Contains(t, out, `dllimport = false, name = "close", function = *close !def () -> ()`)
}

func TestWriteSymbolsFiltersByIncludedSet(t *testing.T) {
	m := sampleModule()
	included := map[string]struct{}{"widget_new": {}}
	var buf strings.Builder
	require.NoError(t, WriteSymbols(&buf, "widgets", m, included))

	out := buf.String()
	assert.Contains(t, out, "export var __SYMBOLS: [1; symbol::Symbol]")
	assert.Contains(t, out, "widget_new")
	assert.NotContains(t, out, `"errno"`)
}
