package decl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vesper-lang/bootstrap/pkg/ctype"
)

func TestVarDeclRendersExternPointer(t *testing.T) {
	// `const int *p;` renders as `export import var #extern p: *int`.
	ctx := ctype.NewContext()
	v := &Var{Name: "p", Type: &ctype.Pointer{Elem: ctype.Primitives["int"]}}
	assert.Equal(t, "export import var #extern p: *int", v.ToDeclaration(ctx))
}

func TestDLLImportVarOmitsAddressSlot(t *testing.T) {
	ctx := ctype.NewContext()
	v := &Var{Name: "errno_location", Type: ctype.Primitives["int"], DLLImport: true}
	assert.Contains(t, v.ToDeclaration(ctx), "#dllimport")
	sym := v.ToSymbol(0, ctx)
	assert.Contains(t, sym, "dllimport = true")
	assert.NotContains(t, sym, "variable =")
}

func TestFunctionDeclVoidReturnElided(t *testing.T) {
	ctx := ctype.NewContext()
	f := &Func{Name: "free", Ret: ctype.Void, Args: []Param{{Name: "ptr", Type: &ctype.Pointer{Elem: ctype.Void}}}}
	assert.Equal(t, "export import def #extern free(ptr: *)", f.ToDeclaration(ctx))
}

func TestFunctionDeclVariadic(t *testing.T) {
	ctx := ctype.NewContext()
	f := &Func{
		Name:     "printf",
		Ret:      ctype.Primitives["int"],
		Args:     []Param{{Name: "fmt", Type: &ctype.Pointer{Elem: ctype.Primitives["char"]}}},
		Variadic: true,
	}
	assert.Equal(t, "export import def #extern printf(fmt: *char, ...) -> int", f.ToDeclaration(ctx))
}

func TestFunctionDeclEscapesReservedArgNames(t *testing.T) {
	// Args named type/in/from get a
	// trailing underscore.
	ctx := ctype.NewContext()
	f := &Func{
		Name: "convert",
		Ret:  ctype.Void,
		Args: []Param{
			{Name: "type", Type: ctype.Primitives["int"]},
			{Name: "in", Type: ctype.Primitives["int"]},
			{Name: "from", Type: ctype.Primitives["int"]},
		},
	}
	assert.Equal(t, "export import def #extern convert(type_: int, in_: int, from_: int)", f.ToDeclaration(ctx))
}

func TestDLLImportFunctionSymbolOmitsFunctionSlot(t *testing.T) {
	// A dll-imported function carries the attribute in its declaration
	// and omits the address slot in its symbol entry.
	ctx := ctype.NewContext()
	f := &Func{Name: "GetLastError", Ret: ctype.Primitives["unsigned int"], DLLImport: true}
	assert.Contains(t, f.ToDeclaration(ctx), "#extern #dllimport GetLastError")
	sym := f.ToSymbol(2, ctx)
	assert.Contains(t, sym, "__SYMBOLS[2]")
	assert.Contains(t, sym, "kind = symbol::SymbolKind::FUNCTION")
	assert.Contains(t, sym, "dllimport = true")
	assert.NotContains(t, sym, "function =")
}

func TestConstDeclHasNoSymbolEntry(t *testing.T) {
	ctx := ctype.NewContext()
	c := &Const{Name: "A", Type: ctype.Primitives["int"], Value: "0"}
	assert.Equal(t, "export const A: int = 0", c.ToDeclaration(ctx))
	assert.Equal(t, "", c.ToSymbol(0, ctx))
}
