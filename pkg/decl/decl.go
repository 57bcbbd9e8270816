// Package decl implements the three kinds of global declaration the
// importer produces: constants (from enum members), variables, and
// functions. Each knows how to render its own Vesper declaration line and
// its companion symbol-table entry.
package decl

import (
	"fmt"
	"strings"

	"github.com/vesper-lang/bootstrap/pkg/ctype"
)

// Declaration is any of Const, Var, or Func.
type Declaration interface {
	// ToDeclaration renders the line that goes in MODULE.vpr.
	ToDeclaration(ctx *ctype.Context) string

	// ToSymbol renders this declaration's entry in MODULE.vpr.sym's
	// __SYMBOLS array, or "" if it has none (Const never does).
	ToSymbol(index int, ctx *ctype.Context) string

	// DeclName is the declaration's global name, used for exclusion and
	// cross-module deduplication.
	DeclName() string

	// DeclLine is the best-effort originating C header line (0 if
	// unknown), consumed only by pkg/provenance.
	DeclLine() int
}

// Const is a ConstDecl: a named constant, always of type int, produced
// from an enum member.
type Const struct {
	Name  string
	Type  ctype.Type
	Value string

	// Line is the 1-indexed line in the originating C header this
	// declaration was walked from, best-effort (clangast.Node.Line). 0
	// means unknown; used only by pkg/provenance, never by rendering.
	Line int
}

func (c *Const) DeclName() string { return c.Name }

func (c *Const) DeclLine() int { return c.Line }

func (c *Const) ToDeclaration(ctx *ctype.Context) string {
	return fmt.Sprintf("export const %s: %s = %s", c.Name, c.Type.String(ctx), c.Value)
}

func (c *Const) ToSymbol(int, *ctype.Context) string { return "" }

// Var is a VarDecl: an extern global variable, optionally satisfied by a
// dynamically loaded library (DLLImport).
type Var struct {
	Name      string
	Type      ctype.Type
	DLLImport bool

	// Line is the originating C header line, best-effort; see Const.Line.
	Line int
}

func (v *Var) DeclName() string { return v.Name }

func (v *Var) DeclLine() int { return v.Line }

func (v *Var) ToDeclaration(ctx *ctype.Context) string {
	var b strings.Builder
	b.WriteString("export import var #extern ")
	if v.DLLImport {
		b.WriteString("#dllimport ")
	}
	fmt.Fprintf(&b, "%s: %s", v.Name, v.Type.String(ctx))
	return b.String()
}

func (v *Var) ToSymbol(index int, ctx *ctype.Context) string {
	variable := ""
	if !v.DLLImport {
		variable = fmt.Sprintf(", variable = *%s !*", v.Name)
	}
	return fmt.Sprintf(
		`__SYMBOLS[%d] = { kind = symbol::SymbolKind::VARIABLE, dllimport = %s, name = "%s"%s } !symbol::Symbol`,
		index, boolLiteral(v.DLLImport), v.Name, variable,
	)
}

// Param is one named, typed argument of a FunctionDecl.
type Param struct {
	Name string
	Type ctype.Type
}

// Func is a FunctionDecl: an extern function, optionally variadic and/or
// satisfied by a dynamically loaded library.
type Func struct {
	Name      string
	Ret       ctype.Type
	Args      []Param
	Variadic  bool
	DLLImport bool

	// Line is the originating C header line, best-effort; see Const.Line.
	Line int
}

func (f *Func) DeclName() string { return f.Name }

func (f *Func) DeclLine() int { return f.Line }

func (f *Func) ToDeclaration(ctx *ctype.Context) string {
	parts := make([]string, 0, len(f.Args)+1)
	for _, a := range f.Args {
		parts = append(parts, fmt.Sprintf("%s: %s", ctype.EscapeName(a.Name), a.Type.String(ctx)))
	}
	if f.Variadic {
		parts = append(parts, "...")
	}

	var b strings.Builder
	b.WriteString("export import def #extern ")
	if f.DLLImport {
		b.WriteString("#dllimport ")
	}
	fmt.Fprintf(&b, "%s(%s)", f.Name, strings.Join(parts, ", "))
	if f.Ret != ctype.Void {
		b.WriteString(" -> ")
		b.WriteString(f.Ret.String(ctx))
	}
	return b.String()
}

func (f *Func) ToSymbol(index int, ctx *ctype.Context) string {
	function := ""
	if !f.DLLImport {
		function = fmt.Sprintf(", function = *%s !def () -> ()", f.Name)
	}
	return fmt.Sprintf(
		`__SYMBOLS[%d] = { kind = symbol::SymbolKind::FUNCTION, dllimport = %s, name = "%s"%s } !symbol::Symbol`,
		index, boolLiteral(f.DLLImport), f.Name, function,
	)
}

func boolLiteral(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
