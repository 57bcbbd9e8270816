// Package ctype is the in-memory model of the C type system the importer
// recognises: primitives, pointers, arrays, functions, records, enums, and
// forward (incomplete) references, plus rendering of each into Vesper
// source text. Every node knows how to print itself; a small interface ties
// the tree together.
package ctype

import (
	"io"

	"github.com/vesper-lang/bootstrap/pkg/omap"
)

// Type is any C type the Importer can model.
type Type interface {
	// String renders a reference to this type: its own name if it has
	// one, its inline definition otherwise.
	String(ctx *Context) string

	// Definition renders the type's body, e.g. "struct { x: int; }". For
	// types with no natural body (primitives, pointers, ...) this is the
	// same as String.
	Definition(ctx *Context) string

	// PrintReferences walks the type's own referenced types first, then
	// (for Record/Enum) emits "export type NAME = ..." to w exactly once
	// per context, guarded by ctx's has-printed set.
	PrintReferences(ctx *Context, w io.Writer)
}

// Context holds one module's typedef and tag tables, which a Type's
// String/Definition/PrintReferences methods resolve against, plus the
// has-printed set that prevents re-emitting a type and breaks reference
// cycles between records.
type Context struct {
	Typedefs *omap.Map[string, Type]
	Tagged   *omap.Map[string, Type]
	seeded   map[string]bool
	printed  map[Type]bool
}

// NewContext creates an empty Context with no typedef/tag prelude.
func NewContext() *Context {
	return &Context{
		Typedefs: omap.New[string, Type](),
		Tagged:   omap.New[string, Type](),
		seeded:   make(map[string]bool),
		printed:  make(map[Type]bool),
	}
}

// SeedTypedef registers a prelude typedef. Seeded names resolve like any
// other typedef but are never emitted as `export type` aliases: they come
// from the platform prelude, not the header being imported, and every
// module would otherwise re-declare them.
func (c *Context) SeedTypedef(name string, t Type) {
	c.Typedefs.Set(name, t)
	c.seeded[name] = true
}

// IsSeeded reports whether name came from the prelude rather than the
// walked header.
func (c *Context) IsSeeded(name string) bool { return c.seeded[name] }

// MarkPrinted records that t's body has been emitted, returning true if it
// was already marked (callers should skip emitting again).
func (c *Context) MarkPrinted(t Type) bool {
	if c.printed[t] {
		return true
	}
	c.printed[t] = true
	return false
}
