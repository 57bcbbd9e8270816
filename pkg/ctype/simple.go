package ctype

import "io"

// noRefs is embedded by every type whose PrintReferences is a no-op: it has
// no body to emit at the top level and nothing nested to recurse into.
type noRefs struct{}

func (noRefs) PrintReferences(*Context, io.Writer) {}

// voidType is C's void, a singleton so pointer/function rendering can
// compare against it by identity the way the original compares against a
// single module-level `void` value.
type voidType struct{ noRefs }

func (*voidType) String(*Context) string     { return "void" }
func (*voidType) Definition(*Context) string { return "void" }

// Void is the one instance of voidType.
var Void Type = &voidType{}

// varargsType is the "..." marker in a C variadic function's argument list.
type varargsType struct{ noRefs }

func (*varargsType) String(*Context) string     { return "..." }
func (*varargsType) Definition(*Context) string { return "..." }

// Varargs is the one instance of varargsType.
var Varargs Type = &varargsType{}

// VaListType is __va_list_tag, the fixed builtin tag the front-end emits
// for varargs cursor state. It is pre-registered in every Context under its
// literal tag name.
type VaListType struct{ noRefs }

func (*VaListType) String(*Context) string     { return "__va_list_tag" }
func (*VaListType) Definition(*Context) string { return "__va_list_tag" }

// Integer is a canonical fixed-width (or platform-width) integer type, e.g.
// "int", "ulong", "int64".
type Integer struct {
	noRefs
	Name string
}

func (t *Integer) String(*Context) string     { return t.Name }
func (t *Integer) Definition(*Context) string { return t.Name }

// Float is a canonical floating point type: "float", "double", "float80".
type Float struct {
	noRefs
	Name string
}

func (t *Float) String(*Context) string     { return t.Name }
func (t *Float) Definition(*Context) string { return t.Name }

// Incomplete is a forward reference to a tagged Record/Enum whose body has
// not been walked yet; it resolves against ctx.Tagged at emit time. Its
// PrintReferences is intentionally a no-op: the referent is reached and
// printed through ctx.Tagged/ctx.Typedefs directly, never through a
// pointer/field that merely names it. This is what lets
// `struct A { struct A *next; }` terminate instead of recursing forever.
type Incomplete struct {
	Tag string
}

func (t *Incomplete) resolve(ctx *Context) Type {
	if resolved, ok := ctx.Tagged.Get(t.Tag); ok {
		return resolved
	}
	return nil
}

func (t *Incomplete) String(ctx *Context) string {
	if resolved := t.resolve(ctx); resolved != nil {
		return resolved.String(ctx)
	}
	return t.Tag
}

func (t *Incomplete) Definition(ctx *Context) string {
	if resolved := t.resolve(ctx); resolved != nil {
		return resolved.Definition(ctx)
	}
	return t.Tag
}

func (t *Incomplete) PrintReferences(*Context, io.Writer) {}
