package ctype

import (
	"fmt"
	"io"
	"strings"
)

// Pointer is a C pointer type. `void*` prints as a bare "*".
type Pointer struct {
	Elem Type
}

func (p *Pointer) String(ctx *Context) string {
	if p.Elem == Void {
		return "*"
	}
	return "*" + p.Elem.String(ctx)
}

func (p *Pointer) Definition(ctx *Context) string { return p.String(ctx) }

func (p *Pointer) PrintReferences(ctx *Context, w io.Writer) {
	p.Elem.PrintReferences(ctx, w)
}

// Array is a C array type. Size is nil for an unsized array, meaning it
// decays to a pointer, matching a function parameter declared `T arr[]`.
type Array struct {
	Elem Type
	Size *int
}

func (a *Array) String(ctx *Context) string {
	if a.Size != nil {
		return fmt.Sprintf("[%d; %s]", *a.Size, a.Elem.String(ctx))
	}
	return "*" + a.Elem.String(ctx)
}

func (a *Array) Definition(ctx *Context) string { return a.String(ctx) }

func (a *Array) PrintReferences(ctx *Context, w io.Writer) {
	a.Elem.PrintReferences(ctx, w)
}

// Function is a C function type, used when a function appears as a value
// (function pointer, function-pointer typedef), not a top-level
// FunctionDecl (that is decl.Func, which renders differently: a void
// return is omitted entirely, a non-void return has no parens, and there
// is no Function.String wrapper at all).
type Function struct {
	Args []Type
	Ret  Type
}

func (f *Function) String(ctx *Context) string {
	parts := make([]string, 0, len(f.Args))
	for _, a := range f.Args {
		if a == Void {
			continue
		}
		parts = append(parts, a.String(ctx))
	}
	ret := ""
	if f.Ret != Void {
		ret = f.Ret.String(ctx)
	}
	return fmt.Sprintf("def (%s) -> (%s)", strings.Join(parts, ", "), ret)
}

func (f *Function) Definition(ctx *Context) string { return f.String(ctx) }

func (f *Function) PrintReferences(ctx *Context, w io.Writer) {
	for _, a := range f.Args {
		a.PrintReferences(ctx, w)
	}
	f.Ret.PrintReferences(ctx, w)
}
