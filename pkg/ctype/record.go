package ctype

import (
	"fmt"
	"io"
	"strings"
)

// RecordKind distinguishes a C struct from a C union; both share identical
// field layout and resolution rules, differing only in rendering: struct
// prints `struct { ... }`, union prints `struct #union { ... }` since
// Vesper has no separate union keyword.
type RecordKind int

const (
	KindStruct RecordKind = iota
	KindUnion
)

// Field is one member of a Record: a regular named field, an unnamed
// non-bitfield field (auto-named "_i" by the walker), or an unnamed
// bitfield (left nameless).
type Field struct {
	Type       Type
	Name       string
	IsBitfield bool
	BitSize    int
}

// Definition renders "NAME: TYPE" or "#bits(N) NAME: TYPE" for a bitfield.
func (f Field) Definition(ctx *Context) string {
	var b strings.Builder
	if f.IsBitfield {
		fmt.Fprintf(&b, "#bits(%d) ", f.BitSize)
	}
	fmt.Fprintf(&b, "%s: %s", EscapeName(f.Name), f.Type.String(ctx))
	return b.String()
}

// Record is a C struct or union. Tag is the C tag name ("" if anonymous);
// Typename is filled in later if a typedef binds to this record, and wins
// over the tag when both exist. AutoName is the walker-assigned
// "s_TAG"/"u_TAG" fallback name used when there is a tag but no typedef.
type Record struct {
	Kind     RecordKind
	Tag      string
	Typename string
	AutoName string
	Fields   []Field
}

// canonical resolves r to the instance registered in ctx.Tagged under its
// tag: a record object captured early in a walk (a forward declaration, a
// nested reference) may not be the one the tag ultimately binds to.
func (r *Record) canonical(ctx *Context) *Record {
	if r.Tag == "" {
		return r
	}
	if t, ok := ctx.Tagged.Get(r.Tag); ok {
		if rec, ok := t.(*Record); ok {
			return rec
		}
	}
	return r
}

func (r *Record) String(ctx *Context) string {
	self := r.canonical(ctx)
	name := self.Typename
	if name == "" {
		name = self.AutoName
	}
	if name == "" {
		return self.Definition(ctx)
	}
	return name
}

func (r *Record) Definition(ctx *Context) string {
	if len(r.Fields) == 0 {
		return ""
	}
	var b strings.Builder
	if r.Kind == KindUnion {
		b.WriteString("struct #union { ")
	} else {
		b.WriteString("struct { ")
	}
	for _, f := range r.Fields {
		b.WriteString(f.Definition(ctx))
		b.WriteString("; ")
	}
	b.WriteString("}")
	return b.String()
}

// PrintReferences recurses into field types first, then emits this
// record's own "export type NAME [= DEF]" line exactly once per context.
func (r *Record) PrintReferences(ctx *Context, w io.Writer) {
	self := r
	if r.Typename != "" {
		if t, ok := ctx.Typedefs.Get(r.Typename); ok {
			if rec, ok := t.(*Record); ok {
				self = rec
			}
		}
	} else if r.Tag != "" {
		self = r.canonical(ctx)
	}

	if ctx.MarkPrinted(self) {
		return
	}

	for _, f := range self.Fields {
		f.Type.PrintReferences(ctx, w)
	}

	name := self.Typename
	if name == "" {
		name = self.AutoName
	}
	if name == "" {
		return
	}
	if def := self.Definition(ctx); def != "" {
		fmt.Fprintf(w, "export type %s = %s\n", name, def)
	} else {
		fmt.Fprintf(w, "export type %s\n", name)
	}
}

// NewStruct builds a Record for a struct; tag may be "" for an anonymous
// aggregate. AutoName gets the "s_" prefix so a tagged-but-not-typedef'd
// record still has something to print under.
func NewStruct(tag string, fields []Field) *Record {
	return newRecord(KindStruct, "s_", tag, fields)
}

// NewUnion builds a Record for a union.
func NewUnion(tag string, fields []Field) *Record {
	return newRecord(KindUnion, "u_", tag, fields)
}

func newRecord(kind RecordKind, prefix, tag string, fields []Field) *Record {
	auto := ""
	if tag != "" {
		auto = prefix + tag
	}
	return &Record{Kind: kind, Tag: tag, AutoName: auto, Fields: fields}
}
