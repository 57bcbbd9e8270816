package ctype

import (
	"fmt"
	"io"
	"strings"
)

// EnumMember is one member of a C enum: its name and, if the C source gave
// it an explicit initializer, the textual constant expression for it. An
// empty Value means the member's numeric value is implicit (previous
// member plus one).
type EnumMember struct {
	Name  string
	Value string
}

// Enum is a C enum. Tag/Typename/AutoName follow the same naming rules as
// Record.
type Enum struct {
	Tag      string
	Typename string
	AutoName string
	Members  []EnumMember
}

// NewEnum builds an Enum; tag may be "" for an anonymous enum.
func NewEnum(tag string, members []EnumMember) *Enum {
	auto := ""
	if tag != "" {
		auto = "e_" + tag
	}
	return &Enum{Tag: tag, AutoName: auto, Members: members}
}

func (e *Enum) canonical(ctx *Context) *Enum {
	if e.Tag == "" {
		return e
	}
	if t, ok := ctx.Tagged.Get(e.Tag); ok {
		if en, ok := t.(*Enum); ok {
			return en
		}
	}
	return e
}

func (e *Enum) String(ctx *Context) string {
	self := e.canonical(ctx)
	name := self.Typename
	if name == "" {
		name = self.AutoName
	}
	if name == "" {
		return self.Definition(ctx)
	}
	return name
}

func (e *Enum) Definition(*Context) string {
	var b strings.Builder
	b.WriteString("enum { ")
	for _, m := range e.Members {
		b.WriteString(m.Name)
		if m.Value != "" {
			b.WriteString(" = ")
			b.WriteString(m.Value)
		}
		b.WriteString("; ")
	}
	b.WriteString("}")
	return b.String()
}

func (e *Enum) PrintReferences(ctx *Context, w io.Writer) {
	self := e
	if e.Typename != "" {
		if t, ok := ctx.Typedefs.Get(e.Typename); ok {
			if en, ok := t.(*Enum); ok {
				self = en
			}
		}
	} else if e.Tag != "" {
		self = e.canonical(ctx)
	}

	if ctx.MarkPrinted(self) {
		return
	}

	name := self.Typename
	if name == "" {
		name = self.AutoName
	}
	if name == "" {
		return
	}
	if len(self.Members) == 0 {
		fmt.Fprintf(w, "export type %s\n", name)
		return
	}
	fmt.Fprintf(w, "export type %s = %s\n", name, self.Definition(ctx))
}
