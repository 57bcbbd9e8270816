// Package clangast models the subset of clang's `-ast-dump=json` schema
// the importer walks: a handful of declaration kinds (VarDecl/TypedefDecl/
// FunctionDecl/RecordDecl/EnumDecl) plus the constant expression kinds
// that appear inside an EnumConstantDecl's initializer.
//
// Node wraps `map[string]any` with typed accessors instead of
// unmarshalling into a fixed struct per node kind; the schema is too
// open-ended for that; a RecordDecl's "inner" mixes FieldDecl and nested
// RecordDecl entries, for instance.
package clangast

import (
	"strconv"
	"strings"
)

// Node is one entry in clang's AST JSON dump, or in the "inner" array of one.
type Node map[string]any

// Kind is this node's "kind" field, e.g. "VarDecl", "FunctionDecl".
func (n Node) Kind() string { return n.str("kind") }

// Name is this node's "name" field, or "" if absent (anonymous record/enum).
func (n Node) Name() string { return n.str("name") }

// ID is this node's "id" field, used as the key into StructIDs for
// RecordDecl/EnumDecl nodes referenced later by a TypedefDecl.
func (n Node) ID() string { return n.str("id") }

// Line reads this node's "loc"."line" field, or 0 if clang omitted it.
// clang's AST dump only prints "line" on a node's "loc" the first time a
// given source line is mentioned; later nodes on the same line carry only
// "col", so 0 here means "same line as the previous node the walker saw",
// not "unknown": callers fall back to the context's last-seen line
// (clangast.ImportContext.LastLine) rather than treating 0 as absolute.
func (n Node) Line() int {
	v, ok := n["loc"]
	if !ok {
		return 0
	}
	m, ok := v.(map[string]any)
	if !ok {
		return 0
	}
	loc := Node(m)
	if f, ok := loc["line"].(float64); ok {
		return int(f)
	}
	return 0
}

func (n Node) str(key string) string {
	if v, ok := n[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func (n Node) bool(key string) bool {
	if v, ok := n[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// Inner is this node's "inner" array, or nil if it has none.
func (n Node) Inner() []Node {
	v, ok := n["inner"]
	if !ok {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Node, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Node(m))
		}
	}
	return out
}

// IsBitfield reports this FieldDecl's "isBitfield" flag.
func (n Node) IsBitfield() bool { return n.bool("isBitfield") }

// IsVariadic reports this FunctionDecl's "variadic" flag.
func (n Node) IsVariadic() bool { return n.bool("variadic") }

// IsInline reports this FunctionDecl's "inline" flag.
func (n Node) IsInline() bool { return n.bool("inline") }

// StorageClass is this node's "storageClass" field ("static", "extern", "").
func (n Node) StorageClass() string { return n.str("storageClass") }

// TagUsed is this RecordDecl's "tagUsed" field ("struct" or "union").
func (n Node) TagUsed() string { return n.str("tagUsed") }

// Value is this IntegerLiteral/EnumConstantDecl-initializer node's "value".
func (n Node) Value() string { return n.str("value") }

// Opcode is this UnaryOperator/BinaryOperator node's "opcode".
func (n Node) Opcode() string { return n.str("opcode") }

// QualType returns the node's effective type string: the desugared type
// when present and not itself anonymous, falling back to the plain
// qualType otherwise. An anonymous desugared type (clang prints "unnamed
// struct at ..." or similar) carries no usable name
// for the grammar, so in that case the original (sugared) qualType,
// typically the enclosing typedef's own spelling, is used instead.
func (n Node) QualType() string {
	tv, ok := n["type"]
	if !ok {
		return ""
	}
	tm, ok := tv.(map[string]any)
	if !ok {
		return ""
	}
	t := Node(tm)
	if desugared := t.str("desugaredQualType"); desugared != "" {
		if !IsAnonymous(desugared) {
			return desugared
		}
	}
	return t.str("qualType")
}

// IsAnonymous reports whether a qualType string names clang's placeholder
// for an unnamed struct/union/enum rather than a real tag or typedef name.
func IsAnonymous(qualType string) bool {
	for _, marker := range []string{
		"unnamed struct at", "unnamed union", "unnamed at", "anonymous at",
	} {
		if strings.Contains(qualType, marker) {
			return true
		}
	}
	return false
}

// FieldName returns this FieldDecl's "name", or a positional fallback:
// unnamed non-bitfield members are named "_N" by position, unnamed
// bitfields stay nameless.
func (n Node) FieldName(index int, bitfield bool) string {
	if name := n.Name(); name != "" {
		return name
	}
	if bitfield {
		return ""
	}
	return fieldPlaceholder(index)
}

func fieldPlaceholder(index int) string {
	return "_" + strconv.Itoa(index)
}
