package clangast

import (
	"fmt"
	"strconv"

	"github.com/vesper-lang/bootstrap/pkg/ctype"
	"github.com/vesper-lang/bootstrap/pkg/ctypeparser"
	"github.com/vesper-lang/bootstrap/pkg/decl"
	"github.com/vesper-lang/bootstrap/pkg/omap"
)

// ImportContext is one header's worth of state while its AST is being
// walked: the ctype.Context (typedef/tag tables shared with the parser),
// the ordered set of top-level declarations discovered so far, and two
// pieces of cross-declaration state: StructIDs (clang node id -> the
// Record/Enum it produced, so a later TypedefDecl can find "the struct I
// was just handed a name for") and LastRecord (the most recently finished
// Record, used when a field or typedef's qualType names an anonymous
// aggregate that has no tag to look up by).
type ImportContext struct {
	Types      *ctype.Context
	Globals    *omap.Map[string, decl.Declaration]
	StructIDs  map[string]ctype.Type
	LastRecord *ctype.Record

	// Header is the path of the file this context's nodes were walked
	// from, carried only so a WalkError can point a diagnostic back at
	// it; nothing in the walk itself reads this field.
	Header string

	// LastLine is the most recent non-zero Node.Line() seen this walk,
	// used as the fallback when a node's own "loc" omits "line" (clang
	// only repeats it when the line actually changes).
	LastLine int
}

// WalkError is a walk failure (an unresolved type or a schema violation)
// anchored to the header line the offending node came from, so a caller
// can hand it to pkg/diag for a source-snippet diagnostic instead of a
// bare Go error string.
type WalkError struct {
	Header string
	Line   int
	Err    error
}

func (e *WalkError) Error() string { return e.Err.Error() }
func (e *WalkError) Unwrap() error { return e.Err }

// lineOf returns n's own line if clang printed one, else the last line the
// walk has seen, recording whichever it returns as the new LastLine.
func (ctx *ImportContext) lineOf(n Node) int {
	if l := n.Line(); l != 0 {
		ctx.LastLine = l
		return l
	}
	return ctx.LastLine
}

// NewImportContext seeds a fresh context: __va_list_tag pre-registered as
// a tag, "bool" and (on darwin) the scalable-vector typedef prelude
// pre-registered as typedefs.
func NewImportContext(goos string) *ImportContext {
	types := ctype.NewContext()
	types.Tagged.Set("__va_list_tag", &ctype.VaListType{})
	for name, t := range ctype.Prelude(goos) {
		types.SeedTypedef(name, t)
	}
	return &ImportContext{
		Types:     types,
		Globals:   omap.New[string, decl.Declaration](),
		StructIDs: make(map[string]ctype.Type),
	}
}

// Walk dispatches one top-level AST node to the handler for its kind,
// ignoring any kind the importer doesn't recognise. A handler's error is
// wrapped in a WalkError carrying the node's best-known header line before
// it's returned.
func Walk(n Node, ctx *ImportContext) error {
	var err error
	switch n.Kind() {
	case "VarDecl":
		err = walkVarDecl(n, ctx)
	case "TypedefDecl":
		err = walkTypedefDecl(n, ctx)
	case "FunctionDecl":
		err = walkFunctionDecl(n, ctx)
	case "RecordDecl":
		_, err = walkRecordDecl(n, ctx)
	case "EnumDecl":
		err = walkEnumDecl(n, ctx)
	}
	if err != nil {
		return &WalkError{Header: ctx.Header, Line: ctx.lineOf(n), Err: err}
	}
	return nil
}

func walkVarDecl(n Node, ctx *ImportContext) error {
	name := n.Name()
	t, err := ctypeparser.Parse(n.QualType(), ctx.Types)
	if err != nil {
		return fmt.Errorf("VarDecl %s: %w", name, err)
	}
	dllimport := false
	for _, attr := range n.Inner() {
		if attr.Kind() == "DLLImportAttr" {
			dllimport = true
		}
	}
	ctx.Globals.Set(name, &decl.Var{Name: name, Type: t, DLLImport: dllimport, Line: ctx.lineOf(n)})
	return nil
}

func walkTypedefDecl(n Node, ctx *ImportContext) error {
	name := n.Name()
	inner := n.Inner()
	if len(inner) == 0 {
		return nil
	}
	target := inner[0]

	if ownedRaw, ok := target["ownedTagDecl"]; ok {
		ownedMap, _ := ownedRaw.(map[string]any)
		owned := Node(ownedMap)
		record, ok := ctx.StructIDs[owned.ID()]
		if !ok {
			return fmt.Errorf("TypedefDecl %s: owned tag %s not yet walked", name, owned.ID())
		}
		tag := setTypename(record, name)
		ctx.Types.Typedefs.Set(name, record)
		// An aggregate declared and typedef'd in the same statement
		// (`typedef struct { ... } Foo;`) has no tag of its own. Rather
		// than parse clang's location-bearing anonymous qualType string,
		// synthesize the tag as the typedef name and register it under
		// ctx.Types.Tagged directly: any later `struct Foo`/`union Foo`
		// reference then resolves as if the source had written a tag.
		if tag == "" {
			setTag(record, name)
			ctx.Types.Tagged.Set(name, record)
		}
		return nil
	}

	qualType := target.QualType()
	var resolved ctype.Type
	if IsAnonymous(qualType) {
		resolved = ctx.LastRecord
	} else {
		var err error
		resolved, err = ctypeparser.Parse(qualType, ctx.Types)
		if err != nil {
			return fmt.Errorf("TypedefDecl %s: %w", name, err)
		}
	}
	ctx.Types.Typedefs.Set(name, resolved)
	return nil
}

func setTypename(t ctype.Type, name string) (tag string) {
	switch v := t.(type) {
	case *ctype.Record:
		v.Typename = name
		return v.Tag
	case *ctype.Enum:
		v.Typename = name
		return v.Tag
	}
	return ""
}

func setTag(t ctype.Type, tag string) {
	switch v := t.(type) {
	case *ctype.Record:
		v.Tag = tag
	case *ctype.Enum:
		v.Tag = tag
	}
}

func walkFunctionDecl(n Node, ctx *ImportContext) error {
	name := n.Name()
	ret, err := ctypeparser.Parse(n.QualType(), ctx.Types)
	if err != nil {
		return fmt.Errorf("FunctionDecl %s: %w", name, err)
	}
	if n.StorageClass() == "static" || n.IsInline() {
		return nil
	}

	dllimport := false
	var args []decl.Param
	for i, p := range n.Inner() {
		switch p.Kind() {
		case "ParmVarDecl":
			argType, err := ctypeparser.Parse(p.QualType(), ctx.Types)
			if err != nil {
				return fmt.Errorf("FunctionDecl %s param %d: %w", name, i, err)
			}
			args = append(args, decl.Param{
				Name: ctype.EscapeName(p.FieldName(i, false)),
				Type: argType,
			})
		case "DLLImportAttr":
			dllimport = true
		}
	}

	ctx.Globals.Set(name, &decl.Func{
		Name:      name,
		Ret:       ret,
		Args:      args,
		Variadic:  n.IsVariadic(),
		DLLImport: dllimport,
		Line:      ctx.lineOf(n),
	})
	return nil
}

func walkRecordDecl(n Node, ctx *ImportContext) (ctype.Type, error) {
	name := n.Name()

	var fields []ctype.Field
	for i, f := range n.Inner() {
		switch f.Kind() {
		case "FieldDecl":
			isBitfield := f.IsBitfield()
			bitSize := 0
			if isBitfield {
				if bitInner := f.Inner(); len(bitInner) > 0 {
					bitSize, _ = strconv.Atoi(bitInner[0].Value())
				}
			}

			qualType := f.QualType()
			var fieldType ctype.Type
			if IsAnonymous(qualType) {
				fieldType = ctx.LastRecord
			} else {
				var err error
				fieldType, err = ctypeparser.Parse(qualType, ctx.Types)
				if err != nil {
					return nil, fmt.Errorf("RecordDecl %s field %d: %w", name, i, err)
				}
			}

			fields = append(fields, ctype.Field{
				Type:       fieldType,
				Name:       f.FieldName(i, isBitfield),
				IsBitfield: isBitfield,
				BitSize:    bitSize,
			})

		case "RecordDecl":
			nested, err := walkRecordDecl(f, ctx)
			if err != nil {
				return nil, err
			}
			ctx.LastRecord, _ = nested.(*ctype.Record)
		}
	}

	var record *ctype.Record
	if n.TagUsed() == "union" {
		record = ctype.NewUnion(name, fields)
	} else {
		record = ctype.NewStruct(name, fields)
	}
	ctx.LastRecord = record
	if name != "" {
		ctx.Types.Tagged.Set(name, record)
	}
	ctx.StructIDs[n.ID()] = record
	return record, nil
}

func walkEnumDecl(n Node, ctx *ImportContext) error {
	name := n.Name()

	var members []ctype.EnumMember
	prevExpr := "0"
	for _, d := range n.Inner() {
		if d.Kind() != "EnumConstantDecl" {
			continue
		}
		fieldName := d.Name()
		valueExpr := ""
		if inner := d.Inner(); len(inner) > 0 {
			valueExpr = WalkExpression(inner[0])
		}

		constValue := valueExpr
		if constValue == "" {
			constValue = prevExpr
		}
		ctx.Globals.Set(fieldName, &decl.Const{Name: fieldName, Type: ctype.Primitives["int"], Value: constValue, Line: ctx.lineOf(d)})
		prevExpr = fieldName + " + 1"

		members = append(members, ctype.EnumMember{Name: fieldName, Value: valueExpr})
	}

	e := ctype.NewEnum(name, members)
	if name != "" {
		ctx.Types.Tagged.Set(name, e)
	}
	ctx.StructIDs[n.ID()] = e
	return nil
}
