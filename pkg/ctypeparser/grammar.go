// Package ctypeparser parses the qualified-type strings the front end
// hands back for every declaration into pkg/ctype.Type values.
//
// A participle v2 struct-tag grammar covers the genuinely declarative
// parts of this string (alternation via `|`, struct-per-production, `@@`
// capture), but a fully declarative grammar doesn't fit C's postfix
// declarator syntax: a C pointer-to-function type reads `RET (*)(ARGS)`,
// with the pointer marker sitting inside parens ahead of the argument
// list rather than as a plain prefix. So the grammar only records shape
// (qualifiers, base-type words, pointer stars, and an optional array or
// function-pointer suffix) and leaves semantic resolution, matching the
// words against ctype.Primitives/Tagged/Typedefs, to Parse in parser.go.
// This sidesteps needing participle to disambiguate "unsigned long long"
// from a plain identifier at grammar-build time.
package ctypeparser

// qualType is the top-level production for a C qualified-type string, e.g.
// "const int *", "struct Foo *", "unsigned long long", "void (*)(int, int)".
// The repeated qualifier alternation (const/volatile/restrict/__unaligned/
// __ptr32/__sptr/__uptr) is discarded outright; qualifiers carry no
// representation in the generated declarations.
// Qualifier words after the leading run land in Words too (they lex as
// plain Ident tokens, so the greedy capture can't stop ahead of them);
// resolveBase filters them out before the primitive/typedef lookup.
type qualType struct {
	Quals  []string      `parser:"( @('const'|'volatile'|'restrict'|'__unaligned'|'__ptr32'|'__sptr'|'__uptr') )*"`
	Words  []string      `parser:"@Ident+"`
	Stars  []pointerStar `parser:"@@*"`
	Suffix *suffix       `parser:"@@?"`
}

// pointerStar is one `*` in a pointer chain, with the qualifiers C allows
// to trail each star (`char *const`, `int * restrict *`).
type pointerStar struct {
	Star  string   `parser:"@'*'"`
	Quals []string `parser:"( @('const'|'volatile'|'restrict'|'__ptr32'|'__sptr'|'__uptr') )*"`
}

// suffix is the optional declarator tail after the pointer chain: a
// function-pointer form or a run of array bounds (`[3][4]` nests, outer
// dimension first). A function declaration's bare argument list
// (`int (char *, ...)` with no `(*)`) matches neither branch and is left
// unconsumed. Parse runs with trailing tokens allowed, so such a string
// resolves to its return type.
type suffix struct {
	FuncPtr *funcPtrSuffix `parser:"@@"`
	Arrays  []arraySuffix  `parser:"| @@+"`
}

// funcPtrSuffix matches `(*)(ARGS...)`, i.e. a function-pointer
// declarator. The `(*)` itself is part of the function type, not a
// pointer layer; only stars beyond the first add indirection. Clang
// prints exactly one star here in practice.
type funcPtrSuffix struct {
	Stars    []string   `parser:"'(' ( @'*' )+ ')'"`
	Params   []qualType `parser:"'(' ( @@ ( ',' @@ )* )?"`
	Variadic bool       `parser:"( ','? @Ellipsis )? ')'"`
}

// arraySuffix matches `[4]` or `[]`; a missing size means the array
// decays to a pointer.
type arraySuffix struct {
	Size *int `parser:"'[' @Int? ']'"`
}
