package ctypeparser

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/vesper-lang/bootstrap/pkg/ctype"
)

// cTypeLexer tokenizes a clang qualType string. Rule order matters: longer
// patterns before shorter ones.
var cTypeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Ellipsis", Pattern: `\.\.\.`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[*()\[\],]`},
})

var cTypeParser = participle.MustBuild[qualType](
	participle.Lexer(cTypeLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// Parse resolves a clang qualType string into a ctype.Type, consulting ctx
// for tag/typedef lookups. It returns an error for any word sequence that
// names neither a known primitive nor a previously-seen typedef; callers
// only hand it strings clang just produced, so a failure means the dump's
// schema drifted.
func Parse(raw string, ctx *ctype.Context) (ctype.Type, error) {
	raw = strings.TrimSpace(raw)
	if raw == "..." {
		return ctype.Varargs, nil
	}

	// Trailing tokens are allowed deliberately: a FunctionDecl's own type
	// string is `RET (ARGS)` with no `(*)`, and the grammar reads just the
	// RET prefix out of it. The argument list is walked from the node's
	// ParmVarDecl children instead, never from the type string.
	ast, err := cTypeParser.ParseString("", raw, participle.AllowTrailing(true))
	if err != nil {
		return nil, fmt.Errorf("ctypeparser: %q: %w", raw, err)
	}
	return resolve(ast, ctx)
}

func resolve(q *qualType, ctx *ctype.Context) (ctype.Type, error) {
	base, err := resolveBase(q.Words, ctx)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", strings.Join(q.Words, " "), err)
	}
	return applyDeclarator(base, q, ctx)
}

// resolveBase turns the base-type word sequence into a Type: the tagged
// forms ("struct Foo", "union Foo", "enum Foo"), the single keyword "void",
// a normalised primitive ("unsigned long long" -> "llong"), or a plain
// identifier resolved against the typedef table.
func resolveBase(words []string, ctx *ctype.Context) (ctype.Type, error) {
	words = stripQualifierWords(words)
	if len(words) == 0 {
		return nil, fmt.Errorf("empty base type")
	}

	if len(words) == 1 && words[0] == "void" {
		return ctype.Void, nil
	}

	switch words[0] {
	case "struct", "union", "enum":
		if len(words) < 2 {
			return nil, fmt.Errorf("%s with no tag", words[0])
		}
		tag := words[1]
		if t, ok := ctx.Tagged.Get(tag); ok {
			return t, nil
		}
		// The record/enum hasn't been walked yet (forward reference, or a
		// genuinely incomplete type); Incomplete resolves lazily through
		// ctx.Tagged once/if it ever appears (pkg/ctype/simple.go).
		return &ctype.Incomplete{Tag: tag}, nil
	}

	normalized := normalizePrimitiveWords(words)
	if t, ok := ctype.Primitives[normalized]; ok {
		return t, nil
	}

	if len(words) == 1 {
		if words[0] == "__va_list_tag" || words[0] == "va_list" {
			return &ctype.VaListType{}, nil
		}
		if t, ok := ctx.Typedefs.Get(words[0]); ok {
			return t, nil
		}
		return nil, fmt.Errorf("unresolved type %q", words[0])
	}

	return nil, fmt.Errorf("unresolved type %q", strings.Join(words, " "))
}

// qualifierWords are the C qualifiers that carry no representation in the
// output; they lex as ordinary identifiers, so the grammar's Words capture
// can include them anywhere after the leading run.
var qualifierWords = map[string]bool{
	"const": true, "volatile": true, "restrict": true, "__unaligned": true,
	"__ptr32": true, "__sptr": true, "__uptr": true,
}

func stripQualifierWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if qualifierWords[w] {
			continue
		}
		out = append(out, w)
	}
	return out
}

// normalizePrimitiveWords folds "long long" into the single token "llong"
// so the result matches a key in ctype.Primitives ahead of the
// Integer/Float lookup.
func normalizePrimitiveWords(words []string) string {
	out := make([]string, 0, len(words))
	for i := 0; i < len(words); i++ {
		if words[i] == "long" && i+1 < len(words) && words[i+1] == "long" {
			out = append(out, "llong")
			i++
			continue
		}
		out = append(out, words[i])
	}
	return strings.Join(out, " ")
}

// applyDeclarator wraps base in the Pointer/Array/Function types named by
// the declarator shape, inside-out as C declarator syntax reads: pointer
// stars first (they belong to the element/return type), then the array or
// function-pointer suffix around the result.
func applyDeclarator(base ctype.Type, q *qualType, ctx *ctype.Context) (ctype.Type, error) {
	t := base
	for range q.Stars {
		t = &ctype.Pointer{Elem: t}
	}

	if q.Suffix == nil {
		return t, nil
	}

	if fp := q.Suffix.FuncPtr; fp != nil {
		args := make([]ctype.Type, 0, len(fp.Params)+1)
		for i := range fp.Params {
			pt, err := resolve(&fp.Params[i], ctx)
			if err != nil {
				return nil, err
			}
			args = append(args, pt)
		}
		if fp.Variadic {
			args = append(args, ctype.Varargs)
		}
		// `(*)` is the function type itself, not a pointer to one; only
		// stars past the first add indirection.
		t = &ctype.Function{Args: args, Ret: t}
		for range fp.Stars[1:] {
			t = &ctype.Pointer{Elem: t}
		}
		return t, nil
	}

	// Array bounds wrap right to left: in `int [3][4]` the element of the
	// outer [3] array is itself the [4] array.
	for i := len(q.Suffix.Arrays) - 1; i >= 0; i-- {
		var n *int
		if size := q.Suffix.Arrays[i].Size; size != nil {
			v := *size
			n = &v
		}
		t = &ctype.Array{Elem: t, Size: n}
	}
	return t, nil
}
