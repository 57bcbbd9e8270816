// Package emitter renders one module's walked declarations into its two
// output files: MODULE.vpr (the declarations) and MODULE.vpr.sym (the
// __SYMBOLS table). Output order is fixed (constants, then the
// typedef/tag closure via PrintReferences, then functions, then
// variables) so repeated runs produce identical files. Nodes render
// themselves (pkg/ctype, pkg/decl); this package walks the tables and
// writes the result out.
package emitter

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vesper-lang/bootstrap/pkg/ctype"
	"github.com/vesper-lang/bootstrap/pkg/decl"
	"github.com/vesper-lang/bootstrap/pkg/omap"
	"github.com/vesper-lang/bootstrap/pkg/provenance"
)

// Module is everything Emit needs to render one module: its resolved
// declarations plus the shared type tables they reference.
type Module struct {
	Globals *omap.Map[string, decl.Declaration]
	Types   *ctype.Context
}

// WriteDeclarations writes MODULE.vpr: constants, then every referenced
// type's definition (closure over Typedefs and Tagged, each printed
// exactly once), then functions, then variables.
func WriteDeclarations(w io.Writer, m Module) error {
	consts, funcs, vars := partition(m.Globals)

	for _, c := range consts {
		if _, err := fmt.Fprintln(w, c.ToDeclaration(m.Types)); err != nil {
			return err
		}
	}

	if err := writeTypeClosure(w, m.Types); err != nil {
		return err
	}

	for _, f := range funcs {
		if _, err := fmt.Fprintln(w, f.ToDeclaration(m.Types)); err != nil {
			return err
		}
	}
	for _, v := range vars {
		if _, err := fmt.Fprintln(w, v.ToDeclaration(m.Types)); err != nil {
			return err
		}
	}
	return nil
}

// WriteSymbols writes MODULE.vpr.sym: an `import MODULE`/`import symbol`
// preamble, the `__SYMBOLS` array declaration sized to the filtered
// function+variable count, and one entry per filtered declaration.
// included is the set of symbol names a linked
// library actually exports; a nil included means "no filter, export
// everything" (no libs were given for this module).
func WriteSymbols(w io.Writer, moduleName string, m Module, included map[string]struct{}) error {
	_, funcs, vars := partition(m.Globals)
	funcs = filterByName(funcs, included)
	vars = filterByName(vars, included)

	if _, err := fmt.Fprintf(w, "import %s\n", moduleName); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "import symbol"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "export var __SYMBOLS: [%d; symbol::Symbol]\n", len(funcs)+len(vars)); err != nil {
		return err
	}

	index := 0
	for _, f := range funcs {
		if _, err := fmt.Fprintln(w, f.ToSymbol(index, m.Types)); err != nil {
			return err
		}
		index++
	}
	for _, v := range vars {
		if _, err := fmt.Fprintln(w, v.ToSymbol(index, m.Types)); err != nil {
			return err
		}
		index++
	}
	return nil
}

// WriteDeclarationsWithProvenance writes MODULE.vpr exactly as
// WriteDeclarations does, and additionally records the generated line number
// of every const/func/var declaration against its DeclLine() in a
// provenance.Generator for the caller to write out as MODULE.vpr.map.
// header is the originating C header path (provenance.Generator's Sources
// entry); genFile is the declarations file's own name (provenance's File
// field).
func WriteDeclarationsWithProvenance(w io.Writer, m Module, header, genFile string) (*provenance.Generator, error) {
	gen := provenance.NewGenerator(header, genFile)
	counter := &lineCountingWriter{w: w, line: 1}

	consts, funcs, vars := partition(m.Globals)

	for _, c := range consts {
		line := counter.line
		if _, err := fmt.Fprintln(counter, c.ToDeclaration(m.Types)); err != nil {
			return nil, err
		}
		if c.DeclLine() > 0 {
			gen.Add(line, c.DeclLine(), c.DeclName())
		}
	}

	if err := writeTypeClosure(counter, m.Types); err != nil {
		return nil, err
	}

	for _, f := range funcs {
		line := counter.line
		if _, err := fmt.Fprintln(counter, f.ToDeclaration(m.Types)); err != nil {
			return nil, err
		}
		if f.DeclLine() > 0 {
			gen.Add(line, f.DeclLine(), f.DeclName())
		}
	}
	for _, v := range vars {
		line := counter.line
		if _, err := fmt.Fprintln(counter, v.ToDeclaration(m.Types)); err != nil {
			return nil, err
		}
		if v.DeclLine() > 0 {
			gen.Add(line, v.DeclLine(), v.DeclName())
		}
	}

	return gen, nil
}

// writeTypeClosure emits the module's type definitions: each typedef and
// tag prints its referenced records/enums first (PrintReferences, guarded
// by the has-printed set), and a typedef whose target is anything other
// than a record or enum gets an explicit alias line, since only records
// and enums know how to print themselves under a name. Prelude-seeded
// typedefs resolve but are never re-declared here.
func writeTypeClosure(w io.Writer, types *ctype.Context) error {
	for _, name := range types.Typedefs.Keys() {
		t, _ := types.Typedefs.Get(name)
		t.PrintReferences(types, w)
		if types.IsSeeded(name) {
			continue
		}
		switch t.(type) {
		case *ctype.Record, *ctype.Enum:
			// Printed itself above, under this typedef name.
		default:
			if _, err := fmt.Fprintf(w, "export type %s = %s\n", name, t.String(types)); err != nil {
				return err
			}
		}
	}
	for _, name := range types.Tagged.Keys() {
		t, _ := types.Tagged.Get(name)
		t.PrintReferences(types, w)
	}
	return nil
}

// lineCountingWriter forwards every Write to w while counting newlines seen,
// so the caller always knows which generated line the next write starts on.
type lineCountingWriter struct {
	w    io.Writer
	line int
}

func (c *lineCountingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.line += bytes.Count(p[:n], []byte{'\n'})
	return n, err
}

func partition(globals *omap.Map[string, decl.Declaration]) (consts []*decl.Const, funcs []*decl.Func, vars []*decl.Var) {
	for _, name := range globals.Keys() {
		d, _ := globals.Get(name)
		switch v := d.(type) {
		case *decl.Const:
			consts = append(consts, v)
		case *decl.Func:
			funcs = append(funcs, v)
		case *decl.Var:
			vars = append(vars, v)
		}
	}
	return
}

func filterByName[T decl.Declaration](decls []T, included map[string]struct{}) []T {
	if included == nil {
		return decls
	}
	out := make([]T, 0, len(decls))
	for _, d := range decls {
		if _, ok := included[d.DeclName()]; ok {
			out = append(out, d)
		}
	}
	return out
}
