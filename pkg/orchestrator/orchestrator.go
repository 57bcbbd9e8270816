// Package orchestrator runs the importer's per-module pipeline end to end:
// invoke the front end, walk the AST, apply %EXCLUDE and cross-module
// dedup, then emit the module's two output files. The cross-module
// deduplication table persists across ProcessModule calls within one run.
package orchestrator

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vesper-lang/bootstrap/pkg/clangast"
	"github.com/vesper-lang/bootstrap/pkg/diag"
	"github.com/vesper-lang/bootstrap/pkg/emitter"
	"github.com/vesper-lang/bootstrap/pkg/frontend"
	"github.com/vesper-lang/bootstrap/pkg/provenance"
	"github.com/vesper-lang/bootstrap/pkg/symscan"
)

// Module describes one header to import: its name (used for the output
// filenames and the generated `import NAME`/`import symbol` preamble), the
// path to its header file, and the libraries whose exports gate the
// symbol-table filter (empty means "export every walked declaration's
// symbol").
type Module struct {
	Name   string
	Header string
	Libs   []string
}

// Orchestrator runs Modules in sequence, threading the cross-module
// "earlier module wins" declaration table across calls to ProcessModule.
type Orchestrator struct {
	GOOS        string
	ClangPath   string
	IncludeDirs []string
	LibDir      string
	OutDir      string

	// EmitProvenance, when set, writes <OutDir>/<Name>.vpr.map alongside
	// the usual outputs (pkg/provenance) and self-checks it with
	// provenance.Validate before returning.
	EmitProvenance bool

	allDefinitions map[string]struct{}
}

// New creates an Orchestrator for one run across however many modules it's
// given ProcessModule for.
func New(goos, clangPath, outDir string, includeDirs []string, libDir string) *Orchestrator {
	return &Orchestrator{
		GOOS:           goos,
		ClangPath:      clangPath,
		IncludeDirs:    includeDirs,
		LibDir:         libDir,
		OutDir:         outDir,
		allDefinitions: make(map[string]struct{}),
	}
}

// ProcessModule runs one module through the full pipeline and writes
// <OutDir>/<Name>.vpr and <OutDir>/<Name>.vpr.sym.
func (o *Orchestrator) ProcessModule(mod Module) error {
	included, err := o.collectLibrarySymbols(mod.Libs)
	if err != nil {
		return fmt.Errorf("orchestrator: %s: %w", mod.Name, err)
	}

	if err := os.MkdirAll(o.OutDir, 0o755); err != nil {
		return fmt.Errorf("orchestrator: %s: %w", mod.Name, err)
	}
	nodes, err := frontend.Run(frontend.Options{
		ClangPath:   o.ClangPath,
		Header:      mod.Header,
		IncludeDirs: o.IncludeDirs,
		DumpPath:    filepath.Join(o.OutDir, mod.Name+".json"),
	})
	if err != nil {
		// No header line is implicated here: clang itself never ran to
		// completion.
		return diag.New(diag.Position{}, fmt.Sprintf("%s: front end failed: %v", mod.Name, err))
	}

	excluded, err := scanExcludeDirectives(mod.Header)
	if err != nil {
		return fmt.Errorf("orchestrator: %s: %w", mod.Name, err)
	}

	ctx := clangast.NewImportContext(o.GOOS)
	ctx.Header = mod.Header
	for _, raw := range nodes {
		if err := clangast.Walk(clangast.Node(raw), ctx); err != nil {
			return diagFromWalkError(mod.Name, err)
		}
	}

	o.applyExclusionAndDedup(ctx, excluded)

	m := emitter.Module{Globals: ctx.Globals, Types: ctx.Types}
	if err := o.writeOutputs(mod.Name, mod.Header, m, included); err != nil {
		return fmt.Errorf("orchestrator: %s: %w", mod.Name, err)
	}
	return nil
}

// applyExclusionAndDedup drops declarations named in an %EXCLUDE directive
// or already produced by an earlier module in this run (earlier module
// wins), then folds the survivors into the persistent definitions set.
func (o *Orchestrator) applyExclusionAndDedup(ctx *clangast.ImportContext, excluded map[string]struct{}) {
	for _, name := range ctx.Globals.Keys() {
		_, isExcluded := excluded[name]
		_, alreadyDefined := o.allDefinitions[name]
		if isExcluded || alreadyDefined {
			ctx.Globals.Delete(name)
			continue
		}
		o.allDefinitions[name] = struct{}{}
	}
}

func (o *Orchestrator) collectLibrarySymbols(libs []string) (map[string]struct{}, error) {
	if len(libs) == 0 {
		return nil, nil
	}
	included := make(map[string]struct{})
	for _, lib := range libs {
		syms, err := symscan.Enumerate(o.GOOS, filepath.Join(o.LibDir, lib))
		if err != nil {
			return nil, err
		}
		for s := range syms {
			included[s] = struct{}{}
		}
	}
	return included, nil
}

func (o *Orchestrator) writeOutputs(name, header string, m emitter.Module, included map[string]struct{}) error {
	declFile, err := os.Create(filepath.Join(o.OutDir, name+".vpr"))
	if err != nil {
		return err
	}
	defer declFile.Close()

	if !o.EmitProvenance {
		if err := emitter.WriteDeclarations(declFile, m); err != nil {
			return err
		}
	} else {
		genFile := name + ".vpr"
		gen, err := emitter.WriteDeclarationsWithProvenance(declFile, m, header, genFile)
		if err != nil {
			return err
		}
		if err := o.writeProvenanceMap(name, gen); err != nil {
			return err
		}
	}

	symFile, err := os.Create(filepath.Join(o.OutDir, name+".vpr.sym"))
	if err != nil {
		return err
	}
	defer symFile.Close()
	return emitter.WriteSymbols(symFile, name, m, included)
}

// writeProvenanceMap renders gen and writes it to <OutDir>/<name>.vpr.map,
// self-checking the result with provenance.Validate first so a broken map
// never ships silently.
func (o *Orchestrator) writeProvenanceMap(name string, gen *provenance.Generator) error {
	if result, err := provenance.Validate(gen); err != nil {
		return fmt.Errorf("provenance map for %s: %w", name, err)
	} else if !result.Valid {
		return fmt.Errorf("provenance map for %s: invalid: %v", name, result.Errors)
	}

	data, err := gen.Generate()
	if err != nil {
		return fmt.Errorf("provenance map for %s: %w", name, err)
	}

	mapFile, err := os.Create(filepath.Join(o.OutDir, name+".vpr.map"))
	if err != nil {
		return err
	}
	defer mapFile.Close()
	_, err = mapFile.Write(data)
	return err
}

// scanExcludeDirectives reads a header for `%EXCLUDE name1 name2 ...`
// lines, a convention for suppressing declarations this module's header
// happens to surface but shouldn't export. The scan is a plain line scan,
// independent of C preprocessing.
func scanExcludeDirectives(headerPath string) (map[string]struct{}, error) {
	f, err := os.Open(headerPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	excluded := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "%EXCLUDE") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "%EXCLUDE"))
		for _, name := range strings.Fields(line) {
			excluded[name] = struct{}{}
		}
	}
	return excluded, scanner.Err()
}

// diagFromWalkError renders a clangast.WalkError as a source-snippet
// diagnostic; any other error shape (a plain I/O failure, say) falls back
// to a bare wrapped message.
func diagFromWalkError(module string, err error) error {
	var walkErr *clangast.WalkError
	if !errors.As(err, &walkErr) {
		return fmt.Errorf("orchestrator: %s: %w", module, err)
	}
	pos := diag.Position{File: walkErr.Header, Line: walkErr.Line}
	return diag.New(pos, fmt.Sprintf("%s: %v", module, walkErr.Err))
}
