package orchestrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesper-lang/bootstrap/pkg/clangast"
	"github.com/vesper-lang/bootstrap/pkg/ctype"
	"github.com/vesper-lang/bootstrap/pkg/decl"
	"github.com/vesper-lang/bootstrap/pkg/emitter"
)

func writeHeader(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.h")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestScanExcludeDirectives(t *testing.T) {
	header := writeHeader(t, `#include <stdio.h>
%EXCLUDE printf fprintf
int close(int fd);
%EXCLUDE   sprintf
`)
	excluded, err := scanExcludeDirectives(header)
	require.NoError(t, err)
	assert.Contains(t, excluded, "printf")
	assert.Contains(t, excluded, "fprintf")
	assert.Contains(t, excluded, "sprintf")
	assert.NotContains(t, excluded, "close")
}

func TestScanExcludeDirectivesIgnoresMidLineMarker(t *testing.T) {
	header := writeHeader(t, "// %EXCLUDE printf\n")
	excluded, err := scanExcludeDirectives(header)
	require.NoError(t, err)
	assert.Empty(t, excluded)
}

func newContextWith(names ...string) *clangast.ImportContext {
	ctx := clangast.NewImportContext("linux")
	for _, n := range names {
		ctx.Globals.Set(n, &decl.Var{Name: n, Type: ctype.Primitives["int"]})
	}
	return ctx
}

func TestApplyExclusionAndDedupEarlierModuleWins(t *testing.T) {
	o := New("linux", "clang", t.TempDir(), nil, "")

	first := newContextWith("shared", "only_first")
	o.applyExclusionAndDedup(first, nil)
	assert.Equal(t, []string{"shared", "only_first"}, first.Globals.Keys())

	second := newContextWith("shared", "only_second")
	o.applyExclusionAndDedup(second, nil)
	assert.Equal(t, []string{"only_second"}, second.Globals.Keys(),
		"a name already defined by an earlier module must be dropped")
}

func TestApplyExclusionAndDedupRespectsExcludeSet(t *testing.T) {
	o := New("linux", "clang", t.TempDir(), nil, "")
	ctx := newContextWith("keep", "drop")

	o.applyExclusionAndDedup(ctx, map[string]struct{}{"drop": {}})
	assert.Equal(t, []string{"keep"}, ctx.Globals.Keys())

	// An excluded name is not claimed for the module either: a later
	// module may still define it.
	later := newContextWith("drop")
	o.applyExclusionAndDedup(later, nil)
	assert.Equal(t, []string{"drop"}, later.Globals.Keys())
}

func TestWriteOutputsProducesBothFiles(t *testing.T) {
	outDir := t.TempDir()
	o := New("linux", "clang", outDir, nil, "")

	ctx := newContextWith("errno")
	ctx.Globals.Set("close", &decl.Func{Name: "close", Ret: ctype.Primitives["int"],
		Args: []decl.Param{{Name: "fd", Type: ctype.Primitives["int"]}}})

	m := emitter.Module{Globals: ctx.Globals, Types: ctx.Types}
	require.NoError(t, o.writeOutputs("posix", "posix.h", m, nil))

	decls, err := os.ReadFile(filepath.Join(outDir, "posix.vpr"))
	require.NoError(t, err)
	assert.Contains(t, string(decls), "export import def #extern close(fd: int) -> int")
	assert.Contains(t, string(decls), "export import var #extern errno: int")

	syms, err := os.ReadFile(filepath.Join(outDir, "posix.vpr.sym"))
	require.NoError(t, err)
	assert.Contains(t, string(syms), "import posix")
	assert.Contains(t, string(syms), "export var __SYMBOLS: [2; symbol::Symbol]")
}

func TestWriteOutputsWithProvenanceAddsMapFile(t *testing.T) {
	outDir := t.TempDir()
	o := New("linux", "clang", outDir, nil, "")
	o.EmitProvenance = true

	ctx := clangast.NewImportContext("linux")
	ctx.Globals.Set("errno", &decl.Var{Name: "errno", Type: ctype.Primitives["int"], Line: 7})

	m := emitter.Module{Globals: ctx.Globals, Types: ctx.Types}
	require.NoError(t, o.writeOutputs("posix", "posix.h", m, nil))

	_, err := os.Stat(filepath.Join(outDir, "posix.vpr.map"))
	assert.NoError(t, err)
}

func TestProcessModuleFrontEndFailureIsFatal(t *testing.T) {
	outDir := t.TempDir()
	o := New("linux", "clang-does-not-exist-xyz", outDir, nil, "")
	header := writeHeader(t, "int x;\n")

	err := o.ProcessModule(Module{Name: "broken", Header: header})
	assert.Error(t, err)
}
