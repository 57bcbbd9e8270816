// Package main implements the bootstrap build driver and C header importer
// CLI: `bootstrap build/release/test/clean/download` drive the self-hosting
// compiler build (pkg/driver), and `bootstrap import` runs the importer
// pipeline (pkg/orchestrator) that turns configured C headers into Vesper
// declaration and symbol-table files.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vesper-lang/bootstrap/pkg/config"
	"github.com/vesper-lang/bootstrap/pkg/driver"
	"github.com/vesper-lang/bootstrap/pkg/orchestrator"
	"github.com/vesper-lang/bootstrap/pkg/ui"
)

// cliVersion is this tool's own version, independent of the pinned
// bootstrap compiler release pkg/driver downloads (see compilerVersion).
var cliVersion = "0.1.0-alpha"

func main() {
	rootCmd := &cobra.Command{
		Use:          "bootstrap",
		Short:        "Self-hosting build driver and C header importer",
		Version:      cliVersion,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			ui.PrintHelp(cliVersion)
		},
	}

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		ui.PrintHelp(cliVersion)
	})
	rootCmd.SetHelpCommand(&cobra.Command{
		Use:   "help [command]",
		Short: "Help about any command",
		Run: func(cmd *cobra.Command, args []string) {
			ui.PrintHelp(cliVersion)
		},
	})

	rootCmd.AddCommand(buildCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(releaseCmd())
	rootCmd.AddCommand(testCmd())
	rootCmd.AddCommand(cleanCmd())
	rootCmd.AddCommand(downloadCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// compilerVersion reads the pinned bootstrap compiler release version from
// a `version` file at the workspace root. A missing file falls back to
// "0.4".
func compilerVersion(root string) string {
	data, err := os.ReadFile(filepath.Join(root, "version"))
	if err != nil {
		return "0.4"
	}
	return strings.TrimSpace(string(data))
}

func newWorkspace() *driver.Workspace {
	root, err := os.Getwd()
	if err != nil {
		root = "."
	}
	return driver.NewWorkspace(root, compilerVersion(root))
}

func buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile src/main.vpr with the bootstrap compiler",
		Long: `Build downloads the pinned bootstrap compiler release if it isn't
already present, then uses it to compile this repository's own
src/main.vpr into bin/vesperc2. A build whose sources and flags are
unchanged since the last successful run is skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newWorkspace().Build(args...)
		},
	}
	return cmd
}

func releaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "release",
		Short: "Self-compile twice and package a release archive",
		Long: `Release proves the compiler can build itself: it compiles the
compiler with the bootstrap binary (stage 2), then compiles the
compiler again with stage 2 (stage 3), then packages stage 3
together with include/ and std/ into a release archive under
build/.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newWorkspace().Release()
		},
	}
}

func testCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Build and run the compiler's own test suite",
		RunE: func(cmd *cobra.Command, args []string) error {
			return newWorkspace().Test(args...)
		},
	}
	return cmd
}

func cleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the build directory and release archives",
		RunE: func(cmd *cobra.Command, args []string) error {
			return newWorkspace().Clean()
		},
	}
}

func downloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download",
		Short: "Fetch the pinned bootstrap compiler release",
		RunE: func(cmd *cobra.Command, args []string) error {
			return newWorkspace().Download()
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			ui.PrintVersionInfo(cliVersion)
		},
	}
}

func importCmd() *cobra.Command {
	var (
		clangPath  string
		outDir     string
		provenance bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import configured C headers into Vesper declarations",
		Long: `Import runs every module in vesper.toml's pipeline through the
Importer: invoke clang's AST dump, walk the declarations it finds,
apply cross-module deduplication and %EXCLUDE directives, and write
MODULE.vpr / MODULE.vpr.sym for each.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(clangPath, outDir, provenance)
		},
	}

	cmd.Flags().StringVar(&clangPath, "clang-path", "", "clang binary to invoke (overrides vesper.toml)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory to write MODULE.vpr/.vpr.sym into")
	cmd.Flags().BoolVar(&provenance, "provenance", false, "also emit MODULE.vpr.map source maps back to the originating headers")

	return cmd
}

func runImport(clangPathOverride, outDir string, emitProvenance bool) error {
	var overrides *config.Config
	if clangPathOverride != "" {
		overrides = &config.Config{ClangPath: clangPathOverride}
	}
	cfg, err := config.Load(overrides)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	goos := goosName()
	out := ui.NewImportOutput()
	out.PrintHeader(cliVersion)

	var modules []config.Module
	for _, m := range cfg.Modules {
		if m.RunsOn(goos) {
			modules = append(modules, m)
		}
	}
	out.PrintRunStart(len(modules))

	orch := orchestrator.New(goos, cfg.ClangPath, outDir, cfg.IncludeDirs[goos], filepath.Join(outDir, "lib"))
	orch.EmitProvenance = emitProvenance

	var firstErr error
	for _, m := range modules {
		declFile := filepath.Join(outDir, m.Name+".vpr")
		out.PrintModuleStart(m.Header, declFile)

		start := time.Now()
		err := orch.ProcessModule(orchestrator.Module{Name: m.Name, Header: m.Header, Libs: m.Libs})
		duration := time.Since(start)

		if err != nil {
			out.PrintStep(ui.Step{Name: "import", Status: ui.StepError, Duration: duration})
			out.PrintError(err.Error())
			firstErr = err
			out.PrintModuleDone()
			break
		}
		out.PrintStep(ui.Step{Name: "import", Status: ui.StepSuccess, Duration: duration})
		out.PrintModuleDone()
	}

	if firstErr != nil {
		out.PrintSummary(false, firstErr.Error())
		return firstErr
	}
	out.PrintSummary(true, "")
	return nil
}

// goosName reports the GOOS config.Module.RunsOn filters against.
func goosName() string {
	return runtime.GOOS
}
