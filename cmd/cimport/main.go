// Command cimport runs the importer against a single header, independent
// of a vesper.toml pipeline. Useful for trying a header in isolation, or
// for a build system that wants one clang invocation per rule instead of
// batching.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/vesper-lang/bootstrap/pkg/frontend"
	"github.com/vesper-lang/bootstrap/pkg/orchestrator"
	"github.com/vesper-lang/bootstrap/pkg/ui"
)

var cliVersion = "0.1.0-alpha"

func main() {
	var (
		name        string
		clangPath   string
		outDir      string
		includeDirs []string
		libs        []string
		libDir      string
		goos        string
	)

	cmd := &cobra.Command{
		Use:   "cimport HEADER",
		Short: "Import one C header into a Vesper declaration + symbol-table file",
		Long: `cimport runs the Importer pipeline against a single header: invoke
clang's AST dump, walk the declarations it finds, and write
NAME.vpr / NAME.vpr.sym. It takes no vesper.toml (every input is a
flag), which makes it a convenient single-module alternative to
"bootstrap import" for ad hoc headers or one-off build rules.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			header := args[0]
			if name == "" {
				name = strippedBase(header)
			}
			if goos == "" {
				goos = defaultGOOS()
			}
			if clangPath == "" {
				clangPath = frontend.DefaultClangPath(goos)
			}

			out := ui.NewImportOutput()
			out.PrintHeader(cliVersion)
			out.PrintRunStart(1)

			declFile := filepath.Join(outDir, name+".vpr")
			out.PrintModuleStart(header, declFile)

			orch := orchestrator.New(goos, clangPath, outDir, includeDirs, libDir)
			err := orch.ProcessModule(orchestrator.Module{Name: name, Header: header, Libs: libs})
			if err != nil {
				out.PrintStep(ui.Step{Name: "import", Status: ui.StepError})
				out.PrintError(err.Error())
				out.PrintModuleDone()
				out.PrintSummary(false, err.Error())
				return err
			}
			out.PrintStep(ui.Step{Name: "import", Status: ui.StepSuccess})
			out.PrintModuleDone()
			out.PrintSummary(true, "")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "module name for NAME.vpr/NAME.vpr.sym (default: header's base name)")
	cmd.Flags().StringVar(&clangPath, "clang-path", "", "clang binary to invoke (default: platform default)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory to write NAME.vpr/.vpr.sym into")
	cmd.Flags().StringArrayVarP(&includeDirs, "include-dir", "I", nil, "extra clang include directory (repeatable)")
	cmd.Flags().StringArrayVar(&libs, "lib", nil, "native library whose exports gate the symbol table (repeatable)")
	cmd.Flags().StringVar(&libDir, "lib-dir", ".", "directory --lib names are resolved relative to")
	cmd.Flags().StringVar(&goos, "goos", "", "target platform (default: the host's own)")

	cmd.SilenceUsage = true
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func strippedBase(header string) string {
	base := filepath.Base(header)
	return base[:len(base)-len(filepath.Ext(base))]
}

func defaultGOOS() string {
	return runtime.GOOS
}
