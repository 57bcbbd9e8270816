// Package frontend invokes clang to produce the AST JSON an orchestrator
// walks: build an `-ast-dump=json -fsyntax-only` command line with the
// platform's include directories, run it, and parse stdout as JSON.
package frontend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
)

// Options configures one clang invocation.
type Options struct {
	// ClangPath is the clang binary to invoke (e.g. "clang-13", "clang").
	ClangPath string
	// Header is the path to the header being imported.
	Header string
	// IncludeDirs are extra `-I`/`--include-directory` search paths (the
	// Windows-platform-header and macOS libffi/homebrew cases).
	IncludeDirs []string
	// DumpPath, when set, also writes the raw AST JSON there
	// (MODULE.json), keeping the dump on disk next to the generated files
	// for inspection.
	DumpPath string
}

// Run invokes clang and unmarshals its AST JSON dump into a slice of
// top-level nodes (the dump's "inner" array). A non-zero exit or malformed
// JSON is a fatal front-end-failure/schema-violation condition, reported
// as an error rather than a panic so the caller can route it through
// pkg/diag.
func Run(opts Options) ([]map[string]any, error) {
	args := []string{"-Xclang", "-ast-dump=json", "-fsyntax-only"}
	for _, dir := range opts.IncludeDirs {
		args = append(args, "-I"+dir)
	}
	args = append(args, opts.Header)

	cmd := exec.Command(opts.ClangPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("frontend: %s %v: %w\n%s", opts.ClangPath, args, err, stderr.String())
	}

	if opts.DumpPath != "" {
		if err := os.WriteFile(opts.DumpPath, stdout.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("frontend: write %s: %w", opts.DumpPath, err)
		}
	}

	var dump struct {
		Inner []map[string]any `json:"inner"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &dump); err != nil {
		return nil, fmt.Errorf("frontend: malformed AST JSON for %s: %w", opts.Header, err)
	}
	return dump.Inner, nil
}

// DefaultClangPath returns the clang binary used per platform: "clang" on
// Windows, a pinned homebrew LLVM13 path on macOS, "clang-13" everywhere
// else.
func DefaultClangPath(goos string) string {
	switch goos {
	case "windows":
		return "clang"
	case "darwin":
		return "/opt/homebrew/Cellar/llvm@13/13.0.1_2/bin/clang"
	default:
		return "clang-13"
	}
}

// PlatformIncludeDirs returns the extra `-I` directories each platform
// needs: the platform-specific prelude header directory on Windows,
// libffi/homebrew on macOS, nothing on Linux.
func PlatformIncludeDirs(goos, platformHeaderDir string) []string {
	switch goos {
	case "windows":
		return []string{platformHeaderDir}
	case "darwin":
		return []string{"/opt/homebrew/opt/libffi/include", "/opt/homebrew/include"}
	default:
		return nil
	}
}
