// Package config reads vesper.toml: the list of modules the importer runs
// and the include directories each platform needs to find its headers.
// The module pipeline is data, not code, so a project can add a module
// without touching Go source.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Module describes one header for the Orchestrator to import: its name (used
// for MODULE.vpr / MODULE.vpr.sym / MODULE.vpr.map), the header path, the
// native import libraries whose exports gate the symbol-table filter, and
// the GOOS values it runs on (empty means "every platform").
type Module struct {
	Name      string   `toml:"name"`
	Header    string   `toml:"header"`
	Libs      []string `toml:"libs"`
	Platforms []string `toml:"platforms"`
}

// RunsOn reports whether this module applies to goos. An empty Platforms
// list runs everywhere.
func (m Module) RunsOn(goos string) bool {
	if len(m.Platforms) == 0 {
		return true
	}
	for _, p := range m.Platforms {
		if p == goos {
			return true
		}
	}
	return false
}

// Config is a project's vesper.toml: the clang binary to invoke, the
// module list, and the per-platform include directories the front end
// adds to every clang invocation.
type Config struct {
	ClangPath string `toml:"clang_path"`

	// IncludeDirs maps a GOOS name to the extra `-I` directories the front
	// end should pass when running on that platform.
	IncludeDirs map[string][]string `toml:"include_dirs"`

	Modules []Module `toml:"modules"`
}

// DefaultConfig is the stock four-module pipeline: linux (skipped on
// windows), cstd, ffi, and windows (only on windows, filtered against
// User32.lib/Kernel32.lib/Dbghelp.lib).
func DefaultConfig() *Config {
	return &Config{
		ClangPath: "clang",
		IncludeDirs: map[string][]string{
			"windows": {"windows"},
			"darwin":  {"/opt/homebrew/opt/libffi/include", "/opt/homebrew/include"},
		},
		Modules: []Module{
			{Name: "linux", Header: "linux.h", Platforms: []string{"linux", "darwin"}},
			{Name: "cstd", Header: "cstd.h"},
			{Name: "ffi", Header: "ffi.h"},
			{Name: "windows", Header: "windows.h", Libs: []string{"User32.lib", "Kernel32.lib", "Dbghelp.lib"}, Platforms: []string{"windows"}},
		},
	}
}

// Load loads configuration with precedence: CLI overrides (highest), then
// a project vesper.toml in the current directory, then a user config at
// ~/.vesper/config.toml, then DefaultConfig (lowest).
func Load(overrides *Config) (*Config, error) {
	cfg := DefaultConfig()

	userConfigPath := filepath.Join(os.Getenv("HOME"), ".vesper", "config.toml")
	if err := loadConfigFile(userConfigPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	projectConfigPath := "vesper.toml"
	if err := loadConfigFile(projectConfigPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load project config: %w", err)
	}

	if overrides != nil {
		if overrides.ClangPath != "" {
			cfg.ClangPath = overrides.ClangPath
		}
		if len(overrides.Modules) > 0 {
			cfg.Modules = overrides.Modules
		}
		for goos, dirs := range overrides.IncludeDirs {
			cfg.IncludeDirs[goos] = dirs
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadConfigFile loads a TOML file into cfg. A missing file is not an error
// (the caller keeps whatever cfg already held).
func loadConfigFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return nil
}

// Validate checks a loaded Config for the kinds of mistakes a hand-edited
// vesper.toml is likely to contain.
func (c *Config) Validate() error {
	if c.ClangPath == "" {
		return fmt.Errorf("clang_path must not be empty")
	}

	seen := make(map[string]struct{}, len(c.Modules))
	for _, m := range c.Modules {
		if m.Name == "" {
			return fmt.Errorf("module with empty name")
		}
		if m.Header == "" {
			return fmt.Errorf("module %q: header must not be empty", m.Name)
		}
		if _, dup := seen[m.Name]; dup {
			return fmt.Errorf("module %q declared more than once", m.Name)
		}
		seen[m.Name] = struct{}{}
	}

	return nil
}
