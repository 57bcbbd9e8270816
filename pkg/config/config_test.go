package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigFourModulePipeline(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "clang", cfg.ClangPath)
	require.Len(t, cfg.Modules, 4)

	names := make([]string, len(cfg.Modules))
	for i, m := range cfg.Modules {
		names[i] = m.Name
	}
	assert.Equal(t, []string{"linux", "cstd", "ffi", "windows"}, names)
}

func TestModuleRunsOnEmptyPlatformsMeansEverywhere(t *testing.T) {
	m := Module{Name: "cstd", Header: "cstd.h"}
	assert.True(t, m.RunsOn("linux"))
	assert.True(t, m.RunsOn("windows"))
	assert.True(t, m.RunsOn("darwin"))
}

func TestModuleRunsOnRestrictsToListedPlatforms(t *testing.T) {
	m := Module{Name: "windows", Header: "windows.h", Platforms: []string{"windows"}}
	assert.True(t, m.RunsOn("windows"))
	assert.False(t, m.RunsOn("linux"))
}

func TestLoadAppliesProjectFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	restoreWD := chdir(t, dir)
	defer restoreWD()

	toml := `clang_path = "clang-16"

[[modules]]
name = "extra"
header = "extra.h"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vesper.toml"), []byte(toml), 0o644))

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "clang-16", cfg.ClangPath)
	require.Len(t, cfg.Modules, 1)
	assert.Equal(t, "extra", cfg.Modules[0].Name)
}

func TestLoadCLIOverrideWinsOverProjectFile(t *testing.T) {
	dir := t.TempDir()
	restoreWD := chdir(t, dir)
	defer restoreWD()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "vesper.toml"), []byte(`clang_path = "clang-16"`), 0o644))

	cfg, err := Load(&Config{ClangPath: "clang-from-cli"})
	require.NoError(t, err)
	assert.Equal(t, "clang-from-cli", cfg.ClangPath)
}

func TestLoadMissingProjectFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	restoreWD := chdir(t, dir)
	defer restoreWD()

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().ClangPath, cfg.ClangPath)
}

func TestValidateRejectsEmptyClangPath(t *testing.T) {
	cfg := &Config{Modules: []Module{{Name: "a", Header: "a.h"}}}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsDuplicateModuleNames(t *testing.T) {
	cfg := &Config{
		ClangPath: "clang",
		Modules: []Module{
			{Name: "a", Header: "a.h"},
			{Name: "a", Header: "b.h"},
		},
	}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsMissingHeader(t *testing.T) {
	cfg := &Config{ClangPath: "clang", Modules: []Module{{Name: "a"}}}
	assert.Error(t, cfg.Validate())
}

// chdir switches the process working directory to dir for the duration of
// a test (Load reads "vesper.toml" relative to cwd) and returns a func
// that restores it.
func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}
