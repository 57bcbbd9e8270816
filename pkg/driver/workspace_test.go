package driver

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeTarGzRelease(t *testing.T, binaryName, binaryContents string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: "vesperc-0.4-linux/bin/" + binaryName,
		Mode: 0o755,
		Size: int64(len(binaryContents)),
	}))
	_, err := tw.Write([]byte(binaryContents))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestDownloadFetchesAndExtractsBinary(t *testing.T) {
	archive := fakeTarGzRelease(t, "vesperc", "#!/bin/sh\necho stage1\n")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer srv.Close()

	root := t.TempDir()
	ws := NewWorkspace(root, "0.4")
	ws.GOOS = "linux"
	ws.SourceURL = srv.URL

	require.NoError(t, ws.Download())

	data, err := os.ReadFile(ws.stage1Binary())
	require.NoError(t, err)
	assert.Contains(t, string(data), "stage1")
}

func TestDownloadSkipsWhenAlreadyBootstrapped(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	root := t.TempDir()
	ws := NewWorkspace(root, "0.4")
	ws.GOOS = "linux"
	ws.SourceURL = srv.URL

	require.NoError(t, os.MkdirAll(filepath.Join(root, "bin"), 0o755))
	require.NoError(t, os.WriteFile(ws.stage1Binary(), []byte("already here"), 0o755))

	require.NoError(t, ws.Download())
	assert.False(t, called, "Download must not refetch when the stage 1 binary already exists")
}

func TestDownloadMissingEntryFails(t *testing.T) {
	archive := fakeTarGzRelease(t, "wrong-name", "x")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer srv.Close()

	root := t.TempDir()
	ws := NewWorkspace(root, "0.4")
	ws.GOOS = "linux"
	ws.SourceURL = srv.URL

	err := ws.Download()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in archive")
}

func TestArchiveNameVariesByGOOS(t *testing.T) {
	ws := NewWorkspace(t.TempDir(), "0.4")

	ws.GOOS = "linux"
	assert.Equal(t, "vesperc-0.4-linux.tar.gz", ws.archiveName())

	ws.GOOS = "windows"
	assert.Equal(t, "vesperc-0.4-windows.zip", ws.archiveName())
}

func TestExeSuffixOnlyOnWindows(t *testing.T) {
	ws := NewWorkspace(t.TempDir(), "0.4")

	ws.GOOS = "linux"
	assert.Equal(t, "", ws.exeSuffix())

	ws.GOOS = "windows"
	assert.Equal(t, ".exe", ws.exeSuffix())
}

func TestBuildSkipsWhenSourceUnchanged(t *testing.T) {
	root := t.TempDir()
	ws := NewWorkspace(root, "0.4")
	ws.GOOS = "linux"

	// A fake stage 1 compiler that records each invocation under bin/
	// (excluded from the source fingerprint) and writes its -o target.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bin"), 0o755))
	script := "#!/bin/sh\necho run >> bin/count.txt\nprintf binary > \"$3\"\n"
	require.NoError(t, os.WriteFile(ws.stage1Binary(), []byte(script), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "main.vpr"), []byte("def main"), 0o644))

	require.NoError(t, ws.Build())
	require.NoError(t, ws.Build())

	count, err := os.ReadFile(filepath.Join(root, "bin", "count.txt"))
	require.NoError(t, err)
	assert.Equal(t, "run\n", string(count), "an unchanged tree must not rebuild")

	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "main.vpr"), []byte("def main()"), 0o644))
	require.NoError(t, ws.Build())

	count, err = os.ReadFile(filepath.Join(root, "bin", "count.txt"))
	require.NoError(t, err)
	assert.Equal(t, "run\nrun\n", string(count), "an edited tree must rebuild")
}

func TestCleanInvalidatesStageCache(t *testing.T) {
	root := t.TempDir()
	ws := NewWorkspace(root, "0.4")
	ws.GOOS = "linux"

	cache, err := LoadStageCache(root)
	require.NoError(t, err)
	require.NoError(t, cache.MarkRun("build", "stale"))

	require.NoError(t, ws.Clean())

	reloaded, err := LoadStageCache(root)
	require.NoError(t, err)
	assert.True(t, reloaded.NeedsRun("build", "stale"), "Clean must drop recorded stage fingerprints")
}

func TestCleanRemovesBuildDirButKeepsBin(t *testing.T) {
	root := t.TempDir()
	ws := NewWorkspace(root, "0.4")

	require.NoError(t, os.MkdirAll(filepath.Join(root, "build"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "build", "leftover"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(ws.stage1Binary(), []byte("keep me"), 0o755))

	require.NoError(t, ws.Clean())

	_, err := os.Stat(filepath.Join(root, "build"))
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(ws.stage1Binary())
	assert.NoError(t, err, "Clean must not touch bin/")
}
