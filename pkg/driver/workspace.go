package driver

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Workspace is a checkout of this repository plus its bin/ and build/
// output directories, with one method per driver verb: Download, Build,
// Release, Test, Clean.
type Workspace struct {
	Root    string // repository root; bin/ and build/ live under here
	Version string // pinned bootstrap compiler version, e.g. "0.4"

	// SourceURL, when set, overrides the default GitHub release URL
	// (tests point this at an httptest server instead of the real host).
	SourceURL string

	GOOS   string
	Client *http.Client
}

// NewWorkspace builds a Workspace rooted at root for the host's own GOOS.
func NewWorkspace(root, version string) *Workspace {
	return &Workspace{
		Root:    root,
		Version: version,
		GOOS:    runtime.GOOS,
		Client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

func (w *Workspace) binDir() string   { return filepath.Join(w.Root, "bin") }
func (w *Workspace) buildDir() string { return filepath.Join(w.Root, "build") }

// exeSuffix is ".exe" on Windows and empty everywhere else.
func (w *Workspace) exeSuffix() string {
	if w.GOOS == "windows" {
		return ".exe"
	}
	return ""
}

// stage1Binary is the compiler binary this workspace bootstraps from: the
// downloaded prior release at bin/vesperc. Build writes its output to
// bin/vesperc2 and leaves this binary as it is.
func (w *Workspace) stage1Binary() string {
	return filepath.Join(w.binDir(), "vesperc"+w.exeSuffix())
}

// archiveName is "vesperc-VERSION-GOOS.EXT": a zip on Windows and a
// gzipped tar everywhere else.
func (w *Workspace) archiveName() string {
	ext := "tar.gz"
	if w.GOOS == "windows" {
		ext = "zip"
	}
	return fmt.Sprintf("vesperc-%s-%s.%s", w.Version, w.GOOS, ext)
}

func (w *Workspace) sourceURL() string {
	if w.SourceURL != "" {
		return w.SourceURL
	}
	return fmt.Sprintf(
		"https://github.com/vesper-lang/vesper/releases/download/v%s-alpha/%s",
		w.Version, w.archiveName(),
	)
}

// Download fetches the pinned release archive and unpacks it into bin/,
// keeping only the compiler binary it contains.
func (w *Workspace) Download() error {
	if _, err := os.Stat(w.stage1Binary()); err == nil {
		return nil // already bootstrapped
	}

	resp, err := w.Client.Get(w.sourceURL())
	if err != nil {
		return fmt.Errorf("driver: download %s: %w", w.sourceURL(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("driver: download %s: status %s", w.sourceURL(), resp.Status)
	}

	if err := os.MkdirAll(w.binDir(), 0o755); err != nil {
		return fmt.Errorf("driver: create bin dir: %w", err)
	}

	if w.GOOS == "windows" {
		return unpackZipBinary(resp.Body, "vesperc.exe", w.stage1Binary())
	}
	return unpackTarGzBinary(resp.Body, "vesperc", w.stage1Binary())
}

// unpackTarGzBinary extracts the single named entry from a gzipped tar
// stream to dest, preserving the executable bit.
func unpackTarGzBinary(r io.Reader, entryName, dest string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("driver: open gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return fmt.Errorf("driver: %s not found in archive", entryName)
		}
		if err != nil {
			return fmt.Errorf("driver: read tar entry: %w", err)
		}
		if filepath.Base(hdr.Name) != entryName {
			continue
		}
		out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o755)
		if err != nil {
			return fmt.Errorf("driver: create %s: %w", dest, err)
		}
		defer out.Close()
		if _, err := io.Copy(out, tr); err != nil {
			return fmt.Errorf("driver: write %s: %w", dest, err)
		}
		return nil
	}
}

// unpackZipBinary extracts the single named entry from a zip archive
// (buffered fully in memory; release archives are a few MB) to dest.
func unpackZipBinary(r io.Reader, entryName, dest string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("driver: buffer zip archive: %w", err)
	}
	zr, err := zip.NewReader(strings.NewReader(string(data)), int64(len(data)))
	if err != nil {
		return fmt.Errorf("driver: open zip archive: %w", err)
	}
	for _, f := range zr.File {
		if filepath.Base(f.Name) != entryName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("driver: open %s in archive: %w", f.Name, err)
		}
		defer rc.Close()
		out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o755)
		if err != nil {
			return fmt.Errorf("driver: create %s: %w", dest, err)
		}
		defer out.Close()
		if _, err := io.Copy(out, rc); err != nil {
			return fmt.Errorf("driver: write %s: %w", dest, err)
		}
		return nil
	}
	return fmt.Errorf("driver: %s not found in archive", entryName)
}

// stageKey fingerprints the source tree plus any extra compiler args for
// one stage-cache entry, so a flag change reruns the stage even when no
// source file changed. bin/ and build/ hold outputs, not inputs, and the
// cache's own directory changes on every run; all three are excluded.
func (w *Workspace) stageKey(extraArgs []string) (string, error) {
	fp, err := SourceFingerprint(w.Root, map[string]bool{
		"bin": true, "build": true, ".vesper-cache": true,
	})
	if err != nil {
		return "", err
	}
	if len(extraArgs) > 0 {
		fp += " " + strings.Join(extraArgs, " ")
	}
	return fp, nil
}

// Build compiles src/main.vpr with the bootstrap compiler, producing
// bin/vesperc2: a single invocation of the stage 1 binary against the
// repository's own sources. A repeated Build with no source or flag
// changes is a no-op while the previous output binary is still present.
func (w *Workspace) Build(extraArgs ...string) error {
	cache, err := LoadStageCache(w.Root)
	if err != nil {
		return err
	}
	key, err := w.stageKey(extraArgs)
	if err != nil {
		return err
	}
	out := filepath.Join(w.binDir(), "vesperc2"+w.exeSuffix())
	if !cache.NeedsRun("build", key) {
		if _, err := os.Stat(out); err == nil {
			return nil
		}
	}

	if err := w.Download(); err != nil {
		return err
	}
	args := append([]string{"src/main.vpr", "-o", out}, extraArgs...)
	if err := w.run(w.stage1Binary(), args...); err != nil {
		return err
	}
	return cache.MarkRun("build", key)
}

// Release self-compiles twice, bin/vesperc -> bin/vesperc2 ->
// bin/vesperc3, then packages a release archive containing the stage 3
// binary, the version file, include/, and std/. The two-step "compile the
// compiler with the compiler" run is the bootstrap proof.
func (w *Workspace) Release() error {
	cache, err := LoadStageCache(w.Root)
	if err != nil {
		return err
	}
	key, err := w.stageKey(nil)
	if err != nil {
		return err
	}
	if !cache.NeedsRun("release", key) {
		if _, err := os.Stat(filepath.Join(w.buildDir(), w.archiveName())); err == nil {
			return nil
		}
	}

	if err := w.Build(); err != nil {
		return err
	}
	stage2 := filepath.Join(w.binDir(), "vesperc2"+w.exeSuffix())
	stage3 := filepath.Join(w.binDir(), "vesperc3"+w.exeSuffix())
	if err := w.run(stage2, "src/main.vpr", "-o", stage3); err != nil {
		return fmt.Errorf("driver: stage 2 self-compile: %w", err)
	}
	if err := w.packageArchive(stage3); err != nil {
		return err
	}
	return cache.MarkRun("release", key)
}

// packageArchive writes build/<archiveName> containing the compiler
// binary plus the runtime files a release ships: version, include/, and
// std/.
func (w *Workspace) packageArchive(binary string) error {
	if err := os.MkdirAll(w.buildDir(), 0o755); err != nil {
		return fmt.Errorf("driver: create build dir: %w", err)
	}
	dest := filepath.Join(w.buildDir(), w.archiveName())

	entries := []string{"version", "include", "std"}
	existing := make([]string, 0, len(entries)+1)
	existing = append(existing, binary)
	for _, e := range entries {
		if _, err := os.Stat(filepath.Join(w.Root, e)); err == nil {
			existing = append(existing, filepath.Join(w.Root, e))
		}
	}

	if w.GOOS == "windows" {
		return writeZipArchive(dest, w.Root, existing)
	}
	return writeTarGzArchive(dest, w.Root, existing)
}

func writeTarGzArchive(dest, root string, paths []string) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("driver: create %s: %w", dest, err)
	}
	defer out.Close()
	gz := gzip.NewWriter(out)
	defer gz.Close()
	tw := tar.NewWriter(gz)
	defer tw.Close()

	for _, p := range paths {
		if err := addToTar(tw, root, p); err != nil {
			return err
		}
	}
	return nil
}

func addToTar(tw *tar.Writer, root, path string) error {
	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = rel
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
}

func writeZipArchive(dest, root string, paths []string) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("driver: create %s: %w", dest, err)
	}
	defer out.Close()
	zw := zip.NewWriter(out)
	defer zw.Close()

	for _, p := range paths {
		if err := addToZip(zw, root, p); err != nil {
			return err
		}
	}
	return nil
}

func addToZip(zw *zip.Writer, root, path string) error {
	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		w, err := zw.Create(rel)
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
}

// Test builds and runs the compiler's own test suite: compile
// tests/main.vpr with the stage 1 binary, then execute the resulting
// binary. A tree the suite already passed against is not re-tested until
// a source file or flag changes.
func (w *Workspace) Test(extraArgs ...string) error {
	cache, err := LoadStageCache(w.Root)
	if err != nil {
		return err
	}
	key, err := w.stageKey(extraArgs)
	if err != nil {
		return err
	}
	if !cache.NeedsRun("test", key) {
		return nil
	}

	if err := w.Download(); err != nil {
		return err
	}
	testBin := filepath.Join(w.buildDir(), "tests"+w.exeSuffix())
	if err := os.MkdirAll(w.buildDir(), 0o755); err != nil {
		return fmt.Errorf("driver: create build dir: %w", err)
	}
	args := append([]string{"tests/main.vpr", "-o", testBin}, extraArgs...)
	if err := w.run(w.stage1Binary(), args...); err != nil {
		return fmt.Errorf("driver: build test suite: %w", err)
	}
	if err := w.run(testBin); err != nil {
		return err
	}
	return cache.MarkRun("test", key)
}

// Clean removes build/ and any packaged release archives, leaving bin/
// (the bootstrapped compiler) alone so a later Build doesn't re-download.
// The recorded stage fingerprints are dropped too, so the next
// build/release/test runs for real.
func (w *Workspace) Clean() error {
	if err := os.RemoveAll(w.buildDir()); err != nil {
		return fmt.Errorf("driver: clean %s: %w", w.buildDir(), err)
	}
	cache, err := LoadStageCache(w.Root)
	if err != nil {
		return err
	}
	return cache.Invalidate("build", "release", "test")
}

// run invokes name with args from the workspace root, streaming its
// stdout/stderr straight through.
func (w *Workspace) run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = w.Root
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("driver: %s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}
