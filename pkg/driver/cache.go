// Package driver implements the build driver: download/unpack a prior
// release of the Vesper compiler to bootstrap the first self-compile
// stage, then invoke that binary (and the binary it produces) to build,
// test, package, and clean the workspace.
package driver

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// StageCache remembers which of the driver's expensive stages
// (build/release/test) already ran against the current source tree, so a
// repeated `bootstrap build` with nothing changed is a no-op.
// The unit of caching is a whole pipeline stage, not an individual source
// file: the expensive work here is a compiler invocation over the full
// tree.
type StageCache struct {
	path    string
	entries map[string]string // stage name -> last-seen fingerprint
}

// LoadStageCache reads <root>/.vesper-cache/stage.json, or starts an empty
// cache if it doesn't exist yet.
func LoadStageCache(root string) (*StageCache, error) {
	path := filepath.Join(root, ".vesper-cache", "stage.json")
	c := &StageCache{path: path, entries: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("driver: read stage cache: %w", err)
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("driver: parse stage cache: %w", err)
	}
	return c, nil
}

// NeedsRun reports whether stage's recorded fingerprint differs from
// fingerprint (or there is no recorded fingerprint at all), meaning the
// stage's work needs to run again.
func (c *StageCache) NeedsRun(stage, fingerprint string) bool {
	return c.entries[stage] != fingerprint
}

// MarkRun records that stage completed successfully against fingerprint
// and persists the cache.
func (c *StageCache) MarkRun(stage, fingerprint string) error {
	c.entries[stage] = fingerprint
	return c.save()
}

// Invalidate drops the recorded fingerprints for stages and persists the
// cache, forcing each stage to run again next time NeedsRun is checked.
func (c *StageCache) Invalidate(stages ...string) error {
	for _, stage := range stages {
		delete(c.entries, stage)
	}
	return c.save()
}

func (c *StageCache) save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("driver: create cache dir: %w", err)
	}
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("driver: marshal stage cache: %w", err)
	}
	return os.WriteFile(c.path, data, 0o644)
}

// SourceFingerprint hashes every file under root (skipping the build/
// release output directories named in skip) by path and content, giving a
// single fingerprint that changes if any source file is added, removed,
// or edited: the input StageCache.NeedsRun compares a build stage's
// recorded fingerprint against.
func SourceFingerprint(root string, skip map[string]bool) (string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if d.IsDir() {
			if skip[rel] {
				return filepath.SkipDir
			}
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("driver: walk %s: %w", root, err)
	}
	sort.Strings(paths)

	h := xxhash.New()
	for _, rel := range paths {
		fmt.Fprintln(h, rel)
		f, err := os.Open(filepath.Join(root, rel))
		if err != nil {
			return "", fmt.Errorf("driver: hash %s: %w", rel, err)
		}
		_, copyErr := io.Copy(h, f)
		f.Close()
		if copyErr != nil {
			return "", fmt.Errorf("driver: hash %s: %w", rel, copyErr)
		}
	}
	return strconv.FormatUint(h.Sum64(), 16), nil
}
