package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageCacheNeedsRunWhenUnseen(t *testing.T) {
	root := t.TempDir()
	c, err := LoadStageCache(root)
	require.NoError(t, err)

	assert.True(t, c.NeedsRun("build", "abc123"))
}

func TestStageCacheSkipsUnchangedFingerprint(t *testing.T) {
	root := t.TempDir()
	c, err := LoadStageCache(root)
	require.NoError(t, err)

	require.NoError(t, c.MarkRun("build", "abc123"))
	assert.False(t, c.NeedsRun("build", "abc123"))
	assert.True(t, c.NeedsRun("build", "def456"), "a changed fingerprint must force a rerun")
}

func TestStageCachePersistsAcrossLoads(t *testing.T) {
	root := t.TempDir()
	c1, err := LoadStageCache(root)
	require.NoError(t, err)
	require.NoError(t, c1.MarkRun("release", "fingerprint-1"))

	c2, err := LoadStageCache(root)
	require.NoError(t, err)
	assert.False(t, c2.NeedsRun("release", "fingerprint-1"))
}

func TestStageCacheInvalidateForcesRerun(t *testing.T) {
	root := t.TempDir()
	c, err := LoadStageCache(root)
	require.NoError(t, err)
	require.NoError(t, c.MarkRun("test", "fp"))

	require.NoError(t, c.Invalidate("test"))
	assert.True(t, c.NeedsRun("test", "fp"))
}

func TestSourceFingerprintChangesWithContent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.vpr"), []byte("def main() {}"), 0o644))

	fp1, err := SourceFingerprint(root, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "main.vpr"), []byte("def main() { return 1; }"), 0o644))
	fp2, err := SourceFingerprint(root, nil)
	require.NoError(t, err)

	assert.NotEqual(t, fp1, fp2)
}

func TestSourceFingerprintSkipsExcludedDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.vpr"), []byte("def main() {}"), 0o644))

	fpBefore, err := SourceFingerprint(root, map[string]bool{"build": true})
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "build"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "build", "vesperc2"), []byte("binary"), 0o755))

	fpAfter, err := SourceFingerprint(root, map[string]bool{"build": true})
	require.NoError(t, err)

	assert.Equal(t, fpBefore, fpAfter, "fingerprint must ignore files under an excluded dir")
}
