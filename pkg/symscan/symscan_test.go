package symscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumerateUnixEmptyLibPathYieldsEmptySet(t *testing.T) {
	syms, err := Enumerate("linux", "")
	require.NoError(t, err)
	assert.Empty(t, syms)
}

func TestEnumerateUnixMissingLibraryErrors(t *testing.T) {
	_, err := Enumerate("linux", "/nonexistent/libdoesnotexist.so")
	assert.Error(t, err)
}

func TestParseDumpbinExportsFourSpaceSplitQuirk(t *testing.T) {
	// Each data line has a single run of four spaces ahead of the name
	// column, matching dumpbin's actual alignment; parseDumpbinExports
	// takes the segment after that run as the symbol name.
	lines := []string{
		"    ordinal hint RVA      name",
		"",
		"1    CreateWidget",
		"2    DestroyWidget",
		"",
		"  Summary",
	}
	symbols := parseDumpbinExports(lines)
	assert.Contains(t, symbols, "CreateWidget")
	assert.Contains(t, symbols, "DestroyWidget")
	assert.Len(t, symbols, 2)
}

func TestParseDumpbinExportsNoHeaderYieldsEmpty(t *testing.T) {
	symbols := parseDumpbinExports([]string{"nothing to see here"})
	assert.Empty(t, symbols)
}
