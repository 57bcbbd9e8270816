package symscan

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// enumerateWindows lists an import library's exports via `dumpbin
// /exports`. The parse has a load-bearing quirk: once the "ordinal ...
// name" header line is found, the line right after it is skipped and each
// line from there up to the next blank one is split on four literal
// spaces, the second field (if present) being taken as the symbol name,
// else the whole field. That is how dumpbin's table columns
// line up whether or not the hint/RVA columns are present.
func enumerateWindows(libPath string) (map[string]struct{}, error) {
	dumpbinPath, err := locateDumpbin()
	if err != nil {
		return nil, err
	}

	out, err := exec.Command(dumpbinPath, "/exports", libPath).Output()
	if err != nil {
		return nil, fmt.Errorf("symscan: dumpbin /exports %s: %w", libPath, err)
	}
	return parseDumpbinExports(strings.Split(string(out), "\n")), nil
}

// parseDumpbinExports is the pure parsing half of enumerateWindows, split
// out so the quirk (see enumerateWindows's doc comment) is unit-testable
// without a real dumpbin.exe.
func parseDumpbinExports(lines []string) map[string]struct{} {
	symbols := make(map[string]struct{})
	for i, line := range lines {
		if !strings.Contains(line, "ordinal") || !strings.Contains(line, "name") {
			continue
		}
		for _, raw := range lines[i+2:] {
			trimmed := strings.TrimSpace(raw)
			if trimmed == "" {
				break
			}
			fields := strings.Split(raw, "    ")
			sym := fields[0]
			if len(fields) > 1 {
				sym = fields[1]
			}
			symbols[strings.TrimSpace(sym)] = struct{}{}
		}
		break
	}
	return symbols
}

// locateDumpbin finds dumpbin.exe via vswhere
// (`vswhere -latest -find VC\Tools\**\x64\dumpbin.exe`).
func locateDumpbin() (string, error) {
	programFilesX86 := os.Getenv("ProgramFiles(x86)")
	if programFilesX86 == "" {
		return "", fmt.Errorf("symscan: ProgramFiles(x86) not set")
	}
	vswhere := programFilesX86 + `\Microsoft Visual Studio\Installer\vswhere.exe`

	out, err := exec.Command(vswhere, "-latest", "-find", `VC\Tools\**\x64\dumpbin.exe`).Output()
	if err != nil {
		return "", fmt.Errorf("symscan: vswhere: %w", err)
	}
	first, _, _ := bytes.Cut(out, []byte("\n"))
	path := strings.TrimSpace(string(first))
	if path == "" {
		return "", fmt.Errorf("symscan: vswhere found no dumpbin.exe")
	}
	return path, nil
}
