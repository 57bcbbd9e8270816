package symscan

import (
	"bufio"
	"fmt"
	"os/exec"
	"strings"
)

// enumerateUnix lists a shared library's dynamic symbol table via
// `nm -D --defined-only`.
func enumerateUnix(libPath string) (map[string]struct{}, error) {
	if libPath == "" {
		return map[string]struct{}{}, nil
	}

	out, err := exec.Command("nm", "-D", "--defined-only", libPath).Output()
	if err != nil {
		return nil, fmt.Errorf("symscan: nm -D %s: %w", libPath, err)
	}

	symbols := make(map[string]struct{})
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		// nm's `nm -D` output is "ADDRESS TYPE NAME"; every defined
		// symbol is kept whatever its TYPE letter (text, data, bss, ...).
		symbols[fields[2]] = struct{}{}
	}
	return symbols, nil
}
