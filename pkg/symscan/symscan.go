// Package symscan enumerates the exported symbol names of a native
// library, used to filter the generated symbol table down to only the
// symbols actually satisfied by a linked library: `dumpbin /exports` on
// Windows, `nm -D` everywhere else.
package symscan

// Enumerate returns the set of exported symbol names in the library named
// libPath, dispatching on goos. On Unix an empty libPath yields an empty
// set and no error. Any set returned here is a filter once the caller
// uses it, so an empty set admits no symbols; pkg/orchestrator applies no
// filter only when a module lists no libraries at all.
func Enumerate(goos, libPath string) (map[string]struct{}, error) {
	switch goos {
	case "windows":
		return enumerateWindows(libPath)
	default:
		return enumerateUnix(libPath)
	}
}
