package ctype

// Prelude returns the fixed typedef names a Context is seeded with before
// any header is walked, keyed by GOOS: a platform-independent entry
// ("bool") plus the table of Clang's ARM SVE vector intrinsic typedefs on
// darwin, where the system headers mention them without declaring them.
func Prelude(goos string) map[string]Type {
	out := map[string]Type{
		// `bool` is a typedef over the same one-byte value as `_Bool`
		// everywhere, independent of platform.
		"bool": Primitives["_Bool"],
	}

	if goos != "darwin" {
		return out
	}

	// Scalable-vector typedefs that alias an existing fixed-width integer.
	direct := map[string]string{
		"__SVInt8_t":   "char",
		"__SVInt16_t":  "short",
		"__SVInt32_t":  "int",
		"__SVInt64_t":  "long",
		"__SVUint8_t":  "char",
		"__SVUint16_t": "short",
		"__SVUint32_t": "int",
		"__SVUint64_t": "long",
	}
	for name, canonical := range direct {
		out[name] = Primitives[canonical]
	}
	out["__SVBool_t"] = Primitives["_Bool"]

	// Scalable-vector typedefs with no existing canonical primitive:
	// nothing downstream inspects their structure, only their name, so
	// each becomes an opaque Integer carrying its own name.
	for _, name := range []string{
		"__SVFloat16_t", "__SVFloat32_t", "__SVFloat64_t",
		"__SVBFloat16_t", "__SVBFloat32_t", "__SVBFloat64_t",
	} {
		out[name] = &Integer{Name: name}
	}

	categories := []string{
		"svint8", "svint16", "svint32", "svint64",
		"svuint8", "svuint16", "svuint32", "svuint64",
		"svfloat16", "svfloat32", "svfloat64",
		"svbfloat16", "svbfloat32", "svbfloat64",
	}
	for _, multiplier := range []string{"x2", "x3", "x4"} {
		for _, cat := range categories {
			name := "__clang_" + cat + multiplier + "_t"
			out[name] = &Integer{Name: name}
		}
	}

	return out
}
