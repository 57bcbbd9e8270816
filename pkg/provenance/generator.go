// Package provenance builds a V3 source map from a module's declarations
// file (MODULE.vpr) back to the line in the originating C header each
// declaration came from, useful because an import failing to compile
// downstream otherwise gives no way to find the header line behind a
// declaration; pkg/emitter's declaration order is deterministic, so this
// package is the one place that remembers where each line of that order
// came from.
//
// A declarations file only ever needs one mapping segment per emitted
// line, so the generator tracks line-only segments and implements VLQ
// encoding directly, per the Source Map v3 spec
// (https://sourcemaps.info/spec.html); go-sourcemap itself is
// consumer-only and has no encoder to defer to.
package provenance

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-sourcemap/sourcemap"
)

// Mapping is one declaration's position: GenLine in MODULE.vpr, SrcLine in
// the C header it was walked from (0 if the walker couldn't determine one),
// and the declaration's own name (carried into the map's "names" array).
type Mapping struct {
	GenLine int
	SrcLine int
	Name    string
}

// Generator accumulates Mappings for one module's declarations file and
// renders them as a standard V3 source map.
type Generator struct {
	header  string
	genFile string
	entries []Mapping
}

// NewGenerator starts a provenance map for genFile (MODULE.vpr), whose
// declarations were walked out of header.
func NewGenerator(header, genFile string) *Generator {
	return &Generator{header: header, genFile: genFile}
}

// Add records that the declaration named name, emitted on genLine of
// MODULE.vpr, came from srcLine of the header (0 if unknown).
func (g *Generator) Add(genLine, srcLine int, name string) {
	g.entries = append(g.entries, Mapping{GenLine: genLine, SrcLine: srcLine, Name: name})
}

// sourceMapV3 mirrors the Source Map v3 JSON schema
// (https://sourcemaps.info/spec.html §3).
type sourceMapV3 struct {
	Version    int      `json:"version"`
	File       string   `json:"file"`
	SourceRoot string   `json:"sourceRoot"`
	Sources    []string `json:"sources"`
	Names      []string `json:"names"`
	Mappings   string   `json:"mappings"`
}

// Generate renders the accumulated Mappings as V3 source map JSON. Every
// Mapping's generated column is 0 (a declaration always starts a line),
// its source index is 0 (one header per module), and its original column
// is 0, so of the five VLQ fields per segment only the original line and
// the name index ever carry a nonzero delta; the other three are still
// encoded.
func (g *Generator) Generate() ([]byte, error) {
	names := make([]string, len(g.entries))
	for i, m := range g.entries {
		names[i] = m.Name
	}

	sm := sourceMapV3{
		Version:    3,
		File:       g.genFile,
		Sources:    []string{g.header},
		Names:      names,
		Mappings:   encodeMappings(g.entries),
	}

	return json.MarshalIndent(sm, "", "  ")
}

// encodeMappings renders entries as base64-VLQ segments, one "line" of the
// mappings string per entry (declarations never share a generated line),
// each holding a single segment: [genCol, srcIndex, srcLine, srcCol,
// nameIndex].
// All deltas are relative to the previous segment's corresponding field,
// per the spec; genLine advances via ';' separators (one per skipped
// generated line, since mappings lines correspond 1:1 to generated lines).
func encodeMappings(entries []Mapping) string {
	var b strings.Builder
	prevGenLine := 1
	prevSrcLine := 0
	prevName := 0

	for i, m := range entries {
		for ; prevGenLine < m.GenLine; prevGenLine++ {
			b.WriteByte(';')
		}
		if i > 0 {
			// Same generated line as a previous mapping: separate
			// segments with a comma (today's output never does this,
			// since one declaration = one line, but the encoder stays
			// correct if that ever changes).
			if m.GenLine == entries[i-1].GenLine {
				b.WriteByte(',')
			}
		}

		// The spec's source-line field is zero-based; deltas accumulate
		// from 0, so the first segment carries SrcLine-1 absolute.
		srcLineDelta := (m.SrcLine - 1) - prevSrcLine
		nameDelta := i - prevName

		b.WriteString(encodeVLQ(0)) // generated column, always 0
		b.WriteString(encodeVLQ(0)) // source index, always 0 (one source)
		b.WriteString(encodeVLQ(srcLineDelta))
		b.WriteString(encodeVLQ(0)) // original column, always 0
		b.WriteString(encodeVLQ(nameDelta))

		prevSrcLine = m.SrcLine - 1
		prevName = i
	}

	return b.String()
}

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// encodeVLQ base64-VLQ-encodes a single signed value per the source map
// spec: the sign occupies the low bit, the rest of the value is chunked
// into 5-bit groups (least significant first), and every group but the
// last sets the continuation bit (0x20).
func encodeVLQ(value int) string {
	vlq := value << 1
	if value < 0 {
		vlq = (-value << 1) | 1
	}

	var b strings.Builder
	for {
		digit := vlq & 0x1f
		vlq >>= 5
		if vlq > 0 {
			digit |= 0x20
		}
		b.WriteByte(base64Alphabet[digit])
		if vlq == 0 {
			break
		}
	}
	return b.String()
}

// Consumer looks a generated MODULE.vpr line back up to its header
// origin, wrapping go-sourcemap's Parse/.Source().
type Consumer struct {
	c *sourcemap.Consumer
}

// NewConsumer parses a source map produced by Generate.
func NewConsumer(data []byte) (*Consumer, error) {
	c, err := sourcemap.Parse("", data)
	if err != nil {
		return nil, fmt.Errorf("provenance: parse source map: %w", err)
	}
	return &Consumer{c: c}, nil
}

// Origin returns the header path and line a MODULE.vpr line (1-indexed)
// came from. go-sourcemap's Source takes and returns 1-based lines (its
// parser seeds both line accumulators at 1 over the spec's zero-based VLQ
// fields), so genLine passes through unchanged.
func (c *Consumer) Origin(genLine int) (source string, srcLine int, ok bool) {
	source, _, srcLine, _, ok = c.c.Source(genLine, 0)
	return source, srcLine, ok
}
