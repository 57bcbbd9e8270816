package provenance

import (
	"fmt"
)

// ValidationResult reports a source map's health: schema problems as
// errors, degraded-but-usable conditions as warnings, plus round-trip
// counters for the per-mapping checks.
type ValidationResult struct {
	Valid          bool
	Errors         []string
	Warnings       []string
	RoundTripTests int
	PassedTests    int
}

// Validate checks a Generator's accumulated Mappings: that the rendered
// source map parses back with go-sourcemap, and that every Mapping's
// generated line round-trips to the original line the Generator was given.
// Exercising the real parser (rather than just inspecting g.entries
// directly) is the point: it's the thing that actually gets shipped in
// MODULE.vpr.map and read back by a downstream tool.
func Validate(g *Generator) (ValidationResult, error) {
	result := ValidationResult{Valid: true}

	if g.header == "" {
		result.Warnings = append(result.Warnings, "provenance: no header path set; Sources[0] will be empty")
	}
	if len(g.entries) == 0 {
		result.Warnings = append(result.Warnings, "provenance: no mappings recorded for this module")
		return result, nil
	}

	data, err := g.Generate()
	if err != nil {
		return ValidationResult{}, fmt.Errorf("provenance: generate: %w", err)
	}

	consumer, err := NewConsumer(data)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result, nil
	}

	prevGenLine := 0
	for _, m := range g.entries {
		if m.GenLine <= prevGenLine {
			result.Errors = append(result.Errors,
				fmt.Sprintf("mapping for %q: generated line %d is not strictly increasing (previous %d)",
					m.Name, m.GenLine, prevGenLine))
		}
		prevGenLine = m.GenLine

		result.RoundTripTests++
		_, srcLine, ok := consumer.Origin(m.GenLine)
		if !ok {
			result.Errors = append(result.Errors,
				fmt.Sprintf("mapping for %q: generated line %d has no recorded origin after round-trip", m.Name, m.GenLine))
			continue
		}
		if srcLine != m.SrcLine {
			result.Errors = append(result.Errors,
				fmt.Sprintf("mapping for %q: round-trip origin line %d != recorded %d", m.Name, srcLine, m.SrcLine))
			continue
		}
		result.PassedTests++
	}

	if len(result.Errors) > 0 {
		result.Valid = false
	}
	return result, nil
}
