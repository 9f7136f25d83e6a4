package core

import (
	"github.com/secretshields/secretshields/internal/detectors"
	"github.com/secretshields/secretshields/internal/engine"
	"github.com/secretshields/secretshields/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type (
	Result    = engine.Result
	Detection = types.Detection
	Severity  = types.Severity
	// PatternSet selects active patterns by id or category; nil enables all.
	PatternSet = detectors.Set
)

const (
	SevCritical = types.SevCritical
	SevHigh     = types.SevHigh
	SevMedium   = types.SevMedium
)

// Scan masks every secret in text found by the patterns in enabled.
func Scan(text string, enabled PatternSet) Result {
	return engine.Scan(text, enabled)
}

// Mask returns text with every secret masked by all patterns.
func Mask(text string) string {
	return engine.Scan(text, nil).Masked
}

// Select builds a PatternSet from glob selectors over pattern ids and
// category names.
func Select(enable, disable []string) (PatternSet, error) {
	return detectors.Select(enable, disable)
}

// DetectorIDs returns the list of registered pattern IDs.
// This is exposed for convenience to avoid importing internals directly.
func DetectorIDs() []string { return engine.DetectorIDs() }
