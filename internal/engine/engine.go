package engine

import (
	"strings"

	"github.com/secretshields/secretshields/internal/detectors"
	"github.com/secretshields/secretshields/internal/types"
)

// Result is the outcome of scanning one piece of text. When nothing was
// detected Masked equals the input and Detections is empty.
type Result struct {
	Masked     string
	Detections []types.Detection
}

// Found reports whether at least one secret was masked.
func (r Result) Found() bool { return len(r.Detections) > 0 }

// DetectorIDs returns the identifiers of every registered pattern.
func DetectorIDs() []string { return detectors.IDs() }

// Scan masks every secret found in text by the patterns active under
// enabled (nil enables all). Text outside the detected spans is copied
// byte for byte.
func Scan(text string, enabled detectors.Set) Result {
	if text == "" {
		return Result{Masked: text, Detections: []types.Detection{}}
	}
	winners := resolve(collect(text, detectors.Active(enabled)))
	if len(winners) == 0 {
		return Result{Masked: text, Detections: []types.Detection{}}
	}

	var sb strings.Builder
	sb.Grow(len(text) + 2*len(text)/3)
	dets := make([]types.Detection, 0, len(winners))
	last := 0
	for _, c := range winners {
		masked := Mask(text[c.Start:c.End], c.pattern.PrefixLen, c.pattern.SuffixLen)
		sb.WriteString(text[last:c.Start])
		sb.WriteString(masked)
		last = c.End
		dets = append(dets, types.Detection{
			PatternID:   c.pattern.ID,
			Name:        c.pattern.Name,
			Provider:    c.pattern.Provider,
			Category:    string(c.pattern.Category),
			Severity:    c.pattern.Severity,
			Start:       c.Start,
			End:         c.End,
			Masked:      masked,
			RotationURL: c.pattern.RotationURL,
		})
	}
	sb.WriteString(text[last:])
	return Result{Masked: sb.String(), Detections: dets}
}

// collect gathers every candidate that survives the allowlist and entropy
// filters. Filtering happens before overlap resolution so a discarded
// candidate never hides a genuine secret it happens to overlap.
func collect(text string, patterns []detectors.SecretPattern) []candidate {
	var out []candidate
	for i := range patterns {
		p := &patterns[i]
		for _, sp := range p.Matcher.FindAll(text) {
			value := text[sp.Start:sp.End]
			if detectors.Allowlisted(value) || p.BelowThreshold(value) {
				continue
			}
			out = append(out, candidate{Span: sp, pattern: p, rank: i})
		}
	}
	return out
}
